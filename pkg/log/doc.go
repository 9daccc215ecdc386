// Package log provides the logging abstraction used by the spreads workflow
// engine and its hooks.
//
// Hooks receive a [Logger] through their plugin configuration and never talk
// to a concrete logging library directly. A zerolog-backed implementation is
// provided for the CLI, and a no-op logger is the library default:
//
//	logger := log.NewZerologLogger(zerolog.New(os.Stderr))
//	logger.Info("stage finished", log.String("stage", "process"), log.Int("pages", 42))
//
// Use [Logger.With] to bind fields that should appear on every subsequent
// entry, such as the run identifier or the hook name:
//
//	hookLog := logger.With(log.String("hook", "autocrop"))
package log
