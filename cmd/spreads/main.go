package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/spreads/internal/cliconfig"
	"github.com/bft-labs/spreads/internal/watch"
	"github.com/bft-labs/spreads/pkg/log"
	"github.com/bft-labs/spreads/pkg/spreads"
	"github.com/bft-labs/spreads/plugins/autocrop"
)

const longHelp = `Post-process scanned book pages.

spreads crops every page under <stage-dir>/raw to its content box, removes
the binding gutter on the spine side (alternating by page parity) and writes
the result to <stage-dir>/raw/done.

Configuration is read from $HOME/.spreads/config.toml, then SPREADS_*
environment variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  spreads process ~/scans/book-1 --gutter-odd 30 --gutter-even 20 --extra-crop 10
  spreads run ~/scans/book-1 --stages process,output --on-partial-failure abort
  spreads watch ~/scans/book-1 --create-output-dir
`)

// Exit codes.
const (
	exitOK      = 0
	exitError   = 1
	exitPartial = 2
)

// errPartial marks a run that finished with failed pages.
var errPartial = errors.New("some pages failed")

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type app struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  *log.ZerologLogger
}

func main() {
	a := &app{cfg: cliconfig.DefaultConfig()}
	a.logger = cliconfig.NewLogger(a.cfg, os.Stderr)

	root := &cobra.Command{
		Use:           "spreads",
		Short:         "Post-process scanned book pages",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}
	a.bindFlags(root.PersistentFlags())

	processCmd := &cobra.Command{
		Use:   "process <stage-dir>",
		Short: "Crop every page of a stage directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), args[0], spreads.StageProcess)
		},
	}

	runCmd := &cobra.Command{
		Use:   "run <stage-dir>",
		Short: "Run the configured stages over a stage directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := a.cfg.StageList()
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), args[0], stages...)
		},
	}
	runCmd.Flags().StringSliceVar(&a.cfg.Stages, "stages", a.cfg.Stages, "stages to run, in order")

	watchCmd := &cobra.Command{
		Use:   "watch <stage-dir>",
		Short: "Re-run the process stage whenever new pages arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), args[0])
		},
	}
	watchCmd.Flags().DurationVar(&a.cfg.WatchDebounce, "debounce", a.cfg.WatchDebounce, "quiet period before re-running after a page change")

	root.AddCommand(processCmd, runCmd, watchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()

	switch {
	case err == nil:
		os.Exit(exitOK)
	case errors.Is(err, errPartial):
		a.logger.Warn("finished with failed pages")
		os.Exit(exitPartial)
	default:
		a.logger.Error("spreads", log.Err(err))
		os.Exit(exitError)
	}
}

func (a *app) bindFlags(fs *pflag.FlagSet) {
	cfg := &a.cfg
	ac := &cfg.Autocrop

	fs.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.spreads/config.toml)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console or json)")
	fs.StringVar(&cfg.OnPartialFailure, "on-partial-failure", cfg.OnPartialFailure, "continue or abort when some pages fail")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel workers (0 = one per CPU)")

	fs.IntVar(&ac.GutterOdd, "gutter-odd", ac.GutterOdd, "pixels removed from the spine side of odd pages")
	fs.IntVar(&ac.GutterEven, "gutter-even", ac.GutterEven, "pixels removed from the spine side of even pages")
	fs.IntVar(&ac.ExtraCrop, "extra-crop", ac.ExtraCrop, "extra pixels shaved off the detected content box")
	fs.IntVar(&ac.ReduceFactor, "reduce-factor", ac.ReduceFactor, "downsampling divisor used for detection")
	fs.Float64Var(&ac.Fuzz, "fuzz", ac.Fuzz, "background tolerance while trimming, in (0, 1)")
	fs.IntVar(&ac.BlurRadius, "blur-radius", ac.BlurRadius, "detection blur radius in reduced pixels")
	fs.StringVar(&ac.Detector, "detector", ac.Detector, fmt.Sprintf("detection backend %v", autocrop.Detectors()))
	fs.StringVar(&ac.MagickBinary, "magick-binary", ac.MagickBinary, "ImageMagick convert executable")
	fs.IntVar(&ac.Workers, "crop-workers", ac.Workers, "crop parallelism, overrides --workers for autocrop")
	fs.IntVar(&ac.JPEGQuality, "jpeg-quality", ac.JPEGQuality, "quality of written JPEG pages")
	fs.IntVar(&ac.Retries, "retries", ac.Retries, "retries per failed page")
	fs.DurationVar(&ac.RetryBackoff, "retry-backoff", ac.RetryBackoff, "first delay between page retries")
	fs.BoolVar(&ac.CreateOutputDir, "create-output-dir", ac.CreateOutputDir, "create raw/done when missing")
	fs.BoolVar(&ac.Report, "report", ac.Report, "write autocrop-report.json into the stage directory")
}

// loadConfig applies file, environment and flags, in increasing precedence.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	} else if a.cfgPath != "" {
		return fmt.Errorf("config file %s not found", a.cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.logger = cliconfig.NewLogger(a.cfg, os.Stderr)
	a.logger.Debug("configuration", log.Any("config", a.cfg))
	return nil
}

func (a *app) workflow() (*spreads.Workflow, error) {
	return spreads.New(
		spreads.WithLogger(a.logger),
		spreads.WithWorkers(a.cfg.Workers),
		spreads.WithPartialFailurePolicy(a.cfg.Policy()),
		autocrop.WithAutocrop(a.cfg.Autocrop),
	)
}

// run executes stages once. The first interrupt cancels the run; pages
// already being cropped are finished.
func (a *app) run(ctx context.Context, dir string, stages ...spreads.Stage) error {
	w, err := a.workflow()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stopCancel := context.AfterFunc(ctx, func() {
		a.logger.Info("received signal, finishing pages in flight")
		_ = w.Cancel()
	})
	defer stopCancel()

	report, err := w.Run(context.WithoutCancel(ctx), dir, stages...)
	if err != nil {
		return err
	}
	if report.Partial() {
		return errPartial
	}
	return nil
}

func (a *app) watch(ctx context.Context, dir string) error {
	w, err := a.workflow()
	if err != nil {
		return err
	}
	watcher := watch.New(filepath.Join(dir, autocrop.RawDir), a.cfg.WatchDebounce, a.logger)
	return watcher.Run(ctx, func(ctx context.Context) error {
		_, err := w.RunStage(ctx, spreads.StageProcess, dir)
		return err
	})
}
