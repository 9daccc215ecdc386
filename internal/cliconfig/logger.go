package cliconfig

import (
	"io"

	"github.com/bft-labs/spreads/pkg/log"
)

// NewLogger builds the CLI logger for cfg, writing to w (stderr when nil).
func NewLogger(cfg Config, w io.Writer) *log.ZerologLogger {
	if cfg.LogFormat == LogFormatJSON {
		return log.NewJSONLogger(w, cfg.LogLevel)
	}
	return log.NewConsoleLogger(w, cfg.LogLevel)
}
