// Package spreads post-processes scanned book pages.
//
// The engine lives in pkg/spreads and the content-crop hook in
// plugins/autocrop. This package wires the two together for the common case
// of cropping one stage directory:
//
//	cfg := autocrop.DefaultConfig()
//	cfg.GutterOdd, cfg.GutterEven = 30, 20
//	report, err := spreads.Process(ctx, "/scans/book-1", cfg, nil)
//	if errors.Is(err, spreads.ErrConfiguration) {
//	    log.Fatal(err)
//	}
//
// Failed pages do not fail Process; inspect report.PartialFailures.
package spreads

import (
	"context"

	"github.com/bft-labs/spreads/pkg/log"
	engine "github.com/bft-labs/spreads/pkg/spreads"
	"github.com/bft-labs/spreads/plugins/autocrop"
)

// ErrConfiguration is returned for invalid settings or a stage directory
// without raw/ and raw/done.
var ErrConfiguration = engine.ErrConfiguration

// StageReport describes the hooks run for a stage.
type StageReport = engine.StageReport

// Process runs the autocrop hook over stageDir as a one-stage workflow. A nil
// logger discards output.
func Process(ctx context.Context, stageDir string, cfg autocrop.Config, logger log.Logger) (*StageReport, error) {
	w, err := engine.New(
		engine.WithLogger(logger),
		autocrop.WithAutocrop(cfg),
	)
	if err != nil {
		return nil, err
	}
	return w.RunStage(ctx, engine.StageProcess, stageDir)
}
