package spreads

import (
	"context"
	"fmt"

	"github.com/bft-labs/spreads/pkg/log"
)

// Stage names a step of the workflow.
type Stage string

const (
	StageCapture  Stage = "capture"
	StageDownload Stage = "download"
	StageProcess  Stage = "process"
	StageOutput   Stage = "output"
)

// Stages returns all stages in execution order.
func Stages() []Stage {
	return []Stage{StageCapture, StageDownload, StageProcess, StageOutput}
}

// ParseStage converts a stage name.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStage, s)
}

// Hook is the uniform plugin contract of every stage.
//
// Initialize is called once per run before any stage, Shutdown once after
// the last stage, in reverse registration order. Process is called once per
// stage the hook is registered for. Hooks must not keep state between runs
// beyond what their construction-time configuration holds.
type Hook interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Process(ctx context.Context, path string) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is handed to hooks at the start of each run.
type PluginConfig struct {
	// RunID identifies the run in logs and reports.
	RunID string

	// Logger is already bound to the run and hook names.
	Logger log.Logger

	// Workers is a parallelism hint; zero means one per CPU.
	Workers int
}

// ProcessFunc adapts a plain function into a Hook with no-op
// initialization and shutdown.
func ProcessFunc(name string, fn func(ctx context.Context, path string) error) Hook {
	return &funcHook{name: name, fn: fn}
}

type funcHook struct {
	name string
	fn   func(ctx context.Context, path string) error
}

func (h *funcHook) Name() string                                   { return h.name }
func (h *funcHook) Initialize(context.Context, PluginConfig) error { return nil }
func (h *funcHook) Process(ctx context.Context, path string) error { return h.fn(ctx, path) }
func (h *funcHook) Shutdown(context.Context) error                 { return nil }
