package spreads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/spreads/internal/app"
	"github.com/bft-labs/spreads/pkg/log"
)

// Workflow runs registered hooks stage by stage over a stage directory.
// A Workflow may be reused for many runs, but only one run is active at a
// time.
type Workflow struct {
	opts      options
	registry  *Registry
	lifecycle *app.Lifecycle
	emitter   *eventEmitterWrapper
	logger    log.Logger
}

// New creates a Workflow. Hooks passed through WithHook are registered in
// option order; the first registration error is returned.
func New(opts ...Option) (*Workflow, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy != ContinueOnPartialFailure && o.policy != AbortOnPartialFailure {
		return nil, fmt.Errorf("%w: partial failure policy %s", ErrConfiguration, o.policy)
	}
	if o.workers < 0 {
		return nil, fmt.Errorf("%w: workers must be >= 0, got %d", ErrConfiguration, o.workers)
	}

	registry := NewRegistry()
	for _, reg := range o.hooks {
		if err := registry.Register(reg.stage, reg.hook, reg.order); err != nil {
			return nil, err
		}
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	return &Workflow{
		opts:      o,
		registry:  registry,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		emitter:   emitter,
		logger:    o.logger,
	}, nil
}

// Registry returns the hook registry. Registrations made while a run is
// active take effect with the next run.
func (w *Workflow) Registry() *Registry {
	return w.registry
}

// Status returns the current lifecycle state.
func (w *Workflow) Status() State {
	return convertState(w.lifecycle.State())
}

// Cancel asks the active run to stop. The hook currently running is allowed
// to finish and no further hook is started. It returns ErrNotRunning when no
// run is active.
func (w *Workflow) Cancel() error {
	if w.lifecycle.State() == app.StateCancelling {
		return nil
	}
	return w.lifecycle.Cancel("Cancel() called")
}

// RunStage runs a single stage over dir.
func (w *Workflow) RunStage(ctx context.Context, stage Stage, dir string) (*StageReport, error) {
	report, err := w.Run(ctx, dir, stage)
	if report == nil {
		return nil, err
	}
	if sr := report.Stage(stage); sr != nil {
		return sr, err
	}
	return &StageReport{Stage: stage, Dir: dir}, err
}

// Run executes stages in the given order, or every stage in Stages() order
// when none are given. Hooks serving any of the stages are initialized once
// before the first stage and shut down in reverse order after the last.
//
// A StagePartialFailure is logged as a warning and, under
// ContinueOnPartialFailure, does not stop the run. Any other hook error fails
// the stage: the stage's remaining hooks still run, later stages do not, and
// the returned error wraps ErrStageFailed. The report is returned even when
// err is non-nil.
func (w *Workflow) Run(ctx context.Context, dir string, stages ...Stage) (*RunReport, error) {
	if len(stages) == 0 {
		stages = Stages()
	}
	for _, st := range stages {
		if _, err := ParseStage(string(st)); err != nil {
			return nil, err
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := w.lifecycle.Begin(cancel, "Run() called"); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := w.logger.With(log.String("run_id", runID))
	report := &RunReport{RunID: runID, Dir: dir, StartedAt: time.Now()}
	logger.Info("run started", log.String("dir", dir), log.Int("stages", len(stages)))

	hooks := w.registry.HooksFor(stages...)
	initialized, err := w.initialize(runCtx, runID, logger, hooks)
	if err != nil {
		w.shutdown(context.WithoutCancel(runCtx), logger, initialized)
		report.FinishedAt = time.Now()
		_ = w.lifecycle.Finish(true, "hook initialization failed")
		return report, err
	}

	var runErr error
	for _, st := range stages {
		if runCtx.Err() != nil {
			break
		}
		sr, err := w.runStage(runCtx, logger, runID, st, dir)
		report.Stages = append(report.Stages, sr)
		if err != nil {
			runErr = err
			break
		}
	}
	if runErr == nil && runCtx.Err() != nil {
		report.Cancelled = true
		runErr = fmt.Errorf("%w: %w", ErrCancelled, runCtx.Err())
	}

	w.shutdown(context.WithoutCancel(runCtx), logger, initialized)
	report.FinishedAt = time.Now()
	elapsed := report.FinishedAt.Sub(report.StartedAt)

	if runErr != nil {
		logger.Warn("run finished with errors", log.Duration("elapsed", elapsed), log.Err(runErr))
		_ = w.lifecycle.Finish(true, runErr.Error())
		return report, runErr
	}
	logger.Info("run completed", log.Duration("elapsed", elapsed))
	_ = w.lifecycle.Finish(false, "run completed")
	return report, nil
}

// initialize calls Initialize on hooks in order, stopping at the first
// error. It returns the hooks that were initialized successfully.
func (w *Workflow) initialize(ctx context.Context, runID string, logger log.Logger, hooks []Hook) ([]Hook, error) {
	done := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		cfg := PluginConfig{
			RunID:   runID,
			Logger:  logger.With(log.String("hook", h.Name())),
			Workers: w.opts.workers,
		}
		if err := safeCall(h.Name(), func() error { return h.Initialize(ctx, cfg) }); err != nil {
			logger.Error("hook initialization failed", log.String("hook", h.Name()), log.Err(err))
			return done, fmt.Errorf("initialize %s: %w", h.Name(), err)
		}
		logger.Debug("hook initialized", log.String("hook", h.Name()))
		done = append(done, h)
	}
	return done, nil
}

func (w *Workflow) shutdown(ctx context.Context, logger log.Logger, hooks []Hook) {
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		if err := safeCall(h.Name(), func() error { return h.Shutdown(ctx) }); err != nil {
			logger.Warn("hook shutdown failed", log.String("hook", h.Name()), log.Err(err))
		}
	}
}

func (w *Workflow) runStage(ctx context.Context, logger log.Logger, runID string, stage Stage, dir string) (*StageReport, error) {
	sr := &StageReport{Stage: stage, Dir: dir}
	logger = logger.With(log.String("stage", string(stage)))

	var stageErr error
	for _, h := range w.registry.Hooks(stage) {
		res := HookResult{Hook: h.Name()}
		if ctx.Err() != nil {
			res.Status = HookCancelled
			res.Err = ErrCancelled
			w.record(runID, sr, res)
			continue
		}

		start := time.Now()
		err := safeCall(h.Name(), func() error { return h.Process(ctx, dir) })
		res.Duration = time.Since(start)
		res.Err = err

		var spf *StagePartialFailure
		switch {
		case err == nil:
			res.Status = HookSucceeded
			logger.Info("hook finished", log.String("hook", h.Name()), log.Duration("elapsed", res.Duration))
		case ctx.Err() != nil && cancelled(err):
			res.Status = HookCancelled
			logger.Info("hook cancelled", log.String("hook", h.Name()), log.Err(err))
		case errors.As(err, &spf):
			res.Status = HookPartial
			logger.Warn("hook finished with failed pages",
				log.String("hook", h.Name()),
				log.Int("failed", len(spf.Failures)),
				log.Int("total", spf.Total),
				log.Strings("pages", spf.FailedPages()))
			if w.opts.policy == AbortOnPartialFailure && stageErr == nil {
				stageErr = fmt.Errorf("%w: %s: %w", ErrStageFailed, stage, err)
			}
		default:
			res.Status = HookFailed
			logger.Error("hook failed", log.String("hook", h.Name()), log.Err(err))
			if stageErr == nil {
				stageErr = fmt.Errorf("%w: %s: %w", ErrStageFailed, stage, err)
			}
		}
		w.record(runID, sr, res)
	}
	return sr, stageErr
}

func (w *Workflow) record(runID string, sr *StageReport, res HookResult) {
	sr.Hooks = append(sr.Hooks, res)
	w.emitter.hookFinished(HookEvent{
		RunID:    runID,
		Stage:    sr.Stage,
		Hook:     res.Hook,
		Status:   res.Status,
		Err:      res.Err,
		Duration: res.Duration,
	})
}

// cancelled reports whether err came from the run being cancelled, including
// a partial failure whose batch was cut short.
func cancelled(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrCancelled) {
		return true
	}
	var spf *StagePartialFailure
	return errors.As(err, &spf) && spf.Cancelled()
}

// safeCall converts a panic in fn into an ErrHookPanic error.
func safeCall(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHookPanic, name, r)
		}
	}()
	return fn()
}
