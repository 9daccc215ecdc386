package spreads

import (
	"errors"
	"time"
)

// HookStatus classifies a hook invocation.
type HookStatus int

const (
	HookSucceeded HookStatus = iota
	// HookPartial means the hook returned a StagePartialFailure.
	HookPartial
	HookFailed
	// HookCancelled means the run was cancelled before or while the hook
	// ran.
	HookCancelled
)

func (s HookStatus) String() string {
	switch s {
	case HookSucceeded:
		return "succeeded"
	case HookPartial:
		return "partial"
	case HookFailed:
		return "failed"
	case HookCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// HookResult is the outcome of one hook within a stage.
type HookResult struct {
	Hook     string
	Status   HookStatus
	Err      error
	Duration time.Duration
}

// StageReport collects the hook results of one stage.
type StageReport struct {
	Stage Stage
	Dir   string
	Hooks []HookResult
}

// Failed reports whether any hook failed hard.
func (r *StageReport) Failed() bool {
	return r.count(HookFailed) > 0
}

// Partial reports whether any hook returned a StagePartialFailure.
func (r *StageReport) Partial() bool {
	return r.count(HookPartial) > 0
}

// Cancelled reports whether cancellation cut the stage short.
func (r *StageReport) Cancelled() bool {
	return r.count(HookCancelled) > 0
}

// PartialFailures returns the partial failures reported by hooks.
func (r *StageReport) PartialFailures() []*StagePartialFailure {
	var out []*StagePartialFailure
	for _, h := range r.Hooks {
		var spf *StagePartialFailure
		if h.Status == HookPartial && errors.As(h.Err, &spf) {
			out = append(out, spf)
		}
	}
	return out
}

// Err joins the errors of all failed or partial hooks.
func (r *StageReport) Err() error {
	var errs []error
	for _, h := range r.Hooks {
		if h.Err != nil && (h.Status == HookFailed || h.Status == HookPartial) {
			errs = append(errs, h.Err)
		}
	}
	return errors.Join(errs...)
}

func (r *StageReport) count(s HookStatus) int {
	n := 0
	for _, h := range r.Hooks {
		if h.Status == s {
			n++
		}
	}
	return n
}

// RunReport summarises a whole run.
type RunReport struct {
	RunID      string
	Dir        string
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []*StageReport
	Cancelled  bool
}

// Stage returns the report of st, or nil if st did not run.
func (r *RunReport) Stage(st Stage) *StageReport {
	for _, s := range r.Stages {
		if s.Stage == st {
			return s
		}
	}
	return nil
}

// Partial reports whether any stage had a partial failure.
func (r *RunReport) Partial() bool {
	for _, s := range r.Stages {
		if s.Partial() {
			return true
		}
	}
	return false
}
