package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy of the process stage. Callers match with errors.Is.
var (
	// ErrDetection means the detector produced no usable rectangle. The hook
	// recovers by cropping to the full image.
	ErrDetection = errors.New("spreads: detection failed")

	// ErrGeometry means the resolved rectangle collapsed to a non-positive
	// size. The hook recovers by using the detected bounding box.
	ErrGeometry = errors.New("spreads: crop geometry collapsed")

	// ErrWorker marks a per-page task failure (I/O, decode, encode, panic).
	ErrWorker = errors.New("spreads: worker failed")

	// ErrConfiguration is fatal to a hook invocation and is returned before
	// any task is submitted.
	ErrConfiguration = errors.New("spreads: invalid configuration")

	// ErrCancelled marks tasks that never started because the run was
	// cancelled.
	ErrCancelled = errors.New("spreads: task not started, run cancelled")

	// ErrPartialFailure is matched by *StagePartialFailure.
	ErrPartialFailure = errors.New("spreads: stage partially failed")
)

// PageFailure names a failed page and why it failed.
type PageFailure struct {
	Page   Page
	Reason error
}

// StagePartialFailure is returned by a hook when some, but not necessarily
// all, pages of a batch failed. Outputs of the successful pages stay on disk.
type StagePartialFailure struct {
	Hook     string
	Total    int
	Failures []PageFailure
}

func (e *StagePartialFailure) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, fmt.Sprintf("%s (%v)", f.Page.Name(), f.Reason))
	}
	return fmt.Sprintf("%s: %d of %d pages failed: %s",
		e.Hook, len(e.Failures), e.Total, strings.Join(names, "; "))
}

// Is lets errors.Is(err, ErrPartialFailure) match.
func (e *StagePartialFailure) Is(target error) bool {
	return target == ErrPartialFailure
}

// Cancelled reports whether any page failed because the run was cancelled
// before it started.
func (e *StagePartialFailure) Cancelled() bool {
	for _, f := range e.Failures {
		if errors.Is(f.Reason, ErrCancelled) {
			return true
		}
	}
	return false
}

// FailedPages returns the file names of the failed pages in index order.
func (e *StagePartialFailure) FailedPages() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Page.Name()
	}
	return names
}

// Workflow lifecycle errors.
var (
	// ErrRunInProgress is returned when a run is started while another run
	// of the same workflow is active.
	ErrRunInProgress = errors.New("spreads: run in progress")

	// ErrNotRunning is returned when cancelling a workflow that is idle.
	ErrNotRunning = errors.New("spreads: not running")
)
