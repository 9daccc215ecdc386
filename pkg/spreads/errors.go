package spreads

import (
	"errors"

	"github.com/bft-labs/spreads/internal/domain"
)

// Engine errors.
var (
	// ErrUnknownStage is returned for a stage name outside Stages().
	ErrUnknownStage = errors.New("spreads: unknown stage")

	// ErrDuplicateHook is returned when a hook name is registered twice for
	// the same stage.
	ErrDuplicateHook = errors.New("spreads: duplicate hook")

	// ErrNilHook is returned when registering a nil hook.
	ErrNilHook = errors.New("spreads: nil hook")

	// ErrHookPanic wraps a panic recovered from a hook.
	ErrHookPanic = errors.New("spreads: hook panicked")

	// ErrStageFailed is returned by Run when a hook failed hard, or when a
	// partial failure met AbortOnPartialFailure.
	ErrStageFailed = errors.New("spreads: stage failed")
)

// Errors shared with the hooks. Match with errors.Is.
var (
	ErrConfiguration  = domain.ErrConfiguration
	ErrPartialFailure = domain.ErrPartialFailure
	ErrDetection      = domain.ErrDetection
	ErrGeometry       = domain.ErrGeometry
	ErrWorker         = domain.ErrWorker
	ErrCancelled      = domain.ErrCancelled
	ErrRunInProgress  = domain.ErrRunInProgress
	ErrNotRunning     = domain.ErrNotRunning
)

// StagePartialFailure lists the pages a hook could not process.
type StagePartialFailure = domain.StagePartialFailure

// PageFailure is one entry of a StagePartialFailure.
type PageFailure = domain.PageFailure

// Page is a scanned image within a stage directory.
type Page = domain.Page
