package app

import (
	"context"
	"sync"

	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/pkg/log"
)

// State is the lifecycle state of a workflow.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelling
	StateCompleted
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateCancelling:
		return "Cancelling"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Finished reports whether s ends a run.
func (s State) Finished() bool {
	return s == StateCompleted || s == StateFailed
}

// Lifecycle is the state machine guarding workflow runs. Only one run may be
// active at a time.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	cancel       context.CancelFunc
	logger       log.Logger
	eventEmitter EventEmitter
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// NewLifecycle creates a lifecycle in StateIdle.
func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Lifecycle{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to newState if the transition is allowed.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state
	if err := validTransition(oldState, newState); err != nil {
		l.mu.Unlock()
		return err
	}
	l.state = newState
	l.mu.Unlock()

	l.emit(oldState, newState, reason)
	return nil
}

// emit runs outside the lock so handlers may query State.
func (l *Lifecycle) emit(oldState, newState State, reason string) {
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}
	l.logger.Debug("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)
}

func validTransition(from, to State) error {
	switch from {
	case StateIdle, StateCompleted, StateFailed:
		if to != StateRunning {
			return domain.ErrNotRunning
		}
	case StateRunning:
		if to != StateCancelling && !to.Finished() {
			return domain.ErrRunInProgress
		}
	case StateCancelling:
		if !to.Finished() {
			return domain.ErrRunInProgress
		}
	}
	return nil
}

// Begin atomically moves an idle or finished lifecycle into StateRunning and
// stores cancel for a later Cancel.
func (l *Lifecycle) Begin(cancel context.CancelFunc, reason string) error {
	l.mu.Lock()
	oldState := l.state
	if err := validTransition(oldState, StateRunning); err != nil {
		l.mu.Unlock()
		return err
	}
	l.state = StateRunning
	l.cancel = cancel
	l.mu.Unlock()

	l.emit(oldState, StateRunning, reason)
	return nil
}

// Cancel requests cancellation of the active run. In-flight work is allowed
// to finish; no new work is started.
func (l *Lifecycle) Cancel(reason string) error {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if err := l.TransitionTo(StateCancelling, reason); err != nil {
		return err
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

// Finish ends the active run in StateCompleted or StateFailed.
func (l *Lifecycle) Finish(failed bool, reason string) error {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if failed {
		return l.TransitionTo(StateFailed, reason)
	}
	return l.TransitionTo(StateCompleted, reason)
}
