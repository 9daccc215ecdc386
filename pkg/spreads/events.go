package spreads

import (
	"time"

	"github.com/bft-labs/spreads/internal/app"
)

// State is the lifecycle state of a Workflow.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelling
	StateCompleted
	StateFailed
)

func (s State) String() string {
	return app.State(s).String()
}

func convertState(s app.State) State {
	switch s {
	case app.StateRunning:
		return StateRunning
	case app.StateCancelling:
		return StateCancelling
	case app.StateCompleted:
		return StateCompleted
	case app.StateFailed:
		return StateFailed
	default:
		return StateIdle
	}
}

// EventHandler observes a Workflow. Methods are called synchronously from
// the goroutine executing Run and should return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnHookFinished(event HookEvent)
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// HookEvent describes one finished hook invocation.
type HookEvent struct {
	RunID    string
	Stage    Stage
	Hook     string
	Status   HookStatus
	Err      error
	Duration time.Duration
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interface.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) hookFinished(ev HookEvent) {
	if e.handler == nil {
		return
	}
	e.handler.OnHookFinished(ev)
}
