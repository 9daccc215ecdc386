package spreads

import (
	"github.com/bft-labs/spreads/pkg/log"
)

// Logger is the structured logger used by the engine and handed to hooks.
type Logger = log.Logger

// LogField is a structured log field.
type LogField = log.Field

// Option configures a Workflow.
type Option func(*options)

type hookRegistration struct {
	stage Stage
	hook  Hook
	order int
}

// options holds the optional configuration for a Workflow.
type options struct {
	logger       log.Logger
	eventHandler EventHandler
	hooks        []hookRegistration
	policy       PartialFailurePolicy
	workers      int
}

func defaultOptions() options {
	return options{
		logger: log.NewNop(),
		policy: ContinueOnPartialFailure,
	}
}

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for workflow events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithHook registers hook for stage with order 0.
func WithHook(stage Stage, hook Hook) Option {
	return WithOrderedHook(stage, hook, 0)
}

// WithOrderedHook registers hook for stage. Lower orders run first.
func WithOrderedHook(stage Stage, hook Hook, order int) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hookRegistration{stage: stage, hook: hook, order: order})
	}
}

// WithPartialFailurePolicy sets how a StagePartialFailure affects the run.
func WithPartialFailurePolicy(p PartialFailurePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithWorkers sets the parallelism hint passed to hooks. Zero means one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
