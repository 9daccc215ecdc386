// Package pool runs a batch of page tasks on a bounded set of workers.
package pool

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/pkg/log"
)

// Func processes one task. It returns the outcome for the task's page; a
// non-nil Outcome.Err marks the page as failed.
type Func func(ctx context.Context, task domain.ProcessingTask) domain.Outcome

// Pool fans a batch out across worker goroutines and joins on completion.
type Pool struct {
	workers int
	logger  log.Logger
}

// New creates a pool. workers <= 0 means one worker per available CPU.
func New(workers int, logger log.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pool{workers: workers, logger: logger}
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.workers
}

type result struct {
	page    domain.Page
	outcome domain.Outcome
}

// Run enqueues every task, starts the workers and blocks until each task has
// an outcome. A panic inside fn fails only that task.
//
// After ctx is cancelled no further task is started; those tasks are
// recorded as domain.ErrCancelled. Tasks already running finish with a
// context that is not cancelled, so no output is left half-written.
func (p *Pool) Run(ctx context.Context, tasks []domain.ProcessingTask, fn Func) domain.BatchResult {
	res := make(domain.BatchResult, len(tasks))
	if len(tasks) == 0 {
		return res
	}

	queue := make(chan domain.ProcessingTask, len(tasks))
	for _, t := range tasks {
		queue <- t
	}
	close(queue)

	workers := p.workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	results := make(chan result, len(tasks))
	runCtx := context.WithoutCancel(ctx)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for task := range queue {
				if ctx.Err() != nil {
					results <- result{page: task.Page, outcome: domain.Outcome{Err: domain.ErrCancelled}}
					continue
				}
				results <- result{page: task.Page, outcome: p.runOne(runCtx, id, task, fn)}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		res[r.page] = r.outcome
	}

	p.logger.Debug("batch joined",
		log.Int("tasks", len(tasks)),
		log.Int("workers", workers),
		log.Int("failed", len(tasks)-res.Succeeded()),
		log.Duration("elapsed", time.Since(start)))
	return res
}

// runOne isolates a single task from panics.
func (p *Pool) runOne(ctx context.Context, worker int, task domain.ProcessingTask, fn Func) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker panic",
				log.Int("worker", worker),
				log.String("page", task.Page.Name()),
				log.Any("panic", r),
				log.String("stack", string(debug.Stack())))
			out = domain.Outcome{Err: fmt.Errorf("%w: panic: %v", domain.ErrWorker, r)}
		}
	}()
	return fn(ctx, task)
}
