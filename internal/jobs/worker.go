package jobs

import (
	"context"
	"sync"

	"blogforge/internal/core"
	"blogforge/internal/logger"
)

// GenerateFunc runs one full generation request. The pool deliberately takes
// a function rather than the pipeline controller so tests can substitute
// trivial work; in production every worker shares the same controller, whose
// LLM invoker serializes requests through the process-wide throttle.
type GenerateFunc func(ctx context.Context, topic string, keywords []string) (*core.IterationOutcome, error)

// Pool runs queued jobs on a fixed number of workers.
type Pool struct {
	queue    *Queue
	generate GenerateFunc
	workers  int
	wg       sync.WaitGroup
}

func NewPool(queue *Queue, workers int, generate GenerateFunc) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		queue:    queue,
		generate: generate,
		workers:  workers,
	}
}

// Start launches the workers. They exit when the queue is closed and drained
// or when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Wait blocks until all workers have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, worker int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-p.queue.pending:
			if !ok {
				return
			}
			p.process(ctx, worker, id)
		}
	}
}

func (p *Pool) process(ctx context.Context, worker int, id string) {
	job, ok := p.queue.Get(id)
	if !ok {
		return
	}

	p.queue.markRunning(id)
	logger.Info("job started", "worker", worker, "job_id", id, "topic", job.Topic)

	outcome, err := p.generate(ctx, job.Topic, job.Keywords)
	p.queue.complete(id, outcome, err)

	if err != nil {
		logger.Error("job failed", err, "worker", worker, "job_id", id)
		return
	}
	logger.Info("job completed",
		"worker", worker, "job_id", id,
		"best_score", outcome.BestScore, "iterations", outcome.IterationCount)
}
