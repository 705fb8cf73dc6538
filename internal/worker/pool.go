package worker

import (
	"context"
	"sync"

	"treinorun-backend/internal/infra/mercadopago"
	"treinorun-backend/internal/logger"
)

// Job is one acknowledged webhook delivery awaiting reconciliation. Its log
// entry is already persisted with a non-terminal status, so a crash before
// the worker finishes stays visible to operators.
type Job struct {
	EntryID string
	Event   mercadopago.Event
}

// HandleFunc processes one job to its terminal outcome.
type HandleFunc func(ctx context.Context, entryID string, ev mercadopago.Event)

// Pool runs webhook reconciliation off the request path. Work enqueued here
// continues even if the provider drops the connection; redelivery is driven
// by the response code, not the connection state.
type Pool struct {
	jobs   chan Job
	handle HandleFunc
	log    *logger.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

func NewPool(workers, buffer int, handle HandleFunc, log *logger.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		jobs:   make(chan Job, buffer),
		handle: handle,
		log:    log,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.safeHandle(job)
	}
}

func (p *Pool) safeHandle(job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("webhook worker panic on entry %s: %v", job.EntryID, r)
		}
	}()
	// Detached from the inbound request context on purpose: once the
	// provider is acknowledged the work must run to completion.
	p.handle(context.Background(), job.EntryID, job.Event)
}

// Enqueue blocks when the buffer is full, applying backpressure to the
// webhook endpoint instead of dropping deliveries.
func (p *Pool) Enqueue(job Job) {
	p.jobs <- job
}

// Stop drains the queue and waits for in-flight jobs.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
