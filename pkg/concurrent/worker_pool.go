package concurrent

import (
	"sync"
)

type JobFunc[T any] func(job T) error

// Pool fans a fixed batch of jobs out over a set of worker goroutines
// and collects per-job errors. Jobs mutate their own disjoint state, so
// the pool itself only synchronizes lifecycle and error delivery.
type Pool[T any] struct {
	numWorkers int
	jobs       chan T
	errs       chan error
	wg         sync.WaitGroup
}

// NewPool creates a pool. queueSize must be at least the number of jobs
// that will be submitted, so workers never block on the error channel.
func NewPool[T any](numWorkers, queueSize int) *Pool[T] {
	return &Pool[T]{
		numWorkers: numWorkers,
		jobs:       make(chan T, queueSize),
		errs:       make(chan error, queueSize),
	}
}

func (p *Pool[T]) worker(jobFunc JobFunc[T]) {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := jobFunc(job); err != nil {
			p.errs <- err
		}
	}
}

func (p *Pool[T]) Start(jobFunc JobFunc[T]) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(jobFunc)
	}
}

func (p *Pool[T]) Submit(job T) {
	p.jobs <- job
}

// Close marks the batch complete. No Submit may follow.
func (p *Pool[T]) Close() {
	close(p.jobs)
}

// Wait blocks until every worker has drained the queue and returns the
// closed error channel for collection.
func (p *Pool[T]) Wait() chan error {
	p.wg.Wait()
	close(p.errs)
	return p.errs
}
