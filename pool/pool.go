// Package pool is a small blocking, mapping worker pool. A batch of jobs is
// handed to a fixed set of worker goroutines and the caller blocks until every
// job of the batch is done. You can get super far with this kind of simple
// parallelism.
package pool

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Pool is a fixed set of workers coordinated by a single mutex and condition
// variable. A Pool runs at most one batch at a time.
type Pool struct {
	mu   sync.Mutex
	cond *sync.Cond // signals any change of worker or pool state

	workers      []worker
	initializing int // workers that have not yet reported ready
	running      bool
	closed       bool
	b            *batch

	wg      sync.WaitGroup
	logger  *log.Logger
	metrics *Metrics
}

// batch is one submission. run executes a job on behalf of a worker; collect,
// if not nil, is called by the coordinator (holding the lock) once the worker
// that ran job is idle again.
type batch struct {
	count   int
	run     func(worker, job int)
	collect func(worker, job int)
}

// New starts a pool with the given number of workers. It returns once every
// worker is up and waiting for work.
func New(workers int, opts ...Option) (*Pool, error) {
	if workers < 1 {
		return nil, errors.Wrapf(ErrInvalidWorkers, "got %d", workers)
	}
	retVal := &Pool{
		workers: make([]worker, workers),
		logger:  log.New(io.Discard, "", 0),
	}
	retVal.cond = sync.NewCond(&retVal.mu)
	for _, opt := range opts {
		opt(retVal)
	}

	retVal.mu.Lock()
	for i := range retVal.workers {
		w := &retVal.workers[i]
		w.id = i
		w.pool = retVal
		w.status = Idle
		retVal.initializing++
		retVal.wg.Add(1)
		go w.loop()
	}
	for retVal.initializing > 0 {
		retVal.cond.Wait()
	}
	retVal.mu.Unlock()

	retVal.logger.Printf("pool started with %d workers", workers)
	return retVal, nil
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int { return len(p.workers) }

// Statuses returns a snapshot of every worker's status.
func (p *Pool) Statuses() []Status {
	p.mu.Lock()
	retVal := make([]Status, len(p.workers))
	for i := range p.workers {
		retVal[i] = p.workers[i].status
	}
	p.mu.Unlock()
	return retVal
}

// submit runs b to completion. It is the coordinator: every pass over the
// workers collects finished jobs and hands out the remaining ones.
func (p *Pool) submit(b *batch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.running {
		return ErrBusy
	}
	p.running = true
	p.b = b
	start := time.Now()

	var submitted, done, failed int
	var firstErr error
	for done < b.count {
		signal := false
		for i := range p.workers {
			w := &p.workers[i]
			if w.status != Idle {
				continue
			}
			if w.finished {
				if w.err != nil {
					if firstErr == nil {
						firstErr = w.err
					}
					failed++
					w.err = nil
				} else if b.collect != nil {
					b.collect(w.id, w.job)
				}
				w.finished = false
				done++
				p.metrics.jobDone()
			}
			if submitted < b.count {
				w.job = submitted
				w.status = Executing
				submitted++
				signal = true
				p.metrics.jobStarted()
			}
		}
		if signal {
			p.cond.Broadcast()
		}
		// once everything is in, nobody is going to wake us
		if done < b.count {
			p.cond.Wait()
		}
	}

	p.b = nil
	p.running = false
	p.cond.Broadcast()
	p.metrics.batchDone(time.Since(start))

	if firstErr != nil {
		return errors.Wrapf(firstErr, "%d of %d jobs failed", failed, b.count)
	}
	return nil
}

// Close waits for any in-flight batch, stops every worker and waits for
// them to exit. Submitting to a closed pool returns ErrClosed.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.closed = true
	for p.running {
		p.cond.Wait()
	}
	for i := range p.workers {
		w := &p.workers[i]
		for w.status == Executing {
			p.cond.Wait()
		}
		w.status = Stopped
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Printf("pool stopped %d workers", len(p.workers))
	return nil
}
