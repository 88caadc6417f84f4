package pool

import (
	"github.com/pkg/errors"
)

// Status is the state of a single worker.
type Status int

const (
	Idle Status = iota
	Executing
	Stopped
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Executing:
		return "Executing"
	case Stopped:
		return "Stopped"
	}
	return "UNKNOWN STATUS"
}

type worker struct {
	id       int
	status   Status
	job      int   // index of the assigned job
	finished bool  // job ran and has not been collected yet
	err      error // recovered kernel panic, if any
	pool     *Pool
}

func (w *worker) loop() {
	p := w.pool
	defer p.wg.Done()

	p.mu.Lock()
	// holding the lock means we're up. Let the parent know.
	p.initializing--
	p.cond.Broadcast()
	for {
		for w.status == Idle {
			p.cond.Wait()
		}
		if w.status == Stopped {
			break
		}
		b, job := p.b, w.job
		p.mu.Unlock()
		err := w.execute(b, job)
		p.mu.Lock()
		w.err = err
		w.finished = true
		w.status = Idle
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}

func (w *worker) execute(b *batch, job int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrKernelPanic, "job %d on worker %d: %v", job, w.id, r)
			w.pool.logger.Printf("%v", err)
			w.pool.metrics.panicked()
		}
	}()
	b.run(w.id, job)
	return nil
}
