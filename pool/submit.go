package pool

import "github.com/pkg/errors"

// Submit runs kernel over every job and blocks until all of them are done.
// No kernel call from this batch is still running when Submit returns.
//
// If results is not nil it must have one slot per job: the value the kernel
// writes through its result pointer for jobs[i] ends up in results[i],
// whichever worker ran it. If results is nil the kernel gets a nil result
// pointer.
//
// Jobs may run in any order and in parallel. A kernel must only touch state
// its own job owns.
func Submit[J, R any](p *Pool, jobs []J, kernel func(job *J, result *R), results []R) error {
	if p == nil {
		return errors.WithStack(ErrClosed)
	}
	if kernel == nil {
		return errors.New("pool: nil kernel")
	}
	if results != nil && len(results) != len(jobs) {
		return errors.Wrapf(ErrResultSize, "%d results for %d jobs", len(results), len(jobs))
	}

	b := &batch{count: len(jobs)}
	if results == nil {
		b.run = func(_, job int) { kernel(&jobs[job], nil) }
	} else {
		// one scratch slot per worker; copied out by the coordinator
		scratch := make([]R, p.Workers())
		b.run = func(w, job int) {
			var zero R
			scratch[w] = zero
			kernel(&jobs[job], &scratch[w])
		}
		b.collect = func(w, job int) { results[job] = scratch[w] }
	}
	return p.submit(b)
}

// Map is Submit without results.
func Map[J any](p *Pool, jobs []J, kernel func(job *J)) error {
	if kernel == nil {
		return errors.New("pool: nil kernel")
	}
	return Submit(p, jobs, func(job *J, _ *struct{}) { kernel(job) }, nil)
}
