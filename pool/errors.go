package pool

import "github.com/pkg/errors"

var (
	// ErrInvalidWorkers is returned by New when asked for fewer than one worker.
	ErrInvalidWorkers = errors.New("pool: worker count must be at least 1")

	// ErrBusy is returned when a batch is submitted while another is still in flight.
	ErrBusy = errors.New("pool: a batch is already in flight")

	// ErrClosed is returned when a closed pool is used.
	ErrClosed = errors.New("pool: closed")

	// ErrResultSize is returned when the result slice does not match the job slice.
	ErrResultSize = errors.New("pool: result slice length does not match job count")

	// ErrKernelPanic wraps a panic recovered from a kernel.
	ErrKernelPanic = errors.New("pool: kernel panicked")
)
