package helios

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidConfig is returned by New when the configuration breaks a bound.
	ErrInvalidConfig = errors.New("helios: invalid configuration")

	// ErrResourceExhausted is returned by New when the buffers would be too large to allocate.
	ErrResourceExhausted = errors.New("helios: resource exhausted")

	// ErrMisuse is returned when a network is used from two goroutines at once.
	ErrMisuse = errors.New("helios: network is already in use")

	// ErrClosed is returned when a closed network is used.
	ErrClosed = errors.New("helios: network is closed")

	// ErrShape is returned when inputs, labels or results do not match the network.
	ErrShape = errors.New("helios: shape mismatch")
)

type manyErr []error

func (err manyErr) Error() string {
	var buf bytes.Buffer
	for _, e := range err {
		fmt.Fprintln(&buf, e.Error())
	}
	return buf.String()
}

func (err manyErr) Unwrap() []error { return err }

// maebe runs a sequence of steps, skipping everything after the first failure.
type maebe struct {
	err error
}

func (m *maebe) do(f func() error) {
	if m.err != nil {
		return
	}
	if m.err = f(); m.err != nil {
		m.err = errors.WithStack(m.err)
	}
}
