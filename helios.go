// Package helios is a goroutine-parallel feed forward neural network trainer.
//
// Every layer's neurons are split into one contiguous range per worker. A
// forward or backward pass submits one batch per layer to a blocking worker
// pool (see package pool), so a layer never starts before the one it depends
// on has fully finished. Weights, outputs and error derivatives live in flat
// buffers shared by all workers; since the ranges never overlap, no locking is
// needed on them.
package helios

import (
	"github.com/gorgonia/helios/internal/partition"
)

// Activator is an activation function paired with its derivative. Prime is
// given the already activated value: for the logistic function,
// Prime(y) = y*(1-y).
//
// Activators are called from many goroutines at once and must not keep state.
type Activator interface {
	Activate(x float64) float64
	Prime(y float64) float64
}

// Range is a half-open interval [Start, End) of neuron indices.
type Range = partition.Range

// State is the lifecycle state of a Network.
type State int

const (
	Uninitialized State = iota
	Allocated
	Ready
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Allocated:
		return "Allocated"
	case Ready:
		return "Ready"
	case Destroyed:
		return "Destroyed"
	}
	return "UNKNOWN STATE"
}
