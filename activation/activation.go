// Package activation provides activation functions for helios networks.
//
// Every activation pairs a function with its derivative, where the derivative
// is expressed in terms of the already activated value y = f(x).
package activation

import (
	"fmt"
	"math"
)

// Range is the output range of an activation.
type Range int

const (
	ZeroToOne Range = iota
	NegativeOneToOne
	Unbounded
)

func (r Range) String() string {
	switch r {
	case ZeroToOne:
		return "[0, 1]"
	case NegativeOneToOne:
		return "[-1, 1]"
	case Unbounded:
		return "(-inf, inf)"
	}
	return "UNKNOWN RANGE"
}

// Low and High are the conventional "off" and "on" targets for the range.
func (r Range) Low() float64 {
	if r == NegativeOneToOne {
		return -1
	}
	return 0
}

func (r Range) High() float64 { return 1 }

// Func is an activation function with its derivative.
type Func interface {
	Activate(x float64) float64
	Prime(y float64) float64
	Range() Range
	fmt.Stringer
}

// Lookup maps names to activations.
var Lookup = map[string]Func{
	"sigmoid": Sigmoid{},
	"tanh":    Tanh{},
	"relu":    ReLU{},
	"linear":  Linear{},
}

// Sigmoid is the logistic function.
type Sigmoid struct{}

func (Sigmoid) Activate(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// Prime takes sigmoid(x).
func (Sigmoid) Prime(y float64) float64 { return y * (1 - y) }
func (Sigmoid) Range() Range            { return ZeroToOne }
func (Sigmoid) String() string          { return "sigmoid" }

// Tanh is the hyperbolic tangent.
type Tanh struct{}

func (Tanh) Activate(x float64) float64 { return math.Tanh(x) }

// Prime takes tanh(x).
func (Tanh) Prime(y float64) float64 { return 1 - y*y }
func (Tanh) Range() Range            { return NegativeOneToOne }
func (Tanh) String() string          { return "tanh" }

// ReLU is a rectifier. Its derivative at 0 is taken to be 0.
type ReLU struct{}

func (ReLU) Activate(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func (ReLU) Prime(y float64) float64 {
	if y > 0 {
		return 1
	}
	return 0
}
func (ReLU) Range() Range   { return Unbounded }
func (ReLU) String() string { return "relu" }

// Linear is the identity.
type Linear struct{}

func (Linear) Activate(x float64) float64 { return x }
func (Linear) Prime(y float64) float64    { return 1 }
func (Linear) Range() Range               { return Unbounded }
func (Linear) String() string             { return "linear" }
