package helios

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// layout describes the flat buffers of a network: L layers, each at most mw
// neurons wide, each neuron owning at most mw weights.
type layout struct {
	layers int
	mw     int
}

func (ly layout) weightsLen() int { return ly.layers * ly.mw * ly.mw }
func (ly layout) outputsLen() int { return ly.layers * ly.mw }

// elements is how many float64s the network allocates in total:
// weights, outputs, two derivative slots and two old weight slots.
func (ly layout) elements() (int, error) {
	overflow := errors.Wrapf(ErrResourceExhausted, "%d layers of width %d overflow", ly.layers, ly.mw)
	mw, l := uint64(ly.mw), uint64(ly.layers)
	hi, sq := bits.Mul64(mw, mw)
	if hi != 0 {
		return 0, overflow
	}
	hi, w := bits.Mul64(l, sq)
	if hi != 0 {
		return 0, overflow
	}
	var carry, c uint64
	total := w
	for _, term := range []uint64{l * mw, 2 * mw, sq, sq} {
		total, c = bits.Add64(total, term, 0)
		carry |= c
	}
	if carry != 0 || total > math.MaxInt {
		return 0, overflow
	}
	return int(total), nil
}

func (ly layout) weightAt(l, n, i int) int {
	checkIndex(l, ly.layers)
	checkIndex(n, ly.mw)
	checkIndex(i, ly.mw)
	return l*ly.mw*ly.mw + n*ly.mw + i
}

func (ly layout) outputAt(l, n int) int {
	checkIndex(l, ly.layers)
	checkIndex(n, ly.mw)
	return l*ly.mw + n
}

// layerWeights is the mw*mw block of weights belonging to layer l.
func (ly layout) layerWeights(buf []float64, l int) []float64 {
	start := ly.weightAt(l, 0, 0)
	return buf[start : start+ly.mw*ly.mw : start+ly.mw*ly.mw]
}

// layerOutputs is the mw wide row of outputs belonging to layer l.
func (ly layout) layerOutputs(buf []float64, l int) []float64 {
	start := ly.outputAt(l, 0)
	return buf[start : start+ly.mw : start+ly.mw]
}

// row is neuron n's weights within a layer's block.
func row(block []float64, mw, n int) []float64 {
	checkIndex(n, mw)
	return block[n*mw : n*mw+mw : n*mw+mw]
}

// pingpong is a pair of fixed slots. Which one is read and which one is
// written depends only on the layer index.
type pingpong struct {
	even, odd []float64
}

func newPingpong(size int) pingpong {
	return pingpong{even: make([]float64, size), odd: make([]float64, size)}
}

func (pp pingpong) slot(parity int) []float64 {
	checkIndex(parity, 2)
	if parity == 0 {
		return pp.even
	}
	return pp.odd
}

// readParity is the slot layer l reads what the layer above it wrote.
func readParity(l int) int { return l % 2 }

// writeParity is the slot layer l writes for the layer below it.
func writeParity(l int) int { return 1 - l%2 }
