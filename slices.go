package helios

import (
	"github.com/gorgonia/helios/internal/partition"
)

// slice is one worker's share of one layer. Every buffer field is a view
// into the network's flat buffers; the slice owns nothing.
type slice struct {
	Range
	layer int
	mw    int

	fanIn     int // inputs per neuron, bias excluded
	nextWidth int // width of the layer above, 0 for the output layer
	bias      bool
	ifactor   float64
	alpha     float64
	act       Activator

	in      []float64 // this layer's inputs. Points at the raw input for layer 0
	out     []float64 // this layer's outputs row
	weights []float64 // this layer's mw*mw weight block

	derrR, derrW []float64 // derivatives of the layer above, and this layer's
	oldwR, oldwW []float64 // old weights of the layer above, and this layer's

	target []float64 // set on the output layer before a backward pass
}

// buildTable splits every layer across workers and points each share at the
// right buffers for its layer and parity.
func buildTable(conf *Config, ly layout, weights, outputs []float64, derr, oldw pingpong) [][]slice {
	table := make([][]slice, len(conf.Layers))
	for l, width := range conf.Layers {
		ranges := partition.Split(width, conf.Workers)
		table[l] = make([]slice, len(ranges))

		var in []float64
		if l > 0 {
			in = ly.layerOutputs(outputs, l-1)[:conf.fanIn(l)]
		}
		var nextWidth int
		if l+1 < len(conf.Layers) {
			nextWidth = conf.Layers[l+1]
		}

		for t, r := range ranges {
			checkRange(r, ly.mw)
			table[l][t] = slice{
				Range:     r,
				layer:     l,
				mw:        ly.mw,
				fanIn:     conf.fanIn(l),
				nextWidth: nextWidth,
				bias:      conf.Bias,
				ifactor:   conf.ifactor(l),
				alpha:     conf.Alpha,
				act:       conf.Activation,
				in:        in,
				out:       ly.layerOutputs(outputs, l),
				weights:   ly.layerWeights(weights, l),
				derrR:     derr.slot(readParity(l)),
				derrW:     derr.slot(writeParity(l)),
				oldwR:     oldw.slot(readParity(l)),
				oldwW:     oldw.slot(writeParity(l)),
			}
		}
	}
	return table
}

// setInput points every share of layer 0 at the input vector.
func setInput(shares []slice, input []float64) {
	for i := range shares {
		shares[i].in = input
	}
}

// setTarget points every share of the output layer at the labels.
func setTarget(shares []slice, target []float64) {
	for i := range shares {
		shares[i].target = target
	}
}
