package helios

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// WeightInit fills w with the initial weights of neuron n of layer l.
// fanIn is the number of inputs feeding the neuron; when the network has
// biases, w has one more element for the bias weight.
//
// Initializers are called sequentially, layer by layer and neuron by neuron.
// Returning an error aborts construction.
type WeightInit func(layer, neuron, fanIn int, w []float64) error

// UniformInit draws every weight from U(-1/√fanIn, 1/√fanIn) using a source
// seeded with seed. Two networks built with the same seed and the same
// layers start from the same weights.
func UniformInit(seed uint64) WeightInit {
	src := rand.NewSource(seed)
	return func(_, _, fanIn int, w []float64) error {
		lim := 1 / math.Sqrt(float64(fanIn))
		dist := distuv.Uniform{Min: -lim, Max: lim, Src: src}
		for i := range w {
			w[i] = dist.Rand()
		}
		return nil
	}
}
