package helios

import (
	"log"
	"math"
	"runtime"

	"github.com/gorgonia/helios/activation"
	"github.com/gorgonia/helios/pool"
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
)

// DefaultMaxElements caps the number of float64s a network may allocate when Config.MaxElements is 0.
const DefaultMaxElements = 1 << 28

// Config configures a Network. It is copied by New; changing it afterwards has no effect on the network.
type Config struct {
	Layers         []int     // widths of each layer, excluding the input layer
	Dimensionality int       // width of the input
	Activation     Activator // the activation and its derivative
	Workers        int       // how many workers to give to this network
	Alpha          float64   // learning rate
	IScale         float64   // input scale
	MaxWidth       int       // upper bound on layer width (>= Dimensionality too)

	Bias     bool      // give every neuron a bias weight fed by a constant 1
	IFactors []float64 // per layer input factors. Derived from IScale when nil

	Init        WeightInit // initial weights. UniformInit(Seed) when nil
	Seed        uint64
	MaxElements int // cap on allocated float64s. DefaultMaxElements when 0

	Logger  *log.Logger
	Metrics *pool.Metrics
}

// DefaultConf returns a sigmoid network configuration for the given input
// dimensionality and layer widths, with as many workers as there are physical
// cores, capped by the widest layer.
func DefaultConf(dimensionality int, layers ...int) Config {
	conf := Config{
		Layers:         append([]int(nil), layers...),
		Dimensionality: dimensionality,
		Activation:     activation.Sigmoid{},
		Workers:        defaultWorkers(layers),
		Alpha:          0.5,
		IScale:         1,
		Bias:           true,
		Seed:           1337,
	}
	conf.MaxWidth = conf.minWidth()
	return conf
}

func defaultWorkers(layers []int) int {
	n := cpuid.CPU.PhysicalCores
	if n < 1 {
		n = runtime.NumCPU()
	}
	widest := 1
	for _, w := range layers {
		widest = max(widest, w)
	}
	return max(1, min(n, widest))
}

// fanIn returns the number of inputs feeding each neuron of layer l, not counting the bias.
func (c Config) fanIn(l int) int {
	if l == 0 {
		return c.Dimensionality
	}
	return c.Layers[l-1]
}

// rowLen is the number of weights each neuron of layer l owns.
func (c Config) rowLen(l int) int {
	if c.Bias {
		return c.fanIn(l) + 1
	}
	return c.fanIn(l)
}

// minWidth is the smallest MaxWidth that satisfies every bound.
func (c Config) minWidth() int {
	retVal := c.Dimensionality
	for l, w := range c.Layers {
		retVal = max(retVal, w, c.rowLen(l))
	}
	return retVal
}

// ifactor is the scale applied to layer l's weighted sum before activation.
func (c Config) ifactor(l int) float64 {
	if c.IFactors != nil {
		return c.IFactors[l]
	}
	if l == len(c.Layers)-1 {
		return c.IScale
	}
	return c.IScale / math.Sqrt(float64(c.fanIn(l)))
}

// Outputs is the width of the last layer.
func (c Config) Outputs() int {
	if len(c.Layers) == 0 {
		return 0
	}
	return c.Layers[len(c.Layers)-1]
}

func (c Config) IsValid() bool { return c.Validate() == nil }

// Validate reports the first bound the configuration breaks. The returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case len(c.Layers) == 0:
		return errors.Wrap(ErrInvalidConfig, "no layers")
	case c.Dimensionality < 1:
		return errors.Wrapf(ErrInvalidConfig, "dimensionality %d", c.Dimensionality)
	case c.Activation == nil:
		return errors.Wrap(ErrInvalidConfig, "no activation")
	case c.Workers < 1:
		return errors.Wrapf(ErrInvalidConfig, "%d workers", c.Workers)
	case math.IsNaN(c.Alpha) || math.IsInf(c.Alpha, 0) || c.Alpha < 0:
		return errors.Wrapf(ErrInvalidConfig, "learning rate %v", c.Alpha)
	case c.IFactors == nil && (math.IsNaN(c.IScale) || math.IsInf(c.IScale, 0)):
		return errors.Wrapf(ErrInvalidConfig, "input scale %v", c.IScale)
	case c.IFactors != nil && len(c.IFactors) != len(c.Layers):
		return errors.Wrapf(ErrInvalidConfig, "%d input factors for %d layers", len(c.IFactors), len(c.Layers))
	case c.MaxElements < 0:
		return errors.Wrapf(ErrInvalidConfig, "max elements %d", c.MaxElements)
	case c.MaxWidth < c.Dimensionality:
		return errors.Wrapf(ErrInvalidConfig, "max width %d is smaller than dimensionality %d", c.MaxWidth, c.Dimensionality)
	}
	for l, w := range c.Layers {
		if w < 1 {
			return errors.Wrapf(ErrInvalidConfig, "layer %d has width %d", l, w)
		}
		if w > c.MaxWidth {
			return errors.Wrapf(ErrInvalidConfig, "layer %d has width %d, more than max width %d", l, w, c.MaxWidth)
		}
		if n := c.rowLen(l); n > c.MaxWidth {
			return errors.Wrapf(ErrInvalidConfig, "layer %d needs %d weights per neuron, more than max width %d", l, n, c.MaxWidth)
		}
	}
	return nil
}

func (c Config) clone() Config {
	retVal := c
	retVal.Layers = append([]int(nil), c.Layers...)
	if c.IFactors != nil {
		retVal.IFactors = append([]float64(nil), c.IFactors...)
	}
	return retVal
}
