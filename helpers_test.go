package helios

import (
	"math"

	"github.com/gorgonia/helios/activation"
)

var (
	orInputs  = [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	orLabels  = [][]float64{{0}, {1}, {1}, {1}}
	xorLabels = [][]float64{{0}, {1}, {1}, {0}}
)

// lcgInit is a tiny linear congruential initializer, so that tests do not
// depend on any particular random source.
func lcgInit(seed uint32) WeightInit {
	x := seed
	return func(_, _, fanIn int, w []float64) error {
		lim := 1 / math.Sqrt(float64(fanIn))
		for i := range w {
			x = 1664525*x + 1013904223
			w[i] = -lim + 2*lim*(float64(x)/4294967296.0)
		}
		return nil
	}
}

func testConf(workers, dims int, layers ...int) Config {
	conf := DefaultConf(dims, layers...)
	conf.Workers = workers
	conf.Init = lcgInit(1337)
	return conf
}

// refNet is a plain sequential rendition of the same training rule.
type refNet struct {
	conf Config
	w    [][][]float64
}

func newRefNet(conf Config, w [][][]float64) *refNet {
	return &refNet{conf: conf, w: w}
}

func (r *refNet) forward(x []float64) [][]float64 {
	outs := make([][]float64, len(r.conf.Layers))
	in := x
	for l, width := range r.conf.Layers {
		outs[l] = make([]float64, width)
		fanIn := r.conf.fanIn(l)
		for n := 0; n < width; n++ {
			var sum float64
			for i := 0; i < fanIn; i++ {
				sum += r.w[l][n][i] * in[i]
			}
			if r.conf.Bias {
				sum += r.w[l][n][fanIn]
			}
			outs[l][n] = r.conf.Activation.Activate(r.conf.ifactor(l) * sum)
		}
		in = outs[l]
	}
	return outs
}

func (r *refNet) train(x, t []float64) {
	outs := r.forward(x)
	var dNext []float64
	var oldNext [][]float64
	for l := len(r.conf.Layers) - 1; l >= 0; l-- {
		in := x
		if l > 0 {
			in = outs[l-1]
		}
		fanIn := r.conf.fanIn(l)
		d := make([]float64, r.conf.Layers[l])
		old := make([][]float64, r.conf.Layers[l])
		for n := range d {
			o := outs[l][n]
			if l == len(r.conf.Layers)-1 {
				d[n] = (t[n] - o) * r.conf.Activation.Prime(o)
			} else {
				var acc float64
				for next := range dNext {
					acc += dNext[next] * oldNext[next][n]
				}
				d[n] = acc * r.conf.Activation.Prime(o)
			}
			old[n] = append([]float64(nil), r.w[l][n]...)
			step := r.conf.Alpha * d[n]
			for i := 0; i < fanIn; i++ {
				r.w[l][n][i] += step * in[i]
			}
			if r.conf.Bias {
				r.w[l][n][fanIn] += step
			}
		}
		dNext, oldNext = d, old
	}
}

var _ Activator = activation.Sigmoid{}
