package helios

import (
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gorgonia/helios/internal/partition"
	"github.com/gorgonia/helios/pool"
	"github.com/pkg/errors"
)

// Network is a feed forward network whose layers are computed in parallel by
// a fixed set of workers.
//
// A Network is not meant to be shared: Train, Classify and friends called
// while another call is in progress return ErrMisuse rather than wait.
type Network struct {
	mu    sync.Mutex // held for the whole of a Train, Classify or Close
	state atomic.Int32

	conf   Config
	ly     layout
	logger *log.Logger

	weights []float64
	outputs []float64
	derr    pingpong
	oldw    pingpong

	table [][]slice // layer × worker
	pool  *pool.Pool
}

// New builds a network from conf and initializes its weights. If anything
// fails along the way, whatever was created is released and no network is
// returned.
func New(conf Config) (*Network, error) {
	conf = conf.clone()
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	ly := layout{layers: len(conf.Layers), mw: conf.MaxWidth}
	elements, err := ly.elements()
	if err != nil {
		return nil, err
	}
	limit := conf.MaxElements
	if limit == 0 {
		limit = DefaultMaxElements
	}
	if elements > limit {
		return nil, errors.Wrapf(ErrResourceExhausted, "%d elements needed, at most %d allowed", elements, limit)
	}

	logger := conf.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	net := &Network{
		conf:   conf,
		ly:     ly,
		logger: logger,
	}

	var m maebe
	m.do(net.alloc)
	m.do(net.startPool)
	m.do(net.buildTable)
	m.do(net.initWeights)
	if m.err != nil {
		logger.Printf("construction failed, rolling back: %v", m.err)
		if err := net.release(); err != nil {
			return nil, manyErr{m.err, err}
		}
		return nil, m.err
	}

	net.state.Store(int32(Ready))
	logger.Printf("network %v over %d inputs ready on %d workers (%d elements)", conf.Layers, conf.Dimensionality, conf.Workers, elements)
	return net, nil
}

func (net *Network) alloc() error {
	net.weights = make([]float64, net.ly.weightsLen())
	net.outputs = make([]float64, net.ly.outputsLen())
	net.derr = newPingpong(net.ly.mw)
	net.oldw = newPingpong(net.ly.mw * net.ly.mw)
	net.state.Store(int32(Allocated))
	return nil
}

func (net *Network) startPool() (err error) {
	opts := []pool.Option{pool.WithLogger(net.logger)}
	if net.conf.Metrics != nil {
		opts = append(opts, pool.WithMetrics(net.conf.Metrics))
	}
	net.pool, err = pool.New(net.conf.Workers, opts...)
	return err
}

func (net *Network) buildTable() error {
	net.table = buildTable(&net.conf, net.ly, net.weights, net.outputs, net.derr, net.oldw)
	return nil
}

func (net *Network) initWeights() error {
	fill := net.conf.Init
	if fill == nil {
		fill = UniformInit(net.conf.Seed)
	}
	for l, width := range net.conf.Layers {
		block := net.ly.layerWeights(net.weights, l)
		fanIn, rowLen := net.conf.fanIn(l), net.conf.rowLen(l)
		for n := 0; n < width; n++ {
			if err := fill(l, n, fanIn, row(block, net.ly.mw, n)[:rowLen]); err != nil {
				return errors.Wrapf(err, "initializing neuron %d of layer %d", n, l)
			}
		}
	}
	return nil
}

// release closes the pool and drops every buffer.
func (net *Network) release() error {
	var err error
	if net.pool != nil {
		err = net.pool.Close()
		net.pool = nil
	}
	net.table = nil
	net.weights, net.outputs = nil, nil
	net.derr, net.oldw = pingpong{}, pingpong{}
	return err
}

// acquire takes the network for one call. The caller must unlock net.mu.
func (net *Network) acquire() error {
	if !net.mu.TryLock() {
		return errors.WithStack(ErrMisuse)
	}
	if net.State() != Ready {
		net.mu.Unlock()
		return errors.WithStack(ErrClosed)
	}
	return nil
}

// forward runs one example through every layer, one batch per layer.
func (net *Network) forward(input []float64) error {
	setInput(net.table[0], input)
	for l := range net.table {
		if err := pool.Map(net.pool, net.table[l], feedForward); err != nil {
			return errors.Wrapf(err, "forward pass, layer %d", l)
		}
	}
	return nil
}

// backward propagates the error against target from the output layer down
// and adjusts the weights. It expects the outputs of a forward pass on the
// same example.
func (net *Network) backward(target []float64) error {
	last := len(net.table) - 1
	setTarget(net.table[last], target)
	defer setTarget(net.table[last], nil)

	if err := pool.Map(net.pool, net.table[last], outputBackprop); err != nil {
		return errors.Wrapf(err, "backward pass, layer %d", last)
	}
	for l := last - 1; l >= 0; l-- {
		if err := pool.Map(net.pool, net.table[l], hiddenBackprop); err != nil {
			return errors.Wrapf(err, "backward pass, layer %d", l)
		}
	}
	return nil
}

func (net *Network) checkInputs(inputs [][]float64) error {
	for i, in := range inputs {
		if len(in) != net.conf.Dimensionality {
			return errors.Wrapf(ErrShape, "example %d has %d features, expected %d", i, len(in), net.conf.Dimensionality)
		}
	}
	return nil
}

func (net *Network) checkOutputs(what string, outs [][]float64) error {
	for i, out := range outs {
		if len(out) != net.Outputs() {
			return errors.Wrapf(ErrShape, "%s %d has %d values, expected %d", what, i, len(out), net.Outputs())
		}
	}
	return nil
}

// Train runs one forward and one backward pass per example, in order. The
// weights are adjusted after every example.
//
// Shapes are checked before anything is trained.
func (net *Network) Train(inputs, labels [][]float64) error {
	if err := net.acquire(); err != nil {
		return err
	}
	defer net.mu.Unlock()
	defer setInput(net.table[0], nil)

	if len(inputs) != len(labels) {
		return errors.Wrapf(ErrShape, "%d inputs but %d labels", len(inputs), len(labels))
	}
	if err := net.checkInputs(inputs); err != nil {
		return err
	}
	if err := net.checkOutputs("label", labels); err != nil {
		return err
	}

	for i := range inputs {
		if err := net.forward(inputs[i]); err != nil {
			return errors.Wrapf(err, "example %d", i)
		}
		if err := net.backward(labels[i]); err != nil {
			return errors.Wrapf(err, "example %d", i)
		}
	}
	return nil
}

// Classify runs a forward pass per example and copies the output layer into
// results[i], which must be Outputs() long.
func (net *Network) Classify(inputs, results [][]float64) error {
	if err := net.acquire(); err != nil {
		return err
	}
	defer net.mu.Unlock()
	defer setInput(net.table[0], nil)

	if len(inputs) != len(results) {
		return errors.Wrapf(ErrShape, "%d inputs but %d result slots", len(inputs), len(results))
	}
	if err := net.checkInputs(inputs); err != nil {
		return err
	}
	if err := net.checkOutputs("result", results); err != nil {
		return err
	}

	last := len(net.conf.Layers) - 1
	for i := range inputs {
		if err := net.forward(inputs[i]); err != nil {
			return errors.Wrapf(err, "example %d", i)
		}
		copy(results[i], net.ly.layerOutputs(net.outputs, last))
	}
	return nil
}

// Predict classifies a single input.
func (net *Network) Predict(input []float64) ([]float64, error) {
	retVal := make([]float64, net.Outputs())
	if err := net.Classify([][]float64{input}, [][]float64{retVal}); err != nil {
		return nil, err
	}
	return retVal, nil
}

// Loss is the mean squared error of the network over the given examples.
// It does not train.
func (net *Network) Loss(inputs, labels [][]float64) (float64, error) {
	results := make([][]float64, len(inputs))
	for i := range results {
		results[i] = make([]float64, net.Outputs())
	}
	if len(inputs) != len(labels) {
		return 0, errors.Wrapf(ErrShape, "%d inputs but %d labels", len(inputs), len(labels))
	}
	if err := net.checkOutputs("label", labels); err != nil {
		return 0, err
	}
	if err := net.Classify(inputs, results); err != nil {
		return 0, err
	}
	if len(inputs) == 0 {
		return 0, nil
	}

	var sum float64
	for i, out := range results {
		for j, o := range out {
			d := labels[i][j] - o
			sum += d * d
		}
	}
	return sum / float64(len(inputs)*net.Outputs()), nil
}

// Weights returns a copy of the weights, indexed by layer, neuron and input.
// When the network has biases, the bias weight is the last one of each neuron.
func (net *Network) Weights() ([][][]float64, error) {
	if err := net.acquire(); err != nil {
		return nil, err
	}
	defer net.mu.Unlock()

	retVal := make([][][]float64, len(net.conf.Layers))
	for l, width := range net.conf.Layers {
		block := net.ly.layerWeights(net.weights, l)
		rowLen := net.conf.rowLen(l)
		retVal[l] = make([][]float64, width)
		for n := range retVal[l] {
			retVal[l][n] = append([]float64(nil), row(block, net.ly.mw, n)[:rowLen]...)
		}
	}
	return retVal, nil
}

// State returns where the network is in its lifecycle.
func (net *Network) State() State { return State(net.state.Load()) }

// Config returns a copy of the configuration the network was built with.
func (net *Network) Config() Config { return net.conf.clone() }

// Dimensionality is the number of inputs the network expects per example.
func (net *Network) Dimensionality() int { return net.conf.Dimensionality }

// Outputs is the number of values the network produces per example.
func (net *Network) Outputs() int { return net.conf.Outputs() }

// Workers is the number of workers the layers are split across.
func (net *Network) Workers() int { return net.conf.Workers }

// Partition returns the neuron range each worker owns in the given layer, or
// nil if there is no such layer.
func (net *Network) Partition(layer int) []Range {
	if layer < 0 || layer >= len(net.conf.Layers) {
		return nil
	}
	return partition.Split(net.conf.Layers[layer], net.conf.Workers)
}

// Close stops the workers, after any call in progress, and releases the
// buffers. Closing twice returns ErrClosed.
func (net *Network) Close() error {
	net.mu.Lock()
	defer net.mu.Unlock()
	if net.State() == Destroyed {
		return errors.WithStack(ErrClosed)
	}

	var errs manyErr
	if err := net.release(); err != nil {
		errs = append(errs, errors.Wrap(err, "closing pool"))
	}
	net.state.Store(int32(Destroyed))
	net.logger.Printf("network %v closed", net.conf.Layers)
	if len(errs) > 0 {
		return errs
	}
	return nil
}
