package helios

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/gorgonia/helios/activation"
	"github.com/gorgonia/helios/pool"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func train(t *testing.T, net *Network, inputs, labels [][]float64, epochs int) {
	t.Helper()
	for e := 0; e < epochs; e++ {
		if err := net.Train(inputs, labels); err != nil {
			t.Fatalf("epoch %d: %+v", e, err)
		}
	}
}

func classify(t *testing.T, net *Network, inputs [][]float64) []float64 {
	t.Helper()
	results := make([][]float64, len(inputs))
	for i := range results {
		results[i] = make([]float64, net.Outputs())
	}
	require.NoError(t, net.Classify(inputs, results))
	retVal := make([]float64, len(results))
	for i := range results {
		retVal[i] = results[i][0]
	}
	return retVal
}

func TestOR(t *testing.T) {
	defer leaktest.Check(t)()
	// more workers than neurons: one share is empty
	net, err := New(testConf(2, 2, 1))
	require.NoError(t, err)
	defer net.Close()

	train(t, net, orInputs, orLabels, 5000)
	out := classify(t, net, orInputs)
	t.Logf("OR: %v", out)
	assert.Less(t, out[0], 0.05)
	for _, o := range out[1:] {
		assert.Greater(t, o, 0.95)
	}
}

func TestXOR(t *testing.T) {
	if testing.Short() {
		t.Skip("long training run")
	}
	defer leaktest.Check(t)()
	net, err := New(testConf(3, 2, 3, 1))
	require.NoError(t, err)
	defer net.Close()

	train(t, net, orInputs, xorLabels, 10000)
	out := classify(t, net, orInputs)
	t.Logf("XOR: %v", out)
	assert.Less(t, out[0], 0.05)
	assert.Greater(t, out[1], 0.95)
	assert.Greater(t, out[2], 0.95)
	assert.Less(t, out[3], 0.05)
}

func randomExamples(r *rand.Rand, count, dims, outs int) (inputs, labels [][]float64) {
	for i := 0; i < count; i++ {
		in := make([]float64, dims)
		for j := range in {
			in[j] = r.Float64()*2 - 1
		}
		label := make([]float64, outs)
		for j := range label {
			label[j] = r.Float64()
		}
		inputs = append(inputs, in)
		labels = append(labels, label)
	}
	return
}

func TestMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewSource(1337))
	inputs, labels := randomExamples(r, 6, 3, 2)

	for _, workers := range []int{1, 2, 3, 4} {
		conf := testConf(workers, 3, 4, 3, 2)
		net, err := New(conf)
		require.NoError(t, err)

		w, err := net.Weights()
		require.NoError(t, err)
		ref := newRefNet(conf, w)

		for e := 0; e < 5; e++ {
			require.NoError(t, net.Train(inputs, labels))
			for i := range inputs {
				ref.train(inputs[i], labels[i])
			}
		}

		got, err := net.Weights()
		require.NoError(t, err)
		for l := range got {
			for n := range got[l] {
				assert.True(t, floats.EqualApprox(ref.w[l][n], got[l][n], 1e-12), "workers %d, layer %d neuron %d: want %v got %v", workers, l, n, ref.w[l][n], got[l][n])
			}
		}
		require.NoError(t, net.Close())
	}
}

func TestDeterminism(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	inputs, labels := randomExamples(r, 20, 5, 3)

	run := func() [][][]float64 {
		conf := DefaultConf(5, 7, 6, 3)
		conf.Workers = 3
		conf.Activation = activation.Tanh{}
		net, err := New(conf)
		require.NoError(t, err)
		defer net.Close()
		train(t, net, inputs, labels, 30)
		w, err := net.Weights()
		require.NoError(t, err)
		return w
	}
	assert.Equal(t, run(), run())
}

func TestPartition(t *testing.T) {
	for width := 1; width <= 12; width++ {
		for workers := 1; workers <= width; workers++ {
			conf := testConf(workers, 2, width, 1)
			net, err := New(conf)
			require.NoError(t, err)

			seen := make([]int, width)
			for i, r := range net.Partition(0) {
				assert.Equal(t, r, net.table[0][i].Range)
				for n := r.Start; n < r.End; n++ {
					seen[n]++
				}
			}
			for n, c := range seen {
				assert.Equal(t, 1, c, "width %d, workers %d: neuron %d owned %d times", width, workers, n, c)
			}
			assert.Len(t, net.table[0], workers)
			assert.Nil(t, net.Partition(2))
			require.NoError(t, net.Close())
		}
	}
}

func TestPingpong(t *testing.T) {
	net, err := New(testConf(2, 2, 3, 1))
	require.NoError(t, err)
	defer net.Close()

	// the hidden layer reads exactly what the output layer writes
	assert.Same(t, &net.table[1][0].oldwW[0], &net.table[0][1].oldwR[0])
	assert.Same(t, &net.table[1][0].derrW[0], &net.table[0][0].derrR[0])
	assert.NotSame(t, &net.table[0][0].oldwR[0], &net.table[0][0].oldwW[0])

	before, err := net.Weights()
	require.NoError(t, err)
	require.NoError(t, net.Train(orInputs[1:2], xorLabels[1:2]))

	mw := net.ly.mw
	for l := range before {
		slot := net.oldw.slot(writeParity(l))
		for n, w := range before[l] {
			assert.Equal(t, w, row(slot, mw, n)[:len(w)], "layer %d neuron %d", l, n)
		}
	}
	after, err := net.Weights()
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestShape(t *testing.T) {
	net, err := New(testConf(2, 2, 3, 1))
	require.NoError(t, err)
	defer net.Close()

	results := [][]float64{make([]float64, 1)}
	cases := []struct {
		name string
		err  error
	}{
		{"counts", net.Train(orInputs, orLabels[:3])},
		{"input", net.Train([][]float64{{1, 2, 3}}, [][]float64{{1}})},
		{"label", net.Train([][]float64{{1, 2}}, [][]float64{{1, 0}})},
		{"classify counts", net.Classify(orInputs, results)},
		{"classify input", net.Classify([][]float64{{1}}, results)},
		{"classify result", net.Classify([][]float64{{1, 0}}, [][]float64{make([]float64, 2)})},
	}
	for _, c := range cases {
		assert.True(t, errors.Is(c.err, ErrShape), "%s: %v", c.name, c.err)
	}
	_, err = net.Predict([]float64{1})
	assert.True(t, errors.Is(err, ErrShape))
	_, err = net.Loss(orInputs, orLabels[:1])
	assert.True(t, errors.Is(err, ErrShape))
}

func TestPredictAndLoss(t *testing.T) {
	net, err := New(testConf(1, 2, 1))
	require.NoError(t, err)
	defer net.Close()

	before, err := net.Loss(orInputs, orLabels)
	require.NoError(t, err)
	train(t, net, orInputs, orLabels, 500)
	after, err := net.Loss(orInputs, orLabels)
	require.NoError(t, err)
	assert.Less(t, after, before)

	p, err := net.Predict([]float64{1, 1})
	require.NoError(t, err)
	require.Len(t, p, 1)
	assert.Equal(t, classify(t, net, orInputs[3:])[0], p[0])

	empty, err := net.Loss(nil, nil)
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestLifecycle(t *testing.T) {
	defer leaktest.Check(t)()
	net, err := New(testConf(4, 2, 5, 1))
	require.NoError(t, err)
	assert.Equal(t, Ready, net.State())
	assert.Equal(t, 2, net.Dimensionality())
	assert.Equal(t, 1, net.Outputs())
	assert.Equal(t, 4, net.Workers())

	require.NoError(t, net.Close())
	assert.Equal(t, Destroyed, net.State())
	assert.Nil(t, net.weights)

	assert.True(t, errors.Is(net.Close(), ErrClosed))
	assert.True(t, errors.Is(net.Train(orInputs, orLabels), ErrClosed))
	assert.True(t, errors.Is(net.Classify(nil, nil), ErrClosed))
	_, err = net.Weights()
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = net.ToDot()
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestMisuse(t *testing.T) {
	net, err := New(testConf(2, 2, 1))
	require.NoError(t, err)
	defer net.Close()

	// as if another goroutine were training
	net.mu.Lock()
	err = net.Train(orInputs, orLabels)
	net.mu.Unlock()
	assert.True(t, errors.Is(err, ErrMisuse), "%v", err)

	// whichever call wins, the other one either succeeds or is told off
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = net.Train(orInputs, orLabels)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, ErrMisuse), "%v", err)
		}
	}
}

func TestRollback(t *testing.T) {
	defer leaktest.Check(t)()
	boom := errors.New("boom")
	conf := testConf(3, 2, 3, 1)
	conf.Init = func(layer, neuron, fanIn int, w []float64) error {
		if layer == 1 {
			return boom
		}
		return nil
	}
	net, err := New(conf)
	assert.Nil(t, net)
	assert.True(t, errors.Is(err, boom), "%v", err)
	assert.Contains(t, err.Error(), "neuron 0 of layer 1")
}

func TestResourceExhausted(t *testing.T) {
	conf := testConf(1, 2, 3, 1)
	conf.MaxElements = 10
	_, err := New(conf)
	assert.True(t, errors.Is(err, ErrResourceExhausted), "%v", err)

	conf.MaxElements = 0
	conf.MaxWidth = DefaultMaxElements
	_, err = New(conf)
	assert.True(t, errors.Is(err, ErrResourceExhausted), "%v", err)
}

func TestInvalidConfig(t *testing.T) {
	conf := testConf(0, 2, 1)
	_, err := New(conf)
	assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := pool.NewMetrics("helios", "test", reg)
	require.NoError(t, err)

	conf := testConf(2, 2, 3, 1)
	conf.Metrics = m
	net, err := New(conf)
	require.NoError(t, err)
	defer net.Close()

	_, err = net.Predict([]float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Batches))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Jobs))

	require.NoError(t, net.Train(orInputs[:1], orLabels[:1]))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.Batches))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.Jobs))
}
