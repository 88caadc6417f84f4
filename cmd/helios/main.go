// Command helios trains a small network on a logic gate and prints what it learned.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorgonia/helios"
	"github.com/gorgonia/helios/activation"
	"github.com/gorgonia/helios/pool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"net/http"
	_ "net/http/pprof"
)

var (
	task     = flag.String("task", "xor", "gate to learn: and, or or xor")
	epochs   = flag.Int("epochs", 10000, "passes over the truth table")
	workers  = flag.Int("workers", 0, "workers per layer. 0 picks from the number of cores")
	hidden   = flag.Int("hidden", 3, "width of the hidden layer. 0 for a single layer network")
	alpha    = flag.Float64("alpha", 0.5, "learning rate")
	act      = flag.String("activation", "sigmoid", "sigmoid, tanh, relu or linear")
	seed     = flag.Uint64("seed", 1337, "seed for the initial weights")
	every    = flag.Int("every", 1000, "log the loss every so many epochs")
	stats    = flag.String("stats", "", "write the loss of every epoch to this CSV file")
	dot      = flag.String("dot", "", "write the trained network as Graphviz to this file")
	httpAddr = flag.String("http", "", "serve pprof and /metrics on this address, e.g. localhost:6060")
	verbose  = flag.Bool("v", false, "log what the network and the pool are doing")
)

var gates = map[string]func(a, b bool) bool{
	"and": func(a, b bool) bool { return a && b },
	"or":  func(a, b bool) bool { return a || b },
	"xor": func(a, b bool) bool { return a != b },
}

// truthTable lays the gate out over the range of the activation.
func truthTable(gate func(a, b bool) bool, r activation.Range) (inputs, labels [][]float64) {
	lo, hi := r.Low(), r.High()
	val := func(b bool) float64 {
		if b {
			return hi
		}
		return lo
	}
	for _, a := range []bool{false, true} {
		for _, b := range []bool{false, true} {
			inputs = append(inputs, []float64{val(a), val(b)})
			labels = append(labels, []float64{val(gate(a, b))})
		}
	}
	return
}

func main() {
	flag.Parse()

	gate, ok := gates[*task]
	if !ok {
		log.Fatalf("Unknown task %q", *task)
	}
	f, ok := activation.Lookup[*act]
	if !ok {
		log.Fatalf("Unknown activation %q", *act)
	}

	layers := []int{1}
	if *hidden > 0 {
		layers = []int{*hidden, 1}
	}
	conf := helios.DefaultConf(2, layers...)
	conf.Activation = f
	conf.Alpha = *alpha
	conf.Seed = *seed
	if *workers > 0 {
		conf.Workers = *workers
	}
	if *verbose {
		conf.Logger = log.New(os.Stderr, "helios ", log.Ltime)
	}

	if *httpAddr != "" {
		reg := prometheus.NewRegistry()
		m, err := pool.NewMetrics("helios", "pool", reg)
		if err != nil {
			log.Fatal(err)
		}
		conf.Metrics = m
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Printf("http://%s/debug/pprof and http://%s/metrics", *httpAddr, *httpAddr)
			log.Println(http.ListenAndServe(*httpAddr, nil))
		}()
	}

	net, err := helios.New(conf)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	defer net.Close()

	inputs, labels := truthTable(gate, f.Range())
	s := helios.MakeStatistics()
	run := fmt.Sprintf("%s-%s", *task, f)
	start := time.Now()
	for e := 0; e < *epochs; e++ {
		epochStart := time.Now()
		if err := net.Train(inputs, labels); err != nil {
			log.Fatalf("%+v", err)
		}
		loss, err := net.Loss(inputs, labels)
		if err != nil {
			log.Fatalf("%+v", err)
		}
		s.Record(run, loss, time.Since(epochStart))
		if *every > 0 && (e+1)%*every == 0 {
			log.Printf("epoch %d: loss %.6f", e+1, loss)
		}
	}
	log.Printf("Trained %v on %d workers for %d epochs in %v", layers, net.Workers(), *epochs, time.Since(start))

	for i, in := range inputs {
		out, err := net.Predict(in)
		if err != nil {
			log.Fatalf("%+v", err)
		}
		fmt.Printf("%v %s %v = %.4f (want %v)\n", in[0], *task, in[1], out[0], labels[i][0])
	}

	if *stats != "" {
		if err := s.Dump(*stats); err != nil {
			log.Fatal(err)
		}
	}
	if *dot != "" {
		g, err := net.ToDot()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*dot, []byte(g), 0644); err != nil {
			log.Fatal(err)
		}
	}
}
