package pool

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a pool records into. A nil *Metrics records nothing.
type Metrics struct {
	Batches      prometheus.Counter
	Jobs         prometheus.Counter
	Panics       prometheus.Counter
	BusyWorkers  prometheus.Gauge
	BatchLatency prometheus.Histogram
}

// NewMetrics creates the pool collectors and registers them with reg, if reg is not nil.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batches_total",
			Help:      "Total number of batches run to completion",
		}),
		Jobs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_total",
			Help:      "Total number of jobs completed",
		}),
		Panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "kernel_panics_total",
			Help:      "Total number of kernel panics recovered",
		}),
		BusyWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "busy_workers",
			Help:      "Number of workers currently executing a job",
		}),
		BatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "batch_latency_seconds",
			Help:      "Time from submission to the end of a batch",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Batches, m.Jobs, m.Panics, m.BusyWorkers, m.BatchLatency} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "registering pool metrics")
		}
	}
	return m, nil
}

func (m *Metrics) jobStarted() {
	if m == nil {
		return
	}
	m.BusyWorkers.Inc()
}

func (m *Metrics) jobDone() {
	if m == nil {
		return
	}
	m.BusyWorkers.Dec()
	m.Jobs.Inc()
}

func (m *Metrics) panicked() {
	if m == nil {
		return
	}
	m.Panics.Inc()
}

func (m *Metrics) batchDone(d time.Duration) {
	if m == nil {
		return
	}
	m.Batches.Inc()
	m.BatchLatency.Observe(d.Seconds())
}
