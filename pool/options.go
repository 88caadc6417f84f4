package pool

import "log"

// Option configures a Pool.
type Option func(p *Pool)

// WithLogger sets the logger the pool reports lifecycle events and recovered panics to.
func WithLogger(l *log.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics makes the pool record into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Pool) { p.metrics = m }
}
