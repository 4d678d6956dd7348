// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import (
	"github.com/hashicorp/go-hclog"
)

// Compile-time defaults from spec §6.
const (
	// DefaultQuantum is the aperiodic timer bound (ticks).
	DefaultQuantum uint64 = 1e7
	// DefaultMaxQueue is the capacity of every queue unless overridden.
	DefaultMaxQueue = 256

	// UtilScale is the fixed-point scale the constants below are
	// expressed in: a bound of B means a utilization of B/UtilScale.
	UtilScale = 100000

	// PeriodicUtilBound is the default Σ slice/period bound (0.65).
	PeriodicUtilBound uint64 = 65000
	// SporadicUtilBound is the default Σ work/(deadline-now) bound (0.18).
	SporadicUtilBound uint64 = 18000
	// AperiodicUtilBound is documented headroom only (0.09); aperiodic
	// threads are always admitted (§4.6), there is nothing to check it
	// against.
	AperiodicUtilBound uint64 = 9000
)

// config holds everything a Scheduler needs that isn't per-descriptor
// state. It is built up by applying Option values at construction time.
type config struct {
	logger  hclog.Logger
	metrics MetricsSink
	quantum uint64
	slack   uint64

	maxQueue int

	periodicUtilBound uint64
	sporadicUtilBound uint64
}

func defaultConfig() config {
	return config{
		logger:            hclog.NewNullLogger(),
		metrics:           defaultMetricsSink(),
		quantum:           DefaultQuantum,
		slack:             0,
		maxQueue:          DefaultMaxQueue,
		periodicUtilBound: PeriodicUtilBound,
		sporadicUtilBound: SporadicUtilBound,
	}
}

// Option configures a Scheduler at construction time.
type Option interface {
	apply(*config)
}

// optionFunc wraps a func so it satisfies the Option interface.
type optionFunc func(*config)

func (f optionFunc) apply(c *config) {
	f(c)
}

// WithLogger sets the structured logger diagnostics are reported
// through. Defaults to a null logger.
func WithLogger(logger hclog.Logger) Option {
	return optionFunc(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithMetrics sets the sink dispatch/admission/queue counters are
// recorded through. Defaults to a private in-memory go-metrics instance.
func WithMetrics(sink MetricsSink) Option {
	return optionFunc(func(c *config) {
		if sink != nil {
			c.metrics = sink
		}
	})
}

// WithQuantum overrides the aperiodic dispatch quantum (default 1e7
// ticks).
func WithQuantum(ticks uint64) Option {
	return optionFunc(func(c *config) { c.quantum = ticks })
}

// WithSlack adds slack ticks to every timer-programming budget term, to
// absorb bookkeeping cost between the timer firing and the dispatcher
// actually reading the clock. Default zero (§4.5).
func WithSlack(ticks uint64) Option {
	return optionFunc(func(c *config) { c.slack = ticks })
}

// WithMaxQueue overrides the capacity of every queue (default 256,
// MAX_QUEUE in spec §6).
func WithMaxQueue(n int) Option {
	return optionFunc(func(c *config) {
		if n > 0 {
			c.maxQueue = n
		}
	})
}

// WithUtilizationBounds overrides the periodic and sporadic admission
// bounds (defaults 65000 and 18000, units of 1/UtilScale).
func WithUtilizationBounds(periodic, sporadic uint64) Option {
	return optionFunc(func(c *config) {
		c.periodicUtilBound = periodic
		c.sporadicUtilBound = sporadic
	})
}
