// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtsched

import (
	"time"

	gometrics "github.com/hashicorp/go-metrics"
)

// MetricsSink is the subset of *hashicorp/go-metrics.Metrics the
// scheduler core needs. *gometrics.Metrics satisfies it directly, so a
// caller that already runs go-metrics elsewhere in the process can hand
// its existing instance straight to WithMetrics.
type MetricsSink interface {
	IncrCounter(key []string, val float32)
	SetGauge(key []string, val float32)
}

// defaultMetricsSink builds a private in-memory go-metrics instance so
// the scheduler always has somewhere to record counters, without
// requiring the caller to wire up a real exporter just to run tests.
func defaultMetricsSink() MetricsSink {
	inm := gometrics.NewInmemSink(time.Minute, time.Hour)
	cfg := gometrics.DefaultConfig("rtsched")
	cfg.EnableHostname = false
	cfg.EnableRuntimeMetrics = false
	m, err := gometrics.New(cfg, inm)
	if err != nil {
		// NewInmemSink-backed construction only fails on a malformed
		// config; the literal above is never malformed.
		panic(err)
	}
	return m
}

var (
	metricDispatch        = []string{"rtsched", "dispatch"}
	metricDeadlineMissPer = []string{"rtsched", "deadline_miss", "periodic"}
	metricDeadlineMissSpo = []string{"rtsched", "deadline_miss", "sporadic"}
	metricAdmissionDenied = []string{"rtsched", "admission", "denied"}
	metricAdmissionOK     = []string{"rtsched", "admission", "accepted"}
	metricQueueFull       = []string{"rtsched", "queue", "full"}
	metricQueueDropped    = []string{"rtsched", "queue", "dropped"}
)
