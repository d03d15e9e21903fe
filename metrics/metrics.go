// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package metrics exposes the Prometheus collectors this module populates
// as it dispatches commands and bulk batches.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and histograms observed around command
// dispatch and bulk-write batching.
type Metrics struct {
	CommandsTotal     *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	WriteErrorsTotal  *prometheus.CounterVec
	BulkBatchesTotal  *prometheus.CounterVec
	BulkBatchSize     *prometheus.HistogramVec
	ConnectionsActive prometheus.Gauge
}

// New registers a fresh set of collectors under namespace. Call once per
// process; registering twice against the default registry panics, matching
// promauto's own behavior.
func New(namespace string) *Metrics {
	return &Metrics{
		CommandsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of commands dispatched, by command name and outcome.",
			},
			[]string{"command", "outcome"},
		),
		CommandDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command round-trip latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		WriteErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "write_errors_total",
				Help:      "Total number of per-document write errors observed in replies.",
			},
			[]string{"command"},
		),
		BulkBatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bulk_batches_total",
				Help:      "Total number of bulk-write batches dispatched, by verb.",
			},
			[]string{"verb"},
		),
		BulkBatchSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bulk_batch_size",
				Help:      "Number of models carried by a single dispatched bulk batch.",
				Buckets:   []float64{1, 10, 100, 500, 1000},
			},
			[]string{"verb"},
		),
		ConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connections_active",
				Help:      "Number of open connections held by the client.",
			},
		),
	}
}

// ObserveCommand records a dispatched command's outcome and latency.
func (m *Metrics) ObserveCommand(command, outcome string, d time.Duration) {
	m.CommandsTotal.WithLabelValues(command, outcome).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// ObserveWriteErrors records count write errors attributed to command.
func (m *Metrics) ObserveWriteErrors(command string, count int) {
	if count <= 0 {
		return
	}
	m.WriteErrorsTotal.WithLabelValues(command).Add(float64(count))
}

// ObserveBulkBatch records one dispatched bulk batch.
func (m *Metrics) ObserveBulkBatch(verb string, size int) {
	m.BulkBatchesTotal.WithLabelValues(verb).Inc()
	m.BulkBatchSize.WithLabelValues(verb).Observe(float64(size))
}
