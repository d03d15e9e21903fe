// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCommandIncrementsCounter(t *testing.T) {
	m := New("mongocore_test_observe_command")
	m.ObserveCommand("insert", "ok", 5*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommandsTotal.WithLabelValues("insert", "ok")))
}

func TestObserveWriteErrorsSkipsZero(t *testing.T) {
	m := New("mongocore_test_observe_write_errors")
	m.ObserveWriteErrors("update", 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.WriteErrorsTotal.WithLabelValues("update")))

	m.ObserveWriteErrors("update", 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.WriteErrorsTotal.WithLabelValues("update")))
}

func TestObserveBulkBatchIncrementsCounterAndHistogram(t *testing.T) {
	m := New("mongocore_test_observe_bulk_batch")
	m.ObserveBulkBatch("insert", 42)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BulkBatchesTotal.WithLabelValues("insert")))
}
