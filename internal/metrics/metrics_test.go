// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/internal/metrics"
)

func TestRecorderRegistersAndObserves(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := metrics.New(reg)

	r.ObserveWALAppend(5*time.Millisecond, 128)
	r.ObserveVlogWrite(2*time.Millisecond, 256)
	r.ObserveVlogRead(1*time.Millisecond, 256)
	r.ObserveBlockFlush(10 * time.Millisecond)
	r.ObserveCorruption("wal")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *metrics.Recorder
	require.NotPanics(t, func() {
		r.ObserveWALAppend(time.Millisecond, 10)
		r.ObserveVlogWrite(time.Millisecond, 10)
		r.ObserveVlogRead(time.Millisecond, 10)
		r.ObserveBlockFlush(time.Millisecond)
		r.ObserveCorruption("vlog")
	})
}
