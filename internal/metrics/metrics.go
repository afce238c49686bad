// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package metrics instruments the engine's I/O paths (vlog writes and
// reads, WAL appends, SSTable block flushes) with Prometheus
// counters/gauges fed by HdrHistogram latency samples. No cache,
// compaction or level metrics exist here; those belong to the database
// layer above.
package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/redact"
	"github.com/prometheus/client_golang/prometheus"
)

// latencyHistogram wraps an hdrhistogram.Histogram behind a
// prometheus.Summary-like interface: RecordValue feeds the histogram,
// and the three prometheus Gauges are updated in-line with every
// record, so no background drain goroutine competes with the I/O
// workers for CPU.
type latencyHistogram struct {
	hist *hdrhistogram.Histogram

	p50  prometheus.Gauge
	p99  prometheus.Gauge
	p999 prometheus.Gauge
}

func newLatencyHistogram(name, help string) *latencyHistogram {
	return &latencyHistogram{
		// Tracks 1us..10s at 3 significant figures, wide enough to span
		// a fast in-memory vlog append and a slow fsync-bound one.
		hist: hdrhistogram.New(1, (10 * time.Second).Microseconds(), 3),
		p50: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name + "_p50_microseconds", Help: help + " (p50)",
		}),
		p99: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name + "_p99_microseconds", Help: help + " (p99)",
		}),
		p999: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name + "_p999_microseconds", Help: help + " (p999)",
		}),
	}
}

// Record adds a latency sample and refreshes the quantile gauges.
func (h *latencyHistogram) Record(d time.Duration) {
	_ = h.hist.RecordValue(d.Microseconds())
	h.p50.Set(float64(h.hist.ValueAtQuantile(50)))
	h.p99.Set(float64(h.hist.ValueAtQuantile(99)))
	h.p999.Set(float64(h.hist.ValueAtQuantile(99.9)))
}

func (h *latencyHistogram) collectors() []prometheus.Collector {
	return []prometheus.Collector{h.p50, h.p99, h.p999}
}

// Recorder is the instrumentation surface every other package reaches
// into at its suspension points. A nil *Recorder is valid and a no-op,
// so call sites don't need a separate "metrics enabled" check.
type Recorder struct {
	WALAppend  *latencyHistogram
	VlogWrite  *latencyHistogram
	VlogRead   *latencyHistogram
	BlockFlush *latencyHistogram

	BytesWrittenWAL  prometheus.Counter
	BytesWrittenVlog prometheus.Counter
	BytesReadVlog    prometheus.Counter
	CorruptionEvents prometheus.Counter
}

// New constructs a Recorder with every metric registered under reg. A
// nil reg is accepted (metrics are computed but never exported), useful
// for tests that just want the latency math without a live registry.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		WALAppend:  newLatencyHistogram("arisdb_wal_append_latency", "WAL append latency"),
		VlogWrite:  newLatencyHistogram("arisdb_vlog_write_latency", "vlog write_entry latency"),
		VlogRead:   newLatencyHistogram("arisdb_vlog_read_latency", "vlog read_entry latency"),
		BlockFlush: newLatencyHistogram("arisdb_block_flush_latency", "SSTable block flush latency"),

		BytesWrittenWAL: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arisdb_wal_bytes_written", Help: "Cumulative bytes written to the WAL.",
		}),
		BytesWrittenVlog: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arisdb_vlog_bytes_written", Help: "Cumulative bytes written to the value log.",
		}),
		BytesReadVlog: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arisdb_vlog_bytes_read", Help: "Cumulative bytes read from the value log.",
		}),
		CorruptionEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arisdb_corruption_events_total",
			Help: "Count of CRC/length/type corruption signals observed.",
		}),
	}
	if reg != nil {
		for _, h := range []*latencyHistogram{r.WALAppend, r.VlogWrite, r.VlogRead, r.BlockFlush} {
			for _, c := range h.collectors() {
				reg.MustRegister(c)
			}
		}
		reg.MustRegister(r.BytesWrittenWAL, r.BytesWrittenVlog, r.BytesReadVlog, r.CorruptionEvents)
	}
	return r
}

// recordLatency is a nil-safe dispatch helper so every ObserveX method
// below reads as a one-liner at the call site.
func recordLatency(h *latencyHistogram, d time.Duration) {
	if h != nil {
		h.Record(d)
	}
}

// ObserveWALAppend records the latency of one wal.Writer.Append call.
func (r *Recorder) ObserveWALAppend(d time.Duration, bytes int) {
	if r == nil {
		return
	}
	recordLatency(r.WALAppend, d)
	r.BytesWrittenWAL.Add(float64(bytes))
}

// ObserveVlogWrite records the latency and size of one vlog.Set.WriteEntry call.
func (r *Recorder) ObserveVlogWrite(d time.Duration, bytes int) {
	if r == nil {
		return
	}
	recordLatency(r.VlogWrite, d)
	r.BytesWrittenVlog.Add(float64(bytes))
}

// ObserveVlogRead records the latency and size of one vlog.Set.ReadEntry call.
func (r *Recorder) ObserveVlogRead(d time.Duration, bytes int) {
	if r == nil {
		return
	}
	recordLatency(r.VlogRead, d)
	r.BytesReadVlog.Add(float64(bytes))
}

// ObserveBlockFlush records the latency of one sstable data-block flush.
func (r *Recorder) ObserveBlockFlush(d time.Duration) {
	if r == nil {
		return
	}
	recordLatency(r.BlockFlush, d)
}

// ObserveCorruption increments the corruption-events counter. component
// names the subsystem that raised it ("wal", "vlog", "sstable"); the
// counter carries no per-component label, so component is not recorded.
func (r *Recorder) ObserveCorruption(component redact.SafeString) {
	if r == nil {
		return
	}
	r.CorruptionEvents.Inc()
}
