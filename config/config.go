// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package config aggregates the knobs every other package exposes as its
// own Options struct into the single object the (out-of-scope) database
// façade would thread through at open time. It deliberately stops at
// in-process defaulting: parsing a config file or environment into an
// Options is excluded from this module's scope, so there is no Load/Parse
// here, only construction and defaulting of values already in hand.
package config

import (
	"github.com/cockroachdb/tokenbucket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/ioengine"
	"github.com/Irumyuui/arisdb/internal/logging"
	"github.com/Irumyuui/arisdb/internal/metrics"
	"github.com/Irumyuui/arisdb/memtable"
	"github.com/Irumyuui/arisdb/sstable"
	"github.com/Irumyuui/arisdb/sstable/block"
	"github.com/Irumyuui/arisdb/vlog"
)

// Options collects every sub-package's Options into one value, the way a
// caller opening the whole engine would populate it once and hand each
// field to the layer that owns it.
// Zero-value fields fall back to each owning package's own defaults,
// exactly as if that sub-Options had been passed in empty.
type Options struct {
	// Comparer orders user keys across the memtable, WAL replay, and
	// SSTable layers alike; it must be the same Comparer for the engine's
	// entire lifetime once any data has been written with it.
	Comparer *base.Comparer

	// MemtableBackend selects between the skip list (single writer,
	// lock-free readers) and the ART (concurrent writers under optimistic
	// locking). Both retain every (user_key, seq) version for snapshot
	// reads.
	MemtableBackend memtable.Backend
	// MemtableSeed seeds the skip list's level-promotion RNG. Zero picks
	// a time-derived seed; set it explicitly for reproducible tests.
	MemtableSeed uint64

	// VlogMaxFileSize seals an active vlog segment once it reaches this
	// many bytes. Zero defaults to 1 GiB.
	VlogMaxFileSize int64

	// FilterPolicy builds the per-table Bloom filter block. Nil disables
	// filter blocks entirely.
	FilterPolicy block.FilterPolicy
	// BlockSize is the target uncompressed size of one data block before
	// it's flushed. Zero defaults to 4 KiB.
	BlockSize int
	// BlockRestartInterval is the number of keys between prefix-compression
	// restart points in a data block. Zero defaults to block.DefaultRestartInterval.
	BlockRestartInterval int
	// Compression is applied to every data, meta-index, and index block
	// a TableBuilder writes (filter blocks are always stored uncompressed).
	Compression block.Compression

	// IOConcurrency bounds the number of in-flight suspended reads/writes
	// per ioengine.Engine. Zero defaults to ioengine.DefaultConcurrency.
	IOConcurrency int
	// FsyncRateLimit, if set, paces WAL fsync calls through the shared
	// wal.WriterOptions field of the same name.
	FsyncRateLimit *tokenbucket.TokenBucket

	// MetricsRegisterer receives every counter/gauge internal/metrics
	// defines. Nil computes the metrics without exporting them anywhere.
	MetricsRegisterer prometheus.Registerer
	// Logger is the engine's Infof/Errorf/Fatalf sink. vlog.Set is the only
	// layer in this module that logs, and VlogOptions does not copy this
	// field into vlog.Options. Nil defaults to logging.Default (stderr).
	Logger logging.Logger
}

// EnsureDefaults fills every zero-valued field with the default the owning
// sub-package would have chosen for itself, so the rest of the engine can
// always read a fully-populated Options.
func (o *Options) EnsureDefaults() {
	if o.Comparer == nil {
		o.Comparer = base.DefaultComparer
	}
	if o.VlogMaxFileSize <= 0 {
		o.VlogMaxFileSize = 1 << 30
	}
	if o.BlockSize <= 0 {
		o.BlockSize = 4096
	}
	if o.BlockRestartInterval <= 0 {
		o.BlockRestartInterval = block.DefaultRestartInterval
	}
	if o.IOConcurrency <= 0 {
		o.IOConcurrency = ioengine.DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = logging.Default
	}
}

// Metrics constructs the shared Recorder from MetricsRegisterer. Every
// layer that accepts a *metrics.Recorder should be handed the same one,
// obtained by calling this once at open time.
func (o *Options) Metrics() *metrics.Recorder {
	return metrics.New(o.MetricsRegisterer)
}

// VlogOptions projects the fields vlog.Options needs out of o.
func (o *Options) VlogOptions(engine *ioengine.Engine) vlog.Options {
	return vlog.Options{
		MaxFileSize: o.VlogMaxFileSize,
		Engine:      engine,
	}
}

// MemtableOptions projects the fields memtable.Options needs out of o.
func (o *Options) MemtableOptions() memtable.Options {
	return memtable.Options{
		Backend:  o.MemtableBackend,
		Comparer: o.Comparer,
		Seed:     o.MemtableSeed,
	}
}

// IOEngine constructs the ioengine.Engine every read/write path should
// share, sized per IOConcurrency.
func (o *Options) IOEngine() *ioengine.Engine {
	return ioengine.New(o.IOConcurrency)
}

// BuilderOptions projects the fields sstable.BuilderOptions needs out of o.
func (o *Options) BuilderOptions() sstable.BuilderOptions {
	return sstable.BuilderOptions{
		Comparer:        o.Comparer,
		FilterPolicy:    o.FilterPolicy,
		BlockSize:       o.BlockSize,
		RestartInterval: o.BlockRestartInterval,
		Compression:     o.Compression,
	}
}
