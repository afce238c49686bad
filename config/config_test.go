// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/config"
	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/ioengine"
	"github.com/Irumyuui/arisdb/internal/logging"
	"github.com/Irumyuui/arisdb/sstable/block"
)

func TestEnsureDefaultsFillsZeroValues(t *testing.T) {
	var o config.Options
	o.EnsureDefaults()

	require.Equal(t, base.DefaultComparer, o.Comparer)
	require.EqualValues(t, 1<<30, o.VlogMaxFileSize)
	require.Equal(t, 4096, o.BlockSize)
	require.Equal(t, block.DefaultRestartInterval, o.BlockRestartInterval)
	require.Equal(t, ioengine.DefaultConcurrency, o.IOConcurrency)
	require.Equal(t, logging.Default, o.Logger)
}

func TestEnsureDefaultsPreservesExplicitValues(t *testing.T) {
	cmp := base.DefaultComparer
	o := config.Options{
		Comparer:        cmp,
		VlogMaxFileSize: 512,
		BlockSize:       1024,
	}
	o.EnsureDefaults()

	require.Same(t, cmp, o.Comparer)
	require.EqualValues(t, 512, o.VlogMaxFileSize)
	require.Equal(t, 1024, o.BlockSize)
}

func TestProjectionsCarryFieldsThrough(t *testing.T) {
	var o config.Options
	o.EnsureDefaults()
	o.VlogMaxFileSize = 7 << 20
	o.BlockRestartInterval = 8

	engine := ioengine.New(4)
	vOpts := o.VlogOptions(engine)
	require.EqualValues(t, 7<<20, vOpts.MaxFileSize)
	require.Same(t, engine, vOpts.Engine)

	bOpts := o.BuilderOptions()
	require.Equal(t, 8, bOpts.RestartInterval)
	require.Equal(t, o.Comparer, bOpts.Comparer)

	mOpts := o.MemtableOptions()
	require.Equal(t, o.Comparer, mOpts.Comparer)
}

func TestMetricsAcceptsNilRegisterer(t *testing.T) {
	var o config.Options
	require.NotPanics(t, func() {
		r := o.Metrics()
		require.NotNil(t, r)
	})
}
