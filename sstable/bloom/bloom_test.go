// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/sstable/bloom"
)

func keysOfLen(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(fmt.Sprintf("key-%08d", i))
	}
	return out
}

func TestNoFalseNegatives(t *testing.T) {
	p := bloom.NewPolicy(10)
	for _, n := range []int{1, 10, 100, 1000, 10000} {
		keys := keysOfLen(n)
		f := p.CreateFilter(keys)
		for _, k := range keys {
			require.True(t, p.MayContain(f, k), "len=%d key=%s", n, k)
		}
	}
}

func TestFalsePositiveRate(t *testing.T) {
	p := bloom.NewPolicy(10)
	mediocre := 0
	for _, n := range []int{1, 10, 100, 1000, 10000} {
		keys := keysOfLen(n)
		f := p.CreateFilter(keys)

		r := rand.New(rand.NewSource(int64(n)))
		falsePositives := 0
		const trials = 10000
		for i := 0; i < trials; i++ {
			absent := []byte(fmt.Sprintf("absent-%d-%d", n, r.Int63()))
			if p.MayContain(f, absent) {
				falsePositives++
			}
		}
		rate := float64(falsePositives) / trials
		require.Less(t, rate, 0.02, "n=%d rate=%f", n, rate)
		if rate > 0.125 {
			mediocre++
		}
	}
	require.LessOrEqual(t, mediocre, 1)
}
