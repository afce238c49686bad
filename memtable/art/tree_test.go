// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package art

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTreeInsertGet(t *testing.T) {
	tree := New()
	keys := []string{"a", "ab", "abc", "b", "bcd", "z"}
	for i, k := range keys {
		tree.Insert([]byte(k), i)
	}
	for i, k := range keys {
		v, ok := tree.Get([]byte(k))
		require.True(t, ok, k)
		require.Equal(t, i, v)
	}
	_, ok := tree.Get([]byte("missing"))
	require.False(t, ok)
}

func TestTreeGrowsThroughAllNodeKinds(t *testing.T) {
	tree := New()
	const n = 256 // every distinct byte value: forces node4 -> node16 -> node48 -> node256
	for i := 0; i < n; i++ {
		tree.Insert([]byte{byte(i)}, i)
	}
	for i := 0; i < n; i++ {
		v, ok := tree.Get([]byte{byte(i)})
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestTreeSharedPrefixSplit(t *testing.T) {
	tree := New()
	tree.Insert([]byte("helloworld"), 1)
	tree.Insert([]byte("hellothere"), 2)
	tree.Insert([]byte("hellfire"), 3)

	v, ok := tree.Get([]byte("helloworld"))
	require.True(t, ok)
	require.Equal(t, 1, v)
	v, ok = tree.Get([]byte("hellothere"))
	require.True(t, ok)
	require.Equal(t, 2, v)
	v, ok = tree.Get([]byte("hellfire"))
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestTreeConcurrentInserts(t *testing.T) {
	tree := New()
	const perThread = 2000
	const threads = 8

	var wg sync.WaitGroup
	for th := 0; th < threads; th++ {
		wg.Add(1)
		go func(th int) {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				key := []byte(fmt.Sprintf("t%02d-k%05d", th, i))
				tree.Insert(key, th*perThread+i)
			}
		}(th)
	}
	wg.Wait()

	for th := 0; th < threads; th++ {
		for i := 0; i < perThread; i++ {
			key := []byte(fmt.Sprintf("t%02d-k%05d", th, i))
			v, ok := tree.Get(key)
			require.True(t, ok, string(key))
			require.Equal(t, th*perThread+i, v)
		}
	}
}

// TestOptLockCounterUnderContention: 20 goroutines each perform 10,000
// write-lock acquisitions that increment a counter guarded by a shared
// internal node's version cell; the run must end with the version
// unlocked and the counter equal to threads*iterations under a final
// read guard.
func TestOptLockCounterUnderContention(t *testing.T) {
	const threads = 20
	const iterations = 10000

	shared := &node4{}
	counter := 0

	var wg sync.WaitGroup
	for th := 0; th < threads; th++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				for {
					v, err := shared.lock.rLock()
					if err != nil {
						continue
					}
					if err := shared.lock.lockAt(v); err != nil {
						continue
					}
					counter++
					shared.lock.unlock()
					break
				}
			}
		}()
	}
	wg.Wait()

	v, err := shared.lock.rLock()
	require.NoError(t, err)
	require.Equal(t, threads*iterations, counter)
	require.NoError(t, shared.lock.checkVersion(v))
}
