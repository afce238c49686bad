// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package art implements the optimistic-lock Adaptive Radix Tree: an
// alternative memtable index supporting concurrent writers, built from
// Node4/Node16/Node48/Node256 internal nodes plus leaves. Each internal
// node's version cell packs three fields into one atomic word: bit 0 =
// obsolete, bit 1 = write-locked, bits 2..63 = a monotonically
// increasing version counter. Locking a node CASes version v -> v+2
// (setting the lock bit since it was 0); unlocking adds 2 again, which
// both clears the lock bit and carries a +1 into the counter.
//
// Reclamation: a node that is displaced by a split or a grow is simply
// dropped from the tree (unreferenced); Go's garbage collector keeps it
// alive for as long as a reader that already holds a pointer to it is
// still dereferencing it, so no separate epoch-based reclamation pass is
// needed. The obsolete bit still matters: it forces such a reader's
// version re-check to fail and restart from the root.
package art

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

var (
	errVersionMismatch = errors.New("art: version mismatch")
	errLocked          = errors.New("art: node is write-locked")
	errObsoleted       = errors.New("art: node is obsolete")
)

// lock is the optimistic version cell embedded in every internal node.
type lock struct {
	version atomic.Uint64
}

// rLock snapshots the current version for an optimistic read, failing
// if the node is currently locked or already obsolete.
func (l *lock) rLock() (uint64, error) {
	v := l.version.Load()
	if v&1 != 0 {
		return 0, errObsoleted
	}
	if v&2 != 0 {
		return 0, errLocked
	}
	return v, nil
}

// checkVersion re-validates a previously snapshotted version, the step
// an optimistic reader must perform before trusting anything it read
// under that snapshot.
func (l *lock) checkVersion(v uint64) error {
	cur := l.version.Load()
	if cur == v {
		return nil
	}
	if cur&1 != 0 {
		return errObsoleted
	}
	return errVersionMismatch
}

// lockAt upgrades a snapshotted read version to a write lock via CAS.
func (l *lock) lockAt(v uint64) error {
	if !l.version.CompareAndSwap(v, v+2) {
		return errVersionMismatch
	}
	return nil
}

// unlock releases a write lock, bumping the version counter.
func (l *lock) unlock() { l.version.Add(2) }

// unlockObsolete releases a write lock while additionally marking the
// node obsolete, used when a node is displaced by grow or split. A
// locked version has bits 1..0 = 10, so adding 3 clears the lock bit
// (with a carry into the counter) and sets the obsolete bit in one
// atomic step.
func (l *lock) unlockObsolete() {
	l.version.Add(3)
}
