// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vlog

import "github.com/Irumyuui/arisdb/internal/base"

// Batch assigns one base.SeqNum to a group of key/value operations and
// emits the base.TypeBatchBegin/Mid/End-tagged Entry sequence recovery
// replays atomically. A solitary single-entry Batch degrades to a plain
// base.TypeValue entry, so a lone write doesn't pay the group-commit tag.
//
// Batch only encodes; it does not open a WAL or memtable, or pick its own
// sequence number — both remain the responsibility of whatever assembles
// a write path on top of vlog, wal, and memtable.
type Batch struct {
	seq     base.SeqNum
	entries []batchOp
}

type batchOp struct {
	key   []byte
	value []byte
	kind  base.ValueType // TypeValue or TypeDeleted
}

// NewBatch returns a Batch whose entries will all carry seq.
func NewBatch(seq base.SeqNum) *Batch {
	return &Batch{seq: seq}
}

// Set stages a key/value write.
func (b *Batch) Set(key, value []byte) {
	b.entries = append(b.entries, batchOp{key: key, value: value, kind: base.TypeValue})
}

// Delete stages a tombstone for key.
func (b *Batch) Delete(key []byte) {
	b.entries = append(b.entries, batchOp{key: key, kind: base.TypeDeleted})
}

// Count returns the number of staged operations.
func (b *Batch) Count() int { return len(b.entries) }

// SeqNum returns the sequence number every entry in the batch carries.
func (b *Batch) SeqNum() base.SeqNum { return b.seq }

// Entries returns the vlog.Entry sequence for the batch: a single
// TypeValue/TypeDeleted entry if the batch holds exactly one operation,
// otherwise a TypeBatchBegin, zero or more TypeBatchMid, then
// TypeBatchEnd entries in staging order. Every returned Entry's Meta
// still identifies the underlying operation kind when it isn't a
// tombstone: callers that need the batch-grouping tag separately from
// the value/delete distinction should consult Kind alongside Meta via
// EntryKinds.
func (b *Batch) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	for i, op := range b.entries {
		out[i] = Entry{Key: op.key, Value: op.value, Meta: b.groupTag(i)}
	}
	return out
}

// groupTag returns the base.ValueType the i'th staged operation should be
// encoded with: the plain op kind for a single-entry batch, or the
// appropriate TypeBatchBegin/Mid/End tag for a multi-entry one.
func (b *Batch) groupTag(i int) base.ValueType {
	if len(b.entries) == 1 {
		return b.entries[0].kind
	}
	switch i {
	case 0:
		return base.TypeBatchBegin
	case len(b.entries) - 1:
		return base.TypeBatchEnd
	default:
		return base.TypeBatchMid
	}
}

// OpKind returns the i'th staged operation's logical kind (TypeValue or
// TypeDeleted), independent of the group-commit tag Entries encodes it
// with.
func (b *Batch) OpKind(i int) base.ValueType { return b.entries[i].kind }
