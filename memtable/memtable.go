// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package memtable binds the internal-key/value-pointer codec to one of
// two concurrent ordered indexes: the lock-free skip list, or the
// optimistic-lock ART. Both give the same insert/get/approximate-usage
// surface so the layer above can pick an index without caring which one
// backs a given Memtable.
package memtable

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/memtable/art"
	"github.com/Irumyuui/arisdb/memtable/skiplist"
)

// Backend selects which concurrent index backs a Memtable.
type Backend int

const (
	// SkipListBackend keeps every (user_key, seq) version ever inserted:
	// a Get at sequence s always finds the newest entry with seq <= s,
	// however old.
	SkipListBackend Backend = iota

	// ARTBackend keeps every (user_key, seq) version ever inserted, the
	// same as SkipListBackend, but indexes them with the optimistic-lock
	// ART instead of the skip list, trading the skip list's single-
	// writer restriction for concurrent writers at the cost of a
	// multi-leaf scan per Get (see VisitPrefixed in package art).
	ARTBackend
)

// approxEntryOverhead approximates the per-entry bookkeeping cost (node
// headers, pointers) that the byte-accurate key/value payload doesn't
// capture, so ApproximateMemUsage tracks real budget pressure rather
// than just key bytes.
const approxEntryOverhead = 48

// Value is the payload a Memtable associates with an internal key: a
// value-log pointer (present whenever Kind != TypeDeleted) tagged with
// the kind and sequence number it was written at.
type Value struct {
	Kind    base.ValueType
	Pointer base.ValuePointer
	Seq     base.SeqNum
}

// IsTombstone reports whether v represents a deletion.
func (v Value) IsTombstone() bool { return v.Kind == base.TypeDeleted }

// Options configures a new Memtable.
type Options struct {
	// Backend selects the underlying index. Defaults to SkipListBackend.
	Backend Backend
	// Comparer orders user keys. Defaults to base.DefaultComparer.
	Comparer *base.Comparer
	// Seed drives the skip list's level-promotion RNG; only consulted for
	// SkipListBackend. Defaults to a time-derived value, since
	// reproducible level shapes only matter to tests, which should set
	// this explicitly.
	Seed uint64
}

func (o *Options) ensureDefaults() {
	if o.Comparer == nil {
		o.Comparer = base.DefaultComparer
	}
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
}

// Memtable is the insert/get façade over a single concurrent index
// instance. The zero value is not usable; construct with New.
type Memtable struct {
	backend Backend
	cmp     *base.Comparer

	skip *skiplist.Skiplist[Value] // set iff backend == SkipListBackend
	tree *art.Tree                 // set iff backend == ARTBackend

	usage atomic.Int64
}

// New constructs an empty Memtable per opts.
func New(opts Options) *Memtable {
	opts.ensureDefaults()
	m := &Memtable{backend: opts.Backend, cmp: opts.Comparer}
	switch opts.Backend {
	case ARTBackend:
		m.tree = art.New()
	default:
		// The skip list's keys are encoded internal keys (user key plus
		// an 8-byte trailer), not plain user keys: a raw bytewise
		// comparator over that encoding would order by the trailer's
		// little-endian byte pattern rather than by sequence number, so
		// the list is seeded with internalKeyCompare instead of
		// opts.Comparer.Compare directly.
		m.skip = skiplist.New[Value](m.internalKeyCompare, opts.Seed)
	}
	return m
}

// internalKeyCompare orders two encoded internal keys (user key
// ascending, then sequence descending) by decoding each and delegating
// to base.Compare. Both arguments are always internal keys this
// Memtable itself encoded, so a decode failure indicates a broken
// invariant rather than bad external input.
func (m *Memtable) internalKeyCompare(a, b []byte) int {
	ika, err := base.DecodeInternalKey(a)
	if err != nil {
		panic("memtable: corrupt internal key in skip list: " + err.Error())
	}
	ikb, err := base.DecodeInternalKey(b)
	if err != nil {
		panic("memtable: corrupt internal key in skip list: " + err.Error())
	}
	return base.Compare(m.cmp.Compare, ika, ikb)
}

// Insert adds the entry for ikey. ptr is the zero ValuePointer when
// ikey's kind is TypeDeleted. Internal-key uniqueness (no two live
// entries share a (user_key, seq) pair) rests on callers allocating
// sequence numbers monotonically. On a genuine duplicate the skip list
// backend panics, while the ART backend overwrites the earlier entry's
// value.
func (m *Memtable) Insert(ikey base.InternalKey, ptr base.ValuePointer) {
	value := Value{Kind: ikey.Kind(), Pointer: ptr, Seq: ikey.SeqNum()}

	switch m.backend {
	case ARTBackend:
		// Keyed by the full encoded internal key, exactly like the skip
		// list: every (user_key, seq) version gets its own leaf, so a
		// later write never overwrites an earlier version's entry. The
		// 8-byte trailer every internal key ends in satisfies the ART's
		// unique-terminator precondition (no key a byte-prefix of
		// another) the same way it does for the skip list's comparator.
		m.tree.Insert(ikey.Encode(nil), value)
	default:
		m.skip.Insert(ikey.Encode(nil), value)
	}

	m.usage.Add(int64(ikey.Size()) + approxEntryOverhead)
}

// Get looks up lk, honoring lk.Seq as a snapshot bound: the returned
// Value is the newest entry with seq <= lk.Seq, or ok is false if none
// exists. Both backends retain every version ever inserted, so this
// contract holds identically regardless of Backend.
func (m *Memtable) Get(lk base.LookupKey) (Value, bool) {
	switch m.backend {
	case ARTBackend:
		// The tree is keyed by full internal keys, so a point lookup by
		// user key alone can't land on a single leaf; instead walk every
		// leaf sharing lk.UserKey as a prefix (there may be many, one
		// per version) and keep the one with the greatest sequence
		// number at or below the snapshot bound.
		var (
			best    Value
			bestSeq base.SeqNum
			found   bool
		)
		m.tree.VisitPrefixed(lk.UserKey, func(key []byte, val any) {
			if len(key) != len(lk.UserKey)+base.TrailerLen {
				// A leaf whose key merely shares lk.UserKey as a byte
				// prefix but belongs to a longer, distinct user key.
				return
			}
			ik, err := base.DecodeInternalKey(key)
			if err != nil {
				panic("memtable: corrupt internal key in ART: " + err.Error())
			}
			if ik.SeqNum() > lk.Seq {
				return
			}
			if !found || ik.SeqNum() > bestSeq {
				best, bestSeq, found = val.(Value), ik.SeqNum(), true
			}
		})
		return best, found
	default:
		search := lk.ToInternalKey().Encode(nil)
		it := skiplist.NewIterator(m.skip)
		it.Seek(search)
		if !it.Valid() {
			return Value{}, false
		}
		ik, err := base.DecodeInternalKey(it.Key())
		if err != nil {
			panic("memtable: corrupt internal key in skip list: " + err.Error())
		}
		if m.cmp.Compare(ik.UserKey, lk.UserKey) != 0 {
			return Value{}, false
		}
		return it.Value(), true
	}
}

// ApproximateMemUsage returns a running estimate of the bytes consumed
// by every entry inserted so far, used by the flush scheduler to decide
// when this memtable should become immutable.
func (m *Memtable) ApproximateMemUsage() int64 {
	return m.usage.Load()
}

// FlushEntry is one (internal_key, value) pair yielded by NewFlushIterator
// in ascending internal-key order, ready to feed an sstable.TableBuilder.
type FlushEntry struct {
	Key   base.InternalKey
	Value Value
}

// NewFlushIterator drains the memtable's current contents in ascending
// internal-key order. It is meant to be called only after the memtable
// has transitioned to immutable: neither backend's traversal here
// detects or retries on concurrent inserts.
func (m *Memtable) NewFlushIterator() []FlushEntry {
	var out []FlushEntry
	switch m.backend {
	case ARTBackend:
		// Leaves are keyed by the full encoded internal key, but the ART
		// has no notion of the internal-key comparator's ordering (it
		// only orders by raw key byte), so a separate sort is needed to
		// give the same ascending-internal-key guarantee the skip list's
		// own iteration order provides for free.
		m.tree.Visit(func(key []byte, value any) {
			ik, err := base.DecodeInternalKey(key)
			if err != nil {
				panic("memtable: corrupt internal key in ART: " + err.Error())
			}
			out = append(out, FlushEntry{Key: ik, Value: value.(Value)})
		})
		sort.Slice(out, func(i, j int) bool {
			return base.Compare(m.cmp.Compare, out[i].Key, out[j].Key) < 0
		})
	default:
		it := skiplist.NewIterator(m.skip)
		for it.SeekToFirst(); it.Valid(); it.Next() {
			ik, err := base.DecodeInternalKey(it.Key())
			if err != nil {
				panic("memtable: corrupt internal key in skip list: " + err.Error())
			}
			out = append(out, FlushEntry{Key: ik, Value: it.Value()})
		}
	}
	return out
}
