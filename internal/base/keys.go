// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package base holds the format-defining capability interfaces (Comparer,
// FilterPolicy) and the byte layouts (internal key, lookup key, value
// pointer, trailer) shared by every other package in arisdb. Keeping these
// in one leaf package avoids import cycles between vlog, wal, sstable and
// memtable.
package base

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/varint"
)

// SeqNum is a 56-bit monotonically increasing write counter.
type SeqNum uint64

// MaxSeqNum is the largest representable sequence number (2^56 - 1).
const MaxSeqNum SeqNum = 1<<56 - 1

// ValueType tags the kind of value an internal key carries.
type ValueType uint8

const (
	// TypeDeleted marks a tombstone; no value pointer is present.
	TypeDeleted ValueType = 0
	// TypeValue carries its value inline.
	TypeValue ValueType = 1
	// TypeValueLog carries only a ValuePointer into the value log.
	TypeValueLog ValueType = 2

	// TypeBatchBegin/Mid/End replace TypeValue within a single write
	// batch's vlog entries, letting recovery replay the group
	// atomically. A solitary single-entry batch uses TypeValue.
	TypeBatchBegin ValueType = 3
	TypeBatchMid   ValueType = 4
	TypeBatchEnd   ValueType = 5
)

// String implements fmt.Stringer for log messages.
func (t ValueType) String() string {
	switch t {
	case TypeDeleted:
		return "Deleted"
	case TypeValue:
		return "Value"
	case TypeValueLog:
		return "ValueLog"
	case TypeBatchBegin:
		return "BatchBegin"
	case TypeBatchMid:
		return "BatchMid"
	case TypeBatchEnd:
		return "BatchEnd"
	default:
		return "Unknown"
	}
}

// IsValidValueType reports whether t is one of the known tags.
func IsValidValueType(t ValueType) bool {
	return t <= TypeBatchEnd
}

// TrailerLen is the fixed 8-byte trailer width packed onto every internal key.
const TrailerLen = 8

// MakeTrailer packs seq and typ into the 64-bit trailer: (seq << 8) | typ.
func MakeTrailer(seq SeqNum, typ ValueType) uint64 {
	return (uint64(seq) << 8) | uint64(typ)
}

// SeqFromTrailer extracts the sequence number from a trailer.
func SeqFromTrailer(trailer uint64) SeqNum { return SeqNum(trailer >> 8) }

// TypeFromTrailer extracts the value type from a trailer.
func TypeFromTrailer(trailer uint64) ValueType { return ValueType(trailer & 0xff) }

// InternalKey is user_key || trailer(8 bytes): ordered by user-key
// ascending under the active comparer, ties broken by decreasing sequence
// (newer entries sort first among entries sharing a user key).
type InternalKey struct {
	UserKey []byte
	Trailer uint64
}

// MakeInternalKey constructs an InternalKey from its logical fields.
func MakeInternalKey(userKey []byte, seq SeqNum, typ ValueType) InternalKey {
	return InternalKey{UserKey: userKey, Trailer: MakeTrailer(seq, typ)}
}

// SeqNum returns the sequence number encoded in the trailer.
func (k InternalKey) SeqNum() SeqNum { return SeqFromTrailer(k.Trailer) }

// Kind returns the value type encoded in the trailer.
func (k InternalKey) Kind() ValueType { return TypeFromTrailer(k.Trailer) }

// Size returns the encoded length of k.
func (k InternalKey) Size() int { return len(k.UserKey) + TrailerLen }

// Encode appends the internal key's wire representation to dst.
func (k InternalKey) Encode(dst []byte) []byte {
	dst = append(dst, k.UserKey...)
	var buf [TrailerLen]byte
	binary.LittleEndian.PutUint64(buf[:], k.Trailer)
	return append(dst, buf[:]...)
}

// DecodeInternalKey parses an internal key out of buf. The returned
// UserKey aliases buf; callers that retain it beyond buf's lifetime must
// copy.
func DecodeInternalKey(buf []byte) (InternalKey, error) {
	if len(buf) < TrailerLen {
		return InternalKey{}, errors.Newf("base: internal key too short (%d bytes)", errors.Safe(len(buf)))
	}
	n := len(buf) - TrailerLen
	trailer := binary.LittleEndian.Uint64(buf[n:])
	return InternalKey{UserKey: buf[:n], Trailer: trailer}, nil
}

// Compare orders two internal keys under cmp: user key ascending, then
// sequence number descending (so the newest write for a user key sorts
// first), then value type descending as a final, arbitrary tiebreak.
func Compare(cmp func(a, b []byte) int, a, b InternalKey) int {
	if c := cmp(a.UserKey, b.UserKey); c != 0 {
		return c
	}
	// Trailers pack (seq<<8)|type, so a *larger* trailer is a *smaller*
	// internal key once sequence is made descending: compare reversed.
	switch {
	case a.Trailer > b.Trailer:
		return -1
	case a.Trailer < b.Trailer:
		return 1
	default:
		return 0
	}
}

// LookupKey is the self-delimiting representation used for point lookups:
// varuint(user_key_len) || internal_key.
type LookupKey struct {
	UserKey []byte
	Seq     SeqNum
}

// seekValueType is the largest ValueType tag an InternalKey can carry
// (excluding the batch-grouping tags, which never appear in a memtable
// or sstable key, only in vlog entry metadata). Using it as the trailer
// tiebreak when encoding a LookupKey guarantees the encoded key sorts
// at or before every real InternalKey sharing its user key and
// sequence number, regardless of that entry's own type, so a forward
// seek never skips past a same-sequence ValueLog entry.
const seekValueType = TypeValueLog

// Encode appends the lookup key's wire representation to dst.
func (k LookupKey) Encode(dst []byte) []byte {
	dst = varint.Put64(dst, uint64(len(k.UserKey)))
	dst = append(dst, k.UserKey...)
	var buf [TrailerLen]byte
	binary.LittleEndian.PutUint64(buf[:], MakeTrailer(k.Seq, seekValueType))
	return append(dst, buf[:]...)
}

// ToInternalKey builds the InternalKey a forward seek against an
// internal-key-ordered index should search for: it sorts at or before
// every real entry sharing k's user key with a sequence number ≤ k.Seq,
// and after every entry with a strictly greater sequence number, so
// the seek lands on the newest entry visible at the snapshot.
func (k LookupKey) ToInternalKey() InternalKey {
	return InternalKey{UserKey: k.UserKey, Trailer: MakeTrailer(k.Seq, seekValueType)}
}

// DecodeLookupKey parses buf into its user key length prefix and the
// InternalKey that follows.
func DecodeLookupKey(buf []byte) (userKeyLen int, ikey InternalKey, err error) {
	n, rest, err := varint.Consume(buf)
	if err != nil {
		return 0, InternalKey{}, errors.Wrap(err, "base: decoding lookup key length")
	}
	if uint64(len(rest)) < n+TrailerLen {
		return 0, InternalKey{}, errors.Newf("base: lookup key truncated")
	}
	ikey, err = DecodeInternalKey(rest[:n+TrailerLen])
	return int(n), ikey, err
}
