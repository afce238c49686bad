// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package bloom implements the LevelDB-compatible Bloom filter policy used
// by the SSTable filter block.
package bloom

import "fmt"

// Policy is a base.FilterPolicy backed by a classic Bloom filter with a
// configurable number of bits per key.
type Policy struct {
	bitsPerKey int
}

// NewPolicy returns a Policy using bitsPerKey bits of filter memory per key.
func NewPolicy(bitsPerKey int) *Policy {
	return &Policy{bitsPerKey: bitsPerKey}
}

// Name implements base.FilterPolicy.
func (p *Policy) Name() string {
	return fmt.Sprintf("arisdb.BuiltinBloomFilter.%d", p.bitsPerKey)
}

func (p *Policy) numHashes() int {
	k := int(0.69 * float64(p.bitsPerKey))
	if k < 1 {
		k = 1
	}
	if k > 30 {
		k = 30
	}
	return k
}

// CreateFilter implements base.FilterPolicy. It allocates
// max(64, n*bitsPerKey) bits, rounded up to a whole byte, hashes each key
// once, and sets k bits per key by repeatedly adding a per-key delta modulo
// 2^32 to the hash, the same scheme LevelDB uses, so filter bytes stay
// portable across implementations.
func (p *Policy) CreateFilter(keys [][]byte) []byte {
	k := p.numHashes()

	bits := len(keys) * p.bitsPerKey
	if bits < 64 {
		bits = 64
	}
	bytes := (bits + 7) / 8
	bits = bytes * 8

	filter := make([]byte, bytes+1)
	for _, key := range keys {
		h := hash(key)
		delta := (h >> 17) | (h << 15)
		for j := 0; j < k; j++ {
			bitPos := h % uint32(bits)
			filter[bitPos/8] |= 1 << (bitPos % 8)
			h += delta
		}
	}
	filter[bytes] = byte(k)
	return filter
}

// MayContain implements base.FilterPolicy.
func (p *Policy) MayContain(filter, key []byte) bool {
	return MayContain(filter, key)
}

// MayContain is the free-function form, usable by readers that only know
// the filter's policy name (so long as it's this one) rather than holding
// a live *Policy.
func MayContain(filter, key []byte) bool {
	n := len(filter)
	if n < 2 {
		return false
	}
	bytes := n - 1
	bits := bytes * 8

	k := int(filter[n-1])
	if k > 30 {
		// Reserved for potentially new encodings; be conservative and
		// report a possible match rather than a false negative.
		return true
	}

	h := hash(key)
	delta := (h >> 17) | (h << 15)
	for j := 0; j < k; j++ {
		bitPos := h % uint32(bits)
		if filter[bitPos/8]&(1<<(bitPos%8)) == 0 {
			return false
		}
		h += delta
	}
	return true
}

// hash is the 32-bit Murmur-inspired hash LevelDB uses for Bloom filters.
// The filter's on-disk bytes are only portable across readers that hash
// keys identically, so this must stay exactly this function, not a
// faster general-purpose hash.
func hash(data []byte) uint32 {
	const (
		seed = 0xbc9f1d34
		m    = 0xc6a4a793
	)
	h := uint32(seed) ^ uint32(len(data))*m

	i := 0
	for ; i+4 <= len(data); i += 4 {
		w := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
		h += w
		h *= m
		h ^= h >> 16
	}

	switch len(data) - i {
	case 3:
		h += uint32(data[i+2]) << 16
		fallthrough
	case 2:
		h += uint32(data[i+1]) << 8
		fallthrough
	case 1:
		h += uint32(data[i])
		h *= m
		h ^= h >> 24
	}
	return h
}
