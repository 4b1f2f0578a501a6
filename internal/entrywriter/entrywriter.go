// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package entrywriter implements the write path of the store: the
// entry writer (spec §4.D, insert_chunk), the chunker that wraps
// oversized payloads in an array entry (spec §4.E, insert_buffer),
// and key/value association (spec §4.H).
//
// Every insert is replicated across a primary heap and its ordered
// write-mirrors: the payload bytes land in every heap first, then
// each heap's chain pointer and used counter are advanced, matching
// the two-phase publish order the original engine used to keep a
// failed write from leaving a half-linked entry (spec §4.D notes).
package entrywriter

import (
	"github.com/prokopschield/insta-db/internal/codec"
	"github.com/prokopschield/insta-db/internal/dberrors"
	"github.com/prokopschield/insta-db/internal/entry"
	"github.com/prokopschield/insta-db/internal/heap"
	"github.com/prokopschield/insta-db/internal/heapindex"
	"github.com/prokopschield/insta-db/internal/zero"

	"lukechampine.com/blake3"
)

// InsertChunk stores a payload of at most entry.MaxUncompressedSize
// bytes as a single leaf entry, deduplicating against the primary
// heap's index. heaps[0] must be the primary; any following heaps are
// write-mirrors kept in lockstep.
func InsertChunk(heaps []*heap.Heap, c *codec.Envelope, payload []byte) (uint32, error) {
	h := blake3.Sum256(payload)

	primary := heaps[0]
	if found, err := heapindex.Lookup(primary, h); err != nil {
		return 0, err
	} else if found != 0 {
		return found, nil
	}

	return writeEntry(heaps, c, h, len(payload), payload, entry.MagicLeaf)
}

// InsertBuffer stores a payload of arbitrary length, per spec §4.E:
// payloads up to entry.MaxUncompressedSize are stored directly via
// InsertChunk; larger payloads are split into entry.MaxUncompressedSize
// chunks, each inserted (and deduplicated) independently, and wrapped
// in an array entry.
//
// The array entry's content hash is the hash of the *original*
// payload (not of the array header bytes), so that dedup and the
// returned content address are stable regardless of payload size --
// resolving spec §3 invariant 4 against the original engine's literal
// behavior; see DESIGN.md.
func InsertBuffer(heaps []*heap.Heap, c *codec.Envelope, payload []byte) (uint32, error) {
	if len(payload) <= entry.MaxUncompressedSize {
		return InsertChunk(heaps, c, payload)
	}

	h := blake3.Sum256(payload)

	primary := heaps[0]
	if found, err := heapindex.Lookup(primary, h); err != nil {
		return 0, err
	} else if found != 0 {
		return found, nil
	}

	n := (len(payload) + entry.MaxUncompressedSize - 1) / entry.MaxUncompressedSize
	if n > entry.MaxArrayLength {
		return 0, dberrors.ErrKeyTooBig
	}

	buckets := make([]uint32, n)
	for i := 0; i < n; i++ {
		start := i * entry.MaxUncompressedSize
		end := start + entry.MaxUncompressedSize
		if end > len(payload) {
			end = len(payload)
		}
		b, err := InsertChunk(heaps, c, payload[start:end])
		if err != nil {
			return 0, err
		}
		buckets[i] = b
	}

	arr := entry.Array{DataLength: uint32(len(payload)), Buckets: buckets}
	arrPayload := arr.Encode()

	return writeEntry(heaps, c, h, len(arrPayload), arrPayload, entry.MagicArray)
}

// writeEntry compresses payload, reserves the next free bucket run in
// the primary heap, writes the encoded header+compressed data into
// every heap at that bucket, and only then links the entry into each
// heap's hash chain and advances its used counter -- steps 4-8 of
// spec §4.D.
func writeEntry(heaps []*heap.Heap, c *codec.Envelope, hash [entry.HashSize]byte, uncompressedLen int, payload []byte, magic [8]byte) (uint32, error) {
	primary := heaps[0]

	if primary.Used() >= primary.Size() {
		return 0, dberrors.ErrStoreFull
	}

	b := primary.Used()
	avail := int(primary.Size()-primary.Used())*heap.BlockSize - entry.HeaderSize
	if avail < entry.MaxUncompressedSize {
		return 0, dberrors.ErrStoreFull
	}

	scratch := make([]byte, avail)
	n, err := c.Compress(scratch, payload)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, dberrors.ErrStoreFull
	}
	defer zero.Bytes(scratch)

	need := entry.NeededBlocks(n)
	hdr := entry.Header{
		Magic: magic,
		Hash:  hash,
		Next:  0,
		Size:  uint16(n),
		Len:   uint16(uncompressedLen),
		Val:   0,
	}

	// step 7: stage the entry's bytes in every heap before any of
	// them links it in.
	for _, hp := range heaps {
		raw, err := hp.Slice(b, entry.HeaderSize+n)
		if err != nil {
			return 0, err
		}
		entry.Encode(raw, hdr)
		copy(raw[entry.HeaderSize:], scratch[:n])
	}

	// step 8: publish per-heap.
	for _, hp := range heaps {
		if err := heapindex.LinkHead(hp, hash, b); err != nil {
			return 0, err
		}
		hp.SetUsed(hp.Used() + need)
	}

	return b, nil
}

// Associate implements spec §4.H: insert key, optionally insert
// value, and point the key entry's val field at the value entry
// across the primary and every write-mirror.
func Associate(heaps []*heap.Heap, c *codec.Envelope, key, value []byte) (bool, error) {
	kb, err := InsertBuffer(heaps, c, key)
	if err != nil {
		return false, err
	}

	var vb uint32
	if len(value) > 0 {
		vb, err = InsertBuffer(heaps, c, value)
		if err != nil {
			return false, err
		}
	}

	for _, hp := range heaps {
		raw, err := hp.Slice(kb, entry.HeaderSize)
		if err != nil {
			return false, err
		}
		entry.SetVal(raw, vb)
	}

	return true, nil
}
