// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package heapindex implements the open-chained hash index whose head
// pointers live in the block heap's header (spec §4.B): computing
// which chain a hash belongs to, walking a chain to resolve a hash to
// a bucket, and linking a freshly-written entry at the head of its
// chain.
package heapindex

import (
	"encoding/binary"
	"fmt"

	"github.com/prokopschield/insta-db/internal/dberrors"
	"github.com/prokopschield/insta-db/internal/entry"
	"github.com/prokopschield/insta-db/internal/heap"
)

// Chain returns the hash-index slot a 32-byte hash belongs to, given
// the heap's bucket-table length.
func Chain(hash [entry.HashSize]byte, indexSize uint32) uint32 {
	return binary.LittleEndian.Uint32(hash[:4]) % indexSize
}

// Lookup walks the chain for hash in h, returning the bucket of the
// matching entry, or 0 if no entry in the chain matches. Any
// out-of-range bucket encountered while walking is a corruption error.
func Lookup(h *heap.Heap, hash [entry.HashSize]byte) (uint32, error) {
	chain := Chain(hash, h.IndexSize())
	bucket := h.BucketHead(chain)

	for bucket != 0 {
		if err := h.CheckLive(bucket); err != nil {
			return 0, err
		}

		hdr, err := readHeader(h, bucket)
		if err != nil {
			return 0, err
		}

		if hdr.Hash == hash {
			return bucket, nil
		}
		bucket = hdr.Next
	}

	return 0, nil
}

// LinkHead inserts bucket at the head of its hash's chain in h,
// setting the entry's Next field in place and advancing the bucket
// table. Callers must have already written the entry's header+payload
// at bucket before calling LinkHead.
func LinkHead(h *heap.Heap, hash [entry.HashSize]byte, bucket uint32) error {
	chain := Chain(hash, h.IndexSize())
	head := h.BucketHead(chain)

	raw, err := h.Slice(bucket, entry.HeaderSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(raw[8+entry.HashSize:], head)

	h.SetBucketHead(chain, bucket)
	return nil
}

func readHeader(h *heap.Heap, bucket uint32) (entry.Header, error) {
	raw, err := h.Slice(bucket, entry.HeaderSize)
	if err != nil {
		return entry.Header{}, err
	}
	hdr, err := entry.Decode(raw)
	if err != nil {
		return entry.Header{}, fmt.Errorf("%w: bucket %d", dberrors.ErrCorruption, bucket)
	}
	return hdr, nil
}

// ReadHeader is the exported form of readHeader, used by the reader
// and entrywriter packages once a bucket has already been resolved.
func ReadHeader(h *heap.Heap, bucket uint32) (entry.Header, error) {
	return readHeader(h, bucket)
}
