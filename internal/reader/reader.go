// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package reader implements the lookup/fetch path of the store (spec
// §4.F): walking the primary heap and its read-only overlays in
// order, following an entry's val pointer when dereferencing, and
// reassembling chunked arrays.
package reader

import (
	"errors"

	"github.com/prokopschield/insta-db/internal/codec"
	"github.com/prokopschield/insta-db/internal/dberrors"
	"github.com/prokopschield/insta-db/internal/entry"
	"github.com/prokopschield/insta-db/internal/hashhex"
	"github.com/prokopschield/insta-db/internal/heap"
	"github.com/prokopschield/insta-db/internal/heapindex"
	"github.com/prokopschield/insta-db/internal/zero"
)

// ErrNotFound is returned by Fetch when no heap in the overlay chain
// has a matching entry, or dereference was requested against an entry
// with no associated value. Callers that want the host-facing
// "undefined" contract of spec §6 should treat it as a non-error miss.
var ErrNotFound = errors.New("instadb: not found")

// Fetch resolves hexHash against heaps (the primary followed by its
// read-only overlays, in order) and returns the payload, honoring
// decompress and dereference as described in spec §4.F.
func Fetch(heaps []*heap.Heap, c *codec.Envelope, hexHash string, decompress, dereference bool) ([]byte, error) {
	hash, err := hashhex.Decode(hexHash)
	if err != nil {
		return nil, err
	}

	for _, h := range heaps {
		bucket, err := heapindex.Lookup(h, hash)
		if err != nil {
			return nil, err
		}
		if bucket == 0 {
			continue
		}

		hdr, err := heapindex.ReadHeader(h, bucket)
		if err != nil {
			return nil, err
		}

		if dereference {
			if hdr.Val == 0 {
				return nil, ErrNotFound
			}
			bucket = hdr.Val
			if err := h.CheckLive(bucket); err != nil {
				return nil, err
			}
			hdr, err = heapindex.ReadHeader(h, bucket)
			if err != nil {
				return nil, err
			}
		}

		if hdr.IsArray() {
			return readArray(h, c, bucket, hdr, decompress)
		}
		return readLeaf(h, c, bucket, hdr, decompress)
	}

	return nil, ErrNotFound
}

// readLeaf implements spec §4.F step 4: a zero-copy view of the
// compressed bytes when decompress is false, or a freshly decompressed
// buffer when true.
func readLeaf(h *heap.Heap, c *codec.Envelope, bucket uint32, hdr entry.Header, decompress bool) ([]byte, error) {
	raw, err := h.Slice(bucket, entry.HeaderSize+int(hdr.Size))
	if err != nil {
		return nil, err
	}
	compressed := raw[entry.HeaderSize:]

	if !decompress {
		return compressed, nil
	}

	out := make([]byte, hdr.Len)
	n, err := c.Decompress(out, compressed)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// readArray implements spec §4.F step 3: decompress the array header,
// reassemble each chunk in order, and either return the assembled
// buffer (decompress=true) or recompress it to restore the compressed
// wire form (decompress=false), per DESIGN NOTES' "recompress on
// fetch of array."
func readArray(h *heap.Heap, c *codec.Envelope, bucket uint32, hdr entry.Header, decompress bool) ([]byte, error) {
	raw, err := h.Slice(bucket, entry.HeaderSize+int(hdr.Size))
	if err != nil {
		return nil, err
	}
	compressed := raw[entry.HeaderSize:]

	scratch := make([]byte, hdr.Len)
	n, err := c.Decompress(scratch, compressed)
	if err != nil {
		return nil, err
	}

	arr, err := entry.DecodeArray(scratch[:n])
	if err != nil {
		return nil, err
	}
	defer zero.Bytes(scratch)
	defer zero.Uint32(arr.Buckets)

	out := make([]byte, arr.DataLength)
	offset := uint32(0)

	for _, cb := range arr.Buckets {
		if err := h.CheckLive(cb); err != nil {
			return nil, err
		}
		chdr, err := heapindex.ReadHeader(h, cb)
		if err != nil {
			return nil, err
		}
		if offset+uint32(chdr.Len) > arr.DataLength {
			return nil, dberrors.ErrInvalidArray
		}

		craw, err := h.Slice(cb, entry.HeaderSize+int(chdr.Size))
		if err != nil {
			return nil, err
		}

		m, err := c.Decompress(out[offset:offset+uint32(chdr.Len)], craw[entry.HeaderSize:])
		if err != nil {
			return nil, err
		}
		offset += uint32(m)
	}

	if offset != arr.DataLength {
		return nil, dberrors.ErrInvalidArray
	}

	if decompress {
		return out, nil
	}

	return c.CompressUnbounded(out)
}
