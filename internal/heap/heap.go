// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package heap implements the fixed-size, block-addressed file heap
// that every InstaDB store (primary, write-mirror, or read-overlay) is
// built from: a single file projected into memory as an array of
// 64-byte blocks, with a small header occupying the first few blocks
// that carries the hash-index head pointers.
package heap

import (
	"encoding/binary"
	"fmt"

	"github.com/prokopschield/insta-db/internal/dberrors"
	"github.com/prokopschield/insta-db/internal/mmapfile"
)

const (
	// BlockSize is the fixed allocation unit of the heap, in bytes.
	BlockSize = 64
	blockShift = 6

	// indexShift relates heap size to bucket-table length: buckets = size >> indexShift.
	indexShift = 4

	// headerFixedSize is the portion of the header before the bucket
	// table: 8-byte magic, 4-byte size, 4-byte used, and 8 reserved
	// bytes kept for alignment and future header fields.
	headerFixedSize = 24

	magicOffset = 0
	sizeOffset  = 8
	usedOffset  = 12
)

// Magic is the 8-byte NUL-terminated ASCII magic stamped at the start
// of every heap once it has been initialized.
var Magic = [8]byte{'I', 'n', 's', 't', 'a', 'D', 'B', 0}

// Heap is a single mapped block-heap file: the primary, one
// write-mirror, or one read-overlay.
type Heap struct {
	mm       *mmapfile.File
	writable bool
}

// Open maps path as a heap. sizeBytes is the desired total heap
// capacity in bytes; it is only honored (to grow the file) when
// writable is true. When writable is true, sizeBytes must be a
// positive multiple of BlockSize, for a fresh or an existing heap; a
// heap whose header already records a size keeps that size.
func Open(path string, sizeBytes int64, writable bool) (*Heap, error) {
	if writable && (sizeBytes <= 0 || sizeBytes%BlockSize != 0) {
		return nil, fmt.Errorf("%w: size %d is not a positive multiple of %d", dberrors.ErrOpen, sizeBytes, BlockSize)
	}

	mm, err := mmapfile.Open(path, sizeBytes, writable)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dberrors.ErrOpen, err)
	}

	h := &Heap{mm: mm, writable: writable}

	if len(mm.Data()) < headerFixedSize {
		_ = mm.Close()
		return nil, fmt.Errorf("%w: heap file too short for a header", dberrors.ErrOpen)
	}

	if writable {
		if err := h.ensureHeader(); err != nil {
			_ = mm.Close()
			return nil, err
		}
	} else if err := h.checkMagic(); err != nil {
		_ = mm.Close()
		return nil, err
	}

	return h, nil
}

// ensureHeader stamps the magic and initializes size/used on first
// open of a fresh (all-zero) heap file, per spec §4.A.
func (h *Heap) ensureHeader() error {
	data := h.mm.Data()

	size := binary.LittleEndian.Uint32(data[sizeOffset:])
	if size == 0 {
		size = uint32(len(data) / BlockSize)
		binary.LittleEndian.PutUint32(data[sizeOffset:], size)
	}

	used := binary.LittleEndian.Uint32(data[usedOffset:])
	hdrBlocks := HeaderBlocks(size)
	if used < hdrBlocks {
		copy(data[magicOffset:magicOffset+8], Magic[:])
		binary.LittleEndian.PutUint32(data[usedOffset:], hdrBlocks)
	}

	return nil
}

func (h *Heap) checkMagic() error {
	data := h.mm.Data()
	if string(data[magicOffset:magicOffset+8]) != string(Magic[:]) {
		return fmt.Errorf("%w: bad magic on heap file", dberrors.ErrCorruption)
	}
	return nil
}

// HeaderBlocks computes H, the number of blocks occupied by the
// header (magic + size + used + bucket table), for a heap of the
// given size in blocks.
func HeaderBlocks(sizeBlocks uint32) uint32 {
	indexSize := sizeBlocks >> indexShift
	headerBytes := uint32(headerFixedSize) + 4*indexSize
	return (headerBytes + BlockSize - 1) / BlockSize
}

// Data returns the raw mapped bytes of the heap.
func (h *Heap) Data() []byte {
	return h.mm.Data()
}

// Writable reports whether this heap was opened read-write.
func (h *Heap) Writable() bool {
	return h.writable
}

// Size returns the heap's total capacity in blocks.
func (h *Heap) Size() uint32 {
	return binary.LittleEndian.Uint32(h.mm.Data()[sizeOffset:])
}

// Used returns the number of blocks allocated so far, including the header.
func (h *Heap) Used() uint32 {
	return binary.LittleEndian.Uint32(h.mm.Data()[usedOffset:])
}

// SetUsed advances the heap's used-block counter. Only valid on a
// writable heap.
func (h *Heap) SetUsed(used uint32) {
	binary.LittleEndian.PutUint32(h.mm.Data()[usedOffset:], used)
}

// HeaderBlocksHere returns H for this heap's current size.
func (h *Heap) HeaderBlocksHere() uint32 {
	return HeaderBlocks(h.Size())
}

// IndexSize returns the number of hash-index head pointers (size/16).
func (h *Heap) IndexSize() uint32 {
	return h.Size() >> indexShift
}

func (h *Heap) bucketTableOffset() int {
	return headerFixedSize
}

// BucketHead returns the head pointer of hash-index chain i.
func (h *Heap) BucketHead(i uint32) uint32 {
	off := h.bucketTableOffset() + 4*int(i)
	return binary.LittleEndian.Uint32(h.mm.Data()[off:])
}

// SetBucketHead sets the head pointer of hash-index chain i.
func (h *Heap) SetBucketHead(i uint32, bucket uint32) {
	off := h.bucketTableOffset() + 4*int(i)
	binary.LittleEndian.PutUint32(h.mm.Data()[off:], bucket)
}

// BucketToAddr converts a bucket number to a byte offset into Data().
func BucketToAddr(bucket uint32) int {
	return int(bucket) << blockShift
}

// AddrToBucket converts a byte offset into Data() to a bucket number.
func AddrToBucket(addr int) uint32 {
	return uint32(addr >> blockShift)
}

// Slice returns the nbytes starting at bucket b, bounds-checked
// against the mapped region.
func (h *Heap) Slice(b uint32, nbytes int) ([]byte, error) {
	off := BucketToAddr(b)
	data := h.mm.Data()
	if off < 0 || off+nbytes > len(data) {
		return nil, fmt.Errorf("%w: bucket %d + %d bytes out of range", dberrors.ErrCorruption, b, nbytes)
	}
	return data[off : off+nbytes], nil
}

// InRange reports whether bucket b is a valid, live entry address: 0
// (the null sentinel) or within [H, Used).
func (h *Heap) InRange(b uint32) bool {
	if b == 0 {
		return true
	}
	return b >= h.HeaderBlocksHere() && b < h.Used()
}

// CheckLive returns ErrCorruption if b is neither the null sentinel
// nor a live, in-range bucket.
func (h *Heap) CheckLive(b uint32) error {
	if !h.InRange(b) {
		return fmt.Errorf("%w: bucket %d outside [%d, %d)", dberrors.ErrCorruption, b, h.HeaderBlocksHere(), h.Used())
	}
	return nil
}

// Sync flushes the heap's dirty pages to disk.
func (h *Heap) Sync() error {
	return h.mm.Sync()
}

// Close unmaps the heap and closes its backing file.
func (h *Heap) Close() error {
	return h.mm.Close()
}
