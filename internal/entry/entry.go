// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package entry encodes and decodes the variable-length entry records
// stored in the block heap: the fixed-size header (magic, content
// hash, chain pointer, compressed/uncompressed lengths, and an
// optional associated-value pointer) plus the compressed payload that
// follows it.
package entry

import (
	"encoding/binary"
	"fmt"

	"github.com/prokopschield/insta-db/internal/dberrors"
)

const (
	// HashSize is the width of a BLAKE3-256 content hash, in bytes.
	HashSize = 32

	// HeaderSize is the size, in bytes, of the fixed entry header
	// that precedes an entry's compressed payload: 8-byte magic,
	// 32-byte hash, 4-byte next, 2-byte size, 2-byte len, 4-byte val.
	HeaderSize = 8 + HashSize + 4 + 2 + 2 + 4

	// MaxUncompressedSize is the largest uncompressed payload a leaf
	// entry may hold (ENTRY_MAX_SIZE_BYTES in the original source).
	MaxUncompressedSize = 4096

	nextOff = 8 + HashSize
	sizeOff = nextOff + 4
	lenOff  = sizeOff + 2
	valOff  = lenOff + 2
)

// MagicLeaf and MagicArray are the two entry-kind discriminants: a
// plain compressed-payload leaf, or an array entry whose decompressed
// payload is itself a chunk-bucket vector.
var (
	MagicLeaf  = [8]byte{'D', 'b', 'E', 'n', 't', 'r', 'y', 0}
	MagicArray = [8]byte{'D', 'b', 'E', 'n', 't', 'A', 'r', 0}
)

// Header is the decoded, in-memory view of an entry's fixed header.
type Header struct {
	Magic [8]byte
	Hash  [HashSize]byte
	Next  uint32
	Size  uint16 // compressed payload length
	Len   uint16 // uncompressed payload length
	Val   uint32
}

// IsArray reports whether this entry is a chunk-array entry rather
// than a plain leaf.
func (h Header) IsArray() bool {
	return h.Magic == MagicArray
}

// Encode writes h into dst[0:HeaderSize]. dst must be at least
// HeaderSize bytes long.
func Encode(dst []byte, h Header) {
	_ = dst[HeaderSize-1] // bounds check elimination
	copy(dst[0:8], h.Magic[:])
	copy(dst[8:8+HashSize], h.Hash[:])
	binary.LittleEndian.PutUint32(dst[nextOff:], h.Next)
	binary.LittleEndian.PutUint16(dst[sizeOff:], h.Size)
	binary.LittleEndian.PutUint16(dst[lenOff:], h.Len)
	binary.LittleEndian.PutUint32(dst[valOff:], h.Val)
}

// Decode reads a Header out of src, which must be at least
// HeaderSize bytes long.
func Decode(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, fmt.Errorf("%w: entry header truncated (%d < %d)", dberrors.ErrCorruption, len(src), HeaderSize)
	}
	var h Header
	copy(h.Magic[:], src[0:8])
	copy(h.Hash[:], src[8:8+HashSize])
	h.Next = binary.LittleEndian.Uint32(src[nextOff:])
	h.Size = binary.LittleEndian.Uint16(src[sizeOff:])
	h.Len = binary.LittleEndian.Uint16(src[lenOff:])
	h.Val = binary.LittleEndian.Uint32(src[valOff:])

	if h.Magic != MagicLeaf && h.Magic != MagicArray {
		return Header{}, fmt.Errorf("%w: bad entry magic %q", dberrors.ErrCorruption, h.Magic[:])
	}
	return h, nil
}

// SetMagic overwrites just the magic field of an already-encoded
// entry in place -- used by the chunker to retag a freshly-written
// leaf as an array entry (spec §4.E step 5) without re-encoding the
// rest of the header.
func SetMagic(dst []byte, magic [8]byte) {
	copy(dst[0:8], magic[:])
}

// SetVal overwrites just the val pointer of an already-encoded entry
// in place -- used by Associate (spec §4.H step 3).
func SetVal(dst []byte, val uint32) {
	binary.LittleEndian.PutUint32(dst[valOff:], val)
}

// NeededBlocks returns the number of contiguous 64-byte blocks an
// entry with the given compressed size requires, including its
// header.
func NeededBlocks(compressedSize int) uint32 {
	total := HeaderSize + compressedSize
	return uint32((total + 63) / 64)
}
