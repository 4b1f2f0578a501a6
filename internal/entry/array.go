// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package entry

import (
	"encoding/binary"
	"fmt"

	"github.com/prokopschield/insta-db/internal/dberrors"
)

// MaxArrayLength is the largest number of chunk buckets an array
// header can list while still fitting in a single leaf entry's
// MaxUncompressedSize bytes: 8 + 4*N <= 4096 => N <= 1022.
const MaxArrayLength = (MaxUncompressedSize - 8) / 4

// Array is the decoded payload of an array entry: the original
// buffer's total length, and the ordered list of leaf buckets holding
// its 4 KiB chunks.
type Array struct {
	DataLength uint32
	Buckets    []uint32
}

// EncodedSize returns the byte length of a.Encode()'s output.
func (a Array) EncodedSize() int {
	return 8 + 4*len(a.Buckets)
}

// Encode serializes the array header (data_length, array_length,
// buckets[]) into a fresh buffer, the ephemeral scratch payload that
// spec §4.E builds before inserting it as a leaf.
func (a Array) Encode() []byte {
	buf := make([]byte, a.EncodedSize())
	binary.LittleEndian.PutUint32(buf[0:4], a.DataLength)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(a.Buckets)))
	for i, b := range a.Buckets {
		binary.LittleEndian.PutUint32(buf[8+4*i:], b)
	}
	return buf
}

// DecodeArray parses a previously-decompressed array payload.
func DecodeArray(buf []byte) (Array, error) {
	if len(buf) < 8 {
		return Array{}, fmt.Errorf("%w: array header truncated", dberrors.ErrInvalidArray)
	}
	dataLength := binary.LittleEndian.Uint32(buf[0:4])
	arrayLength := binary.LittleEndian.Uint32(buf[4:8])

	want := 8 + 4*int(arrayLength)
	if len(buf) < want {
		return Array{}, fmt.Errorf("%w: array declares %d chunks but payload is %d bytes", dberrors.ErrInvalidArray, arrayLength, len(buf))
	}

	buckets := make([]uint32, arrayLength)
	for i := range buckets {
		buckets[i] = binary.LittleEndian.Uint32(buf[8+4*i:])
	}

	return Array{DataLength: dataLength, Buckets: buckets}, nil
}
