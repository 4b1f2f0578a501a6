// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package codec implements the zlib-stream compression envelope (spec
// §4.C): a stateful compressor/decompressor pair, reset on every call,
// guarded by a mutex so a single Envelope may be shared by every
// insert and fetch a store performs. The original engine used a
// process-wide libdeflate-zlib pair at compression level 12; we scope
// the pair per-Store instead (DESIGN NOTES' "cleaner" option) and use
// klauspost/compress/zlib, an API-compatible, faster-than-stdlib zlib
// implementation, clamped to its highest supported level.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/prokopschield/insta-db/internal/dberrors"
)

// Envelope is the process's (or, here, store's) single compressor and
// decompressor. Only one Compress or Decompress call may be in flight
// at a time; the mutex enforces that, matching spec §5's "Shared
// resource policy."
type Envelope struct {
	mu  sync.Mutex
	buf bytes.Buffer
	zw  *zlib.Writer
}

// New creates a fresh Envelope ready for use.
func New() *Envelope {
	e := &Envelope{}
	e.zw, _ = zlib.NewWriterLevel(&e.buf, zlib.BestCompression)
	return e
}

// Compress writes the zlib-stream compression of src into dst[:n] and
// returns n. Per spec §4.C, if the compressed output would not fit in
// dst, Compress returns n=0, nil (not an error): the caller treats a
// zero-length result as a full-store condition.
func (e *Envelope) Compress(dst, src []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Reset()
	e.zw.Reset(&e.buf)

	if _, err := e.zw.Write(src); err != nil {
		return 0, fmt.Errorf("%w: %v", dberrors.ErrCompression, err)
	}
	if err := e.zw.Close(); err != nil {
		return 0, fmt.Errorf("%w: %v", dberrors.ErrCompression, err)
	}

	if e.buf.Len() > len(dst) {
		return 0, nil
	}

	return copy(dst, e.buf.Bytes()), nil
}

// CompressUnbounded returns the zlib-stream compression of src as a
// freshly allocated buffer, with no destination-capacity check. Used
// by the array reassembly path (spec §4.F step 3c) to recompress a
// buffer whose compressed size is not being checked against a tail
// reservation, unlike a real insert.
func (e *Envelope) CompressUnbounded(src []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf.Reset()
	e.zw.Reset(&e.buf)

	if _, err := e.zw.Write(src); err != nil {
		return nil, fmt.Errorf("%w: %v", dberrors.ErrCompression, err)
	}
	if err := e.zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", dberrors.ErrCompression, err)
	}

	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out, nil
}

// Decompress inflates src into dst[:n] and returns n. The stream must
// consume exactly len(src) and produce exactly len(dst) bytes, or the
// result is a corruption error, per spec §4.C/§7.
func (e *Envelope) Decompress(dst, src []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	br := bytes.NewReader(src)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", dberrors.ErrCorruption, err)
	}
	defer zr.Close()

	n, err := io.ReadFull(zr, dst)
	if err != nil {
		return n, fmt.Errorf("%w: %v", dberrors.ErrCorruption, err)
	}

	var probe [1]byte
	m, err := zr.Read(probe[:])
	if m > 0 {
		return n, fmt.Errorf("%w: decompressed output longer than expected", dberrors.ErrCorruption)
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %v", dberrors.ErrCorruption, err)
	}
	if br.Len() != 0 {
		return n, fmt.Errorf("%w: %d bytes left after compressed stream", dberrors.ErrCorruption, br.Len())
	}

	return n, nil
}
