// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmapfile maps a backing file into memory as a single shared,
// growable region. It is the Go analogue of the mmap(2)/ftruncate(2)
// pairing the original InstaDB engine used directly: a writable heap
// file is grown to its target size on first open, then projected with
// MAP_SHARED so that writes through the returned slice are visible to
// every other process with the same file mapped.
package mmapfile

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// File is a memory-mapped view of a regular file.
type File struct {
	f        *os.File
	data     []byte
	writable bool
}

// Open maps path into memory. If writable is true and the file is
// shorter than size, the file is grown (via truncate) to size before
// mapping; size must then be a positive multiple of 64 bytes, though
// mmapfile itself does not enforce block alignment -- that is the
// block heap's invariant to keep.
//
// If writable is false, the file is mapped read-only at its current
// length and size is ignored.
func Open(path string, size int64, writable bool) (*File, error) {
	flag := os.O_RDONLY
	perm := os.FileMode(0o400)
	if writable {
		flag = os.O_RDWR | os.O_CREATE
		perm = 0o600
	}

	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, fmt.Errorf("os.OpenFile(%s): %w", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("f.Stat(%s): %w", path, err)
	}

	mapSize := st.Size()
	if writable && mapSize < size {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("f.Truncate(%s, %d): %w", path, size, err)
		}
		mapSize = size
	}

	if mapSize == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("mmapfile.Open(%s): empty file", path)
	}

	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(mapSize), prot, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("unix.Mmap(%s): %w", path, err)
	}

	if err := unix.Madvise(data, syscall.MADV_RANDOM); err != nil {
		_ = unix.Munmap(data)
		_ = f.Close()
		return nil, fmt.Errorf("unix.Madvise(%s): %w", path, err)
	}

	return &File{f: f, data: data, writable: writable}, nil
}

// Data returns the full mapped region. Callers writing through it must
// respect the Writable flag: writing to a read-only mapping will fault.
func (m *File) Data() []byte {
	return m.data
}

// Len returns the current length of the mapping in bytes.
func (m *File) Len() int {
	return len(m.data)
}

// Writable reports whether this mapping was opened read-write.
func (m *File) Writable() bool {
	return m.writable
}

// Sync flushes dirty pages of the mapping back to the backing file.
func (m *File) Sync() error {
	if !m.writable {
		return nil
	}
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("unix.Msync: %w", err)
	}
	return nil
}

// Close unmaps the region and closes the backing file handle.
func (m *File) Close() error {
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			return fmt.Errorf("unix.Munmap: %w", err)
		}
		m.data = nil
	}
	return m.f.Close()
}
