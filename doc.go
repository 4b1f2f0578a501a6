// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package instadb implements a content-addressed, memory-mapped
// key/value store with transparent chunking, deduplication, and
// compression. Data is identified by the BLAKE3-256 hash of its
// contents; identical payloads are stored exactly once.
//
// A Store is a single file projected into memory as a fixed-size
// heap of 64-byte blocks:
//
//	┌────────────────────┐
//	│ magic "InstaDB\0"  │
//	│ size (blocks)      │
//	│ used (blocks)      │
//	│ hash-index heads   │
//	├────────────────────┤
//	│ entry              │
//	│ entry              │
//	│ ...                │
//	└────────────────────┘
//
// Entries are append-only and never moved or freed: Used monotonically
// grows until the heap is full. A Store may be opened with zero or
// more synchronous write-mirrors, kept byte-identical to the primary,
// and zero or more read-only overlays, searched in insertion order
// when the primary misses.
package instadb
