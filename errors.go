// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package instadb

import (
	"github.com/prokopschield/insta-db/internal/dberrors"
	"github.com/prokopschield/insta-db/internal/reader"
)

// Error kinds returned by Store, Fetch, and Associate. They mirror the
// taxonomy a reimplementation of the original InstaDB engine is expected
// to surface to its host: open/map failures, a full heap, corrupted
// on-disk structures, compression failures, allocation failures, and
// malformed chunk arrays.
var (
	ErrOpen         = dberrors.ErrOpen
	ErrStoreFull    = dberrors.ErrStoreFull
	ErrCorruption   = dberrors.ErrCorruption
	ErrCompression  = dberrors.ErrCompression
	ErrOOM          = dberrors.ErrOOM
	ErrInvalidArray = dberrors.ErrInvalidArray
	ErrKeyTooBig    = dberrors.ErrKeyTooBig

	// ErrNotFound is returned by Fetch when the hash resolves to no
	// entry in the primary or any read-overlay, or dereference was
	// requested against an entry with no associated value.
	ErrNotFound = reader.ErrNotFound
)
