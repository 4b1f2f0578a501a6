// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package dberrors holds the sentinel error values shared by every
// internal package of the store, so that the public instadb package
// can re-export them without an import cycle.
package dberrors

import "errors"

var (
	ErrOpen         = errors.New("instadb: could not open or map store")
	ErrStoreFull    = errors.New("instadb: store is full")
	ErrCorruption   = errors.New("instadb: store corrupted")
	ErrCompression  = errors.New("instadb: compression failed")
	ErrOOM          = errors.New("instadb: allocation failed")
	ErrInvalidArray = errors.New("instadb: invalid chunk array")
	ErrKeyTooBig    = errors.New("instadb: payload exceeds maximum array size (~4 MiB)")
)
