// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package instadb

import (
	"log/slog"

	"github.com/prokopschield/insta-db/internal/hostopts"
)

// Option configures Open, mirroring bit.BuilderOption's
// functional-options shape.
type Option func(*options)

type options struct {
	storageFile string
	size        int64
	mirrors     []string
	overlays    []string
	logger      *slog.Logger
}

// WithStorageFile sets the path of the primary heap file. Required.
func WithStorageFile(path string) Option {
	return func(o *options) {
		o.storageFile = path
	}
}

// WithSize sets the heap's target capacity in bytes. Required on every
// Open; must be a positive multiple of 64. Files shorter than it (the
// primary and each write-mirror) are grown to it; a heap whose header
// already records a size keeps that size. Overlays ignore it.
func WithSize(sizeBytes int64) Option {
	return func(o *options) {
		o.size = sizeBytes
	}
}

// WithMirror adds a synchronous write-mirror, kept byte-identical to
// the primary.
func WithMirror(path string) Option {
	return func(o *options) {
		o.mirrors = append(o.mirrors, path)
	}
}

// WithOverlay adds a read-only overlay, consulted in the order added
// when the primary misses on fetch.
func WithOverlay(path string) Option {
	return func(o *options) {
		o.overlays = append(o.overlays, path)
	}
}

// WithCopiesBuffer decodes a host-encoded copies buffer (spec §6:
// decimal count + NUL-delimited paths) and adds each as a write-mirror.
// It is a no-op if buf fails to parse in a way that yields no paths.
func WithCopiesBuffer(buf []byte) Option {
	return func(o *options) {
		paths, err := hostopts.ParsePaths(buf)
		if err != nil {
			return
		}
		o.mirrors = append(o.mirrors, paths...)
	}
}

// WithROCopiesBuffer is WithCopiesBuffer's read-overlay counterpart.
func WithROCopiesBuffer(buf []byte) Option {
	return func(o *options) {
		paths, err := hostopts.ParsePaths(buf)
		if err != nil {
			return
		}
		o.overlays = append(o.overlays, paths...)
	}
}

// WithLogger sets an optional structured logger for open/replication
// diagnostics. If not provided, no logging output is produced, as in
// bit.Builder.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
