// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mirror implements the mirror coordinator (spec §4.G):
// opening a primary heap alongside an ordered list of write-mirrors
// and read-only overlays, replicating writes across the former, and
// scanning the latter on lookups that miss the primary.
package mirror

import (
	"fmt"
	"log/slog"

	"github.com/prokopschield/insta-db/internal/dberrors"
	"github.com/prokopschield/insta-db/internal/heap"
)

// Coordinator owns the primary heap plus its write-mirrors and
// read-overlays. The primary and write-mirrors are opened against the
// same target size; overlays are mapped read-only at their own length.
type Coordinator struct {
	primary  *heap.Heap
	mirrors  []*heap.Heap
	overlays []*heap.Heap
	logger   *slog.Logger
}

// Open opens the primary heap at primaryPath (creating/growing it to
// sizeBytes), then each of mirrorPaths and overlayPaths in order.
// A mirror or overlay that fails to open is skipped silently, per
// spec §4.G and §7 ("any mirror that fails to map is omitted
// silently -- the primary remains authoritative"); the primary itself
// failing to open is a hard failure.
func Open(primaryPath string, sizeBytes int64, mirrorPaths, overlayPaths []string, logger *slog.Logger) (*Coordinator, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discard{}, nil))
	}

	primary, err := heap.Open(primaryPath, sizeBytes, true)
	if err != nil {
		return nil, fmt.Errorf("%w: primary %s: %v", dberrors.ErrOpen, primaryPath, err)
	}

	c := &Coordinator{primary: primary, logger: logger}

	for _, p := range mirrorPaths {
		m, err := heap.Open(p, sizeBytes, true)
		if err != nil {
			logger.Warn("skipping write-mirror that failed to open", "path", p, "error", err)
			continue
		}
		c.mirrors = append(c.mirrors, m)
	}

	for _, p := range overlayPaths {
		o, err := heap.Open(p, 0, false)
		if err != nil {
			logger.Warn("skipping read-overlay that failed to open", "path", p, "error", err)
			continue
		}
		c.overlays = append(c.overlays, o)
	}

	return c, nil
}

// WritableHeaps returns the primary followed by every live
// write-mirror, in the order writes must be replicated.
func (c *Coordinator) WritableHeaps() []*heap.Heap {
	out := make([]*heap.Heap, 0, 1+len(c.mirrors))
	out = append(out, c.primary)
	out = append(out, c.mirrors...)
	return out
}

// ReadableHeaps returns the primary followed by every live
// read-overlay, in the order lookups must be attempted (spec §4.F:
// "the primary followed by each read-only overlay in insertion
// order").
func (c *Coordinator) ReadableHeaps() []*heap.Heap {
	out := make([]*heap.Heap, 0, 1+len(c.overlays))
	out = append(out, c.primary)
	out = append(out, c.overlays...)
	return out
}

// Primary returns the primary heap.
func (c *Coordinator) Primary() *heap.Heap {
	return c.primary
}

// Close unmaps every heap in reverse of open order: overlays, then
// mirrors, then the primary -- each wrapper frees its children first,
// per spec §4.G.
func (c *Coordinator) Close() error {
	var firstErr error
	for i := len(c.overlays) - 1; i >= 0; i-- {
		if err := c.overlays[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for i := len(c.mirrors) - 1; i >= 0; i-- {
		if err := c.mirrors[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := c.primary.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
