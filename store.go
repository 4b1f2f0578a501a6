// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package instadb

import (
	"fmt"
	"log/slog"

	"github.com/prokopschield/insta-db/internal/codec"
	"github.com/prokopschield/insta-db/internal/entrywriter"
	"github.com/prokopschield/insta-db/internal/hashhex"
	"github.com/prokopschield/insta-db/internal/mirror"
	"github.com/prokopschield/insta-db/internal/reader"
	"github.com/prokopschield/insta-db/internal/unsafestring"

	"lukechampine.com/blake3"
)

// Store is an open content-addressed heap, with its write-mirrors and
// read-overlays. The zero value is not usable; construct one with
// Open. A Store has no internal locking -- per spec §5, callers must
// serialize their own concurrent access.
type Store struct {
	coord  *mirror.Coordinator
	codec  *codec.Envelope
	logger *slog.Logger
}

// Open opens (and, if necessary, creates and grows) a store per the
// given options. WithStorageFile and WithSize are required, whether or
// not the store already exists on disk.
func Open(opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}

	coord, err := mirror.Open(o.storageFile, o.size, o.mirrors, o.overlays, o.logger)
	if err != nil {
		return nil, err
	}

	return &Store{
		coord:  coord,
		codec:  codec.New(),
		logger: o.logger,
	}, nil
}

// Store inserts buf, deduplicating against any previously stored
// payload with the same content, and returns the 64-char lowercase
// hex of its BLAKE3-256 hash (spec §4.D/§4.E, Host-facing API §6).
func (s *Store) Store(buf []byte) (string, error) {
	if len(buf) == 0 {
		return "", nil
	}

	heaps := s.coord.WritableHeaps()
	if _, err := entrywriter.InsertBuffer(heaps, s.codec, buf); err != nil {
		return "", err
	}

	hash := blake3.Sum256(buf)
	return hashhex.Encode(hash), nil
}

// StoreString is Store for a string key, avoiding the copy a plain
// []byte(s) conversion would force -- the same zero-copy trick bit's
// table readers use for string lookups (unsafestring.ToBytes). The
// []byte view of str is only read during this call and is not
// retained, so the zero-copy conversion is safe.
func (s *Store) StoreString(str string) (string, error) {
	return s.Store(unsafestring.ToBytes(str))
}

// Fetch resolves hexHash against the primary and every read-overlay,
// in order, reassembling chunked arrays as needed (spec §4.F). It
// returns reader.ErrNotFound if no heap has a matching, resolvable
// entry.
func (s *Store) Fetch(hexHash string, decompress, dereference bool) ([]byte, error) {
	heaps := s.coord.ReadableHeaps()
	return reader.Fetch(heaps, s.codec, hexHash, decompress, dereference)
}

// Associate stores key and value (chunking either as needed) and
// points the key entry's val field at the value entry, so that a
// subsequent Fetch(hash(key), _, dereference=true) returns value
// instead of key (spec §4.H).
func (s *Store) Associate(key, value []byte) (bool, error) {
	heaps := s.coord.WritableHeaps()
	return entrywriter.Associate(heaps, s.codec, key, value)
}

// AssociateStrings is Associate for string key/value pairs, using the
// same zero-copy string-to-[]byte view as StoreString.
func (s *Store) AssociateStrings(key, value string) (bool, error) {
	return s.Associate(unsafestring.ToBytes(key), unsafestring.ToBytes(value))
}

// Close unmaps every heap (overlays, then mirrors, then primary) and
// closes their file handles. Backing files persist on disk.
func (s *Store) Close() error {
	if err := s.coord.Close(); err != nil {
		return fmt.Errorf("instadb: close: %w", err)
	}
	return nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
