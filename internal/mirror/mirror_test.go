// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package mirror

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prokopschield/insta-db/internal/codec"
	"github.com/prokopschield/insta-db/internal/entrywriter"
)

func TestOpenWithNoMirrorsOrOverlays(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "primary.db"), 1<<20, nil, nil, nil)
	require.NoError(t, err)
	defer c.Close()

	require.Len(t, c.WritableHeaps(), 1)
	require.Len(t, c.ReadableHeaps(), 1)
}

func TestOpenReplicatesWritesToMirrors(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(
		filepath.Join(dir, "primary.db"),
		1<<20,
		[]string{filepath.Join(dir, "mirror1.db"), filepath.Join(dir, "mirror2.db")},
		nil,
		nil,
	)
	require.NoError(t, err)
	defer c.Close()

	require.Len(t, c.WritableHeaps(), 3)

	codecEnv := codec.New()
	_, err = entrywriter.InsertBuffer(c.WritableHeaps(), codecEnv, []byte("replicated payload"))
	require.NoError(t, err)

	heaps := c.WritableHeaps()
	for _, h := range heaps[1:] {
		require.Equal(t, heaps[0].Used(), h.Used())
	}
}

func TestOpenSkipsUnopenableMirrorSilently(t *testing.T) {
	dir := t.TempDir()

	// a directory can't be mmap'd as a heap file, so this path is
	// guaranteed to fail to open as a mirror.
	badMirror := filepath.Join(dir, "not-a-file")
	require.NoError(t, os.Mkdir(badMirror, 0o755))

	c, err := Open(
		filepath.Join(dir, "primary.db"),
		1<<20,
		[]string{badMirror},
		nil,
		nil,
	)
	require.NoError(t, err)
	defer c.Close()

	require.Len(t, c.WritableHeaps(), 1, "bad mirror must be skipped, not fail Open")
}

func TestOpenSkipsUnopenableOverlaySilently(t *testing.T) {
	dir := t.TempDir()

	badOverlay := filepath.Join(dir, "does-not-exist.db")

	c, err := Open(
		filepath.Join(dir, "primary.db"),
		1<<20,
		nil,
		[]string{badOverlay},
		nil,
	)
	require.NoError(t, err)
	defer c.Close()

	require.Len(t, c.ReadableHeaps(), 1, "missing overlay must be skipped, not fail Open")
}

func TestOpenFailsHardWhenPrimaryCannotOpen(t *testing.T) {
	dir := t.TempDir()

	badPrimary := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(badPrimary, 0o755))

	_, err := Open(badPrimary, 1<<20, nil, nil, nil)
	require.Error(t, err)
}

func TestPrimaryReturnsThePrimaryHeap(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(filepath.Join(dir, "primary.db"), 1<<20, nil, nil, nil)
	require.NoError(t, err)
	defer c.Close()

	require.Same(t, c.Primary(), c.WritableHeaps()[0])
}
