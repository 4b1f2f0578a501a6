// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package heap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenInitializesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")

	h, err := Open(path, 4096, true)
	require.NoError(t, err)
	defer h.Close()

	require.Equal(t, uint32(4096/BlockSize), h.Size())
	require.Equal(t, string(Magic[:]), string(h.Data()[:8]))
	require.Equal(t, HeaderBlocks(h.Size()), h.Used())
	require.True(t, h.Used() <= h.Size())
}

func TestReopenPreservesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")

	h1, err := Open(path, 4096, true)
	require.NoError(t, err)
	h1.SetBucketHead(3, 42)
	h1.SetUsed(h1.Used() + 1)
	require.NoError(t, h1.Close())

	h2, err := Open(path, 4096, true)
	require.NoError(t, err)
	defer h2.Close()

	require.Equal(t, uint32(42), h2.BucketHead(3))
}

func TestBucketAddrRoundTrip(t *testing.T) {
	for _, b := range []uint32{0, 1, 17, 1 << 20} {
		require.Equal(t, b, AddrToBucket(BucketToAddr(b)))
	}
}

func TestInRangeAndCheckLive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")
	h, err := Open(path, 4096, true)
	require.NoError(t, err)
	defer h.Close()

	require.True(t, h.InRange(0))
	require.NoError(t, h.CheckLive(0))

	require.False(t, h.InRange(h.Used()))
	require.Error(t, h.CheckLive(h.Used()+1))
}

func TestOpenRejectsBadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")
	_, err := Open(path, 100, true)
	require.Error(t, err)
}

func TestOpenReadOnlyAcceptsValidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")
	h, err := Open(path, 4096, true)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	ro, err := Open(path, 0, false)
	require.NoError(t, err)
	defer ro.Close()
}

func TestOpenReadOnlyRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")
	h, err := Open(path, 4096, true)
	require.NoError(t, err)
	data := h.Data()
	copy(data[:8], "garbage\x00")
	require.NoError(t, h.Close())

	_, err = Open(path, 0, false)
	require.Error(t, err)
}
