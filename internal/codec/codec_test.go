// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	e := New()
	src := bytes.Repeat([]byte("hello world "), 100)

	dst := make([]byte, len(src))
	n, err := e.Compress(dst, src)
	require.NoError(t, err)
	require.Greater(t, n, 0)
	require.Less(t, n, len(src))

	out := make([]byte, len(src))
	m, err := e.Decompress(out, dst[:n])
	require.NoError(t, err)
	require.Equal(t, len(src), m)
	require.Equal(t, src, out)
}

func TestCompressTooSmallReturnsZero(t *testing.T) {
	e := New()
	src := bytes.Repeat([]byte{0x41}, 4096)

	n, err := e.Compress(make([]byte, 1), src)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	e := New()
	_, err := e.Decompress(make([]byte, 16), []byte("not zlib data"))
	require.Error(t, err)
}

func TestEnvelopeIsReusableAcrossCalls(t *testing.T) {
	e := New()
	for i := 0; i < 3; i++ {
		src := bytes.Repeat([]byte{byte(i)}, 1000)
		dst := make([]byte, 1000)
		n, err := e.Compress(dst, src)
		require.NoError(t, err)

		out := make([]byte, 1000)
		m, err := e.Decompress(out, dst[:n])
		require.NoError(t, err)
		require.Equal(t, src, out[:m])
	}
}

func TestCompressUnbounded(t *testing.T) {
	e := New()
	src := bytes.Repeat([]byte("round and round "), 500)

	out, err := e.CompressUnbounded(src)
	require.NoError(t, err)
	require.Less(t, len(out), len(src))

	back := make([]byte, len(src))
	n, err := e.Decompress(back, out)
	require.NoError(t, err)
	require.Equal(t, src, back[:n])
}
