// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package hashhex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prokopschield/insta-db/internal/entry"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var hash [entry.HashSize]byte
	for i := range hash {
		hash[i] = byte(i * 7)
	}

	s := Encode(hash)
	require.Len(t, s, entry.HashSize*2)

	got, err := Decode(s)
	require.NoError(t, err)
	require.Equal(t, hash, got)
}

func TestDecodeIsCaseInsensitive(t *testing.T) {
	lower := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	upper := "0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF0123456789ABCDEF"

	a, err := Decode(lower)
	require.NoError(t, err)
	b, err := Decode(upper)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := Decode("abcd")
	require.Error(t, err)
}

func TestDecodeRejectsInvalidHex(t *testing.T) {
	bad := "zz23456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	_, err := Decode(bad)
	require.Error(t, err)
}
