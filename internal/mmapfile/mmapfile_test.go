// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package mmapfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenGrowsAndMapsWritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")

	f, err := Open(path, 4096, true)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, 4096, f.Len())
	require.True(t, f.Writable())

	f.Data()[0] = 0xFF
	require.NoError(t, f.Sync())
}

func TestReopenReadOnlySeesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")

	f, err := Open(path, 4096, true)
	require.NoError(t, err)
	f.Data()[10] = 0x42
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	ro, err := Open(path, 0, false)
	require.NoError(t, err)
	defer ro.Close()

	require.False(t, ro.Writable())
	require.Equal(t, byte(0x42), ro.Data()[10])
}

func TestOpenRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	f, err := Open(path, 0, true)
	require.Error(t, err)
	require.Nil(t, f)
}

func TestOpenDoesNotShrinkExistingLargerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.db")

	f1, err := Open(path, 8192, true)
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	f2, err := Open(path, 4096, true)
	require.NoError(t, err)
	defer f2.Close()

	require.Equal(t, 8192, f2.Len())
}
