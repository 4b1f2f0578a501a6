// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package hashhex converts between a BLAKE3-256 hash and its 64-char
// hexadecimal text form, case-insensitively on decode (spec §4.F).
package hashhex

import (
	"fmt"

	"github.com/prokopschield/insta-db/internal/dberrors"
	"github.com/prokopschield/insta-db/internal/entry"
)

const textLen = entry.HashSize * 2

// Encode returns the lowercase hex encoding of hash.
func Encode(hash [entry.HashSize]byte) string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, textLen)
	for i, b := range hash {
		buf[i*2] = hextable[b>>4]
		buf[i*2+1] = hextable[b&0xf]
	}
	return string(buf)
}

// Decode parses a 64-char hex string into a hash, accepting any mix
// of upper and lower case for a-f.
func Decode(s string) ([entry.HashSize]byte, error) {
	var hash [entry.HashSize]byte
	if len(s) != textLen {
		return hash, fmt.Errorf("%w: hash %q is not %d hex characters", dberrors.ErrCorruption, s, textLen)
	}

	for i := 0; i < entry.HashSize; i++ {
		hi, ok := nibble(s[i*2])
		if !ok {
			return hash, fmt.Errorf("%w: invalid hex digit %q", dberrors.ErrCorruption, s[i*2])
		}
		lo, ok := nibble(s[i*2+1])
		if !ok {
			return hash, fmt.Errorf("%w: invalid hex digit %q", dberrors.ErrCorruption, s[i*2+1])
		}
		hash[i] = hi<<4 | lo
	}

	return hash, nil
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
