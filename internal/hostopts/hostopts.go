// Copyright 2021 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package hostopts decodes the host-defined wire encoding for the
// `copies`/`rocopies` lists of spec §6: a decimal count, followed by
// that many NUL-delimited filenames, all in a single buffer. This is
// the contract the original engine's N-API host used
// (`__copies`/`__rocopies` in db.ts, parsed by db_alloc_sub_f in
// db.cc); a Go host binding that receives paths over the same wire
// shape can reuse it instead of inventing its own.
package hostopts

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/prokopschield/insta-db/internal/bytesutil"
	"github.com/prokopschield/insta-db/internal/dberrors"
)

// ParsePaths decodes buf as "<count>\x00<name1>\x00<name2>\x00...".
// Trailing or extra entries beyond count are ignored, matching the
// original parser's use of a loop bound by the parsed count rather
// than the number of NUL-delimited fields present.
func ParsePaths(buf []byte) ([]string, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	countField, rest, ok := bytesutil.Cut(buf, 0)
	if !ok {
		return nil, fmt.Errorf("%w: hostopts buffer missing count terminator", dberrors.ErrOpen)
	}

	count, err := strconv.Atoi(string(countField))
	if err != nil {
		return nil, fmt.Errorf("%w: hostopts count %q: %v", dberrors.ErrOpen, countField, err)
	}

	paths := make([]string, 0, count)
	for i := 0; i < count && len(rest) > 0; i++ {
		name, remainder, ok := bytesutil.Cut(rest, 0)
		if !ok {
			if len(name) > 0 {
				paths = append(paths, string(name))
			}
			break
		}
		if len(name) > 0 {
			paths = append(paths, string(name))
		}
		rest = remainder
	}

	return paths, nil
}

// EncodePaths is the inverse of ParsePaths, mainly useful for tests
// and for a host binding that wants to build the wire buffer itself.
func EncodePaths(paths []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(len(paths)))
	buf.WriteByte(0)
	for _, p := range paths {
		buf.WriteString(p)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}
