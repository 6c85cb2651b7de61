// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package source opens input streams for parsing, transparently decompressing
// input that is compressed with gzip, zstd, or lz4.
package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies the compression format of an input stream.
type Format byte

// Constants defining the recognized formats.
const (
	Plain Format = iota // uncompressed
	Gzip                // RFC 1952 gzip
	Zstd                // Zstandard frame
	LZ4                 // LZ4 frame
)

var formatStr = [...]string{Plain: "plain", Gzip: "gzip", Zstd: "zstd", LZ4: "lz4"}

func (f Format) String() string {
	if int(f) >= len(formatStr) {
		return "unknown"
	}
	return formatStr[f]
}

var magic = []struct {
	prefix []byte
	format Format
}{
	{[]byte{0x1f, 0x8b}, Gzip},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, Zstd},
	{[]byte{0x04, 0x22, 0x4d, 0x18}, LZ4},
}

// Detect reports the format indicated by the leading bytes of a stream.
func Detect(head []byte) Format {
	for _, m := range magic {
		if bytes.HasPrefix(head, m.prefix) {
			return m.format
		}
	}
	return Plain
}

// NewReader returns a reader for the decompressed contents of r, along with
// the format that was detected. The caller must close the reader when done;
// closing it does not close r.
func NewReader(r io.Reader) (io.ReadCloser, Format, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4) // a short stream is plain
	switch f := Detect(head); f {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, f, fmt.Errorf("open gzip: %w", err)
		}
		return zr, f, nil
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, f, fmt.Errorf("open zstd: %w", err)
		}
		return zr.IOReadCloser(), f, nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(br)), f, nil
	default:
		return io.NopCloser(br), f, nil
	}
}
