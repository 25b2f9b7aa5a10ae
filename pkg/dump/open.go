package dump

import (
	"bufio"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const readBufferSize = 1 << 20

// Opener returns a fresh reader over the dump. The pipeline reads the dump
// twice, so it needs to reopen it.
type Opener func() (io.ReadCloser, error)

// FileOpener returns an Opener for path, decompressing by extension:
// ".bz2" (the format dumps are published in), ".zst", or plain XML.
func FileOpener(path string) Opener {
	return func() (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dump: %w", err)
		}
		buffered := bufio.NewReaderSize(f, readBufferSize)

		switch {
		case strings.HasSuffix(path, ".bz2"):
			return &stackedReader{Reader: bzip2.NewReader(buffered), closers: []func(){func() { f.Close() }}}, nil
		case strings.HasSuffix(path, ".zst"):
			dec, err := zstd.NewReader(buffered)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("zstd reader: %w", err)
			}
			return &stackedReader{Reader: dec, closers: []func(){dec.Close, func() { f.Close() }}}, nil
		default:
			return &stackedReader{Reader: buffered, closers: []func(){func() { f.Close() }}}, nil
		}
	}
}

// stackedReader closes a decompressor chain innermost first.
type stackedReader struct {
	io.Reader
	closers []func()
}

func (s *stackedReader) Close() error {
	for _, c := range s.closers {
		c()
	}
	return nil
}
