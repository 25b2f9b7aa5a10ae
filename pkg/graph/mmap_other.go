//go:build !unix

package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

func withFileReader(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return fn(bufio.NewReaderSize(f, 1<<20))
}
