//go:build unix

package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// withFileReader maps path read-only and hands fn a reader over the mapping.
// The mapping is released when fn returns, so fn must copy what it keeps.
func withFileReader(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	size := info.Size()
	if size == 0 {
		return fn(bytes.NewReader(nil))
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	defer unix.Munmap(data)

	// Sequential scan; let the kernel read ahead aggressively.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	return fn(bytes.NewReader(data))
}
