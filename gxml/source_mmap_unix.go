//go:build linux || darwin || freebsd

package gxml

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// NewMappedFileSource memory-maps path and returns a slice-backed
// Source over the mapping, plus a closer that unmaps it. The parser
// doesn't distinguish this from any other slice-backed input; it just
// happens to borrow directly from the OS page cache instead of a
// heap-allocated buffer.
func NewMappedFileSource(path string) (Source, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening file for mmap")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, errors.Wrap(err, "stat for mmap")
	}
	size := info.Size()
	if size == 0 {
		return NewSliceSource(nil), func() error { return nil }, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, errors.Wrap(err, "mmap")
	}

	closer := func() error {
		return unix.Munmap(data)
	}
	return NewSliceSource(data), closer, nil
}
