//go:build !(linux || darwin || freebsd)

package gxml

import (
	"os"

	"github.com/pkg/errors"
)

// NewMappedFileSource falls back to a plain whole-file read on
// platforms without a wired unix.Mmap (e.g. windows). The Source
// contract is identical either way; only the acquisition strategy for
// this external collaborator differs.
func NewMappedFileSource(path string) (Source, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading file")
	}
	return NewSliceSource(data), func() error { return nil }, nil
}
