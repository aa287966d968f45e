package scanner

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrRootNotDir is returned when the traversal root is not a directory.
var ErrRootNotDir = errors.New("root is not a directory")

// MetadataError reports a failed lstat or directory read. The entry is
// skipped and the walk continues.
type MetadataError struct {
	Op   string
	Path string
	Err  error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// OpenError reports that a byte stream could not be acquired for a candidate.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// IsPermission reports whether err was caused by missing permissions.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

// IsNotExist reports whether err was caused by an entry vanishing between
// listing and stat.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
