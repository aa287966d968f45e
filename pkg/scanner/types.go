package scanner

import (
	"os"
	"sync/atomic"
)

// Candidate is a filesystem entry plus the lstat snapshot it was filtered on.
// It lives for a single classification.
type Candidate struct {
	Path string
	Size int64
	Mode os.FileMode
}

// NewCandidate builds a Candidate from lstat information.
func NewCandidate(path string, info os.FileInfo) Candidate {
	return Candidate{
		Path: path,
		Size: info.Size(),
		Mode: info.Mode(),
	}
}

// IsRegular reports whether the snapshot describes a regular file.
func (c Candidate) IsRegular() bool {
	return c.Mode.IsRegular()
}

// IsSymlink reports whether the snapshot describes a symbolic link.
func (c Candidate) IsSymlink() bool {
	return c.Mode&os.ModeSymlink != 0
}

// Reason is the outcome of the candidate filter.
type Reason int

const (
	// Accepted means the entry will be classified.
	Accepted Reason = iota
	// RejectNotRegular covers directories, symlinks, devices, sockets and pipes.
	RejectNotRegular
	// RejectZeroSize covers empty regular files.
	RejectZeroSize
	// RejectExcluded covers entries under an excluded subtree or matching an
	// ignore pattern.
	RejectExcluded
)

func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectNotRegular:
		return "not-regular"
	case RejectZeroSize:
		return "zero-size"
	case RejectExcluded:
		return "excluded"
	default:
		return "unknown"
	}
}

// Stats holds the walker counters. All fields are updated atomically.
type Stats struct {
	entries    atomic.Int64
	candidates atomic.Int64
	skipped    atomic.Int64
	errors     atomic.Int64
	dirs       atomic.Int64
}

func (s *Stats) addEntries(delta int64) int64    { return s.entries.Add(delta) }
func (s *Stats) addCandidates(delta int64) int64 { return s.candidates.Add(delta) }
func (s *Stats) addSkipped(delta int64) int64    { return s.skipped.Add(delta) }
func (s *Stats) addErrors(delta int64) int64     { return s.errors.Add(delta) }
func (s *Stats) addDirs(delta int64) int64       { return s.dirs.Add(delta) }

// Entries is the number of directory entries looked at.
func (s *Stats) Entries() int64 { return s.entries.Load() }

// Candidates is the number of entries accepted by the filter.
func (s *Stats) Candidates() int64 { return s.candidates.Load() }

// Skipped is the number of entries rejected by the filter.
func (s *Stats) Skipped() int64 { return s.skipped.Load() }

// Errors is the number of metadata failures.
func (s *Stats) Errors() int64 { return s.errors.Load() }

// Dirs is the number of directories descended into.
func (s *Stats) Dirs() int64 { return s.dirs.Load() }
