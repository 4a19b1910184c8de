package resolver

import (
	"errors"
	"io/fs"

	"github.com/spf13/afero"
)

// ProbeResult is the outcome of a single existence check.
type ProbeResult int

const (
	// NotFound means the candidate does not exist or is not a regular file.
	NotFound ProbeResult = iota
	// Found means the candidate exists as a regular file.
	Found
	// ProbeError means the stat failed for a reason other than non-existence
	// (permission denied, transient I/O failure).
	ProbeError
)

// String returns a short lowercase name for the result.
func (p ProbeResult) String() string {
	switch p {
	case Found:
		return "found"
	case ProbeError:
		return "error"
	default:
		return "not-found"
	}
}

// probe stats path on fsys. The returned error is non-nil only for ProbeError.
func probe(fsys afero.Fs, path string) (ProbeResult, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NotFound, nil
		}
		return ProbeError, err
	}
	if !info.Mode().IsRegular() {
		return NotFound, nil
	}
	return Found, nil
}
