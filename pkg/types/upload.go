// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Status is the state of an upload attempt.
type Status int

const (
	StatusIdle Status = iota
	StatusValidating
	StatusUploading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusValidating:
		return "validating"
	case StatusUploading:
		return "uploading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CandidateFile is a single user-supplied file awaiting upload. The payload
// is opaque: callers obtain it through Open and must close the reader.
//
// Name and Extension are set by NewCandidateFile and must not be modified
// afterwards; Extension is derived from Name. An accepted file is copied
// into its session, so later changes to the caller's value are not seen.
type CandidateFile struct {
	// Name is the base filename as the user supplied it.
	Name string

	// Extension is the lower-cased suffix after the last "." in Name.
	Extension string

	open func() (io.ReadCloser, error)
}

// NewCandidateFile builds a CandidateFile whose payload is produced by open.
func NewCandidateFile(name string, open func() (io.ReadCloser, error)) CandidateFile {
	return CandidateFile{
		Name:      name,
		Extension: ExtensionOf(name),
		open:      open,
	}
}

// CandidateFromPath builds a CandidateFile backed by a file on disk. The file
// is not opened until the payload is requested.
func CandidateFromPath(path string) CandidateFile {
	return NewCandidateFile(filepath.Base(path), func() (io.ReadCloser, error) {
		return os.Open(path)
	})
}

// Open returns a reader over the file payload.
func (f CandidateFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, os.ErrNotExist
	}
	return f.open()
}

// ExtensionOf returns the lower-cased substring after the final "." in name.
// A name without a "." yields the whole name, lower-cased.
func ExtensionOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// UploadSession is the per-attempt state owned by the upload controller.
// At most one session is active at a time.
type UploadSession struct {
	// ID distinguishes attempts so late timer ticks and transport results
	// from an earlier attempt can be recognised and dropped.
	ID uint64

	Status Status

	// Progress is the displayed percentage, 0-100.
	Progress int

	ErrorMessage string

	File CandidateFile
}
