package model

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrInvalidPath is returned when a path argument is missing, does not
	// exist or is not a directory. No writes happen after it.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidDelimiter is returned when a delimiter is empty or collides
	// with the multi-value convention of a guarded field.
	ErrInvalidDelimiter = errors.New("invalid delimiter")

	// ErrTranscode marks per-file conversion failures.
	ErrTranscode = errors.New("transcode failed")

	// ErrFilesystem marks move/remove/mkdir failures while reorganizing.
	ErrFilesystem = errors.New("filesystem operation failed")
)

// CheckDir returns an ErrInvalidPath error unless path names an existing
// directory.
func CheckDir(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no path given", ErrInvalidPath)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q does not exist", ErrInvalidPath, path)
		}
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", ErrInvalidPath, path)
	}
	return nil
}

// UnitError records a failed (directory, field) tag editing unit.
type UnitError struct {
	Dir   string
	Field string
	Err   error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("tag %q in %q: %v", e.Field, e.Dir, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// TranscodeError records a source file that could not be converted.
type TranscodeError struct {
	Source   string
	Attempts int
	Err      error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %q (%d attempts): %v", e.Source, e.Attempts, e.Err)
}

func (e *TranscodeError) Unwrap() []error { return []error{ErrTranscode, e.Err} }

// ErrorKind names a class of the error taxonomy.
type ErrorKind string

const (
	KindInvalidPath      ErrorKind = "invalid_path"
	KindInvalidDelimiter ErrorKind = "invalid_delimiter"
	KindUnitFailure      ErrorKind = "unit_failure"
	KindTranscodeFailure ErrorKind = "transcode_failure"
	KindFilesystem       ErrorKind = "filesystem_failure"
	KindCanceled         ErrorKind = "canceled"
	KindUnknown          ErrorKind = "unknown"
)

// ErrorClassifier is implemented by errors that know their own kind.
type ErrorClassifier interface {
	ErrorKind() ErrorKind
}

// Kind classifies err for presentation.
func Kind(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	var unit *UnitError
	switch {
	case errors.Is(err, ErrInvalidPath):
		return KindInvalidPath
	case errors.Is(err, ErrInvalidDelimiter):
		return KindInvalidDelimiter
	case errors.As(err, &unit):
		return KindUnitFailure
	case errors.Is(err, ErrTranscode):
		return KindTranscodeFailure
	case errors.Is(err, ErrFilesystem):
		return KindFilesystem
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindUnknown
}
