// Package fserr defines the path-attributed errors raised while walking and
// hashing directory trees.
package fserr

import (
	"context"
	"errors"
	"io/fs"
)

// Kind classifies a PathError.
type Kind string

const (
	InvalidArgument Kind = "INVALID_ARGUMENT"
	NotFound        Kind = "NOT_FOUND"
	IsDirectory     Kind = "IS_DIRECTORY"
	NotRegularFile  Kind = "NOT_REGULAR_FILE"
	IOError         Kind = "IO_ERROR"
	Cancelled       Kind = "CANCELLED"
)

// Sentinels for errors.Is matching against a PathError's kind.
var (
	ErrInvalidArgument = &kindError{kind: InvalidArgument}
	ErrNotFound        = &kindError{kind: NotFound}
	ErrIsDirectory     = &kindError{kind: IsDirectory}
	ErrNotRegularFile  = &kindError{kind: NotRegularFile}
	ErrIO              = &kindError{kind: IOError}
	ErrCancelled       = &kindError{kind: Cancelled}
)

type kindError struct {
	kind Kind
}

func (e *kindError) Error() string { return string(e.kind) }

// PathError carries the offending path, the failure kind and the cause.
type PathError struct {
	Path string
	Kind Kind
	Err  error
}

// Error renders "<path>: <message>".
func (e *PathError) Error() string {
	return e.Path + ": " + e.message()
}

func (e *PathError) message() string {
	switch e.Kind {
	case NotFound:
		return "File not found"
	case IsDirectory:
		return "Is a directory"
	case NotRegularFile:
		return "Not a file"
	case InvalidArgument:
		if e.Err == nil {
			return "Not a directory"
		}
	case Cancelled:
		return "Operation cancelled"
	}

	if e.Err == nil {
		return string(e.Kind)
	}
	// Drop the "op path:" prefix of *fs.PathError, the path is already printed.
	var pe *fs.PathError
	if errors.As(e.Err, &pe) {
		return pe.Err.Error()
	}
	return e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

// Is matches the kind sentinels.
func (e *PathError) Is(target error) bool {
	k, ok := target.(*kindError)
	return ok && k.kind == e.Kind
}

// New builds a PathError.
func New(path string, kind Kind, err error) *PathError {
	return &PathError{Path: path, Kind: kind, Err: err}
}

// FromIO classifies a filesystem error for path. Context errors become
// Cancelled, missing paths NotFound, everything else IOError.
func FromIO(path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return New(path, Cancelled, err)
	case errors.Is(err, fs.ErrNotExist):
		return New(path, NotFound, err)
	default:
		return New(path, IOError, err)
	}
}

// KindOf returns the kind of the first PathError in err's chain.
func KindOf(err error) (Kind, bool) {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
