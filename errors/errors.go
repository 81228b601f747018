// Package errors defines the failure categories every drivecli operation reports.
package errors

import (
	"errors"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrProviderError = errors.New("provider error")
	ErrIOError       = errors.New("local io error")
	ErrNotFound      = errors.New("path not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrAmbiguousPath = errors.New("ambiguous path")
	ErrNotReadable   = errors.New("not readable")
)

// categories lists the sentinels from the most to the least specific.
// A provider 404 is both ErrNotFound and ErrProviderError; Category reports ErrNotFound.
var categories = []error{
	ErrInvalidPath,
	ErrNotFound,
	ErrAlreadyExists,
	ErrAmbiguousPath,
	ErrNotReadable,
	ErrProviderError,
	ErrIOError,
}

// Error is a failure attributed to one side of a transfer: the storage provider or the
// local filesystem. Both Kind and Cause match with errors.Is and errors.As.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

var _ error = (*Error)(nil)

// NewProviderError reports a failed call to the storage provider.
func NewProviderError(msg string, cause error) error {
	return &Error{Kind: ErrProviderError, Msg: msg, Cause: cause}
}

// NewIOError reports a failed read or write on the local filesystem.
func NewIOError(msg string, cause error) error {
	return &Error{Kind: ErrIOError, Msg: msg, Cause: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := []string{e.Kind.Error()}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Category returns the most specific sentinel err matches, or nil if it matches none.
func Category(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range categories {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
