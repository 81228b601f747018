package drivecli

import (
	derrors "github.com/Jumpaku/go-drivecli/errors"
)

// Error categories re-exported from the errors package so callers of this package
// can match them with errors.Is without a second import.
var (
	ErrInvalidPath   = derrors.ErrInvalidPath
	ErrProviderError = derrors.ErrProviderError
	ErrIOError       = derrors.ErrIOError
	ErrNotFound      = derrors.ErrNotFound
	ErrAlreadyExists = derrors.ErrAlreadyExists
	ErrAmbiguousPath = derrors.ErrAmbiguousPath
	ErrNotReadable   = derrors.ErrNotReadable
)

func newProviderError(msg string, cause error) error {
	return derrors.NewProviderError(msg, cause)
}

func newIOError(msg string, cause error) error {
	return derrors.NewIOError(msg, cause)
}
