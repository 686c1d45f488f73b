package shader

import "errors"

// Sentinel errors for path validation, discovery and sync operations.
var (
	// ErrInvalidExtension indicates a single-file path with the wrong extension.
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrModeMismatch indicates one path is a directory and the other a file.
	ErrModeMismatch = errors.New("source and destination must both be files or both be directories")
	// ErrPathNotFound indicates a source or destination path does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrIO indicates a read, write or metadata failure.
	ErrIO = errors.New("i/o error")
	// ErrAmbiguousPairing indicates more than one destination matched a source
	// under the strict pairing policy.
	ErrAmbiguousPairing = errors.New("ambiguous pairing")
)
