package upload

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCategory = errors.New("invalid upload category")
	ErrUnknownSession  = errors.New("unknown upload session")
	ErrMissingChunk    = errors.New("no chunk provided")
)

// IncompleteUploadError reports how many chunks arrived versus how many the
// session declared, so the client can resend what is missing.
type IncompleteUploadError struct {
	Received int
	Total    int
}

func (e *IncompleteUploadError) Error() string {
	return fmt.Sprintf("upload incomplete: received %d of %d chunks", e.Received, e.Total)
}

// AssemblyError is fatal: a fragment expected at Index could not be read or
// the destination could not be written. The destination file is never left
// partially visible.
type AssemblyError struct {
	Index int
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("chunk assembly failed at index %d: %v", e.Index, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// InvalidMetadataError names the finalize-form JSON block that failed to
// parse or validate.
type InvalidMetadataError struct {
	Block string
	Err   error
}

func (e *InvalidMetadataError) Error() string {
	return fmt.Sprintf("invalid metadata block %q: %v", e.Block, e.Err)
}

func (e *InvalidMetadataError) Unwrap() error { return e.Err }

// StorageError wraps a blob-store failure while saving an attached file.
// Finalization aborts before any database write.
type StorageError struct {
	Field string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to store file from field %q: %v", e.Field, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
