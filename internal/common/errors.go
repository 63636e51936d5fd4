// Package common defines shared constants and sentinel errors used across
// the filedrop client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Byte-source errors.
	ErrSourceMissing       = errors.New("source does not exist")
	ErrResourceUnavailable = errors.New("resource unavailable")

	// Upload session errors: the server declined a step. Chunk rejection is
	// reported only after per-chunk retries are exhausted.
	ErrInitiateRejected = errors.New("upload initiate rejected")
	ErrChunkRejected    = errors.New("chunk rejected")
	ErrFinalizeRejected = errors.New("upload finalize rejected")

	// Device identity errors.
	ErrInvalidDeviceID = errors.New("invalid device id format")
)
