package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for lookups on unknown review ids.
	ErrNotFound = errors.New("review not found")
	// ErrValidation marks a record rejected during normalization or a
	// bad request-level input (empty or duplicate response text).
	ErrValidation = errors.New("validation failed")
	// ErrSyncInProgress is returned when a sync is triggered while one
	// is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrAlreadyResponded guards the write-once response contract.
	ErrAlreadyResponded = errors.New("response already set")
)

// ConnectorError wraps a single platform's fetch failure so the sync loop
// can isolate it without aborting sibling platforms.
type ConnectorError struct {
	Platform Platform
	Err      error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("connector %s: %v", e.Platform, e.Err)
}

func (e *ConnectorError) Unwrap() error { return e.Err }
