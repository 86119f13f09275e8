package models

import "errors"

// Sentinel errors shared across packages. Call sites wrap these with
// fmt.Errorf("...: %w", ...) so handlers can classify failures with errors.Is.
var (
	// ErrNotFound covers missing workspaces, files, and conversations.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks a request missing a required field.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyCorpus is returned when an index build is attempted with zero chunks.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrIndexNotFound is returned when no persisted index exists for a conversation.
	ErrIndexNotFound = errors.New("index not found")

	// ErrGateway wraps embedding or completion provider failures. The gateway
	// does not retry; callers decide whether the operation is worth repeating.
	ErrGateway = errors.New("gateway failure")

	// ErrInvalidParameters marks invalid chunking parameters (overlap >= size).
	ErrInvalidParameters = errors.New("invalid parameters")
)
