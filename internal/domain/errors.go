package domain

import "errors"

// Sentinel errors shared across layers.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInteractionNotFound indicates the interaction does not exist.
	ErrInteractionNotFound = errors.New("interaction not found")
	// ErrInvalidInput indicates caller-supplied data failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtractionProviderError indicates the language-model provider failed.
	ErrExtractionProviderError = errors.New("extraction provider error")
	// ErrExtractionNotConfigured indicates no extraction provider is wired.
	ErrExtractionNotConfigured = errors.New("extraction not configured")
)
