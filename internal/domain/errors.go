package domain

import "errors"

// Submission validation.
var (
	ErrInvalidLanguage = errors.New("invalid or unsupported language")
	ErrEmptySourceCode = errors.New("source code cannot be empty")
	ErrPayloadTooLarge = errors.New("source code payload exceeds maximum size (1MB)")
)

// Storage and queueing.
var (
	ErrJobNotFound   = errors.New("job not found")
	ErrPublishFailed = errors.New("failed to publish job to message queue")

	// ErrCacheMiss means the cache holds nothing for the key; callers fall
	// back to the database.
	ErrCacheMiss = errors.New("cache miss")
)
