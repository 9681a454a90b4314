package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyQuery indicates the chat message was empty or whitespace.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrQueryTooLong indicates the chat message exceeds the accepted length.
	ErrQueryTooLong = errors.New("query too long")

	// ErrEmptyPassage indicates a corpus record with no content.
	ErrEmptyPassage = errors.New("empty passage content")

	// ErrIndexCorpusMismatch indicates the similarity index row count
	// disagrees with the corpus size. Fatal at load time; serving
	// mismatched rows would return the wrong passages.
	ErrIndexCorpusMismatch = errors.New("index row count does not match corpus size")

	// ErrInvalidTopK indicates a retrieval request with k < 1.
	ErrInvalidTopK = errors.New("topK must be at least 1")

	// ErrDimensionMismatch indicates a query vector whose dimension does
	// not match the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// RemoteServiceError reports a failed call to the embedding or
// generation service: network failure, auth, rate limit, or a malformed
// response. The pipeline never retries these itself; callers decide on
// retry and backoff policy.
type RemoteServiceError struct {
	// Service names the remote boundary, e.g. "openai-embedding".
	Service string

	// StatusCode is the HTTP status if one was received, else 0.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether the failure was an HTTP 429.
func (e *RemoteServiceError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsRemoteServiceError reports whether err is (or wraps) a
// RemoteServiceError.
func IsRemoteServiceError(err error) bool {
	var rse *RemoteServiceError
	return errors.As(err, &rse)
}
