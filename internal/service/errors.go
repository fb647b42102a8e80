package service

import (
	"errors"
	"fmt"

	"github.com/JonnyWalker81/moodtrack/backend/internal/repository"
)

var (
	// ErrAccessDenied is matched by every error returned when the caller's
	// subscription tier does not include a feature.
	ErrAccessDenied = errors.New("access denied")

	// ErrUpstreamUnavailable is matched by every error returned when a store
	// call fails or times out, unless the store rejected the call outright.
	// Callers may retry with backoff.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// AccessDeniedError reports the feature a free-tier caller tried to use
type AccessDeniedError struct {
	Feature string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s requires a premium subscription", e.Feature)
}

func (e *AccessDeniedError) Unwrap() error {
	return ErrAccessDenied
}

// UpstreamError wraps a failed store call
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamUnavailable, e.Err}
}

// upstream wraps a failed store call. Failures the store marks as rejected
// are not retryable and are returned as plain errors.
func upstream(op string, err error) error {
	if errors.Is(err, repository.ErrRejected) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &UpstreamError{Op: op, Err: err}
}
