package llm

import (
	"context"
	"errors"
	"fmt"
)

// AuthError indicates a missing or rejected provider credential.
// It is fatal: callers should abort the run rather than retry.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProviderError wraps a failed provider call. Retryable marks rate-limit,
// timeout and server-side conditions; the adapter itself never retries.
type ProviderError struct {
	Provider  string
	Op        string
	Retryable bool
	Timeout   bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a provider failure a caller may retry.
func IsRetryable(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Retryable
}

// IsTimeout reports whether err is a provider call that exceeded its deadline.
func IsTimeout(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Timeout
}

// wrapProviderError classifies err by HTTP status. Status 0 means the
// caller could not extract one (network-level failure).
func wrapProviderError(provider, op string, status int, err error) error {
	perr := &ProviderError{Provider: provider, Op: op, Err: err}

	if errors.Is(err, context.DeadlineExceeded) {
		perr.Timeout = true
		perr.Retryable = true
		return perr
	}

	switch {
	case status == 401 || status == 403:
		return &AuthError{Provider: provider, Err: err}
	case status == 429 || status >= 500:
		perr.Retryable = true
	}
	return perr
}
