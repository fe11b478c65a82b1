package types

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrorKind tags a platform error with its failure class.
type ErrorKind string

const (
	ErrNetworkTimeout    ErrorKind = "network_timeout"
	ErrHTTPStatus        ErrorKind = "http_status"
	ErrRateLimited       ErrorKind = "rate_limited"
	ErrValidationFailure ErrorKind = "validation_failure"
	ErrConfigMissing     ErrorKind = "config_missing"
	ErrUnknown           ErrorKind = "unknown"
)

// PlatformError is the single error type crossing the adapter boundary.
// Everything above the adapters consumes only this taxonomy.
type PlatformError struct {
	Kind       ErrorKind
	Platform   Platform
	StatusCode int           // set for ErrHTTPStatus
	RetryAfter time.Duration // set for ErrRateLimited when the server sent Retry-After
	Payload    []byte        // offending payload for ErrValidationFailure
	Err        error         // underlying cause, may be nil
}

func (e *PlatformError) Error() string {
	switch e.Kind {
	case ErrHTTPStatus:
		return fmt.Sprintf("%s: http status %d", e.Platform, e.StatusCode)
	case ErrRateLimited:
		if e.RetryAfter > 0 {
			return fmt.Sprintf("%s: rate limited, retry after %s", e.Platform, e.RetryAfter)
		}
		return fmt.Sprintf("%s: rate limited", e.Platform)
	case ErrValidationFailure:
		return fmt.Sprintf("%s: response failed schema validation: %v", e.Platform, e.Err)
	case ErrNetworkTimeout:
		return fmt.Sprintf("%s: network timeout: %v", e.Platform, e.Err)
	case ErrConfigMissing:
		return fmt.Sprintf("%s: configuration missing: %v", e.Platform, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Platform, e.Err)
	}
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a retry can reasonably succeed: timeouts,
// server-side failures (5xx) and rate limiting.
func (e *PlatformError) Retryable() bool {
	switch e.Kind {
	case ErrNetworkTimeout, ErrRateLimited:
		return true
	case ErrHTTPStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// SuggestedDelay returns how long to back off before the next attempt.
// Rate limits honour the server's Retry-After, defaulting to 60s.
func (e *PlatformError) SuggestedDelay() time.Duration {
	switch e.Kind {
	case ErrRateLimited:
		if e.RetryAfter > 0 {
			return e.RetryAfter
		}
		return 60 * time.Second
	case ErrHTTPStatus:
		if e.StatusCode >= 500 {
			return 5 * time.Second
		}
		return 0
	case ErrNetworkTimeout:
		return 2 * time.Second
	default:
		return 0
	}
}

// Retryable reports whether err is a retryable platform error.
func Retryable(err error) bool {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}

// SuggestedDelay extracts a backoff hint from err, if it carries one.
func SuggestedDelay(err error) (time.Duration, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) {
		if d := pe.SuggestedDelay(); d > 0 {
			return d, true
		}
	}
	return 0, false
}

// RetryAfterHint returns the server-imposed pacing for rate-limited errors.
// Other retryable kinds report no hint: their suggested delays are advisory
// and callers with their own backoff schedule keep it.
func RetryAfterHint(err error) (time.Duration, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) && pe.Kind == ErrRateLimited {
		return pe.SuggestedDelay(), true
	}
	return 0, false
}

// NewHTTPStatusError builds a taxonomy error for a non-2xx response.
// 429 becomes ErrRateLimited with the parsed Retry-After.
func NewHTTPStatusError(platform Platform, statusCode int, retryAfter time.Duration) *PlatformError {
	if statusCode == 429 {
		return &PlatformError{
			Kind:       ErrRateLimited,
			Platform:   platform,
			StatusCode: statusCode,
			RetryAfter: retryAfter,
		}
	}
	return &PlatformError{
		Kind:       ErrHTTPStatus,
		Platform:   platform,
		StatusCode: statusCode,
	}
}

// NewValidationError builds a taxonomy error for a schema violation,
// carrying the offending payload for diagnosis.
func NewValidationError(platform Platform, payload []byte, cause error) *PlatformError {
	return &PlatformError{
		Kind:     ErrValidationFailure,
		Platform: platform,
		Payload:  payload,
		Err:      cause,
	}
}

// NewConfigMissingError builds a taxonomy error for absent configuration.
func NewConfigMissingError(platform Platform, cause error) *PlatformError {
	return &PlatformError{
		Kind:     ErrConfigMissing,
		Platform: platform,
		Err:      cause,
	}
}

// Classify maps an arbitrary transport error into the taxonomy.
// Already-classified errors pass through unchanged.
func Classify(err error, platform Platform) *PlatformError {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &PlatformError{Kind: ErrNetworkTimeout, Platform: platform, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &PlatformError{Kind: ErrNetworkTimeout, Platform: platform, Err: err}
	}

	return &PlatformError{Kind: ErrUnknown, Platform: platform, Err: err}
}
