package provider

import (
	"errors"
	"fmt"
	"time"
)

// AuthError means credentials are missing or were rejected. The fallback
// resolver treats the provider as unconfigured and moves on.
type AuthError struct {
	Provider string
	Reason   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: auth: %s", e.Provider, e.Reason)
}

// GenerationError means the remote service reported a failure or
// returned a result that could not be parsed. Reason carries the
// remote-reported detail verbatim.
type GenerationError struct {
	Provider string
	Reason   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation failed: %s", e.Provider, e.Reason)
}

// TimeoutError means a remote job reached no terminal state within the
// poller's wall-clock budget.
type TimeoutError struct {
	Provider string
	Budget   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no terminal state within %s", e.Provider, e.Budget)
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
