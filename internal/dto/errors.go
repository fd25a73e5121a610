// Typed errors for the session, policy and quota layers. Collaborator
// packages under pkg/ carry their own error types.
package dto

import (
	"errors"
	"fmt"
)

// ConfigurationError means provider endpoints could not be resolved at
// construction time. Unrecoverable until configuration changes.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// StateMismatchError is returned when the state parameter echoed by the
// provider does not match the nonce stored for this session.
type StateMismatchError struct {
	Expected string
	Got      string
}

func (e *StateMismatchError) Error() string {
	return "oauth state parameter does not match stored nonce"
}

// TokenExchangeError wraps a failed authorization-code exchange.
type TokenExchangeError struct {
	Err error
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// IdentityLookupError wraps a failed userinfo fetch.
type IdentityLookupError struct {
	Err error
}

func (e *IdentityLookupError) Error() string {
	return fmt.Sprintf("identity lookup failed: %v", e.Err)
}

func (e *IdentityLookupError) Unwrap() error { return e.Err }

// QuotaExceededError carries the usage details so the client can render an
// upgrade prompt. Expected and user-actionable, not a bug.
type QuotaExceededError struct {
	TierName string
	Limit    int
	Used     int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s tier upload limit reached (%d of %d used)", e.TierName, e.Used, e.Limit)
}

// UnknownTierError means a lookup was attempted for a tier id that is not
// in the policy table. The policy never silently defaults.
type UnknownTierError struct {
	Tier string
}

func (e *UnknownTierError) Error() string {
	return fmt.Sprintf("unknown subscription tier %q", e.Tier)
}

var (
	// ErrTierNotSelected blocks uploads until the user picks a plan.
	ErrTierNotSelected = errors.New("subscription tier not selected")

	// ErrUploadInFlight rejects a second concurrent upload for one session.
	ErrUploadInFlight = errors.New("another upload is already in progress for this session")

	// ErrSessionNotFound means the session token is valid but the session
	// itself expired or was never created.
	ErrSessionNotFound = errors.New("session not found or expired")

	// ErrDevModeDisabled is returned when a dev session is requested
	// outside development configuration.
	ErrDevModeDisabled = errors.New("development session is not enabled")
)
