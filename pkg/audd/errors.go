package audd

import (
	"fmt"
)

// Error represents an AudD API error.
//
// AudD reports failures with HTTP 200 and a body of the form
// {"status":"error","error":{"error_code":901,"error_message":"..."}}.
type Error struct {
	Code    int    // AudD error code
	Message string // Error message from AudD
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("audd: error %d: %s", e.Code, e.Message)
}

// Is checks if the target error is an AudD error with the same code.
//
// This allows errors.Is() to work with *Error types.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// BadAudio returns true if the error was caused by the submitted audio
// rather than by the request or the account.
func (e *Error) BadAudio() bool {
	switch e.Code {
	case ErrCodeFingerprint, ErrCodeFileTooBig, ErrCodeInvalidFile:
		return true
	default:
		return false
	}
}

// LimitReached returns true if the account or anonymous quota is exhausted.
func (e *Error) LimitReached() bool {
	switch e.Code {
	case ErrCodeNoTokenLimit, ErrCodeLimitReached:
		return true
	default:
		return false
	}
}

// Auth returns true for any token-related failure.
func (e *Error) Auth() bool {
	return e.Code == ErrCodeInvalidToken || e.LimitReached()
}

// Common AudD error codes.
const (
	ErrCodeFingerprint  = 300 // Fingerprint could not be generated (too short, silent)
	ErrCodeFileTooBig   = 400 // Audio file too big
	ErrCodeInvalidFile  = 500 // Audio file could not be decoded
	ErrCodeInvalidURL   = 600 // Audio URL could not be fetched
	ErrCodeNoInput      = 700 // Neither file nor url was sent
	ErrCodeInvalidToken = 900 // Wrong API token
	ErrCodeNoTokenLimit = 901 // No token sent and the anonymous limit was reached
	ErrCodeLimitReached = 902 // Token limit was reached
)

// StatusError is returned when the AudD endpoint answers with a
// non-success HTTP status.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	return fmt.Sprintf("audd: unexpected status %d: %s", e.StatusCode, e.Status)
}

// Predefined errors for common cases.
var (
	// ErrEmptyAudio is returned when Recognize is called without audio data.
	ErrEmptyAudio = fmt.Errorf("audd: audio is required")
)
