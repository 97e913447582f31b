package domain

import (
	"errors"
	"fmt"

	"github.com/yndnr/tokmint-go/pkg/token"
)

// DomainError is an error with a stable code. Codes have the form
// TM-<AREA>-<NNNN>; the first three digits of NNNN are the HTTP status
// the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "TM-TOKN-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HTTPStatus returns the HTTP status encoded in the error code, or 500.
func (e *DomainError) HTTPStatus() int {
	if len(e.Code) < 4 {
		return 500
	}
	n := 0
	for _, c := range e.Code[len(e.Code)-4 : len(e.Code)-1] {
		if c < '0' || c > '9' {
			return 500
		}
		n = n*10 + int(c-'0')
	}
	if n < 400 || n > 599 {
		return 500
	}
	return n
}

// Token errors (TOKN).
var (
	// ErrMalformedIdentifier indicates the user ID is not a UUID.
	ErrMalformedIdentifier = NewDomainError("TM-TOKN-4000", "malformed user identifier")

	// ErrTokenMalformed indicates the token does not have the fixed shape.
	ErrTokenMalformed = NewDomainError("TM-TOKN-4001", "malformed token")

	// ErrTokenInvalid indicates the token is not authentic.
	ErrTokenInvalid = NewDomainError("TM-TOKN-4010", "invalid token")

	// ErrTokenRevoked indicates the token has been revoked.
	ErrTokenRevoked = NewDomainError("TM-TOKN-4011", "token revoked")

	// ErrInsufficientRandomness indicates no nonce could be drawn.
	ErrInsufficientRandomness = NewDomainError("TM-TOKN-5030", "random source unavailable")
)

// Key errors (KEY).
var (
	// ErrKeyInvalid indicates the configured key material is unusable.
	ErrKeyInvalid = NewDomainError("TM-KEY-5000", "invalid key material")

	// ErrHardwareUnsupported indicates the hardware engine was requested
	// on a CPU without AES instructions.
	ErrHardwareUnsupported = NewDomainError("TM-KEY-5001", "aes hardware engine unavailable")
)

// System errors (SYS).
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("TM-SYS-5000", "internal server error")

	// ErrStorageError indicates a revocation store failure.
	ErrStorageError = NewDomainError("TM-SYS-5001", "storage error")

	// ErrServiceUnavailable indicates the service is not ready.
	ErrServiceUnavailable = NewDomainError("TM-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("TM-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("TM-SYS-4290", "too many requests")
)

// Argument errors (ARG).
var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("TM-ARG-4001", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("TM-ARG-4002", "missing required argument")
)

// FromTokenError maps errors from pkg/token to domain errors. Errors it
// does not recognise become ErrInternalServer. nil stays nil.
func FromTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case IsDomainError(err, ""):
		return err
	case errors.Is(err, token.ErrMalformedIdentifier):
		return ErrMalformedIdentifier.WithCause(err)
	case errors.Is(err, token.ErrInsufficientRandomness):
		return ErrInsufficientRandomness.WithCause(err)
	case errors.Is(err, token.ErrTagMismatch):
		return ErrTokenInvalid.WithCause(err)
	case errors.Is(err, token.ErrMalformedToken):
		return ErrTokenMalformed.WithCause(err)
	case errors.Is(err, token.ErrHardwareUnsupported):
		return ErrHardwareUnsupported.WithCause(err)
	case errors.Is(err, token.ErrInvalidKeySize):
		return ErrKeyInvalid.WithCause(err)
	default:
		return ErrInternalServer.WithCause(err)
	}
}
