package token

import (
	"errors"

	"github.com/yndnr/tokmint-go/pkg/crypto/aesprf"
)

var (
	// ErrMalformedIdentifier is returned by Mint when the identifier is
	// not a 36-character lowercase 8-4-4-4-12 hex string.
	ErrMalformedIdentifier = errors.New("token: malformed identifier")

	// ErrInsufficientRandomness is returned by Mint when the random
	// source cannot supply the nonce. No token is produced.
	ErrInsufficientRandomness = errors.New("token: insufficient randomness")

	// ErrTagMismatch is returned by Verify for any token that is not
	// authentic, including tokens that fail to decode.
	ErrTagMismatch = errors.New("token: tag mismatch")

	// ErrMalformedToken is returned by Inspect when the token does not
	// have the fixed shape.
	ErrMalformedToken = errors.New("token: malformed token")

	// ErrHardwareUnsupported is returned by New when the hardware engine
	// is requested on a CPU without AES instructions.
	ErrHardwareUnsupported = aesprf.ErrHardwareUnsupported

	// ErrInvalidKeySize is returned by New for keys other than 16 bytes.
	ErrInvalidKeySize = aesprf.ErrInvalidKeySize
)
