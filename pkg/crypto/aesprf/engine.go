package aesprf

import (
	"errors"
	"fmt"
)

const (
	// KeySize is the AES-128 key size in bytes.
	KeySize = 16

	// BlockSize is the AES block size in bytes.
	BlockSize = 16

	// Rounds is the number of AES-128 rounds.
	Rounds = 10
)

// Type identifies an engine implementation.
type Type string

const (
	TypeHardware Type = "hardware"
	TypeSoftware Type = "software"
)

// Errors returned by engine construction.
var (
	ErrInvalidKeySize      = errors.New("aesprf: key must be 16 bytes")
	ErrHardwareUnsupported = errors.New("aesprf: AES instructions not available on this CPU")
	ErrUnknownType         = errors.New("aesprf: unknown engine type")
)

// Engine performs one forward AES-128 block transform.
type Engine interface {
	// Type returns the engine implementation.
	Type() Type

	// EncryptBlock writes AES-128(key, src) to dst. dst and src may alias.
	EncryptBlock(dst, src *[BlockSize]byte)
}

// hardwareAvailable is swapped out in tests.
var hardwareAvailable = hasAESInstructions

// New creates an engine for key, preferring the hardware engine.
func New(key []byte) (Engine, error) {
	if hardwareAvailable() {
		return newHardware(key)
	}
	return newSoftware(key)
}

// NewWithType creates an engine of the given type.
func NewWithType(key []byte, t Type) (Engine, error) {
	switch t {
	case TypeHardware:
		if !hardwareAvailable() {
			return nil, ErrHardwareUnsupported
		}
		return newHardware(key)
	case TypeSoftware:
		return newSoftware(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
	}
}

// HardwareAvailable reports whether the hardware engine can be used.
func HardwareAvailable() bool {
	return hardwareAvailable()
}

// ParseType parses an engine selection. "auto" and "" return ok=false
// with a nil error, meaning the caller should use New.
func ParseType(s string) (t Type, ok bool, err error) {
	switch s {
	case "", "auto":
		return "", false, nil
	case string(TypeHardware):
		return TypeHardware, true, nil
	case string(TypeSoftware):
		return TypeSoftware, true, nil
	default:
		return "", false, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}
