package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"syscall"
)

// nonceAttempts bounds how often a transiently interrupted read of the
// random source is retried before minting fails.
const nonceAttempts = 3

// readNonce fills p from r. On failure p is zeroed and the error wraps
// ErrInsufficientRandomness.
func readNonce(r io.Reader, p []byte) error {
	var err error
	for attempt := 0; attempt < nonceAttempts; attempt++ {
		if _, err = io.ReadFull(r, p); err == nil {
			return nil
		}
		if !transient(err) {
			break
		}
	}
	clear(p)
	return fmt.Errorf("%w: %w", ErrInsufficientRandomness, err)
}

func transient(err error) bool {
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}

// GenerateKey returns a fresh random 16-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if err := readNonce(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// IsWeakKey reports whether key is all zeros. Such keys are accepted but
// callers should refuse them in production configuration.
func IsWeakKey(key []byte) bool {
	var acc byte
	for _, b := range key {
		acc |= b
	}
	return acc == 0
}
