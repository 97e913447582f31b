package aesprf

import (
	"crypto/aes"
	"crypto/cipher"
)

// hardwareEngine delegates to crypto/aes. The round keys live inside the
// cipher.Block, expanded by the platform's key-generation instructions.
type hardwareEngine struct {
	block cipher.Block
}

func newHardware(key []byte) (*hardwareEngine, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	b, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &hardwareEngine{block: b}, nil
}

// Type returns TypeHardware.
func (e *hardwareEngine) Type() Type {
	return TypeHardware
}

// EncryptBlock encrypts one block.
func (e *hardwareEngine) EncryptBlock(dst, src *[BlockSize]byte) {
	e.block.Encrypt(dst[:], src[:])
}
