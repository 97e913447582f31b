// Package aesprf provides the AES-128 forward transform used as a keyed PRF.
//
// Only the encryption direction is exposed. Tokens are authenticated by
// recomputing the PRF over a 16-byte block, never by decrypting anything,
// so there is no decryption API to misuse.
//
// Engines:
//
//   - hardware: crypto/aes, chosen only when the CPU reports AES
//     instructions (AES-NI on amd64, the crypto extension on arm64,
//     CPACF on s390x, POWER8 vector crypto on ppc64le)
//   - software: a table-free AES-128 whose S-box is computed
//     arithmetically in GF(2^8), so no memory access depends on the key
//     or the data
//
// New picks the hardware engine when it is available and falls back to
// the software engine otherwise. It never falls back to a table-based
// implementation. NewWithType forces a choice and reports
// ErrHardwareUnsupported instead of degrading.
//
// Usage:
//
//	eng, err := aesprf.New(key)
//	var tag [aesprf.BlockSize]byte
//	eng.EncryptBlock(&tag, &block)
//
// All engines are immutable after construction and safe for concurrent
// use by any number of goroutines.
package aesprf
