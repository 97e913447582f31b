package aesprf

import "encoding/binary"

// GF(2^8) arithmetic over eight byte lanes packed in a uint64. Every
// operation is straight-line shifts, masks and xors, so the S-box below
// runs in time independent of its input.

const (
	lanesLSB = 0x0101010101010101
	lanesHi7 = 0xfefefefefefefefe
)

// xtime multiplies each lane by x modulo x^8 + x^4 + x^3 + x + 1.
func xtime(a uint64) uint64 {
	return ((a << 1) & lanesHi7) ^ (((a >> 7) & lanesLSB) * 0x1b)
}

// gmul multiplies a and b lane by lane.
func gmul(a, b uint64) uint64 {
	var p uint64
	for i := 0; i < 8; i++ {
		p ^= a & ((b & lanesLSB) * 0xff)
		a = xtime(a)
		b >>= 1
	}
	return p
}

// ginv returns a^254 in every lane, the multiplicative inverse with 0
// mapped to 0.
func ginv(a uint64) uint64 {
	a2 := gmul(a, a)
	a3 := gmul(a2, a)
	a6 := gmul(a3, a3)
	a12 := gmul(a6, a6)
	a15 := gmul(a12, a3)
	a30 := gmul(a15, a15)
	a60 := gmul(a30, a30)
	a120 := gmul(a60, a60)
	a240 := gmul(a120, a120)
	a252 := gmul(a240, a12)
	return gmul(a252, a2)
}

// rotl rotates every lane left by n bits, 0 < n < 8.
func rotl(a uint64, n uint) uint64 {
	hi := uint64(byte(0xff<<n)) * lanesLSB
	lo := uint64(byte(0xff>>(8-n))) * lanesLSB
	return ((a << n) & hi) | ((a >> (8 - n)) & lo)
}

// sbox64 applies the AES S-box to every lane.
func sbox64(a uint64) uint64 {
	b := ginv(a)
	return b ^ rotl(b, 1) ^ rotl(b, 2) ^ rotl(b, 3) ^ rotl(b, 4) ^ (0x63 * lanesLSB)
}

// subBytes applies the S-box to all 16 bytes of s.
func subBytes(s *[BlockSize]byte) {
	lo := sbox64(binary.LittleEndian.Uint64(s[0:8]))
	hi := sbox64(binary.LittleEndian.Uint64(s[8:16]))
	binary.LittleEndian.PutUint64(s[0:8], lo)
	binary.LittleEndian.PutUint64(s[8:16], hi)
}

// subWord applies the S-box to the four bytes of w.
func subWord(w uint32) uint32 {
	return uint32(sbox64(uint64(w)))
}
