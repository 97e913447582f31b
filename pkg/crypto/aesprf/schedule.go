package aesprf

import "encoding/binary"

var rcon = [Rounds]uint32{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

// Schedule is an expanded AES-128 key: 11 round keys of 16 bytes.
//
// A Schedule is never modified after ExpandKey returns it.
type Schedule struct {
	rk [Rounds + 1][BlockSize]byte
}

// ExpandKey derives the AES-128 round keys from key without any
// key-dependent table lookup or branch.
func ExpandKey(key []byte) (*Schedule, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	var w [4 * (Rounds + 1)]uint32
	for i := 0; i < 4; i++ {
		w[i] = binary.BigEndian.Uint32(key[4*i:])
	}
	for i := 4; i < len(w); i++ {
		t := w[i-1]
		if i%4 == 0 {
			t = subWord(t<<8|t>>24) ^ (rcon[i/4-1] << 24)
		}
		w[i] = w[i-4] ^ t
	}

	s := &Schedule{}
	for r := range s.rk {
		for c := 0; c < 4; c++ {
			binary.BigEndian.PutUint32(s.rk[r][4*c:], w[4*r+c])
		}
	}
	return s, nil
}

// RoundKey returns a copy of round key r, 0 <= r <= Rounds.
func (s *Schedule) RoundKey(r int) [BlockSize]byte {
	return s.rk[r]
}
