package aesprf

// softwareEngine is a constant-time AES-128 encryptor over a Schedule.
type softwareEngine struct {
	sched *Schedule
}

func newSoftware(key []byte) (*softwareEngine, error) {
	s, err := ExpandKey(key)
	if err != nil {
		return nil, err
	}
	return &softwareEngine{sched: s}, nil
}

// NewSoftware returns the software engine for an existing schedule.
func NewSoftware(s *Schedule) Engine {
	return &softwareEngine{sched: s}
}

// Type returns TypeSoftware.
func (e *softwareEngine) Type() Type {
	return TypeSoftware
}

// EncryptBlock encrypts one block.
func (e *softwareEngine) EncryptBlock(dst, src *[BlockSize]byte) {
	s := *src
	rk := &e.sched.rk

	addRoundKey(&s, &rk[0])
	for r := 1; r < Rounds; r++ {
		subBytes(&s)
		shiftRows(&s)
		mixColumns(&s)
		addRoundKey(&s, &rk[r])
	}
	subBytes(&s)
	shiftRows(&s)
	addRoundKey(&s, &rk[Rounds])

	*dst = s
}

func addRoundKey(s, k *[BlockSize]byte) {
	for i := range s {
		s[i] ^= k[i]
	}
}

// shiftRows rotates row r left by r columns. The state is column-major:
// byte 4*c+r is row r of column c.
func shiftRows(s *[BlockSize]byte) {
	s[1], s[5], s[9], s[13] = s[5], s[9], s[13], s[1]
	s[2], s[6], s[10], s[14] = s[10], s[14], s[2], s[6]
	s[3], s[7], s[11], s[15] = s[15], s[3], s[7], s[11]
}

func xt(b byte) byte {
	return b<<1 ^ (0x1b & -(b >> 7))
}

func mixColumns(s *[BlockSize]byte) {
	for c := 0; c < 16; c += 4 {
		a0, a1, a2, a3 := s[c], s[c+1], s[c+2], s[c+3]
		t := a0 ^ a1 ^ a2 ^ a3
		s[c] = a0 ^ t ^ xt(a0^a1)
		s[c+1] = a1 ^ t ^ xt(a1^a2)
		s[c+2] = a2 ^ t ^ xt(a2^a3)
		s[c+3] = a3 ^ t ^ xt(a3^a0)
	}
}
