package aesprf

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q) error = %v", s, err)
	}
	return b
}

func block(t testing.TB, s string) *[BlockSize]byte {
	t.Helper()
	var b [BlockSize]byte
	copy(b[:], mustHex(t, s))
	return &b
}

// FIPS-197 Appendix B and C.1.
var vectors = []struct {
	name string
	key  string
	pt   string
	ct   string
}{
	{"appendix B", "2b7e151628aed2a6abf7158809cf4f3c", "3243f6a8885a308d313198a2e0370734", "3925841d02dc09fbdc118597196a0b32"},
	{"appendix C.1", "000102030405060708090a0b0c0d0e0f", "00112233445566778899aabbccddeeff", "69c4e0d86a7b0430d8cdb78070b4c55a"},
}

func TestSbox(t *testing.T) {
	known := map[byte]byte{0x00: 0x63, 0x01: 0x7c, 0x10: 0xca, 0x20: 0xb7, 0x53: 0xed, 0xff: 0x16}
	for in, want := range known {
		if got := byte(sbox64(uint64(in))); got != want {
			t.Errorf("sbox(%#02x) = %#02x, want %#02x", in, got, want)
		}
	}

	seen := make(map[byte]bool, 256)
	for i := 0; i < 256; i++ {
		seen[byte(sbox64(uint64(i)))] = true
	}
	if len(seen) != 256 {
		t.Errorf("sbox is not a permutation: %d distinct outputs", len(seen))
	}
}

func TestSbox_LanesIndependent(t *testing.T) {
	in := uint64(0xff53201001000000)
	out := sbox64(in)
	for lane := 0; lane < 8; lane++ {
		b := byte(in >> (8 * lane))
		if got, want := byte(out>>(8*lane)), byte(sbox64(uint64(b))); got != want {
			t.Errorf("lane %d: got %#02x, want %#02x", lane, got, want)
		}
	}
}

func TestExpandKey(t *testing.T) {
	s, err := ExpandKey(mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c"))
	if err != nil {
		t.Fatalf("ExpandKey() error = %v", err)
	}

	tests := []struct {
		round int
		want  string
	}{
		{0, "2b7e151628aed2a6abf7158809cf4f3c"},
		{1, "a0fafe1788542cb123a339392a6c7605"},
		{10, "d014f9a8c9ee2589e13f0cc8b6630ca6"},
	}
	for _, tt := range tests {
		rk := s.RoundKey(tt.round)
		if got := hex.EncodeToString(rk[:]); got != tt.want {
			t.Errorf("RoundKey(%d) = %s, want %s", tt.round, got, tt.want)
		}
	}
}

func TestExpandKey_InvalidSize(t *testing.T) {
	for _, n := range []int{0, 15, 17, 24, 32} {
		if _, err := ExpandKey(make([]byte, n)); !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("ExpandKey(%d bytes) error = %v, want ErrInvalidKeySize", n, err)
		}
	}
}

func TestEngines_KnownAnswer(t *testing.T) {
	types := []Type{TypeSoftware}
	if HardwareAvailable() {
		types = append(types, TypeHardware)
	}

	for _, typ := range types {
		for _, v := range vectors {
			t.Run(string(typ)+"/"+v.name, func(t *testing.T) {
				eng, err := NewWithType(mustHex(t, v.key), typ)
				if err != nil {
					t.Fatalf("NewWithType() error = %v", err)
				}
				if eng.Type() != typ {
					t.Errorf("Type() = %s, want %s", eng.Type(), typ)
				}

				var out [BlockSize]byte
				eng.EncryptBlock(&out, block(t, v.pt))
				if got := hex.EncodeToString(out[:]); got != v.ct {
					t.Errorf("EncryptBlock() = %s, want %s", got, v.ct)
				}
			})
		}
	}
}

func TestEncryptBlock_InPlace(t *testing.T) {
	eng, err := NewWithType(mustHex(t, vectors[1].key), TypeSoftware)
	if err != nil {
		t.Fatalf("NewWithType() error = %v", err)
	}
	b := block(t, vectors[1].pt)
	eng.EncryptBlock(b, b)
	if got := hex.EncodeToString(b[:]); got != vectors[1].ct {
		t.Errorf("EncryptBlock(in place) = %s, want %s", got, vectors[1].ct)
	}
}

func TestEngines_Agree(t *testing.T) {
	if !HardwareAvailable() {
		t.Skip("no AES instructions on this CPU")
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	hw, err := NewWithType(key, TypeHardware)
	if err != nil {
		t.Fatalf("NewWithType(hardware) error = %v", err)
	}
	sw, err := NewWithType(key, TypeSoftware)
	if err != nil {
		t.Fatalf("NewWithType(software) error = %v", err)
	}

	var in, a, b [BlockSize]byte
	for i := 0; i < 1000; i++ {
		if _, err := rand.Read(in[:]); err != nil {
			t.Fatal(err)
		}
		hw.EncryptBlock(&a, &in)
		sw.EncryptBlock(&b, &in)
		if !bytes.Equal(a[:], b[:]) {
			t.Fatalf("engines disagree on %x: hardware %x, software %x", in, a, b)
		}
	}
}

func TestNew_Fallback(t *testing.T) {
	orig := hardwareAvailable
	hardwareAvailable = func() bool { return false }
	defer func() { hardwareAvailable = orig }()

	eng, err := New(make([]byte, KeySize))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if eng.Type() != TypeSoftware {
		t.Errorf("New() type = %s, want %s", eng.Type(), TypeSoftware)
	}

	if _, err := NewWithType(make([]byte, KeySize), TypeHardware); !errors.Is(err, ErrHardwareUnsupported) {
		t.Errorf("NewWithType(hardware) error = %v, want ErrHardwareUnsupported", err)
	}
}

func TestNewWithType_Unknown(t *testing.T) {
	if _, err := NewWithType(make([]byte, KeySize), "table"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("NewWithType(table) error = %v, want ErrUnknownType", err)
	}
}

func TestNew_InvalidKey(t *testing.T) {
	if _, err := New(make([]byte, 32)); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("New(32 bytes) error = %v, want ErrInvalidKeySize", err)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		ok      bool
		wantErr bool
	}{
		{"", "", false, false},
		{"auto", "", false, false},
		{"hardware", TypeHardware, true, false},
		{"software", TypeSoftware, true, false},
		{"aes-ni", "", false, true},
	}
	for _, tt := range tests {
		got, ok, err := ParseType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseType(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func BenchmarkEncryptBlock(b *testing.B) {
	key := make([]byte, KeySize)
	for _, typ := range []Type{TypeHardware, TypeSoftware} {
		b.Run(string(typ), func(b *testing.B) {
			eng, err := NewWithType(key, typ)
			if err != nil {
				b.Skip(err)
			}
			var blk [BlockSize]byte
			b.SetBytes(BlockSize)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				eng.EncryptBlock(&blk, &blk)
			}
		})
	}
}
