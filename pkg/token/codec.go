package token

// Fixed-offset base64 and hex. Every routine works on whole groups at a
// known offset of a caller-owned buffer and never allocates.

const (
	b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	hexAlphabet = "0123456789abcdef"

	// b64Invalid marks an out-of-alphabet byte in b64Rev. Its low six
	// bits are zero.
	b64Invalid = 0x80
)

// b64Rev maps an alphabet byte to its 6-bit value and any other byte to
// b64Invalid.
var b64Rev = func() (t [256]byte) {
	for i := range t {
		t[i] = b64Invalid
	}
	for i := 0; i < len(b64Alphabet); i++ {
		t[b64Alphabet[i]] = byte(i)
	}
	return t
}()

type text interface {
	~string | ~[]byte
}

// encodeB64Into writes the base64 form of src at dst[off:]. len(src) must
// be a multiple of 3.
func encodeB64Into[T text](dst []byte, off int, src T) {
	out := dst[off : off+len(src)/3*4]
	for i, o := 0, 0; i+2 < len(src); i, o = i+3, o+4 {
		x, y, z := src[i], src[i+1], src[i+2]
		out[o] = b64Alphabet[x>>2]
		out[o+1] = b64Alphabet[(x&0x03)<<4|y>>4]
		out[o+2] = b64Alphabet[(y&0x0f)<<2|z>>6]
		out[o+3] = b64Alphabet[z&0x3f]
	}
}

// decodeB64From decodes groups base64 groups starting at src[off] into
// dst, which must hold 3*groups bytes. Out-of-alphabet characters decode
// as zero bits; ok is false if any were seen. The loop does not stop
// early.
func decodeB64From(dst, src []byte, off, groups int) (ok bool) {
	in := src[off : off+4*groups]
	var bad byte
	for i, o := 0, 0; o < 3*groups; i, o = i+4, o+3 {
		a, b, c, d := b64Rev[in[i]], b64Rev[in[i+1]], b64Rev[in[i+2]], b64Rev[in[i+3]]
		bad |= a | b | c | d
		a, b, c, d = a&0x3f, b&0x3f, c&0x3f, d&0x3f
		dst[o] = a<<2 | b>>4
		dst[o+1] = b<<4 | c>>2
		dst[o+2] = c<<6 | d
	}
	return bad&b64Invalid == 0
}

// encodeHex writes the lowercase hex form of src to dst.
func encodeHex(dst, src []byte) {
	for i, v := range src {
		dst[2*i] = hexAlphabet[v>>4]
		dst[2*i+1] = hexAlphabet[v&0x0f]
	}
}

// nibble decodes one lowercase hex digit.
func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}

// decodeHex decodes 2*len(dst) lowercase hex digits from src.
func decodeHex[T text](dst []byte, src T) bool {
	ok := true
	for i := range dst {
		hi, ok1 := nibble(src[2*i])
		lo, ok2 := nibble(src[2*i+1])
		dst[i] = hi<<4 | lo
		ok = ok && ok1 && ok2
	}
	return ok
}

// uidBits extracts the 64 bits carried by the identifier's last 16 hex
// digits. id must be a canonical lowercase identifier.
func uidBits[T text](dst []byte, id T) bool {
	if len(id) != IdentifierLen {
		return false
	}
	for i := 0; i < uidBitsOffset; i++ {
		if !identifierChar(i, id[i]) {
			return false
		}
	}
	if id[uidSkip] != '-' {
		return false
	}
	return decodeHex(dst[:2], id[uidBitsOffset:uidSkip]) &&
		decodeHex(dst[2:8], id[uidSkip+1:])
}

// identifierChar reports whether c is valid at position i of an
// 8-4-4-4-12 identifier.
func identifierChar(i int, c byte) bool {
	switch i {
	case 8, 13, 18, 23:
		return c == '-'
	default:
		_, ok := nibble(c)
		return ok
	}
}
