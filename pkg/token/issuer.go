package token

import (
	"crypto/rand"
	"crypto/subtle"
	"io"

	"github.com/yndnr/tokmint-go/pkg/crypto/aesprf"
)

// KeySize is the secret key size in bytes.
const KeySize = aesprf.KeySize

// Option configures an Issuer.
type Option func(*options)

type options struct {
	random io.Reader
	engine aesprf.Type
}

// WithRandom sets the nonce source. The default is crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(o *options) { o.random = r }
}

// WithEngine forces an engine type instead of automatic selection.
func WithEngine(t aesprf.Type) Option {
	return func(o *options) { o.engine = t }
}

// Issuer mints and validates tokens under one key.
//
// An Issuer is immutable and safe for concurrent use. Callers that mint
// on a hot path should keep one Buffer per goroutine and use MintInto.
type Issuer struct {
	engine aesprf.Engine
	random io.Reader
}

// New creates an Issuer for a 16-byte key.
func New(key []byte, opts ...Option) (*Issuer, error) {
	o := options{random: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		eng aesprf.Engine
		err error
	)
	if o.engine == "" {
		eng, err = aesprf.New(key)
	} else {
		eng, err = aesprf.NewWithType(key, o.engine)
	}
	if err != nil {
		return nil, err
	}
	return &Issuer{engine: eng, random: o.random}, nil
}

// NewWithEngine creates an Issuer around an existing engine.
func NewWithEngine(eng aesprf.Engine, opts ...Option) *Issuer {
	o := options{random: rand.Reader}
	for _, opt := range opts {
		opt(&o)
	}
	return &Issuer{engine: eng, random: o.random}
}

// Engine returns the engine type in use.
func (iss *Issuer) Engine() aesprf.Type {
	return iss.engine.Type()
}

// Mint returns a new token for uid carrying capability.
func (iss *Issuer) Mint(uid string, capability byte) (Buffer, error) {
	var b Buffer
	err := iss.MintInto(&b, uid, capability)
	return b, err
}

// MintInto writes a new token for uid into dst.
//
// uid must be a lowercase 8-4-4-4-12 identifier. On error dst is left
// untouched.
func (iss *Issuer) MintInto(dst *Buffer, uid string, capability byte) error {
	var blk, tag [aesprf.BlockSize]byte

	if !uidBits(blk[:8], uid) {
		return ErrMalformedIdentifier
	}
	if err := readNonce(iss.random, blk[9:]); err != nil {
		return err
	}
	blk[8] = capability

	iss.engine.EncryptBlock(&tag, &blk)

	var (
		aud = [audTextLen]byte{'"'}
		jti = [jtiTextLen]byte{'"'}
		sig [sigTextLen]byte
	)
	encodeHex(aud[1:], blk[8:9])
	encodeHex(jti[1:], blk[9:])
	encodeHex(sig[:], tag[:])

	copy(dst[:], Template)
	encodeB64Into(dst[:], fields.UID.Offset, uid)
	encodeB64Into(dst[:], fields.JTI.Offset, jti[:])
	encodeB64Into(dst[:], fields.Aud.Offset, aud[:])
	encodeB64Into(dst[:], fields.Signature.Offset, sig[:])
	return nil
}

// Validate reports whether tok is an authentic token under this key.
// It never panics, whatever tok contains.
func (iss *Issuer) Validate(tok []byte) bool {
	var d decoded
	return iss.check(tok, &d)
}

// Verify checks tok and returns its claims. Any token that is not
// authentic, malformed ones included, yields ErrTagMismatch.
//
// The leading 19 characters of Claims.Subject are not authenticated.
// Callers keying on the identifier should use its last 16 hex digits.
func (iss *Issuer) Verify(tok []byte) (Claims, error) {
	var d decoded
	if !iss.check(tok, &d) {
		return Claims{}, ErrTagMismatch
	}
	return d.claims(), nil
}

// check decodes tok into d and compares tags in constant time. Shape
// failures return early; they depend only on public token bytes.
func (iss *Issuer) check(tok []byte, d *decoded) bool {
	if !decode(tok, d) {
		return false
	}

	var want [aesprf.BlockSize]byte
	iss.engine.EncryptBlock(&want, &d.block)
	return subtle.ConstantTimeCompare(want[:], d.tag[:]) == 1
}
