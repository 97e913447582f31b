package token

// Buffer holds one token. Mint writes every byte of it; nothing beyond
// Len is ever touched, and there is no terminator.
type Buffer [Len]byte

// Bytes returns the token as a slice aliasing b.
func (b *Buffer) Bytes() []byte { return b[:] }

// String returns a copy of the token.
func (b *Buffer) String() string { return string(b[:]) }

// Header returns the base64 header segment.
func (b *Buffer) Header() []byte { return b[fields.Header.Offset:fields.Header.End()] }

// Payload returns the base64 payload segment.
func (b *Buffer) Payload() []byte { return b[fields.Payload.Offset:fields.Payload.End()] }

// Signature returns the base64 signature segment.
func (b *Buffer) Signature() []byte { return b[fields.Signature.Offset:fields.Signature.End()] }

// SigningString returns header.payload, the part covered by the tag.
func (b *Buffer) SigningString() []byte { return b[:fields.PayloadDot] }
