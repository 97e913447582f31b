package token

import "encoding/hex"

// Claims are the fields a token carries. They are readable by anyone;
// only Verify establishes that they are authentic.
type Claims struct {
	// Subject is the full identifier ("sub"). Only its last 16 hex
	// digits are bound into the tag; the first 19 characters are checked
	// for shape alone, so a verified Subject vouches for Subject[19:].
	Subject string `json:"sub" yaml:"sub"`

	// JTI is the 14-hex-digit nonce ("jti").
	JTI string `json:"jti" yaml:"jti"`

	// Capability is the entitlement byte ("aud").
	Capability byte `json:"aud" yaml:"aud"`
}

// decoded is the allocation-free form of a token's fields.
type decoded struct {
	uid   [IdentifierLen]byte
	block [16]byte
	tag   [16]byte
}

// decode extracts every field of tok and rebuilds the plaintext block.
// It inspects the whole token regardless of where the first problem is.
func decode(tok []byte, d *decoded) bool {
	if len(tok) != Len {
		return false
	}

	ok := true
	for _, s := range fixedSpans {
		ok = ok && string(tok[s.From:s.To]) == Template[s.From:s.To]
	}

	var aud [audTextLen]byte
	var jti [jtiTextLen]byte
	var sig [sigTextLen]byte

	okUID := decodeB64From(d.uid[:], tok, fields.UID.Offset, fields.UID.Groups)
	okAud := decodeB64From(aud[:], tok, fields.Aud.Offset, fields.Aud.Groups)
	okJTI := decodeB64From(jti[:], tok, fields.JTI.Offset, fields.JTI.Groups)
	okSig := decodeB64From(sig[:], tok, fields.Signature.Offset, fields.Signature.Groups)

	okBits := uidBits(d.block[:8], d.uid[:])
	okCap := aud[0] == '"' && decodeHex(d.block[8:9], aud[1:])
	okNonce := jti[0] == '"' && decodeHex(d.block[9:], jti[1:])
	okTag := sig[sigTextLen-1] == 0 && decodeHex(d.tag[:], sig[:sigTextLen-1])

	return ok && okUID && okAud && okJTI && okSig && okBits && okCap && okNonce && okTag
}

func (d *decoded) claims() Claims {
	return Claims{
		Subject:    string(d.uid[:]),
		JTI:        hex.EncodeToString(d.block[9:]),
		Capability: d.block[8],
	}
}

// Inspect decodes the claims of tok without checking its tag.
func Inspect(tok []byte) (Claims, error) {
	var d decoded
	if !decode(tok, &d) {
		return Claims{}, ErrMalformedToken
	}
	return d.claims(), nil
}
