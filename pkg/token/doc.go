// Package token mints and validates fixed-format tokens authenticated by a
// single AES-128 block operation.
//
// Token Format:
//
// A token is always Len (222) ASCII bytes shaped like a JWT:
//
//	<header>.<payload>.<signature>
//
//   - header: base64 of {"alg": "CHALKAPI", "typ": "JWT"} (52 characters)
//   - payload: base64 of {"sub": <36-char identifier>, "jti": <14 hex>,
//     "aud": <2 hex>} (124 characters)
//   - signature: base64 of the 32-hex-char tag plus one zero byte
//     (44 characters, ends in 'A')
//
// The JSON is never built or parsed. Mint copies Template and overwrites
// the variable fields at fixed offsets; Validate reads them back from the
// same offsets.
//
// Tag:
//
// The tag is AES-128(key, block) where block is
//
//	uid[0:8] | capability | nonce[0:7]
//
// uid[0:8] is the identifier's last 16 hex digits (the fourth group and
// the fifth group), nonce is fresh randomness and appears in the token as
// "jti". The identifier's first 19 characters are carried in the token
// but only their shape is checked.
//
// Security:
//
//   - Nonces come from crypto/rand; a failed read fails the mint
//   - Tags are compared in constant time
//   - The software engine has no key- or data-dependent memory access
//   - Contents are authenticated, not hidden
//
// Usage:
//
//	iss, err := token.New(key)
//	var buf token.Buffer
//	err = iss.MintInto(&buf, "a779384b-ed4a-441a-95b6-577caeeec081", 0x01)
//	ok := iss.Validate(buf.Bytes())
package token
