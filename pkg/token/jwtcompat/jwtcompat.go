// Package jwtcompat lets golang-jwt verify minted tokens.
//
// Tokens are JWT-shaped with "alg": "CHALKAPI". Importing this package
// registers that algorithm with github.com/golang-jwt/jwt/v5, whose parser
// then accepts a *token.Issuer as the verification key:
//
//	tok, err := jwt.Parse(s, func(*jwt.Token) (any, error) { return iss, nil },
//		jwt.WithValidMethods([]string{jwtcompat.Alg}))
//
// Only verification is supported. Tokens must be minted by the Issuer,
// which owns the nonce.
package jwtcompat

import (
	"encoding/base64"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yndnr/tokmint-go/pkg/token"
)

// Alg is the JWT "alg" header value of minted tokens.
const Alg = "CHALKAPI"

// ErrMintOnly is returned by Sign.
var ErrMintOnly = errors.New("jwtcompat: tokens can only be minted by token.Issuer")

const signingStringLen = token.Len - token.SignatureLen - 1

// SigningMethod implements jwt.SigningMethod for minted tokens.
type SigningMethod struct{}

// Method is the registered signing method.
var Method = &SigningMethod{}

func init() {
	jwt.RegisterSigningMethod(Alg, func() jwt.SigningMethod { return Method })
}

// Alg returns Alg.
func (m *SigningMethod) Alg() string {
	return Alg
}

// Verify reassembles the token from the signing string and the decoded
// signature and validates it. key must be a *token.Issuer.
func (m *SigningMethod) Verify(signingString string, sig []byte, key any) error {
	iss, ok := key.(*token.Issuer)
	if !ok || iss == nil {
		return jwt.ErrInvalidKeyType
	}
	if len(signingString) != signingStringLen || base64.StdEncoding.EncodedLen(len(sig)) != token.SignatureLen {
		return jwt.ErrSignatureInvalid
	}

	var buf token.Buffer
	copy(buf[:], signingString)
	buf[signingStringLen] = '.'
	base64.StdEncoding.Encode(buf[signingStringLen+1:], sig)

	if !iss.Validate(buf[:]) {
		return jwt.ErrSignatureInvalid
	}
	return nil
}

// Sign always fails with ErrMintOnly.
func (m *SigningMethod) Sign(string, any) ([]byte, error) {
	return nil, ErrMintOnly
}

// Parse verifies s with iss through golang-jwt and returns its registered
// claims: Subject is "sub", ID is "jti", Audience[0] is the hex
// capability byte.
func Parse(iss *token.Issuer, s string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append([]jwt.ParserOption{jwt.WithValidMethods([]string{Alg})}, opts...)

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(s, claims, func(*jwt.Token) (any, error) {
		return iss, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
