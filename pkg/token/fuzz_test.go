package token

import (
	"testing"
)

func FuzzValidate(f *testing.F) {
	f.Add([]byte(goldenToken))
	f.Add([]byte(Template))
	f.Add([]byte{})
	f.Add([]byte(goldenToken[:Len-1] + "B"))

	iss, err := New(testKey(f))
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, tok []byte) {
		ok := iss.Validate(tok)
		claims, err := iss.Verify(tok)
		if ok != (err == nil) {
			t.Fatalf("Validate() = %v but Verify() error = %v", ok, err)
		}
		if ok && len(claims.Subject) != IdentifierLen {
			t.Fatalf("accepted token with subject %q", claims.Subject)
		}
		_, _ = Inspect(tok)
	})
}

func FuzzMint(f *testing.F) {
	f.Add(testUID, byte(0))
	f.Add("00000000-0000-0000-0000-000000000000", byte(0xff))
	f.Add("not-an-identifier", byte(1))

	iss, err := New(testKey(f))
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, uid string, capability byte) {
		tok, err := iss.Mint(uid, capability)
		if err != nil {
			return
		}
		claims, err := iss.Verify(tok.Bytes())
		if err != nil {
			t.Fatalf("Verify(Mint(%q)) error = %v", uid, err)
		}
		if claims.Subject != uid || claims.Capability != capability {
			t.Fatalf("claims = %+v, want sub %q aud %d", claims, uid, capability)
		}
	})
}
