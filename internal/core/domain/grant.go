package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Capability is the 8-bit permission set carried in the "aud" claim.
// Bit assignment is up to the relying service.
type Capability uint8

// Has reports whether every bit of want is set in c.
func (c Capability) Has(want Capability) bool { return c&want == want }

// String renders c as two lowercase hex digits, the form it takes in tokens.
func (c Capability) String() string { return fmt.Sprintf("%02x", uint8(c)) }

// ParseCapability accepts decimal ("42"), 0x-prefixed hex ("0x2a") or
// bare two-digit hex as printed by String when hex is true.
func ParseCapability(s string, hex bool) (Capability, error) {
	s = strings.TrimSpace(s)
	base := 0
	if hex {
		base = 16
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	}
	n, err := strconv.ParseUint(s, base, 8)
	if err != nil {
		return 0, ErrInvalidArgument.WithDetails(fmt.Sprintf("capability %q: must be 0..255", s))
	}
	return Capability(n), nil
}

// CanonicalUserID parses s in any form google/uuid accepts (braces, urn
// prefix, upper case) and returns the 36-char lowercase form tokens embed.
func CanonicalUserID(s string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", ErrMalformedIdentifier.WithDetails(err.Error()).WithCause(err)
	}
	return id.String(), nil
}

// NewUserID returns a random canonical identifier.
func NewUserID() string {
	return uuid.NewString()
}
