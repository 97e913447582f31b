package token

// Template is the token with every variable field still holding its
// placeholder: base64 of `XXX...` for the identifier, jti and aud values.
// The signature segment is appended after the final dot.
const Template = "ewogICJhbGciOiAiQ0hBTEtBUEkiLAogICJ0eXAiOiAiSldUIgp9." +
	"ewogICJzdWIiOiAiWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYIiwKICAianRpIjogIlhYWFhYWFhYWFhYWFhYIiwKICAiYXVkIjogIlhYIgp9."

const (
	// Len is the length of every minted token.
	Len = len(Template) + SignatureLen

	// SignatureLen is the length of the base64 signature segment: 32 hex
	// characters plus one zero pad byte, 11 groups.
	SignatureLen = 44

	// IdentifierLen is the length of a canonical 8-4-4-4-12 identifier.
	IdentifierLen = 36

	// HeaderPrefix is a prefix shared by every token, used to spot
	// tokens in logs.
	HeaderPrefix = "ewogICJhbGciOiAiQ0hBTEtBUEki"
)

const (
	jtiBytes   = 7
	jtiTextLen = 1 + 2*jtiBytes // leading quote + hex
	audTextLen = 3              // leading quote + hex
	sigTextLen = 2*16 + 1       // hex + zero pad

	// uidBitsOffset is where the 16 consumed identifier nibbles begin.
	// Exactly one hyphen, at uidSkip, lies inside the consumed span.
	uidBitsOffset = 19
	uidSkip       = 23
)

// field is a run of whole base64 groups at a fixed token offset.
type field struct {
	Offset int
	Groups int
}

// End returns the offset one past the field's last character.
func (f field) End() int { return f.Offset + 4*f.Groups }

// Bytes returns the decoded size of the field.
func (f field) Bytes() int { return 3 * f.Groups }

// layout is the complete offset table of a token.
//
// The jti and aud fields each start one character early. Their first
// group folds in the template's opening quote, so the decoded field
// begins with '"'.
type layout struct {
	Header    field
	Payload   field
	UID       field
	JTI       field
	Aud       field
	Signature field

	HeaderDot  int
	PayloadDot int
}

var fields = layout{
	Header:     field{Offset: 0, Groups: 13},
	Payload:    field{Offset: 53, Groups: 31},
	UID:        field{Offset: 69, Groups: 12},
	JTI:        field{Offset: 133, Groups: 5},
	Aud:        field{Offset: 169, Groups: 1},
	Signature:  field{Offset: 178, Groups: 11},
	HeaderDot:  52,
	PayloadDot: 177,
}

// span is a half-open range of token offsets.
type span struct{ From, To int }

// fixed returns the template ranges between variable fields.
func (l *layout) fixed() []span {
	return []span{
		{0, l.UID.Offset},
		{l.UID.End(), l.JTI.Offset},
		{l.JTI.End(), l.Aud.Offset},
		{l.Aud.End(), l.Signature.Offset},
	}
}

var fixedSpans = fields.fixed()
