package logger

import (
	"log/slog"
	"strings"

	"github.com/yndnr/tokmint-go/pkg/token"
)

// Key name fragments whose values are always replaced.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"key",
	"credential",
	"authorization",
	"bearer",
}

const redactedValue = "***REDACTED***"

// tokenHead and tokenTail are how many characters of a token survive
// masking. The head is constant for every token; the tail is part of the
// signature and tells tokens apart in logs.
const (
	tokenHead = 8
	tokenTail = 6
)

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if IsSensitiveValue(v) {
			return slog.String(a.Key, maskToken(v))
		}
		if v != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// maskToken keeps the head and tail of a token. The final signature
// character is always 'A' and is dropped from the tail.
func maskToken(v string) string {
	if len(v) < tokenHead+tokenTail+1 {
		return v[:min(len(v), tokenHead)] + "***"
	}
	end := len(v)
	if len(v) == token.Len {
		end--
	}
	return v[:tokenHead] + "..." + v[end-tokenTail:end]
}

// RedactString masks v if it looks like a token.
func RedactString(v string) string {
	if IsSensitiveValue(v) {
		return maskToken(v)
	}
	return v
}

// IsSensitiveKey reports whether a key name suggests secret content.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, p := range sensitiveKeyPatterns {
		if strings.Contains(k, p) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether v looks like a minted token.
func IsSensitiveValue(v string) bool {
	return strings.HasPrefix(v, token.HeaderPrefix)
}
