package revocation

import (
	"context"
	"time"
)

// None is a Store that never revokes anything.
type None struct{}

// Revoke validates its arguments and discards them.
func (None) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	return checkArgs(jti, ttl)
}

// IsRevoked always reports false.
func (None) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// Len always reports zero.
func (None) Len(context.Context) (int, error) { return 0, nil }

// Close is a no-op.
func (None) Close() error { return nil }
