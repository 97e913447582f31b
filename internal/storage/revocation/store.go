package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// KeyPrefix namespaces revocation keys in shared backends.
const KeyPrefix = "revoked:"

var (
	// ErrEmptyJTI is returned when the token id is empty.
	ErrEmptyJTI = errors.New("revocation: empty jti")

	// ErrInvalidTTL is returned for a negative TTL.
	ErrInvalidTTL = errors.New("revocation: ttl must not be negative")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("revocation: store closed")

	// ErrUnknownBackend is returned by Open for an unsupported backend.
	ErrUnknownBackend = errors.New("revocation: unknown backend")
)

// Store records revoked token ids.
type Store interface {
	// Revoke marks jti revoked for ttl. A ttl of zero never lapses.
	// Revoking an id again replaces its ttl.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Len returns the number of unexpired entries.
	Len(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	Backend string `koanf:"backend"`

	// TTL bounds how long a revocation is kept. Zero keeps it forever;
	// tokens carry no expiry, so a lapsed entry makes its token valid
	// again.
	TTL time.Duration `koanf:"ttl"`
	Shards  int           `koanf:"shards"`

	// SweepInterval is how often the memory backend drops expired entries.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	Badger BadgerConfig `koanf:"badger"`
	Redis  RedisConfig  `koanf:"redis"`
}

// BadgerConfig configures the badger backend.
type BadgerConfig struct {
	Dir         string        `koanf:"dir"`
	InMemory    bool          `koanf:"in_memory"`
	SyncWrites  bool          `koanf:"sync_writes"`
	GCInterval  time.Duration `koanf:"gc_interval"`
	GCThreshold float64       `koanf:"gc_threshold"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

// DefaultConfig returns an in-memory configuration whose revocations
// never lapse.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendMemory,
		Shards:        64,
		SweepInterval: time.Minute,
		Badger: BadgerConfig{
			Dir:         "data/revocation",
			GCInterval:  10 * time.Minute,
			GCThreshold: 0.5,
		},
		Redis: RedisConfig{
			Addr:   "127.0.0.1:6379",
			Prefix: "tokmint:",
		},
	}
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config, log logger.Logger) (Store, error) {
	if log == nil {
		log = logger.Default()
	}
	log = log.With("component", "revocation", "backend", cfg.Backend)

	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(cfg.Shards, cfg.SweepInterval), nil
	case BackendBadger:
		return OpenBadger(cfg.Badger, log)
	case BackendRedis:
		return OpenRedis(ctx, cfg.Redis)
	case BackendNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func checkArgs(jti string, ttl time.Duration) error {
	if jti == "" {
		return ErrEmptyJTI
	}
	if ttl < 0 {
		return ErrInvalidTTL
	}
	return nil
}
