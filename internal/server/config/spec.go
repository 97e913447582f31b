package config

import (
	"time"

	"github.com/yndnr/tokmint-go/internal/infra/keyring"
	"github.com/yndnr/tokmint-go/internal/storage/revocation"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
)

// ServerConfig is the root configuration for tokmint-server.
type ServerConfig struct {
	Server     ServerSection     `koanf:"server"`
	Token      TokenSection      `koanf:"token"`
	Revocation revocation.Config `koanf:"revocation"`
	Log        LogSection        `koanf:"log"`
	Telemetry  TelemetrySection  `koanf:"telemetry"`
	Security   SecuritySection   `koanf:"security"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	RESP  RESPConfig  `koanf:"resp"`
	Local LocalConfig `koanf:"local"`
}

// HTTPConfig configures the HTTP listener. TLS is enabled when both
// certificate files are set.
type HTTPConfig struct {
	Address         string        `koanf:"address"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	TLSCertFile     string        `koanf:"tls_cert_file"`
	TLSKeyFile      string        `koanf:"tls_key_file"`
}

// TLSEnabled reports whether a certificate pair is configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// RESPConfig configures the optional Redis protocol listener. With TLS
// set it reuses the HTTP certificate pair.
type RESPConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Address           string        `koanf:"address"`
	Password          string        `koanf:"password"`
	TLS               bool          `koanf:"tls"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	CommandsPerSecond float64       `koanf:"commands_per_second"`
}

// LocalConfig configures the Unix socket listener for on-host
// administration.
type LocalConfig struct {
	Enabled    bool   `koanf:"enabled"`
	SocketPath string `koanf:"socket_path"`
}

// TokenSection configures the signing key and block cipher engine.
type TokenSection struct {
	// Engine is auto, hardware or software.
	Engine  string               `koanf:"engine"`
	KeyFile string               `koanf:"key_file"`
	KeyHex  string               `koanf:"key_hex"`
	Derive  keyring.DeriveConfig `koanf:"derive"`
}

// Keyring returns the key location as a keyring.Config.
func (t TokenSection) Keyring() keyring.Config {
	return keyring.Config{KeyFile: t.KeyFile, KeyHex: t.KeyHex, Derive: t.Derive}
}

// LogSection configures logging.
type LogSection struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	AddSource bool   `koanf:"add_source"`
}

// Logger returns the section as a logger.Config writing to stderr.
func (l LogSection) Logger() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = l.Level
	cfg.Format = l.Format
	cfg.AddSource = l.AddSource
	return cfg
}

// TelemetrySection configures metrics exposure.
type TelemetrySection struct {
	Metrics MetricsConfig `koanf:"metrics"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// SecuritySection configures request limits and client authentication.
type SecuritySection struct {
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	TLS       TLSConfig       `koanf:"tls"`
}

// RateLimitConfig is a per client IP token bucket.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// TLSConfig holds client certificate verification settings.
type TLSConfig struct {
	// ClientCAFile enables mutual TLS when set.
	ClientCAFile string `koanf:"client_ca_file"`
}
