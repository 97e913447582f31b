package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/tokmint-go/internal/infra/confloader"
	"github.com/yndnr/tokmint-go/internal/storage/revocation"
)

const testKeyHex = "abbadabad0000000abbadabad0000000"

func validConfig() *ServerConfig {
	cfg := Default()
	cfg.Token.KeyHex = testKeyHex
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Address != DefaultHTTPAddr {
		t.Errorf("HTTP.Address = %q, want %q", cfg.Server.HTTP.Address, DefaultHTTPAddr)
	}
	if cfg.Server.HTTP.TLSEnabled() {
		t.Error("TLS should be disabled by default")
	}
	if cfg.Token.Engine != DefaultEngine {
		t.Errorf("Token.Engine = %q, want %q", cfg.Token.Engine, DefaultEngine)
	}
	if cfg.Revocation.Backend != revocation.BackendMemory {
		t.Errorf("Revocation.Backend = %q, want memory", cfg.Revocation.Backend)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Telemetry.Metrics = %+v", cfg.Telemetry.Metrics)
	}
	if cfg.Security.RateLimit.Enabled {
		t.Error("rate limit should be disabled by default")
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"valid", func(*ServerConfig) {}, ""},
		{"bad address", func(c *ServerConfig) { c.Server.HTTP.Address = "localhost" }, "server.http.address"},
		{"zero timeout", func(c *ServerConfig) { c.Server.HTTP.ReadTimeout = 0 }, "read_timeout"},
		{"small body", func(c *ServerConfig) { c.Server.HTTP.MaxBodyBytes = 10 }, "max_body_bytes"},
		{"cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "x.crt" }, "set together"},
		{"missing cert", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = filepath.Join(dir, "a.crt")
			c.Server.HTTP.TLSKeyFile = filepath.Join(dir, "a.key")
		}, "no such file"},
		{"resp default off", func(c *ServerConfig) { c.Server.RESP.Address = "" }, ""},
		{"resp address", func(c *ServerConfig) {
			c.Server.RESP.Enabled = true
			c.Server.RESP.Address = "6380"
		}, "server.resp.address"},
		{"resp shares http port", func(c *ServerConfig) {
			c.Server.RESP.Enabled = true
			c.Server.RESP.Address = c.Server.HTTP.Address
		}, "must differ"},
		{"resp tls without cert", func(c *ServerConfig) {
			c.Server.RESP.Enabled = true
			c.Server.RESP.TLS = true
		}, "server.resp.tls"},
		{"local socket", func(c *ServerConfig) {
			c.Server.Local.Enabled = true
			c.Server.Local.SocketPath = filepath.Join(dir, "tokmint.sock")
		}, ""},
		{"local socket dir missing", func(c *ServerConfig) {
			c.Server.Local.Enabled = true
			c.Server.Local.SocketPath = filepath.Join(dir, "nope", "tokmint.sock")
		}, "server.local.socket_path"},
		{"engine", func(c *ServerConfig) { c.Token.Engine = "gpu" }, "token.engine"},
		{"no key", func(c *ServerConfig) { c.Token.KeyHex = "" }, "key_file or key_hex"},
		{"key file dir", func(c *ServerConfig) { c.Token.KeyFile = dir }, "is a directory"},
		{"backend", func(c *ServerConfig) { c.Revocation.Backend = "etcd" }, "unknown backend"},
		{"badger dir", func(c *ServerConfig) {
			c.Revocation.Backend = revocation.BackendBadger
			c.Revocation.Badger.Dir = ""
		}, "badger.dir"},
		{"redis addr", func(c *ServerConfig) {
			c.Revocation.Backend = revocation.BackendRedis
			c.Revocation.Redis.Addr = ""
		}, "redis.addr"},
		{"ttl", func(c *ServerConfig) { c.Revocation.TTL = -time.Minute }, "revocation.ttl"},
		{"level", func(c *ServerConfig) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
		{"metrics path", func(c *ServerConfig) { c.Telemetry.Metrics.Path = "metrics" }, "metrics.path"},
		{"rate limit", func(c *ServerConfig) {
			c.Security.RateLimit.Enabled = true
			c.Security.RateLimit.Burst = 0
		}, "rate_limit"},
		{"client ca", func(c *ServerConfig) { c.Security.TLS.ClientCAFile = filepath.Join(dir, "ca.pem") }, "client_ca_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Revocation.TTL = -time.Second

	err := Verify(cfg)
	if err == nil {
		t.Fatal("Verify() error = nil")
	}
	for _, want := range []string{"key_file or key_hex", "log.level", "revocation.ttl"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Verify() error = %v, missing %q", err, want)
		}
	}
}

func TestSanitize(t *testing.T) {
	cfg := validConfig()
	cfg.Revocation.Redis.Password = "hunter22"
	cfg.Server.RESP.Password = "letmein"

	sanitized := Sanitize(cfg)

	if cfg.Token.KeyHex != testKeyHex {
		t.Error("original config should not be modified")
	}
	if got := sanitized.Token.KeyHex; got == testKeyHex || len(got) != len(testKeyHex) {
		t.Errorf("masked key = %q", got)
	}
	if !strings.HasPrefix(sanitized.Token.KeyHex, "ab") || !strings.HasSuffix(sanitized.Token.KeyHex, "00") {
		t.Errorf("masked key = %q, want first and last two characters kept", sanitized.Token.KeyHex)
	}
	if sanitized.Revocation.Redis.Password != "hu****22" {
		t.Errorf("masked password = %q", sanitized.Revocation.Redis.Password)
	}
	if sanitized.Server.RESP.Password != "le***in" {
		t.Errorf("masked resp password = %q", sanitized.Server.RESP.Password)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
	}
	for _, tt := range tests {
		if got := maskSecret(tt.in); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	yaml := `
server:
  http:
    address: 0.0.0.0:9000
    read_timeout: 2s
token:
  key_hex: ` + testKeyHex + `
  engine: software
revocation:
  backend: none
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOKMINT_LOG_LEVEL", "debug")
	t.Setenv("TOKMINT_REVOCATION_REDIS_ADDR", "redis:6379")

	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.LoadDefaults(Default()); err != nil {
		t.Fatalf("LoadDefaults() error = %v", err)
	}
	cfg := Default()
	if err := loader.Load(cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTP.Address != "0.0.0.0:9000" || cfg.Server.HTTP.ReadTimeout != 2*time.Second {
		t.Errorf("HTTP = %+v", cfg.Server.HTTP)
	}
	if cfg.Server.HTTP.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("WriteTimeout = %v, want default", cfg.Server.HTTP.WriteTimeout)
	}
	if cfg.Token.Engine != "software" || cfg.Revocation.Backend != revocation.BackendNone {
		t.Errorf("Token = %+v, Revocation.Backend = %q", cfg.Token, cfg.Revocation.Backend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug from env", cfg.Log.Level)
	}
	if cfg.Revocation.Redis.Addr != "redis:6379" {
		t.Errorf("Redis.Addr = %q, want env override", cfg.Revocation.Redis.Addr)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestSectionConversions(t *testing.T) {
	cfg := validConfig()
	cfg.Token.KeyFile = "/etc/tokmint/key"
	cfg.Token.Derive.Enabled = true

	kc := cfg.Token.Keyring()
	if kc.KeyFile != "/etc/tokmint/key" || kc.KeyHex != testKeyHex || !kc.Derive.Enabled {
		t.Errorf("Keyring() = %+v", kc)
	}
	lc := cfg.Log.Logger()
	if lc.Level != DefaultLogLevel || lc.Output == nil {
		t.Errorf("Logger() = %+v", lc)
	}
}
