package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/tokmint-go/internal/storage/revocation"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/pkg/crypto/aesprf"
)

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyHTTP(&cfg.Server.HTTP),
		verifyRESP(&cfg.Server.RESP, &cfg.Server.HTTP),
		verifyLocal(&cfg.Server.Local),
		verifyToken(&cfg.Token),
		verifyRevocation(&cfg.Revocation),
		verifyLog(&cfg.Log),
		verifyTelemetry(&cfg.Telemetry),
		verifySecurity(&cfg.Security),
	)
}

func verifyHTTP(cfg *HTTPConfig) error {
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		errs = append(errs, fmt.Errorf("server.http.address: %w", err))
	}
	if cfg.ReadTimeout <= 0 || cfg.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.http: read_timeout and write_timeout must be positive"))
	}
	if cfg.MaxBodyBytes < 256 {
		errs = append(errs, errors.New("server.http.max_body_bytes must be at least 256"))
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http: tls_cert_file and tls_key_file must be set together"))
	}
	for _, f := range []string{cfg.TLSCertFile, cfg.TLSKeyFile} {
		if err := fileExists(f); err != nil {
			errs = append(errs, fmt.Errorf("server.http: %w", err))
		}
	}
	return errors.Join(errs...)
}

func verifyRESP(cfg *RESPConfig, http *HTTPConfig) error {
	if !cfg.Enabled {
		return nil
	}
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		errs = append(errs, fmt.Errorf("server.resp.address: %w", err))
	}
	if cfg.Address == http.Address {
		errs = append(errs, errors.New("server.resp.address must differ from server.http.address"))
	}
	if cfg.TLS && !http.TLSEnabled() {
		errs = append(errs, errors.New("server.resp.tls needs server.http.tls_cert_file and tls_key_file"))
	}
	if cfg.CommandsPerSecond < 0 {
		errs = append(errs, errors.New("server.resp.commands_per_second must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyLocal(cfg *LocalConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SocketPath == "" {
		return errors.New("server.local.socket_path is required")
	}
	dir := filepath.Dir(cfg.SocketPath)
	if info, err := os.Stat(dir); err != nil {
		return fmt.Errorf("server.local.socket_path: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("server.local.socket_path: %s is not a directory", dir)
	}
	return nil
}

func verifyToken(cfg *TokenSection) error {
	var errs []error
	if _, _, err := aesprf.ParseType(cfg.Engine); err != nil {
		errs = append(errs, fmt.Errorf("token.engine: %w", err))
	}
	if cfg.KeyFile == "" && cfg.KeyHex == "" {
		errs = append(errs, errors.New("token: key_file or key_hex is required"))
	}
	if err := fileExists(cfg.KeyFile); err != nil {
		errs = append(errs, fmt.Errorf("token.key_file: %w", err))
	}
	return errors.Join(errs...)
}

func verifyRevocation(cfg *revocation.Config) error {
	var errs []error
	switch cfg.Backend {
	case revocation.BackendMemory, revocation.BackendNone:
	case revocation.BackendBadger:
		if cfg.Badger.Dir == "" && !cfg.Badger.InMemory {
			errs = append(errs, errors.New("revocation.badger.dir is required"))
		}
	case revocation.BackendRedis:
		if cfg.Redis.Addr == "" {
			errs = append(errs, errors.New("revocation.redis.addr is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("revocation.backend: unknown backend %q", cfg.Backend))
	}
	if cfg.TTL < 0 {
		errs = append(errs, errors.New("revocation.ttl must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Level))
	}
	if f := strings.ToLower(cfg.Format); f != "json" && f != "text" {
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyTelemetry(cfg *TelemetrySection) error {
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("telemetry.metrics.path must start with /: %q", cfg.Metrics.Path)
	}
	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	var errs []error
	if rl := cfg.RateLimit; rl.Enabled && (rl.RPS <= 0 || rl.Burst < 1) {
		errs = append(errs, errors.New("security.rate_limit: rps must be positive and burst at least 1"))
	}
	if err := fileExists(cfg.TLS.ClientCAFile); err != nil {
		errs = append(errs, fmt.Errorf("security.tls.client_ca_file: %w", err))
	}
	return errors.Join(errs...)
}

// fileExists accepts an empty path.
func fileExists(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
