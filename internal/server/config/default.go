package config

import (
	"time"

	"github.com/yndnr/tokmint-go/internal/storage/revocation"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:5080"
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxBodyBytes    = 4 << 10

	DefaultRESPAddr        = "127.0.0.1:6380"
	DefaultRESPIdleTimeout = 5 * time.Minute

	DefaultSocketPath = "/run/tokmint/tokmint.sock"

	DefaultEngine = "auto"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"

	DefaultRateLimitRPS   = 1000
	DefaultRateLimitBurst = 2000
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Address:         DefaultHTTPAddr,
				ReadTimeout:     DefaultReadTimeout,
				WriteTimeout:    DefaultWriteTimeout,
				IdleTimeout:     DefaultIdleTimeout,
				ShutdownTimeout: DefaultShutdownTimeout,
				MaxBodyBytes:    DefaultMaxBodyBytes,
			},
			RESP: RESPConfig{
				Address:     DefaultRESPAddr,
				ReadTimeout: DefaultReadTimeout,
				IdleTimeout: DefaultRESPIdleTimeout,
			},
			Local: LocalConfig{
				SocketPath: DefaultSocketPath,
			},
		},
		Token: TokenSection{
			Engine: DefaultEngine,
		},
		Revocation: revocation.DefaultConfig(),
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Telemetry: TelemetrySection{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    DefaultMetricsPath,
			},
		},
		Security: SecuritySection{
			RateLimit: RateLimitConfig{
				Enabled: false,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
	}
}
