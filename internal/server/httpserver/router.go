package httpserver

import (
	"net/http"

	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/server/httpserver/handler"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
	"github.com/yndnr/tokmint-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Tokens *service.TokenService

	// Metrics enables request metrics and, with MetricsPath, the
	// Prometheus endpoint.
	Metrics     *metric.Registry
	MetricsPath string

	// RateLimiter applies to the token routes. Nil disables limiting.
	RateLimiter *RateLimiter

	Logger       logger.Logger
	MaxBodyBytes int64
	EnableAudit  bool
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		MetricsPath:  "/metrics",
		MaxBodyBytes: handler.DefaultMaxBodyBytes,
		EnableAudit:  true,
	}
}

// NewRouter builds the top-level mux. Health routes skip rate limiting
// and auditing so probes never fail or flood the log.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	h := handler.New(cfg.Tokens, handler.WithLogger(log), handler.WithMaxBodyBytes(cfg.MaxBodyBytes))

	mux := http.NewServeMux()
	for _, pattern := range handler.Routes() {
		chain := []Middleware{Recover(log), RequestID()}
		probe := pattern == "GET /health" || pattern == "GET /ready"
		if cfg.RateLimiter != nil && !probe {
			chain = append(chain, cfg.RateLimiter.Middleware())
		}
		if cfg.Metrics != nil {
			chain = append(chain, Metrics(cfg.Metrics, pattern))
		}
		if cfg.EnableAudit && !probe {
			chain = append(chain, Audit(log))
		}
		mux.Handle(pattern, Chain(h, chain...))
	}

	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, Chain(cfg.Metrics.Handler(), Recover(log)))
	}

	return mux
}
