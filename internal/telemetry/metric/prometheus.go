package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tokmint"

// Operation labels.
const (
	OpMint     = "mint"
	OpValidate = "validate"
	OpRevoke   = "revoke"
)

// Validation result labels.
const (
	ResultValid     = "valid"
	ResultInvalid   = "invalid"
	ResultRevoked   = "revoked"
	ResultMalformed = "malformed"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	TokensMinted      *prometheus.CounterVec
	TokensValidated   *prometheus.CounterVec
	MintFailures      *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Revocations       prometheus.Counter
	EngineInfo        *prometheus.GaugeVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with Go runtime and process collectors
// plus every tokmint metric.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		TokensMinted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_minted_total",
			Help:      "Tokens minted, by engine.",
		}, []string{"engine"}),
		TokensValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_validated_total",
			Help:      "Validation outcomes.",
		}, []string{"result"}),
		MintFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mint_failures_total",
			Help:      "Mint calls that produced no token, by error code.",
		}, []string{"code"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "token_operation_duration_seconds",
			Help:      "Latency of token operations including revocation lookups.",
			Buckets:   []float64{1e-7, 5e-7, 1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 1e-3, 1e-2},
		}, []string{"op"}),
		Revocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocations_total",
			Help:      "Tokens revoked.",
		}),
		EngineInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "engine_info",
			Help:      "Block cipher engine in use (value is always 1).",
		}, []string{"engine"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.TokensMinted,
		r.TokensValidated,
		r.MintFailures,
		r.OperationDuration,
		r.Revocations,
		r.EngineInfo,
		r.HTTPRequests,
		r.HTTPDuration,
	)
	return r
}

// Prometheus returns the underlying registry for components that register
// their own metrics.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// MustRegister registers extra collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

// ObserveSince records the duration of op started at start.
func (r *Registry) ObserveSince(op string, start time.Time) {
	r.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// SetEngine records the engine in use.
func (r *Registry) SetEngine(engine string) {
	r.EngineInfo.Reset()
	r.EngineInfo.WithLabelValues(engine).Set(1)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
