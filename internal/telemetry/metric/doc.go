// Package metric provides Prometheus metrics for tokmint.
//
//   - prometheus.go: registry, token and HTTP metrics, /metrics handler
//   - collector.go: scrape-time collector for revocation store size
//
// Every metric lives in a private registry so tests can build as many
// Registry values as they like without duplicate-registration panics.
package metric
