// Package httpserver serves the tokmint HTTP API.
//
// NewRouter wraps each route of the handler package in the middleware
// chain Recover, RequestID, RateLimit, Metrics and Audit, and mounts the
// Prometheus endpoint. Server runs the router over plain TCP or TLS.
package httpserver
