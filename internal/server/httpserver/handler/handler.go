package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/yndnr/tokmint-go/internal/core/domain"
	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/infra/buildinfo"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 4 << 10

// Handler routes API requests to the token service.
type Handler struct {
	tokens  *service.TokenService
	logger  logger.Logger
	maxBody int64
	mux     *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithMaxBodyBytes limits request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// New creates a Handler serving tokens.
func New(tokens *service.TokenService, opts ...Option) *Handler {
	h := &Handler{
		tokens:  tokens,
		logger:  logger.Default(),
		maxBody: DefaultMaxBodyBytes,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Routes lists the patterns the Handler serves.
func Routes() []string {
	return []string{
		"POST /v1/tokens",
		"POST /v1/tokens/validate",
		"POST /v1/tokens/revoke",
		"GET /health",
		"GET /ready",
	}
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("POST /v1/tokens", h.handleMint)
	h.mux.HandleFunc("POST /v1/tokens/validate", h.handleValidate)
	h.mux.HandleFunc("POST /v1/tokens/revoke", h.handleRevoke)

	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
}

// decode reads a JSON body into v, rejecting unknown fields, trailing
// data and bodies over the size limit.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return domain.ErrBadRequest.WithDetails(fmt.Sprintf("body exceeds %d bytes", tooBig.Limit))
		}
		return domain.ErrBadRequest.WithDetails("invalid request body").WithCause(err)
	}
	if dec.More() {
		return domain.ErrBadRequest.WithDetails("trailing data after request body")
	}
	if _, err := dec.Token(); err != io.EOF {
		return domain.ErrBadRequest.WithDetails("trailing data after request body")
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(NewResponse(requestID, data)); err != nil {
		h.logger.Error("failed to encode response", "error", err, "request_id", requestID)
	}
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.DomainError
	if !errors.As(domain.FromTokenError(err), &derr) {
		derr = domain.ErrInternalServer
	}
	if derr.HTTPStatus() >= http.StatusInternalServerError {
		logger.L(r.Context()).Error("request failed", "error", err, "code", derr.Code)
	}
	WriteError(w, r, derr)
}

// WriteError writes err in the error envelope with the status its code
// maps to. The X-Error-Code header carries the code.
func WriteError(w http.ResponseWriter, r *http.Request, err *domain.DomainError) {
	var details any
	if err.Details != "" {
		details = err.Details
	}
	resp := NewErrorResponse(logger.RequestIDFromContext(r.Context()), err.Code, err.Message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", err.Code)
	w.WriteHeader(err.HTTPStatus())
	_ = json.NewEncoder(w).Encode(resp)
}

func version() string {
	return buildinfo.Get().Version
}
