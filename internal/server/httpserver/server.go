package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
)

// Config holds listener settings.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// TLS enables HTTPS when set. The config must supply certificates,
	// usually through GetCertificate.
	TLS *tls.Config

	// RateLimiter, when set, is pruned of idle clients while serving.
	RateLimiter *RateLimiter
	PruneEvery  time.Duration
}

// Server represents the HTTP server.
type Server struct {
	cfg        Config
	httpServer *http.Server
	logger     logger.Logger

	mu       sync.Mutex
	listener net.Listener
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a new HTTP server.
func New(cfg Config, h http.Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	if cfg.PruneEvery <= 0 {
		cfg.PruneEvery = time.Minute
	}
	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           h,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			TLSConfig:         cfg.TLS,
			ErrorLog:          slog.NewLogLogger(logger.Slog(log).Handler(), slog.LevelWarn),
		},
		logger: log.With("component", "http"),
		stop:   make(chan struct{}),
	}
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln, wrapping it in TLS when configured.
func (s *Server) Serve(ln net.Listener) error {
	if s.cfg.TLS != nil {
		ln = tls.NewListener(ln, s.cfg.TLS)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.cfg.RateLimiter != nil {
		go s.pruneLoop()
	}

	s.logger.Info("http server listening", "address", ln.Addr().String(), "tls", s.cfg.TLS != nil)
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr returns the bound address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) pruneLoop() {
	ticker := time.NewTicker(s.cfg.PruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.cfg.RateLimiter.Prune(2 * s.cfg.PruneEvery); n > 0 {
				s.logger.Debug("rate limiter pruned", "clients", n)
			}
		case <-s.stop:
			return
		}
	}
}
