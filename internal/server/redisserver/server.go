package redisserver

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/tokmint-go/internal/core/domain"
	"github.com/yndnr/tokmint-go/internal/core/service"
	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
)

// Config holds the RESP listener configuration.
type Config struct {
	Address string

	// TLS, when set, wraps the listener.
	TLS *tls.Config

	// Password, when set, must be presented with AUTH before TM.*
	// commands are accepted.
	Password string

	// ReadTimeout bounds reading one command once its first byte arrives.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// IdleTimeout bounds the wait for the next command.
	IdleTimeout time.Duration

	// CommandsPerSecond limits each connection. Zero disables the limit.
	CommandsPerSecond float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Address:           "127.0.0.1:6380",
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       5 * time.Minute,
		CommandsPerSecond: 0,
	}
}

// Server accepts RESP connections.
type Server struct {
	cfg     Config
	handler *CommandHandler
	logger  logger.Logger

	mu      sync.Mutex
	ln      net.Listener
	conns   map[*Conn]struct{}
	closing atomic.Bool
	wg      sync.WaitGroup
}

// Conn is one client connection.
type Conn struct {
	netConn net.Conn
	r       *Reader
	w       *Writer
	limiter *rate.Limiter

	authed atomic.Bool
	quit   bool
	closed atomic.Bool
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the client address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// New creates a Server. A nil log uses logger.Default().
func New(cfg Config, tokens *service.TokenService, log logger.Logger) *Server {
	def := DefaultConfig()
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.With("component", "resp")

	return &Server{
		cfg:     cfg,
		handler: NewCommandHandler(tokens, cfg.Password, log),
		logger:  log,
		conns:   make(map[*Conn]struct{}),
	}
}

// ListenAndServe listens on cfg.Address and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if s.cfg.TLS != nil {
		ln = tls.NewListener(ln, s.cfg.TLS)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.logger.Info("resp server listening", "addr", ln.Addr().String(), "tls", s.cfg.TLS != nil)

	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.closing.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		c := s.newConn(nc)
		if c == nil {
			nc.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.forget(c)
			s.serveConn(c)
		}()
	}
}

// Addr returns the listening address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) newConn(nc net.Conn) *Conn {
	c := &Conn{netConn: nc, r: NewReader(nc), w: NewWriter(nc)}
	if s.cfg.CommandsPerSecond > 0 {
		burst := max(int(s.cfg.CommandsPerSecond), 1)
		c.limiter = rate.NewLimiter(rate.Limit(s.cfg.CommandsPerSecond), burst)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing.Load() {
		return nil
	}
	s.conns[c] = struct{}{}
	return c
}

func (s *Server) forget(c *Conn) {
	c.Close()
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// Shutdown stops accepting, closes open connections and waits for their
// goroutines or ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)

	s.mu.Lock()
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) serveConn(c *Conn) {
	log := s.logger.With("remote", c.RemoteAddr().String())
	for {
		// Idle clients may wait long for their next command. Once a
		// command starts it must arrive within ReadTimeout.
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
			return
		}
		if err := c.r.Peek(); err != nil {
			if !errors.Is(err, io.EOF) && !s.closing.Load() {
				log.Debug("connection read ended", "error", err)
			}
			return
		}
		if err := c.netConn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			return
		}

		args, err := c.r.ReadCommand()
		if err != nil {
			if errors.Is(err, ErrProtocol) || errors.Is(err, ErrLimitExceeded) {
				log.Warn("protocol error", "error", err)
				c.w.Error("ERR " + err.Error())
				s.flush(c)
			}
			return
		}
		if len(args) == 0 {
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			writeError(c.w, domain.ErrRateLimited)
		} else {
			ctx := logger.WithRequestID(context.Background(), ulid.Make().String())
			s.handler.Handle(ctx, c, args)
		}

		if err := s.flush(c); err != nil || c.quit {
			return
		}
	}
}

func (s *Server) flush(c *Conn) error {
	if err := c.netConn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
		return err
	}
	return c.w.Flush()
}
