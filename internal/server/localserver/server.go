package localserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/yndnr/tokmint-go/internal/telemetry/logger"
)

// SocketMode is the permission applied to the socket file.
const SocketMode fs.FileMode = 0o600

// Server serves an http.Handler on a Unix socket.
type Server struct {
	path   string
	srv    *http.Server
	logger logger.Logger

	mu sync.Mutex
	ln net.Listener
}

// New creates a server for the socket at path.
func New(path string, h http.Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		path: path,
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       time.Minute,
		},
		logger: log.With("component", "localserver"),
	}
}

// ListenAndServe creates the socket and serves until Shutdown. A stale
// socket left by a previous run is removed; any other file at path is an
// error.
func (s *Server) ListenAndServe() error {
	if err := removeStale(s.path); err != nil {
		return err
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	if err := os.Chmod(s.path, SocketMode); err != nil {
		ln.Close()
		return fmt.Errorf("localserver: chmod socket: %w", err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.logger.Info("local socket listening", "path", s.path)

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Path returns the socket path.
func (s *Server) Path() string {
	return s.path
}

// Shutdown stops the server, drains requests until ctx ends and removes
// the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	s.mu.Lock()
	started := s.ln != nil
	s.mu.Unlock()
	if started {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
			err = rmErr
		}
	}
	return err
}

func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode().Type() != fs.ModeSocket {
		return fmt.Errorf("localserver: %s exists and is not a socket", path)
	}
	return os.Remove(path)
}
