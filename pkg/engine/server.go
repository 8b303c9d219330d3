package engine

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getmockd/fishem/pkg/logging"
)

// ShutdownTimeout bounds how long Stop waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Config holds listener settings.
type Config struct {
	// HTTPAddr is the plain HTTP listen address, e.g. ":5000". Empty disables it.
	HTTPAddr string
	// HTTPSAddr is the HTTPS listen address. Empty disables it.
	HTTPSAddr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves one handler on the configured listeners.
type Server struct {
	cfg       Config
	handler   http.Handler
	tlsConfig *tls.Config
	log       *slog.Logger

	mu          sync.Mutex
	running     bool
	startTime   time.Time
	httpServer  *http.Server
	httpsServer *http.Server
	httpLn      net.Listener
	httpsLn     net.Listener

	errCh chan error
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the server's logger.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTLS sets the TLS configuration used by the HTTPS listener.
func WithTLS(cfg *tls.Config) ServerOption {
	return func(s *Server) {
		s.tlsConfig = cfg
	}
}

// NewServer creates a Server. The handler is wrapped with the standard
// middleware chain.
func NewServer(cfg Config, handler http.Handler, opts ...ServerOption) *Server {
	s := &Server{
		cfg:   cfg,
		log:   logging.Nop(),
		errCh: make(chan error, 2),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = Chain(handler, s.log)
	return s
}

// Start binds the listeners and begins serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server is already running")
	}
	if s.cfg.HTTPAddr == "" && s.cfg.HTTPSAddr == "" {
		return errors.New("no listen address configured")
	}
	if s.cfg.HTTPSAddr != "" && s.tlsConfig == nil {
		return errors.New("HTTPS requires a TLS configuration")
	}

	if s.cfg.HTTPAddr != "" {
		ln, err := net.Listen("tcp", s.cfg.HTTPAddr)
		if err != nil {
			return fmt.Errorf("HTTP listen on %s: %w", s.cfg.HTTPAddr, err)
		}
		s.httpLn = ln
		s.httpServer = s.newHTTPServer(nil)
	}

	if s.cfg.HTTPSAddr != "" {
		ln, err := net.Listen("tcp", s.cfg.HTTPSAddr)
		if err != nil {
			if s.httpLn != nil {
				_ = s.httpLn.Close()
				s.httpLn, s.httpServer = nil, nil
			}
			return fmt.Errorf("HTTPS listen on %s: %w", s.cfg.HTTPSAddr, err)
		}
		s.httpsLn = tls.NewListener(ln, s.tlsConfig)
		s.httpsServer = s.newHTTPServer(s.tlsConfig)
	}

	if s.httpServer != nil {
		s.log.Info("starting HTTP server", "addr", s.httpLn.Addr().String())
		go s.serve("HTTP", s.httpServer, s.httpLn)
	}
	if s.httpsServer != nil {
		s.log.Info("starting HTTPS server", "addr", s.httpsLn.Addr().String())
		go s.serve("HTTPS", s.httpsServer, s.httpsLn)
	}

	s.running = true
	s.startTime = time.Now()
	return nil
}

func (s *Server) newHTTPServer(tlsConfig *tls.Config) *http.Server {
	return &http.Server{
		Handler:           s.handler,
		TLSConfig:         tlsConfig,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}
}

func (s *Server) serve(name string, srv *http.Server, ln net.Listener) {
	err := srv.Serve(ln)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	s.log.Error(name+" server error", "error", err)
	select {
	case s.errCh <- fmt.Errorf("%s server: %w", name, err):
	default:
	}
}

// Errors delivers listener failures that stop serving after Start returned.
// A clean Stop sends nothing.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// Stop gracefully shuts down both listeners.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}
	if s.httpsServer != nil {
		if err := s.httpsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTPS shutdown: %w", err))
		}
	}

	s.running = false
	s.httpServer, s.httpsServer = nil, nil
	s.httpLn, s.httpsLn = nil, nil
	s.log.Info("server stopped", "uptime", time.Since(s.startTime).Round(time.Millisecond))

	return errors.Join(errs...)
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// HTTPAddr returns the bound HTTP address, or "" when not listening.
func (s *Server) HTTPAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpLn == nil {
		return ""
	}
	return s.httpLn.Addr().String()
}

// HTTPSAddr returns the bound HTTPS address, or "" when not listening.
func (s *Server) HTTPSAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpsLn == nil {
		return ""
	}
	return s.httpsLn.Addr().String()
}
