package server

import (
	"context"
	"crypto/tls"
	"net/http"

	"golang.org/x/net/http2"

	"github.com/coreway/httpcore/config"
	"github.com/coreway/httpcore/metrics"
)

// Server owns the process-level listener, the virtual hosts it
// dispatches to, and the graceful shutdown sequence: stop accepting,
// let the transport emit GOAWAY, wait out a quiet period, then force
// close.
type Server struct {
	cfg     *config.Config
	metrics *metrics.Registry
	pool    *BlockingPool

	httpServer *http.Server
}

// New builds a Server that dispatches every request to dispatcher.
// TLS is mandatory: HTTP/2 over cleartext is out of scope, matching
// the ingress state machine's RFC 7540 framing assumptions.
func New(cfg *config.Config, dispatcher *Dispatcher, reg *metrics.Registry, pool *BlockingPool) (*Server, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"h2", "http/1.1"},
	}

	httpServer := &http.Server{
		Addr:        cfg.Address,
		Handler:     dispatcher,
		TLSConfig:   tlsConfig,
		IdleTimeout: cfg.IdleTimeout,
	}

	if err := http2.ConfigureServer(httpServer, &http2.Server{
		MaxConcurrentStreams: cfg.MaxConcurrentStreams,
		MaxReadFrameSize:     1 << 20,
		IdleTimeout:          cfg.IdleTimeout,
	}); err != nil {
		return nil, err
	}

	return &Server{cfg: cfg, metrics: reg, pool: pool, httpServer: httpServer}, nil
}

// ListenAndServe blocks, serving TLS+h2 until Shutdown is called.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServeTLS(s.cfg.CertFile, s.cfg.KeyFile)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// MetricsHandler exposes the server's Prometheus registry, for
// binding to a separate metrics listener.
func (s *Server) MetricsHandler() http.Handler {
	if s.metrics == nil {
		return http.NotFoundHandler()
	}
	return s.metrics.Handler()
}

// Shutdown stops accepting new connections, then calls the underlying
// http.Server's graceful Shutdown — which the HTTP/2 transport answers
// by sending GOAWAY to every open connection and waiting for their
// streams to finish — bounded by ShutdownQuietTime. If streams are
// still open when the quiet period elapses, it force-closes every
// connection immediately rather than waiting further, consistent with
// the quiet-period-then-forced-close sequence Validate enforces
// (quiet time never exceeds the outer ShutdownTimeout a caller applies
// to ctx).
func (s *Server) Shutdown(ctx context.Context) error {
	quietCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownQuietTime)
	defer cancel()

	err := s.httpServer.Shutdown(quietCtx)
	if s.pool != nil {
		s.pool.Close()
	}
	if err == nil {
		return nil
	}

	return s.httpServer.Close()
}
