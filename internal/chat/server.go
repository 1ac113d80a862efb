package chat

import (
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/andy6609/tcp-chat-relay/internal/config"
)

// Server accepts connections and hands each one to its own Handler goroutine.
type Server struct {
	addr     string
	logger   *slog.Logger
	reg      *Registry
	router   *Router
	handler  *Handler
	listener net.Listener
	doneCh   chan struct{}
}

func NewServer(cfg config.Server, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry()
	router := NewRouter(reg, cfg.QuitCommand, logger)
	return &Server{
		addr:    cfg.Addr,
		logger:  logger,
		reg:     reg,
		router:  router,
		handler: NewHandler(router, cfg.MaxLineBytes, cfg.WriteTimeout, logger),
		doneCh:  make(chan struct{}),
	}
}

// Start binds the listen address once and begins accepting in the background.
// A bind failure is returned as *BindError and is not retried.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return &BindError{Addr: s.addr, Err: err}
	}
	s.listener = ln

	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

// Addr is the bound address; nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Registry() *Registry {
	return s.reg
}

// Stop closes the listener and waits for the accept loop. Open sessions are
// left to run until their peers go away.
func (s *Server) Stop() {
	s.logger.Info("shutting down")

	if s.listener == nil {
		return
	}
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("listener close failed", "error", err)
	}
	<-s.doneCh

	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer close(s.doneCh)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			backoff = nextBackoff(backoff)
			s.logger.Warn("accept failed", "error", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.logger.Info("client connected", "addr", conn.RemoteAddr().String())
		go s.handler.Serve(conn)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	const (
		minDelay = 5 * time.Millisecond
		maxDelay = time.Second
	)
	if d == 0 {
		return minDelay
	}
	if d *= 2; d > maxDelay {
		return maxDelay
	}
	return d
}
