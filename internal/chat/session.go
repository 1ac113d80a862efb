package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
)

type handlerState int

const (
	stateHandshake handlerState = iota
	stateActive
	stateClosing
	stateClosed
)

func (s handlerState) String() string {
	switch s {
	case stateHandshake:
		return "handshake"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// errQuit ends the relay loop after the quit command.
var errQuit = errors.New("quit requested")

// Handler runs one connection through the nickname handshake and then
// relays its lines until quit, EOF or a transport error.
type Handler struct {
	router       *Router
	maxLine      int
	writeTimeout time.Duration
	logger       *slog.Logger
}

func NewHandler(router *Router, maxLine int, writeTimeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		router:       router,
		maxLine:      maxLine,
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Serve owns conn until it returns; conn is always closed on return.
func (h *Handler) Serve(conn net.Conn) {
	p := newPeer(conn, h.writeTimeout)
	defer func() {
		_ = p.Close()
	}()

	log := h.logger.With("addr", p.remoteAddr())
	log.Debug("handler state", "state", stateHandshake)

	reader := NewLineScanner(conn, h.maxLine)

	if err := p.writeLine(nicknamePrompt); err != nil {
		log.Debug("handshake aborted", "error", err)
		return
	}
	if !reader.Scan() {
		log.Debug("handshake aborted", "error", scanErr(reader))
		return
	}

	s := h.router.Join(p, reader.Text())
	log = log.With("session", s.ID, "name", s.Name)
	log.Debug("handler state", "state", stateActive)

	err := h.relay(s, reader)

	log.Debug("handler state", "state", stateClosing, "reason", err)
	switch {
	case errors.Is(err, errQuit), errors.Is(err, io.EOF):
	case errors.Is(err, bufio.ErrTooLong):
		log.Warn("line too long, dropping connection", "limit", h.maxLine)
	case errors.Is(err, net.ErrClosed) && p.isClosed():
		// A failed write to this peer closed it under the reader.
	default:
		log.Warn("read failed", "error", err)
	}
	h.router.Leave(p)
	_ = p.Close()
	log.Debug("handler state", "state", stateClosed)
}

func (h *Handler) relay(s *Session, reader *bufio.Scanner) error {
	for reader.Scan() {
		line := strings.TrimSpace(reader.Text())
		if line == "" {
			continue
		}
		if !h.router.Dispatch(s, line) {
			return errQuit
		}
	}
	return scanErr(reader)
}

// scanErr maps a stopped scanner to io.EOF for a clean close.
func scanErr(reader *bufio.Scanner) error {
	if err := reader.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return io.EOF
}
