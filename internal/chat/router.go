package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Router turns received lines into deliveries against the registry.
type Router struct {
	reg    *Registry
	quit   string
	logger *slog.Logger
}

func NewRouter(reg *Registry, quit string, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{reg: reg, quit: quit, logger: logger}
}

// Classify decides what a line from sender means. Surrounding whitespace is
// ignored.
func (r *Router) Classify(sender, line string) Message {
	line = strings.TrimSpace(line)
	msg := Message{Kind: KindBroadcast, Sender: sender, Body: line}

	switch {
	case line == r.quit:
		msg.Kind = KindQuit
		return msg
	case line == usersCommand:
		msg.Kind = KindUsers
		return msg
	}

	rest, ok := strings.CutPrefix(line, whisperCommand)
	if !ok || (rest != "" && rest[0] != ' ') {
		// "/wave" and friends are ordinary chat.
		return msg
	}
	target, body, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
	body = strings.TrimSpace(body)
	if target == "" || body == "" {
		msg.Kind = KindMalformed
		return msg
	}
	msg.Kind = KindWhisper
	msg.Target = target
	msg.Body = body
	return msg
}

// Dispatch routes one line from s. It returns false once the session has
// asked to quit.
func (r *Router) Dispatch(s *Session, line string) bool {
	msg := r.Classify(s.Name, line)
	start := time.Now()
	defer func() {
		kind := msg.Kind.String()
		MessagesTotal.WithLabelValues(kind).Inc()
		EventProcessingDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	switch msg.Kind {
	case KindQuit:
		r.Leave(s.peer)
		return false
	case KindUsers:
		r.deliver(s, "users: "+strings.Join(r.reg.Names(), ", "))
	case KindMalformed:
		r.logger.Debug("rejected whisper", "session", s.ID, "error", ErrMalformedWhisper)
		r.deliver(s, whisperUsageNotice)
	case KindWhisper:
		if err := r.Whisper(s, msg.Target, msg.Body); err != nil {
			r.logger.Debug("whisper not delivered", "session", s.ID, "error", err)
		}
	default:
		r.Broadcast(s, broadcastLine(s.Name, msg.Body))
	}
	return true
}

// Join registers p under name and tells everyone else.
func (r *Router) Join(p *peer, name string) *Session {
	s := r.reg.Register(p, name)
	r.logger.Info("user registered", "session", s.ID, "name", s.Name, "addr", p.remoteAddr())
	r.Broadcast(s, joinedNotice(s.Name))
	MessagesTotal.WithLabelValues(KindSystem.String()).Inc()
	return s
}

// Leave unregisters p and tells the remaining sessions. Only the call that
// actually removes the session produces a notice.
func (r *Router) Leave(p *peer) (*Session, bool) {
	s, ok := r.reg.Unregister(p)
	if !ok {
		return nil, false
	}
	r.logger.Info("user left", "session", s.ID, "name", s.Name)
	r.Broadcast(s, leftNotice(s.Name))
	MessagesTotal.WithLabelValues(KindSystem.String()).Inc()
	return s, true
}

// Broadcast writes line to every registered session except from and reports
// how many writes succeeded.
func (r *Router) Broadcast(from *Session, line string) int {
	recipients := lo.Reject(r.reg.Snapshot(), func(s *Session, _ int) bool {
		return s.peer == from.peer
	})
	return lo.CountBy(recipients, func(s *Session) bool {
		return r.deliver(s, line)
	})
}

// Whisper sends body from one session to the first session named target
// and echoes a confirmation to the sender. Failures are reported to the
// sender only.
func (r *Router) Whisper(from *Session, target, body string) error {
	to, ok := r.reg.FindByName(target)
	if !ok {
		r.deliver(from, unknownTargetNotice(target))
		return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	if to.peer == from.peer {
		r.deliver(from, selfWhisperNotice)
		return ErrSelfWhisper
	}

	r.deliver(to, whisperLine(from.Name, body))
	r.deliver(from, whisperEchoLine(from.Name, to.Name, body))
	return nil
}

// deliver never fails the caller. A broken recipient is closed by its peer
// and its own handler notices on the next read.
func (r *Router) deliver(s *Session, line string) bool {
	err := s.Send(line)
	if err == nil {
		return true
	}
	DeliveryFailures.Inc()
	if errors.Is(err, ErrPeerClosed) {
		r.logger.Debug("dropped line for closed session", "session", s.ID)
	} else {
		r.logger.Warn("write failed", "session", s.ID, "error", err)
	}
	return false
}
