package chat

import (
	"errors"
	"fmt"
)

// Kind classifies one received line.
type Kind int

const (
	KindBroadcast Kind = iota
	KindWhisper
	KindSystem
	KindMalformed
	KindQuit
	KindUsers
)

func (k Kind) String() string {
	switch k {
	case KindBroadcast:
		return "broadcast"
	case KindWhisper:
		return "whisper"
	case KindSystem:
		return "system"
	case KindMalformed:
		return "malformed"
	case KindQuit:
		return "quit"
	case KindUsers:
		return "users"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Message lives for the duration of a single delivery.
type Message struct {
	Kind   Kind
	Sender string
	Body   string
	// Target is the raw whisper name token, unresolved.
	Target string
}

const (
	whisperCommand = "/w"
	usersCommand   = "/users"

	nicknamePrompt = "Enter your nickname:"
)

var (
	// ErrPeerClosed is returned by writes to a connection that has already been closed.
	ErrPeerClosed = errors.New("chat: peer closed")

	ErrMalformedWhisper = errors.New("chat: malformed whisper")
	ErrUnknownTarget    = errors.New("chat: whisper target not found")
	ErrSelfWhisper      = errors.New("chat: whisper to self")
)

// BindError reports that the listener could not acquire its endpoint.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("chat: bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

func broadcastLine(sender, body string) string {
	return sender + "> " + body
}

func whisperLine(sender, body string) string {
	return "(whisper) " + sender + "> " + body
}

func whisperEchoLine(sender, target, body string) string {
	return "(whisper to " + target + ") " + sender + "> " + body
}

func joinedNotice(name string) string { return "[" + name + "] has joined." }

func leftNotice(name string) string { return "[" + name + "] has left." }

func unknownTargetNotice(target string) string { return "[" + target + "] user not found." }

const (
	whisperUsageNotice = "usage: /w <name> <message>"
	selfWhisperNotice  = "you cannot whisper to yourself."
)
