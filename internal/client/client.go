// Package client runs the participant side of the chat: one goroutine prints
// what the server pushes while another forwards local input.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/andy6609/tcp-chat-relay/internal/chat"
)

// ClosedNotice is printed when the server ends the connection.
const ClosedNotice = "connection closed by server."

type Options struct {
	QuitCommand  string
	MaxLineBytes int
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.QuitCommand == "" {
		o.QuitCommand = "/quit"
	}
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = 4096
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Run drives conn until the quit command is sent, local input ends, ctx is
// cancelled or the server goes away. Whichever side stops first closes conn,
// and Run returns only after both sides have stopped.
func Run(ctx context.Context, conn net.Conn, in io.Reader, out io.Writer, opts Options) error {
	opts = opts.withDefaults()

	var (
		closeOnce   sync.Once
		closedLocal atomic.Bool
	)
	closeConn := func(local bool) {
		closeOnce.Do(func() {
			closedLocal.Store(local)
			_ = conn.Close()
		})
	}

	recvDone := make(chan struct{})
	go func() {
		defer close(recvDone)
		receive(conn, out, &closedLocal, opts)
		closeConn(false)
	}()

	err := send(ctx, conn, in, recvDone, opts)
	closeConn(true)
	<-recvDone
	return err
}

func receive(conn net.Conn, out io.Writer, closedLocal *atomic.Bool, opts Options) {
	sc := chat.NewLineScanner(conn, opts.MaxLineBytes)
	for sc.Scan() {
		if _, err := fmt.Fprintln(out, sc.Text()); err != nil {
			opts.Logger.Warn("print failed", "error", err)
			return
		}
	}
	if closedLocal.Load() {
		return
	}
	if err := sc.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		opts.Logger.Debug("receive failed", "error", err)
	}
	_, _ = fmt.Fprintln(out, ClosedNotice)
}

func send(ctx context.Context, conn net.Conn, in io.Reader, recvDone <-chan struct{}, opts Options) error {
	stop := make(chan struct{})
	defer close(stop)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := chat.NewLineScanner(in, opts.MaxLineBytes)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-recvDone:
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}
			if line == "" {
				continue
			}
			if _, err := io.WriteString(conn, line+"\n"); err != nil {
				select {
				case <-recvDone:
					return nil
				default:
				}
				return fmt.Errorf("send: %w", err)
			}
			if line == opts.QuitCommand {
				return nil
			}
		}
	}
}

