package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andy6609/tcp-chat-relay/internal/client"
	"github.com/andy6609/tcp-chat-relay/internal/config"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	addr := flag.String("addr", cfg.ServerAddr, "chat server address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))

	conn, err := net.DialTimeout("tcp", *addr, 5*time.Second)
	if err != nil {
		logger.Error("cannot connect", "addr", *addr, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = client.Run(ctx, conn, os.Stdin, os.Stdout, client.Options{
		QuitCommand:  cfg.QuitCommand,
		MaxLineBytes: cfg.MaxLineBytes,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("client stopped", "error", err)
		stop()
		os.Exit(1)
	}
}
