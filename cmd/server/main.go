package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andy6609/tcp-chat-relay/internal/chat"
	"github.com/andy6609/tcp-chat-relay/internal/config"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	addr := flag.String("addr", cfg.Addr, "chat listen address")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "metrics listen address (empty disables)")
	flag.Parse()
	cfg.Addr = *addr
	cfg.MetricsAddr = *metricsAddr

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.LogLevel),
	}))

	srv := chat.NewServer(cfg, logger)
	if err := srv.Start(); err != nil {
		var bindErr *chat.BindError
		if errors.As(err, &bindErr) {
			logger.Error("cannot bind listen address", "addr", bindErr.Addr, "error", bindErr.Err)
		} else {
			logger.Error("failed to start server", "error", err)
		}
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Stop()
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("metrics listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "error", err)
	}
}
