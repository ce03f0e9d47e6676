package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()}))
	slog.SetDefault(logger)
	lib.SetLogger(logger)

	srv, err := NewGRPCServer(cfg)
	if err != nil {
		logger.Error("failed to initialize server", "err", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sig
		logger.Info("shutting down", "signal", s.String())
		srv.Stop()
	}()

	logger.Info("server (TLS) listening", "addr", srv.Addr().String())
	if err := srv.Serve(); err != nil {
		logger.Error("failed to serve", "err", err)
		os.Exit(1)
	}
}
