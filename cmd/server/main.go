package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ArtiomVlasov/messenger/internal/chat"
	"github.com/ArtiomVlasov/messenger/internal/config"
	"github.com/ArtiomVlasov/messenger/internal/store"
)

func main() {
	configPath := flag.String("config", "messenger.yaml", "path to config file")
	addr := flag.String("addr", "", "chat listen address (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "metrics listen address (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	creds := store.NewCredentials(cfg.CredentialsFile, logger)
	if err := creds.Load(); err != nil {
		logger.Error("failed to load credentials, starting empty", "error", err)
	}
	history := store.NewHistory(cfg.HistoryFile, cfg.HistoryLimit, logger)
	if err := history.Load(); err != nil {
		logger.Error("failed to load history, starting empty", "error", err)
	}
	logger.Info("state loaded", "credentials", creds.Count(), "history", history.Len())

	srv := chat.NewServer(cfg, creds, history, logger)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			logger.Error("metrics endpoint failed", "addr", cfg.MetricsAddr, "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Stop()
}
