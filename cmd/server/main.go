package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/paisa-sahayogi/backend/internal/advisor"
	"example.com/paisa-sahayogi/backend/internal/config"
	"example.com/paisa-sahayogi/backend/internal/server"
)

func main() {
	ensureEnvFile()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if cfg.Auth.UsesDefaultSecret() {
		logger.Warn("using default JWT_SECRET_KEY; set JWT_SECRET_KEY for production")
	}

	prompts, err := advisor.LoadRegistryFile(cfg.Prompts.File)
	if err != nil {
		logger.Error("failed to load prompt templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client, err := server.NewAIClient(context.Background(), cfg.AI, logger)
	if err != nil {
		logger.Error("failed to create ai client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("starting advisor",
		slog.String("provider", cfg.AI.Provider),
		slog.String("model", cfg.AI.Model),
		slog.String("tier", cfg.Access.Tier),
		slog.String("prompts_version", prompts.Version()),
	)

	e := server.New(cfg, logger, client, prompts)
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}

func ensureEnvFile() {
	if os.Getenv("ENV_FILE") != "" {
		return
	}

	for _, candidate := range []string{".env", "../.env"} {
		if _, err := os.Stat(candidate); err == nil {
			_ = os.Setenv("ENV_FILE", candidate)
			return
		}
	}
}
