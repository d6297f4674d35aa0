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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	geminiadapter "github.com/oetdev/toolforge/internal/adapter/driven/gemini"
	githubadapter "github.com/oetdev/toolforge/internal/adapter/driven/github"
	httphandler "github.com/oetdev/toolforge/internal/adapter/driving/http"
	"github.com/oetdev/toolforge/internal/application"
	"github.com/oetdev/toolforge/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load configuration (fail fast on missing required env vars or a
	// malformed app private key).
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"repo", cfg.RepoFullName(),
		"gemini_model", cfg.GeminiModel,
	)

	// 3. Create the credential broker and process-lifetime client provider.
	keyPEM, err := cfg.PrivateKeyPEM()
	if err != nil {
		return err
	}
	broker, err := githubadapter.NewBroker(cfg.GitHubAppID, keyPEM, cfg.RepoOwner, cfg.RepoName)
	if err != nil {
		return err
	}
	provider := application.NewClientProvider(broker, cfg.AuthTimeout)

	// 4. Create the Gemini generator.
	generator, err := geminiadapter.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return err
	}

	// 5. Wire application services.
	telemetry := application.NewTelemetry(cfg.TelemetryURL)
	repairSvc := application.NewRepairService(generator, cfg.GeminiModel, cfg.GenerateTimeout, telemetry)
	summarySvc := application.NewCISummaryService(provider, cfg.PreviewAppSlugs)
	feedbackSvc := application.NewFeedbackService(provider)
	buildsSvc := application.NewBuildsService(provider)

	// 6. Create HTTP handler and router.
	handler := httphandler.NewHandler(repairSvc, summarySvc, feedbackSvc, buildsSvc, slog.Default())
	router := httphandler.NewRouter(handler, cfg.AllowedOrigin, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      3 * time.Minute, // Repair batches hold the response open across model calls.
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("toolforge started", "listen_addr", cfg.ListenAddr)

	// 7. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
