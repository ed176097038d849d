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

	httpadapter "github.com/kirillkom/idu-service/internal/adapters/http"
	"github.com/kirillkom/idu-service/internal/bootstrap"
	"github.com/kirillkom/idu-service/internal/config"
	"github.com/kirillkom/idu-service/internal/observability/logging"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger("idu-api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_error", "error", err)
		os.Exit(1)
	}

	router, err := httpadapter.NewRouter(cfg, app.AnalyzeUC, app.Metrics)
	if err != nil {
		slog.Error("router_error", "error", err)
		os.Exit(1)
	}
	server := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// model calls are bounded by MODEL_TIMEOUT; leave room to write the response
		WriteTimeout: cfg.ModelTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "addr", cfg.APIAddr, "summarizer", cfg.SummarizerBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
