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

	"github.com/go-chi/chi/v5"

	webadapter "github.com/kirillkom/idu-service/internal/adapters/web"
	"github.com/kirillkom/idu-service/internal/bootstrap"
	"github.com/kirillkom/idu-service/internal/config"
	"github.com/kirillkom/idu-service/internal/observability/logging"
	"github.com/kirillkom/idu-service/internal/observability/metrics"
)

func main() {
	cfg, err := config.ParseWeb()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger("idu-web", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := bootstrap.NewWeb(cfg)
	m := metrics.NewHTTPServerMetrics("idu-web")

	router := chi.NewRouter()
	router.Use(m.Middleware("/", "/analyze", "/summary.txt", "/healthz"))
	router.Method(http.MethodGet, "/metrics", m.Handler())
	router.Mount("/", webadapter.NewHandler(app.SubmitUC, cfg.MinTextChars, cfg.MaxUploadBytes).Routes())

	server := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("web_listening", "addr", cfg.WebAddr, "api_url", cfg.APIURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("web_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("web_shutdown_error", "error", err)
	}
}
