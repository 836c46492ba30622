package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/foundry-guide/cmd/mainconfig"
	"github.com/wolfman30/foundry-guide/internal/api/router"
	"github.com/wolfman30/foundry-guide/internal/app/bootstrap"
	appconfig "github.com/wolfman30/foundry-guide/internal/config"
	"github.com/wolfman30/foundry-guide/internal/webchat"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting foundry-guide API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	metricsHandler, registerer := setupMetrics(cfg.MetricsEnabled)

	app, err := bootstrap.Build(context.Background(), cfg, bootstrap.Options{
		LoadAWS:    mainconfig.LoadAWSConfig,
		Registerer: registerer,
	}, logger)
	if err != nil {
		logger.Error("failed to wire application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := newServer(cfg, buildHandler(cfg, app, metricsHandler, logger))

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		app.Close()
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics returns the /metrics handler and the registry chat metrics
// go into. Both are nil when metrics are disabled.
func setupMetrics(enabled bool) (http.Handler, prometheus.Registerer) {
	if !enabled {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), reg
}

func buildHandler(cfg *appconfig.Config, app *bootstrap.App, metricsHandler http.Handler, logger *logging.Logger) http.Handler {
	chatHandler := webchat.NewHandler(app.Registry, app.Service, app.Store, cfg.CORSAllowedOrigins, logger.Component("webchat"))
	return router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		StaticDir:          cfg.StaticDir,
	})
}

func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
