package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trustmodel/registry-server/internal/api"
	"github.com/trustmodel/registry-server/internal/config"
	"github.com/trustmodel/registry-server/internal/gitrepo"
	"github.com/trustmodel/registry-server/internal/httpclient"
	"github.com/trustmodel/registry-server/internal/hub"
	"github.com/trustmodel/registry-server/internal/scoring"
	"github.com/trustmodel/registry-server/internal/service"
	"github.com/trustmodel/registry-server/internal/storage"
	"github.com/trustmodel/registry-server/internal/telemetry"
	"github.com/trustmodel/registry-server/internal/versions"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the registry API server",
	Long: `Start the registry API server.

Configuration is read from an optional YAML file (--config) and MODREG_*
environment variables. With no configuration the server listens on :8080
and keeps all state in memory.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
	// Scoring a freshly ingested model clones its repository, so request
	// handling gets a generous timeout.
	serverRequestTimeout = 2 * time.Minute
	serverReadTimeout    = 10 * time.Second
	serverWriteTimeout   = 150 * time.Second
	serverIdleTimeout    = 60 * time.Second
)

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides configuration)")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	var loadOpts []config.Option
	if configPath := viper.GetString("config"); configPath != "" {
		loadOpts = append(loadOpts, config.WithConfigPath(configPath))
	}
	cfg, err := config.LoadConfig(loadOpts...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	address := viper.GetString("address")
	if address == "" {
		address = cfg.GetAddress()
	}

	store, err := storage.NewStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Info("Initialized artifact storage", "type", cfg.Storage.Type, "bucket", cfg.Storage.Bucket)

	svc, tel, err := buildService(ctx, cfg, store)
	if err != nil {
		return err
	}

	httpMetrics, err := telemetry.NewHTTPMetrics(tel.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	router := api.NewServer(svc,
		api.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(serverRequestTimeout),
			httpMetrics.Middleware,
			api.LoggingMiddleware,
		),
		api.WithMetricsHandler(tel.Handler()),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server shutdown complete")
	return nil
}

// buildService assembles the scoring pipeline and the registry service
// from the configuration.
func buildService(ctx context.Context, cfg *config.Config, store storage.Store) (service.RegistryService, *telemetry.Provider, error) {
	hubOpts := []hub.Option{hub.WithEndpoint(cfg.Hub.Endpoint)}
	if cfg.Hub.Token != "" {
		hubOpts = append(hubOpts, hub.WithHTTPClient(
			httpclient.NewDefaultClient(httpclient.WithBearerToken(cfg.Hub.Token))))
	}
	hubClient := hub.NewClient(hubOpts...)

	registry := scoring.DefaultRegistry(
		scoring.WithGitHubClient(scoring.NewGitHubClient(ctx, cfg.GitHub.Token)),
	)
	evaluator := scoring.NewEvaluator(registry, scoring.WithWorkers(cfg.GetScoringWorkers()))
	resolver := scoring.NewResolver(hubClient, gitrepo.NewDefaultClient())
	scorer := service.NewScorer(resolver, evaluator)

	tel, err := telemetry.NewProvider(cfg.Telemetry, "registry-server", versions.GetVersionInfo().Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	scoringMetrics, err := telemetry.NewScoringMetrics(tel.MeterProvider())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scoring metrics: %w", err)
	}

	svcOpts := []service.Option{service.WithMetrics(scoringMetrics)}
	if cfg.Scoring.GateThreshold != nil {
		svcOpts = append(svcOpts, service.WithGateThreshold(*cfg.Scoring.GateThreshold))
	}

	return service.New(store, scorer, svcOpts...), tel, nil
}
