// Package main is the entry point for the quote sync service.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/natefinch/atomic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/simulated"
	"github.com/jsamuelsen/quotesync/internal/adapters/http"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/adapters/view"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

// options are the command-line flags.
type options struct {
	profile    string
	exportPath string
	importPath string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	defaultProfile := os.Getenv("APP_ENVIRONMENT")
	if defaultProfile == "" {
		defaultProfile = "local"
	}

	var opts options

	fs := pflag.NewFlagSet("quotesync", pflag.ContinueOnError)
	fs.StringVarP(&opts.profile, "profile", "p", defaultProfile, "config profile (configs/<profile>.yaml)")
	fs.StringVar(&opts.exportPath, "export", "", "write the stored quotes to `file` and exit")
	fs.StringVar(&opts.importPath, "import", "", "replace the stored quotes with `file` and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.exportPath != "" && opts.importPath != "" {
		return options{}, errors.New("--export and --import are mutually exclusive")
	}

	return opts, nil
}

func run(args []string) error {
	ctx := context.Background()

	// 1. Parse flags
	opts, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	if err != nil {
		return err
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(opts.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	// 4. Open storage: durable backend plus a per-process session store
	durable, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	defer func() {
		if closeErr := durable.Close(); closeErr != nil {
			logger.Error("closing storage", slog.Any("error", closeErr))
		}
	}()

	session := storage.NewMemoryKV()
	repo := storage.NewRepository(durable, session, logger)

	// 5. Restore the quote store
	renderer := view.NewRenderer()
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Repo:     repo,
		Renderer: renderer,
		Logger:   logger,
	})
	quoteService.Restore(ctx)

	if opts.exportPath != "" {
		return exportQuotes(quoteService, opts.exportPath, logger)
	}

	if opts.importPath != "" {
		return importQuotes(ctx, quoteService, opts.importPath, logger)
	}

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("remote_mode", cfg.Remote.Mode),
	)

	// 6. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 7. Create the remote source adapter (ACL pattern)
	remote, err := newRemoteSource(cfg, logger)
	if err != nil {
		return err
	}

	// 8. Create the sync loop
	syncService := app.NewSyncService(app.SyncServiceConfig{
		Quotes:          quoteService,
		Remote:          remote,
		Repo:            repo,
		Renderer:        renderer,
		Metrics:         app.NewMetrics(prometheus.DefaultRegisterer),
		PushConcurrency: cfg.Remote.PushConcurrency,
		Logger:          logger,
	})

	scheduler := app.NewScheduler(syncService, app.SchedulerConfig{
		Enabled:          cfg.Sync.Enabled,
		PollInterval:     cfg.Sync.PollInterval,
		FullSyncInterval: cfg.Sync.FullSyncInterval,
		PollOnStart:      cfg.Sync.PollOnStart,
	}, logger)

	// 9. Register health checks. Local storage is critical; the remote
	// source only degrades readiness.
	healthRegistry := ports.NewHealthRegistry()

	if checker, ok := durable.(ports.HealthChecker); ok {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering storage health check: %w", err)
		}
	}

	if err := healthRegistry.Register(session); err != nil {
		return fmt.Errorf("registering session health check: %w", err)
	}

	if err := healthRegistry.RegisterOptional(remote); err != nil {
		return fmt.Errorf("registering remote health check: %w", err)
	}

	// 10. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)

	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App, handlers.NewHealthHandler(healthRegistry, buildInfo))
	routerCfg.QuoteHandler = handlers.NewQuoteHandler(quoteService)
	routerCfg.TransferHandler = handlers.NewTransferHandler(quoteService)
	routerCfg.SyncHandler = handlers.NewSyncHandler(syncService, scheduler)
	routerCfg.ViewHandler = handlers.NewViewHandler(renderer)

	// 11. Create HTTP server and router
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), routerCfg)

	// 12. Start server, then the scheduler
	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	// 13. Wait for shutdown signal
	err = waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)

	scheduler.Stop()
	session.Reset()

	return err
}

// newRemoteSource builds the remote quote source. In simulated mode every
// request is served in-process by a posts fake seeded with sample data.
func newRemoteSource(cfg *config.Config, logger *slog.Logger) (*acl.RemoteSource, error) {
	clientCfg := &clients.Config{
		BaseURL:     cfg.Remote.BaseURL,
		ServiceName: cfg.Remote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   cfg.App.Name + "/" + Version,
		Logger:      logger,
	}

	if cfg.Remote.Mode == config.RemoteModeSimulated {
		clientCfg.BaseURL = "http://simulated.invalid"
		clientCfg.RoundTripper = simulated.NewServer(cfg.Remote.Collection, simulated.DefaultPosts()).Transport()
	}

	client, err := clients.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	return acl.NewRemoteSource(acl.RemoteSourceConfig{
		Client:          client,
		Collection:      cfg.Remote.Collection,
		Limit:           cfg.Remote.Limit,
		UserID:          cfg.Remote.UserID,
		PushConcurrency: cfg.Remote.PushConcurrency,
		Logger:          logger,
	}), nil
}

// exportQuotes writes the store to path atomically so a crash never leaves
// a truncated export behind.
func exportQuotes(svc *app.QuoteService, path string, logger *slog.Logger) error {
	quotes := svc.Export()

	data, err := storage.EncodeExport(quotes)
	if err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	logger.Info("exported quotes", slog.String("path", path), slog.Int("count", len(quotes)))

	return nil
}

func importQuotes(ctx context.Context, svc *app.QuoteService, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading import: %w", err)
	}

	parsed, err := storage.ParseImport(data)
	if err != nil {
		return err
	}

	outcome := svc.Import(ctx, parsed.Quotes, parsed.Skipped)

	logger.Info(outcome.Message,
		slog.String("path", path),
		slog.Int("imported", outcome.Imported),
		slog.Int("skipped", outcome.Skipped),
	)

	return nil
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
