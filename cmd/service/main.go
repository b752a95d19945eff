// Command service runs the quotebook HTTP API and its background sync.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotebook/internal/adapters/http"
	"github.com/jsamuelsen/quotebook/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotebook/internal/adapters/remote"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage"
	"github.com/jsamuelsen/quotebook/internal/adapters/storage/session"
	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
	"github.com/jsamuelsen/quotebook/internal/platform/telemetry"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(cmp.Or(os.Getenv("APP_ENVIRONMENT"), "local"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)

	logger.Info("starting quotebook",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("source", cfg.Sync.Source),
	)

	tel, err := telemetry.New(ctx, &telemetry.Config{
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
	defer closeLogged(logger, "telemetry", func() error { return tel.Shutdown(ctx) })

	quoteMetrics, err := telemetry.NewQuoteMetrics(nil)
	if err != nil {
		return fmt.Errorf("initializing quote metrics: %w", err)
	}

	health := ports.NewHealthRegistry()

	kv, err := storage.Open(ctx, storage.Config{
		Driver:      cfg.Storage.Driver,
		Table:       cfg.Storage.Table,
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer closeLogged(logger, "storage", kv.Close)

	if checker, ok := kv.(ports.HealthChecker); ok {
		if err := health.Register(checker); err != nil {
			return fmt.Errorf("registering storage health check: %w", err)
		}
	}

	sessions, err := session.New(session.Config{
		NumCounters: cfg.Storage.Session.NumCounters,
		MaxCost:     cfg.Storage.Session.MaxCost,
		BufferItems: cfg.Storage.Session.BufferItems,
	})
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	defer sessions.Close()

	source, publisher, err := newRemote(cfg, logger, quoteMetrics)
	if err != nil {
		return err
	}

	if err := health.Register(source); err != nil {
		return fmt.Errorf("registering remote source health check: %w", err)
	}

	quotes, notices, err := startQuotes(ctx, cfg, kv, sessions, source, publisher, quoteMetrics, logger)
	if err != nil {
		return err
	}

	healthHandler := handlers.NewHealthHandler(health, handlers.NewBuildInfo(Version, Commit, BuildTime)).
		WithStoreStats(func() handlers.StoreStats {
			return handlers.StoreStats{
				Quotes:     len(quotes.Quotes(domain.FilterAll)),
				Categories: quotes.Categories(),
				Filter:     quotes.Filter(),
			}
		})

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.NewDefaultRouterConfig(
		logger, &cfg.App, healthHandler, handlers.NewQuoteHandler(quotes, notices),
	))

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr, err := server.Start()
	if err != nil {
		return fmt.Errorf("starting HTTP server: %w", err)
	}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return waitForShutdown(gctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
	})

	if cfg.Sync.Enabled {
		scheduler := app.NewSyncScheduler(quotes, cfg.Sync.Interval, logger)
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	err = g.Wait()

	quotes.EndSession(ctx)

	return err
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(&logging.Config{
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
}

// startQuotes wires the quote service over kv and loads the stored state. The
// returned notices buffer is fed by the service's change events.
func startQuotes(
	ctx context.Context,
	cfg *config.Config,
	kv ports.KeyValueStore,
	sessions *session.Store,
	source remoteSource,
	publisher ports.QuotePublisher,
	metrics *telemetry.QuoteMetrics,
	logger *slog.Logger,
) (*app.QuoteService, *app.Notices, error) {
	persistence := app.NewPersistence(kv, sessions, app.Keys{
		Quotes:     cfg.Storage.Keys.Quotes,
		Filter:     cfg.Storage.Keys.Filter,
		LastViewed: cfg.Storage.Keys.LastViewed,
	}, logger)

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Store: app.NewQuoteStore(app.StoreConfig{
			Persistence:      persistence,
			AllowEmptyExport: cfg.Quotes.AllowEmptyExport,
			Logger:           logger,
		}),
		Persistence:  persistence,
		Source:       source,
		SourceName:   source.Name(),
		Publisher:    publisher,
		ImportPolicy: domain.ImportPolicy(cfg.Quotes.ImportPolicy),
		Logger:       logger,
	})

	notices := app.NewNotices(cfg.Quotes.NoticeCapacity)
	service.Subscribe(notices.Observe)
	service.Subscribe(app.MetricsObserver(metrics))

	if err := service.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("starting quote service: %w", err)
	}

	return service, notices, nil
}

func closeLogged(logger *slog.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error("close failed", slog.String("resource", what), slog.Any("error", err))
	}
}

// newRemote builds the configured remote source. The publisher is nil unless
// new quotes are posted to an HTTP source.
func newRemote(
	cfg *config.Config,
	logger *slog.Logger,
	metrics *telemetry.QuoteMetrics,
) (remoteSource, ports.QuotePublisher, error) {
	if cfg.Sync.Source == "static" {
		return remote.NewStaticSource(remote.StaticConfig{
			Latency: cfg.Sync.StaticLatency,
			Logger:  logger,
		}), nil, nil
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Quote.BaseURL,
		ServiceName: cfg.Services.Quote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   cfg.App.Name + "/" + Version,
		OnCircuitChange: func(_, to clients.State) {
			metrics.SetCircuitState(cfg.Services.Quote.Name, int(to))
		},
		Logger: logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	posts := acl.NewPostsClient(acl.PostsClientConfig{
		Client:      httpClient,
		ServiceName: cfg.Services.Quote.Name,
		MaxItems:    cfg.Sync.MaxItems,
		Category:    cfg.Sync.Category,
		UserID:      cfg.Sync.UserID,
		Logger:      logger,
	})

	if !cfg.Sync.PostNewQuotes {
		return posts, nil, nil
	}

	return posts, posts, nil
}

// remoteSource is a quote source that also reports its own health.
type remoteSource interface {
	ports.RemoteSource
	ports.HealthChecker
}

// waitForShutdown returns when the server fails or ctx ends. In the latter
// case in-flight requests get shutdownTimeout to finish.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}

		return nil

	case <-ctx.Done():
		logger.Info("shutting down",
			slog.String("cause", context.Cause(ctx).Error()),
			slog.Duration("timeout", shutdownTimeout),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
