package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"coin-dashboard-service/internal/application/services"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/config"
	"coin-dashboard-service/internal/infrastructure/exchange"
	"coin-dashboard-service/internal/infrastructure/exchange/coingecko"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/metrics"
	"coin-dashboard-service/internal/infrastructure/repositories/cache"
	"coin-dashboard-service/internal/infrastructure/repositories/preferences"
	"coin-dashboard-service/internal/infrastructure/web"
	"coin-dashboard-service/internal/infrastructure/web/server"
	"coin-dashboard-service/internal/infrastructure/web/stream"
)

const serviceVersion = "1.0.0"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to ./configs/config.yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "coin-dashboard-service: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// Load configuration
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigFile(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Configure structured logging
	logConfig := logging.NewConfig("coin-dashboard-service", serviceVersion, config.GetEnvironment()).
		WithLevel(logging.LogLevelFromString(cfg.Logging.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Logging.Format))
	if cfg.Development.DebugMode {
		logConfig = logConfig.WithLevel(logging.LevelDebug).WithSource(true)
	}
	if err := logging.InitializeGlobalLoggers(logConfig); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info(ctx, "Initializing service components", logging.Fields{
		"store_backend": cfg.Store.Backend,
		"mock_mode":     cfg.Development.MockMode,
		"currencies":    cfg.Dashboard.Currencies,
	})

	// Store backend
	backend, err := cache.NewFactory().CreateCache(ctx, cache.Config{
		Type:            cache.CacheType(cfg.Store.Backend),
		RedisURL:        cfg.Store.Redis.Addr,
		RedisDB:         cfg.Store.Redis.DB,
		Password:        cfg.Store.Redis.Password,
		ConnectAttempts: cfg.Store.Redis.ConnectAttempts,
		SQLitePath:      cfg.Store.SQLite.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to create store backend: %w", err)
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}

	store := cache.NewExpiringStore(backend, cache.WithNamespace(cfg.Store.Namespace))
	watchlist := preferences.NewWatchlistRepository(ctx, backend, cfg.Store.Namespace)
	theme := preferences.NewThemeRepository(ctx, backend, cfg.Store.Namespace)

	metrics.SetApplicationInfo(serviceVersion, cfg.Store.Backend, runtime.Version())

	// Market data gateway
	var gateway interfaces.MarketDataGateway
	if cfg.Development.MockMode {
		logging.Warn(ctx, "Mock mode enabled, serving synthetic market data", nil)
		gateway = exchange.NewMockGateway()
	} else {
		gateway = coingecko.NewRestClient(cfg.Upstream, coingecko.WithTickerSize(cfg.Dashboard.TickerSize))
	}

	hub := stream.NewHub()

	dashboard := services.NewDashboard(services.DashboardConfig{
		DefaultCurrency:  cfg.Dashboard.DefaultCurrency,
		Currencies:       cfg.Dashboard.Currencies,
		PerPage:          cfg.Dashboard.PerPage,
		SearchLimit:      cfg.Dashboard.SearchLimit,
		FeaturedInterval: cfg.Dashboard.FeaturedInterval,
		FeaturedSize:     cfg.Dashboard.FeaturedSize,
		Windows:          cfg.Freshness.Windows(),
	}, gateway, store, watchlist, theme, hub)
	defer dashboard.Close()

	// Pre-warm: page 1, ticker y trending. Un fallo aquí no impide arrancar.
	if err := dashboard.Start(ctx); err != nil {
		logging.Warn(ctx, "Initial dashboard load failed", logging.Fields{"error": err.Error()})
	}

	srv := server.NewServer(web.NewRouter(dashboard, hub, cfg.RateLimit), cfg.Server.Port)
	srv.RegisterOnShutdown(hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	logging.Info(ctx, "Coin dashboard service is running", logging.Fields{
		"port":     cfg.Server.Port,
		"currency": dashboard.Currency(),
	})

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info(context.Background(), "Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logging.Info(context.Background(), "Server shutdown completed", nil)
	return nil
}
