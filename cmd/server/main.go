package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"currency-convert-service/internal/adapter/cache"
	httpRouter "currency-convert-service/internal/adapter/http"
	"currency-convert-service/internal/adapter/repository"
	"currency-convert-service/internal/config"
	"currency-convert-service/internal/metrics"
	"currency-convert-service/internal/service"
	"currency-convert-service/internal/telemetry"
	"currency-convert-service/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/dnscache"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Log.Level)
	log.Info("Starting currency conversion service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := func(context.Context) error { return nil }
	if cfg.Telemetry.Tracing.Enabled {
		shutdownTracing, err = telemetry.SetupTracing(ctx, cfg.Telemetry.Tracing.Endpoint, cfg.Telemetry.Tracing.SampleRate)
		if err != nil {
			log.Error("Failed to set up tracing", "error", err)
			os.Exit(1)
		}
	}

	var gatherer prometheus.Gatherer
	if cfg.Telemetry.MetricsEnabled {
		gatherer = prometheus.DefaultGatherer
	}
	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	var resolver *dnscache.Resolver
	if cfg.ExchangeAPI.DNSRefresh > 0 {
		resolver = &dnscache.Resolver{}
		go refreshDNS(ctx, resolver, cfg.ExchangeAPI.DNSRefresh, log)
	}

	rateRepo, err := repository.NewExchangeAPI(cfg.ExchangeAPI, resolver, appMetrics, log)
	if err != nil {
		log.Error("Failed to create exchange API client", "error", err)
		os.Exit(1)
	}

	provider := service.NewExchangeRateProvider(
		rateRepo,
		cache.NewSymbolsCache(cfg.Cache.SymbolsTTL, log),
		cache.NewRatesCache(cfg.Cache.RatesTTL, log),
		appMetrics,
		log,
	)
	exchangeService := service.NewExchangeService(provider, log)

	handler := httpRouter.NewHandler(exchangeService, log, appMetrics)
	router := httpRouter.NewRouter(handler, log, appMetrics, gatherer)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("HTTP server error", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		exitCode = 1
	}

	// let in-flight cache writes land before exit
	provider.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", "error", err)
	}

	log.Info("Server exited")
	os.Exit(exitCode)
}

// refreshDNS keeps the resolver cache warm and drops hosts that went unused.
func refreshDNS(ctx context.Context, resolver *dnscache.Resolver, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			resolver.Refresh(true)
		case <-ctx.Done():
			log.Debug("Stopping DNS refresh goroutine")
			return
		}
	}
}
