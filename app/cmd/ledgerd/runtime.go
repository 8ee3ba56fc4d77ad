package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AntonStoeckl/lending-ledger/app/shared/shell/config"
	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/oteladapters"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine"
	"github.com/AntonStoeckl/lending-ledger/ledger/promadapters"
)

const (
	instrumentationName = "github.com/AntonStoeckl/lending-ledger"
	metricsNamespace    = "ledgerd"
)

// runtime holds everything a subcommand needs once configuration is loaded.
type runtime struct {
	cfg              config.Config
	logger           *slog.Logger
	contextualLogger ledger.ContextualLogger
	conns            *config.Connections
	store            postgresengine.Store
	metrics          ledger.MetricsCollector
	metricsHandler   http.Handler
	tracing          ledger.TracingCollector
	tracerProvider   *sdktrace.TracerProvider
	loggerProvider   *sdklog.LoggerProvider
}

func bootstrap(ctx context.Context, configPath string, logOutput io.Writer) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := config.NewLogger(cfg.Log, logOutput)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
	}

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		rt.metrics = promadapters.NewMetricsCollector(registry, promadapters.WithNamespace(metricsNamespace))
		rt.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	if cfg.Tracing.TracingEnabled() {
		rt.tracerProvider, err = config.NewTracerProvider(ctx, cfg.Tracing, version)
		if err != nil {
			return nil, err
		}

		rt.tracing = oteladapters.NewTracingCollector(rt.tracerProvider.Tracer(instrumentationName))
	}

	if cfg.OTLPLogsEnabled() {
		rt.loggerProvider, err = config.NewLoggerProvider(ctx, cfg.Tracing, version)
		if err != nil {
			rt.close(ctx)
			return nil, err
		}
	}

	rt.contextualLogger = contextualLoggerFor(cfg, logger)

	rt.conns, err = config.OpenPostgres(ctx, cfg.Postgres)
	if err != nil {
		rt.close(ctx)
		return nil, err
	}

	rt.store, err = rt.conns.NewStore(cfg.Postgres, rt.storeOptions()...)
	if err != nil {
		rt.close(ctx)
		return nil, err
	}

	logger.Info("ledger store ready",
		"adapter", cfg.Postgres.Adapter,
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.TracingEnabled(),
		"otlp_logs", cfg.OTLPLogsEnabled(),
	)

	return rt, nil
}

// contextualLoggerFor picks the logger for request-scoped records. With OTLP log export on,
// records go through the otelslog bridge to the global LoggerProvider and carry trace IDs.
func contextualLoggerFor(cfg config.Config, logger *slog.Logger) ledger.ContextualLogger {
	if cfg.OTLPLogsEnabled() {
		return oteladapters.NewSlogBridgeLogger(instrumentationName)
	}

	return oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler())
}

func (rt *runtime) storeOptions() []postgresengine.Option {
	options := []postgresengine.Option{
		postgresengine.WithLogger(rt.logger),
		postgresengine.WithContextualLogger(rt.contextualLogger),
	}

	if rt.metrics != nil {
		options = append(options, postgresengine.WithMetrics(rt.metrics))
	}

	if rt.tracing != nil {
		options = append(options, postgresengine.WithTracing(rt.tracing))
	}

	return options
}

func (rt *runtime) observability() observability {
	return observability{
		metrics:          rt.metrics,
		tracing:          rt.tracing,
		contextualLogger: rt.contextualLogger,
	}
}

func (rt *runtime) close(ctx context.Context) {
	if rt.conns != nil {
		rt.conns.Close()
	}

	if rt.tracerProvider != nil {
		if err := rt.tracerProvider.Shutdown(ctx); err != nil {
			rt.logger.Warn("tracer provider shutdown failed", "error", err.Error())
		}
	}

	if rt.loggerProvider != nil {
		if err := rt.loggerProvider.Shutdown(ctx); err != nil {
			rt.logger.Warn("logger provider shutdown failed", "error", err.Error())
		}
	}
}
