// Package main is the entry point for the Solana liquidity router.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/solana-router/business/routing"
	"github.com/fd1az/solana-router/business/routing/app"
	routingDI "github.com/fd1az/solana-router/business/routing/di"
	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apm"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
	"github.com/fd1az/solana-router/internal/config"
	"github.com/fd1az/solana-router/internal/health"
	"github.com/fd1az/solana-router/internal/logger"
	"github.com/fd1az/solana-router/internal/metrics"
	"github.com/fd1az/solana-router/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type flags struct {
	configPath string
	from       string
	to         string
	amount     string
	strategy   string
	maxHops    int
	interval   time.Duration
	execute    bool
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&f.from, "from", "", "Token to sell (symbol or mint); defaults to request.from")
	flag.StringVar(&f.to, "to", "", "Token to buy (symbol or mint); defaults to request.to")
	flag.StringVar(&f.amount, "amount", "", "Amount to sell in whole tokens, e.g. 10.5; defaults to request.amount")
	flag.StringVar(&f.strategy, "strategy", "", "single | split | multihop | all; defaults to routing.strategy")
	flag.IntVar(&f.maxHops, "max-hops", 0, "Multi-hop budget; defaults to routing.max_hops")
	flag.DurationVar(&f.interval, "interval", 0, "Re-route on this interval until interrupted (0 = once)")
	flag.BoolVar(&f.execute, "execute", false, "Build a dry-run execution plan for the best route")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("solana-router %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Setup context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, f); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, apperror.ErrNoRouteFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags) error {
	// Load configuration
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cfg, f)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, apm.TraceID)
	log.Info(ctx, "starting solana router",
		"version", version,
		"environment", cfg.App.Environment,
	)

	// Initialize observability if enabled
	if cfg.Telemetry.Enabled {
		traceProvider := apm.NewTraceProvider(cfg.Telemetry.ServiceName, log,
			apm.WithProvider(apm.ParseProvider(cfg.Telemetry.TraceProvider), apm.ExporterConfig{
				Endpoint: cfg.Telemetry.OTLPEndpoint,
				Headers:  metrics.ParseHeaders(cfg.Telemetry.OTLPHeaders),
				Protocol: cfg.Telemetry.OTLPProtocol,
			}, log))
		defer traceProvider.Stop()
		log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider, "endpoint", cfg.Telemetry.OTLPEndpoint)

		metricOpts := []metrics.OptionFn{
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
		}
		if cfg.Telemetry.OTLPEndpoint != "" && cfg.Telemetry.TraceProvider == "otlp" {
			metricOpts = append(metricOpts, metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(
				cfg.Telemetry.OTLPEndpoint,
				metrics.ParseHeaders(cfg.Telemetry.OTLPHeaders),
				metrics.InsecureOtel,
			)))
		}
		meterProvider := metrics.NewMetricProvider(metricOpts...)
		defer meterProvider.Shutdown(context.Background())

		// Start Prometheus metrics server in background
		port := cfg.Telemetry.PrometheusPort
		go func() {
			if err := metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port))); err != nil {
				log.Warn(ctx, "prometheus metrics server stopped", "error", err)
			}
		}()
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}

	// Create monolith (application container)
	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	modules := []monolith.Module{
		&routing.Module{},
	}

	// Register all module services
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	req, err := buildRequest(mono.AssetRegistry(), cfg.Request)
	if err != nil {
		return err
	}

	if f.interval <= 0 {
		return routeOnce(ctx, mono, cfg, req, f.execute)
	}

	// Long-running mode: keep the health endpoint up between runs.
	if cfg.Health.Port != 0 {
		healthServer := health.NewServer(cfg.Health.Port, version, log)
		healthServer.RegisterCheck("venues", routingDI.GetVenueProvider(mono.Services()).Ready)
		if err := healthServer.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		} else {
			log.Info(ctx, "health server started", "port", cfg.Health.Port)
		}
		defer healthServer.Stop(context.Background())
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		if err := routeOnce(ctx, mono, cfg, req, f.execute); err != nil && !errors.Is(err, apperror.ErrNoRouteFound) {
			return err
		}
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func routeOnce(ctx context.Context, mono monolith.Monolith, cfg *config.Config, req domain.Request, execute bool) error {
	svc := routingDI.GetRouterService(mono.Services())
	reporter := routingDI.GetReporter(mono.Services())

	var (
		res *app.Result
		err error
	)
	if cfg.Routing.Strategy == config.StrategyAll {
		res, err = svc.Best(ctx, req)
	} else {
		st, perr := domain.ParseStrategy(cfg.Routing.Strategy)
		if perr != nil {
			return perr
		}
		res, err = svc.Route(ctx, st, req)
	}

	reporter.Report(res)
	if err != nil {
		return err
	}

	if execute {
		plan, err := routingDI.GetExecutor(mono.Services()).Execute(ctx, res.Best)
		if err != nil {
			return fmt.Errorf("execute: %w", err)
		}
		reporter.ReportPlan(plan)
	}
	return nil
}

func applyFlags(cfg *config.Config, f flags) {
	if f.from != "" {
		cfg.Request.From = f.from
	}
	if f.to != "" {
		cfg.Request.To = f.to
	}
	if f.amount != "" {
		cfg.Request.Amount = f.amount
	}
	if f.strategy != "" {
		cfg.Routing.Strategy = f.strategy
	}
	if f.maxHops != 0 {
		cfg.Routing.MaxHops = f.maxHops
	}
}

func buildRequest(reg *asset.Registry, rc config.RequestConfig) (domain.Request, error) {
	from, err := reg.Lookup(rc.From)
	if err != nil {
		return domain.Request{}, apperror.New(apperror.CodeUnknownAsset, apperror.WithContext(rc.From), apperror.WithCause(err))
	}
	to, err := reg.Lookup(rc.To)
	if err != nil {
		return domain.Request{}, apperror.New(apperror.CodeUnknownAsset, apperror.WithContext(rc.To), apperror.WithCause(err))
	}

	d, err := rc.AmountDecimal()
	if err != nil {
		return domain.Request{}, apperror.New(apperror.CodeInvalidInput, apperror.WithContextf("amount %q", rc.Amount), apperror.WithCause(err))
	}
	amount, err := asset.ParseDecimal(from, d)
	if err != nil {
		return domain.Request{}, apperror.New(apperror.CodeInvalidInput, apperror.WithContextf("amount %q", rc.Amount), apperror.WithCause(err))
	}

	req := domain.Request{TokenIn: from.ID(), TokenOut: to.ID(), AmountIn: amount.Raw()}
	return req, req.Validate()
}
