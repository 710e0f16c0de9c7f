package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/analytics"
	"github.com/rxtech-lab/argo-analytics/internal/cache"
	"github.com/rxtech-lab/argo-analytics/internal/config"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/tracing"
	"github.com/rxtech-lab/argo-analytics/internal/version"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const serviceName = "argo-analytics"

// app holds everything a command needs. Fields that a command did not ask
// for stay nil.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	tracer  *tracing.Tracer
	cache   cache.Cache
	source  ledger.Source
	service *analytics.Service
}

// loadConfig reads the optional .env file and config file, then applies
// environment and flag overrides.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	if envFile := cmd.String("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return config.Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load %s", envFile)
		}
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}

	if cmd.IsSet("window-days") {
		cfg.Window.Days = int(cmd.Int("window-days"))
	}

	if cmd.IsSet("start") {
		cfg.StartTime = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		cfg.EndTime = optional.Some(cmd.Timestamp("end"))
	}

	if cmd.IsSet("cache-dsn") {
		cfg.Cache.DSN = cmd.String("cache-dsn")
		cfg.Cache.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// newApp builds the logger, tracer, cache and service. When withSource is
// set the ledger flag is required and opened.
func newApp(ctx context.Context, cmd *cli.Command, withSource bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	tracer, err := tracing.New(tracing.Options{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		Writer:         os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, tracer: tracer}

	opts := []analytics.Option{
		analytics.WithTracer(tracer),
		analytics.WithTopSymbols(cfg.TopSymbols),
	}

	if cfg.Cache.Enabled {
		c, err := cache.Open(ctx, cfg.Cache.Driver, cfg.Cache.DSN, log)
		if err != nil {
			a.close(ctx)

			return nil, err
		}

		a.cache = c
		opts = append(opts, analytics.WithCache(c))
	}

	if withSource {
		path := cmd.String("ledger")
		if path == "" {
			a.close(ctx)

			return nil, errors.New(errors.ErrCodeMissingParameter, "--ledger is required")
		}

		source, err := openSource(path, log)
		if err != nil {
			a.close(ctx)

			return nil, err
		}

		a.source = source
	}

	a.service = analytics.NewService(metrics.NewCatalogue(cfg.CatalogueOptions()), log, opts...)

	return a, nil
}

// openSource picks the ledger reader by file extension. CSV files are
// parsed directly, everything else is handed to DuckDB.
func openSource(path string, log *logger.Logger) (ledger.Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "ledger file %s", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ledger.NewCSVSource(path), nil
	}

	source, err := ledger.NewDuckDBSource("", log)
	if err != nil {
		return nil, err
	}

	if err := source.Initialize(path); err != nil {
		source.Close()

		return nil, err
	}

	return source, nil
}

func (a *app) frame(ctx context.Context, accounts []string) (ledger.Frame, error) {
	return a.service.Load(ctx, a.source, a.cfg.LedgerFilter(accounts))
}

func (a *app) close(ctx context.Context) {
	if a.source != nil {
		if err := a.source.Close(); err != nil {
			a.log.Warn("Failed to close ledger source", zap.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("Failed to close cache", zap.Error(err))
		}
	}

	if err := a.tracer.Shutdown(ctx); err != nil {
		a.log.Warn("Failed to flush spans", zap.Error(err))
	}

	_ = a.log.Sync()
}
