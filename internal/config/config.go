package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/cache"
	"github.com/rxtech-lab/argo-analytics/internal/ledger"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/internal/window"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file configuration.
const (
	EnvCacheDSN    = "ARGO_ANALYTICS_CACHE_DSN"
	EnvCacheDriver = "ARGO_ANALYTICS_CACHE_DRIVER"
	EnvLogLevel    = "ARGO_ANALYTICS_LOG_LEVEL"
	EnvTracing     = "ARGO_ANALYTICS_TRACING"
)

type WindowConfig struct {
	// Days is the rolling window width in calendar days.
	Days int `yaml:"days" json:"days" jsonschema:"title=Days,description=Rolling window width in calendar days,minimum=1,default=30" validate:"gte=1"`
	// SkipHead drops anchors whose window would start before the first ledger day.
	SkipHead bool `yaml:"skip_head" json:"skip_head" jsonschema:"title=Skip Head,description=Only emit anchors with a full window behind them,default=true"`
}

type CacheConfig struct {
	Enabled bool         `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Cache balance curves between runs"`
	Driver  cache.Driver `yaml:"driver" json:"driver" jsonschema:"title=Driver,description=Cache backend,enum=duckdb,enum=sqlite3,enum=postgres,default=duckdb" validate:"oneof=duckdb sqlite3 postgres"`
	// DSN is the backend connection string. Empty DuckDB DSN means in-memory.
	DSN string `yaml:"dsn" json:"dsn" jsonschema:"title=DSN,description=Backend connection string or database file path"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,description=Export spans to stdout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr" jsonschema:"title=Address,description=HTTP listen address,default=:8080" validate:"required"`
}

// Config is the analytics engine configuration.
type Config struct {
	Window WindowConfig `yaml:"window" json:"window" jsonschema:"title=Window,description=Rolling window settings"`
	// Period is the bucket width of fee and per-symbol metrics.
	Period     types.TimePeriod `yaml:"period" json:"period" jsonschema:"title=Period,description=Bucket width of day-aggregated metrics,enum=1d,enum=1w,enum=1M,default=1d" validate:"oneof=1d 1w 1M"`
	TopSymbols int              `yaml:"top_symbols" json:"top_symbols" jsonschema:"title=Top Symbols,description=Number of symbols listed by top_symbols,minimum=1,default=5" validate:"gte=1"`
	// StartTime and EndTime restrict the ledger rows that are read.
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Ignore ledger rows before this time,type=string,format=date-time"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Ignore ledger rows after this time,type=string,format=date-time"`
	Cache     CacheConfig                `yaml:"cache" json:"cache" jsonschema:"title=Cache,description=Balance cache settings"`
	LogLevel  string                     `yaml:"log_level" json:"log_level" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`
	Tracing   TracingConfig              `yaml:"tracing" json:"tracing" jsonschema:"title=Tracing"`
	Server    ServerConfig               `yaml:"server" json:"server" jsonschema:"title=Server,description=HTTP API settings"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Days:     window.DefaultDays,
			SkipHead: true,
		},
		Period:     types.TimePeriodDay,
		TopSymbols: metrics.DefaultTopSymbols,
		StartTime:  optional.None[time.Time](),
		EndTime:    optional.None[time.Time](),
		Cache: CacheConfig{
			Enabled: false,
			Driver:  cache.DriverDuckDB,
		},
		LogLevel: "info",
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// Parse reads YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	config := Default()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Load reads the config file at path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Validate checks the field constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "invalid config: end_time is before start_time")
	}

	return nil
}

// ApplyEnv overrides fields from environment variables read through lookup
// (os.LookupEnv in production). Setting a cache DSN or driver enables the cache.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if dsn, ok := lookup(EnvCacheDSN); ok && dsn != "" {
		c.Cache.DSN = dsn
		c.Cache.Enabled = true
	}

	if driver, ok := lookup(EnvCacheDriver); ok && driver != "" {
		c.Cache.Driver = cache.Driver(driver)
		c.Cache.Enabled = true
	}

	if level, ok := lookup(EnvLogLevel); ok && level != "" {
		c.LogLevel = level
	}

	if tracing, ok := lookup(EnvTracing); ok && tracing != "" {
		enabled, err := strconv.ParseBool(tracing)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid %s", EnvTracing)
		}

		c.Tracing.Enabled = enabled
	}

	return c.Validate()
}

// CatalogueOptions builds the metric catalogue options.
func (c *Config) CatalogueOptions() metrics.Options {
	return metrics.Options{
		Engine: window.NewRollingEngine(c.Window.Days, c.Window.SkipHead),
		Period: c.Period,
		TopN:   c.TopSymbols,
	}
}

// LedgerFilter restricts ledger reads to the configured time range.
func (c *Config) LedgerFilter(accounts []string) ledger.Filter {
	return ledger.Filter{AccountIDs: accounts, Start: c.StartTime, End: c.EndTime}
}

// GenerateSchema returns the JSON schema of Config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
	}

	schema := reflector.Reflect(c)
	schema.Title = "argo-analytics-config"
	schema.Description = "Configuration schema for the argo analytics engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON returns the JSON schema of Config, indented.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
