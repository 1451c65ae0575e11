// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Venue kinds accepted in venues[].kind.
const (
	KindConstantProduct = "constant_product"
	KindConcentrated    = "concentrated"
	KindOrderbook       = "orderbook"
)

// Routing strategies accepted in routing.strategy.
const (
	StrategySingle   = "single"
	StrategySplit    = "split"
	StrategyMultiHop = "multihop"
	StrategyAll      = "all"
)

// Split allocators accepted in routing.split.allocator.
const (
	AllocatorSimplex = "simplex"
	AllocatorGreedy  = "greedy"
)

// Venue sources accepted in source.kind.
const (
	SourceStatic = "static"
	SourceHTTP   = "http"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Request   RequestConfig   `mapstructure:"request"`
	Execution ExecutionConfig `mapstructure:"execution"`
	Assets    []AssetConfig   `mapstructure:"assets"`
	Venues    []VenueConfig   `mapstructure:"venues"`
	Source    SourceConfig    `mapstructure:"source"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// RoutingConfig holds router tuning.
type RoutingConfig struct {
	Strategy     string          `mapstructure:"strategy"`
	MaxHops      int             `mapstructure:"max_hops"`
	MaxHopsLimit int             `mapstructure:"max_hops_limit"`
	Split        SplitConfig     `mapstructure:"split"`
	Liquidity    LiquidityConfig `mapstructure:"liquidity"`
}

// SplitConfig tunes the split router.
type SplitConfig struct {
	GranularityPct int    `mapstructure:"granularity_pct"`
	MaxVenues      int    `mapstructure:"max_venues"`
	Allocator      string `mapstructure:"allocator"`
}

// LiquidityConfig holds the sufficiency thresholds applied to every venue.
type LiquidityConfig struct {
	// Max share of the input reserve a single AMM trade may consume.
	AMMMaxInputBps int `mapstructure:"amm_max_input_bps"`
	// Default orderbook capacity when a venue does not set max_input. 0 = unbounded.
	OrderbookMaxInput uint64 `mapstructure:"orderbook_max_input"`
}

// RequestConfig is the default routing request used by the CLI when flags are absent.
type RequestConfig struct {
	From   string `mapstructure:"from"`
	To     string `mapstructure:"to"`
	Amount string `mapstructure:"amount"`
}

// AmountDecimal parses Amount. Callers validate before use.
func (c *RequestConfig) AmountDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Amount)
}

// ExecutionConfig holds settings for the dry-run executor.
type ExecutionConfig struct {
	SlippageBps int  `mapstructure:"slippage_bps"`
	DryRun      bool `mapstructure:"dry_run"`
}

// AssetConfig registers an SPL token beyond the well-known set.
type AssetConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Name     string `mapstructure:"name"`
	Mint     string `mapstructure:"mint"`
	Decimals uint8  `mapstructure:"decimals"`
}

// VenueConfig describes one liquidity venue in the static snapshot.
// token_a / token_b accept a symbol or a base58 mint.
type VenueConfig struct {
	ID       string `mapstructure:"id"`
	Address  string `mapstructure:"address"`
	Dex      string `mapstructure:"dex"`
	Kind     string `mapstructure:"kind"`
	TokenA   string `mapstructure:"token_a"`
	TokenB   string `mapstructure:"token_b"`
	ReserveA uint64 `mapstructure:"reserve_a"`
	ReserveB uint64 `mapstructure:"reserve_b"`
	FeeBps   int    `mapstructure:"fee_bps"`
	BestBid  uint64 `mapstructure:"best_bid"`
	BestAsk  uint64 `mapstructure:"best_ask"`
	MaxInput uint64 `mapstructure:"max_input"`
}

// SourceConfig selects where venue snapshots come from. "static" serves
// the venues list above; "http" polls a pool indexer returning the same
// venue shape as JSON.
type SourceConfig struct {
	Kind    string        `mapstructure:"kind"`
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Snapshots younger than RefreshInterval are reused without a fetch.
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	// A cached snapshot older than MaxAge is not served when a fetch fails.
	MaxAge         time.Duration `mapstructure:"max_age"`
	RequestsPerSec float64       `mapstructure:"requests_per_sec"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	OTLPProtocol   string `mapstructure:"otlp_protocol"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds the health server settings. Port 0 disables it.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ROUTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ROUTER_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ROUTER_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ROUTER_LOG_LEVEL", "LOG_LEVEL")

	// Routing
	v.BindEnv("routing.strategy", "ROUTER_STRATEGY")
	v.BindEnv("routing.max_hops", "ROUTER_MAX_HOPS")
	v.BindEnv("routing.split.allocator", "ROUTER_SPLIT_ALLOCATOR")

	// Source
	v.BindEnv("source.kind", "ROUTER_SOURCE_KIND")
	v.BindEnv("source.url", "ROUTER_SOURCE_URL")
	v.BindEnv("source.api_key", "ROUTER_SOURCE_API_KEY")

	// Execution
	v.BindEnv("execution.slippage_bps", "ROUTER_SLIPPAGE_BPS")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ROUTER_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ROUTER_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ROUTER_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "ROUTER_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
	v.BindEnv("telemetry.otlp_protocol", "ROUTER_OTEL_PROTOCOL", "OTEL_EXPORTER_OTLP_PROTOCOL")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "solana-router")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Routing defaults
	v.SetDefault("routing.strategy", StrategyAll)
	v.SetDefault("routing.max_hops", 2)
	v.SetDefault("routing.max_hops_limit", 3)
	v.SetDefault("routing.split.granularity_pct", 10)
	v.SetDefault("routing.split.max_venues", 5)
	v.SetDefault("routing.split.allocator", AllocatorSimplex)
	v.SetDefault("routing.liquidity.amm_max_input_bps", 3000) // 30% of input reserve
	v.SetDefault("routing.liquidity.orderbook_max_input", 0)

	// Request defaults
	v.SetDefault("request.from", "SOL")
	v.SetDefault("request.to", "USDC")
	v.SetDefault("request.amount", "10")

	// Source defaults
	v.SetDefault("source.kind", SourceStatic)
	v.SetDefault("source.timeout", "5s")
	v.SetDefault("source.refresh_interval", "2s")
	v.SetDefault("source.max_age", "30s")
	v.SetDefault("source.requests_per_sec", 2)

	// Execution defaults
	v.SetDefault("execution.slippage_bps", 50)
	v.SetDefault("execution.dry_run", true)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "solana-router")
	v.SetDefault("telemetry.trace_provider", "console")
	v.SetDefault("telemetry.prometheus_port", 9090)

	v.SetDefault("health.port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Routing.Strategy {
	case StrategySingle, StrategySplit, StrategyMultiHop, StrategyAll:
	default:
		return fmt.Errorf("invalid routing.strategy: %q", c.Routing.Strategy)
	}
	if c.Routing.MaxHopsLimit < 1 {
		return fmt.Errorf("routing.max_hops_limit must be >= 1")
	}
	if c.Routing.MaxHops < 1 || c.Routing.MaxHops > c.Routing.MaxHopsLimit {
		return fmt.Errorf("routing.max_hops must be in [1, %d], got %d", c.Routing.MaxHopsLimit, c.Routing.MaxHops)
	}

	g := c.Routing.Split.GranularityPct
	if g < 1 || g > 100 || 100%g != 0 {
		return fmt.Errorf("routing.split.granularity_pct must divide 100, got %d", g)
	}
	if c.Routing.Split.MaxVenues < 2 {
		return fmt.Errorf("routing.split.max_venues must be >= 2")
	}
	switch c.Routing.Split.Allocator {
	case AllocatorSimplex, AllocatorGreedy:
	default:
		return fmt.Errorf("invalid routing.split.allocator: %q", c.Routing.Split.Allocator)
	}
	if bps := c.Routing.Liquidity.AMMMaxInputBps; bps < 1 || bps > 10000 {
		return fmt.Errorf("routing.liquidity.amm_max_input_bps must be in [1, 10000], got %d", bps)
	}

	if bps := c.Execution.SlippageBps; bps < 0 || bps >= 10000 {
		return fmt.Errorf("execution.slippage_bps must be in [0, 10000), got %d", bps)
	}

	switch c.Source.Kind {
	case SourceStatic:
	case SourceHTTP:
		if c.Source.URL == "" {
			return fmt.Errorf("source.url is required when source.kind is %q", SourceHTTP)
		}
		if c.Source.MaxAge < c.Source.RefreshInterval {
			return fmt.Errorf("source.max_age must be >= source.refresh_interval")
		}
	default:
		return fmt.Errorf("invalid source.kind: %q", c.Source.Kind)
	}

	for i, a := range c.Assets {
		if a.Symbol == "" || a.Mint == "" {
			return fmt.Errorf("assets[%d]: symbol and mint are required", i)
		}
	}

	seen := make(map[string]struct{}, len(c.Venues))
	for i, vc := range c.Venues {
		if vc.ID == "" {
			return fmt.Errorf("venues[%d]: id is required", i)
		}
		if _, dup := seen[vc.ID]; dup {
			return fmt.Errorf("venues[%d]: duplicate id %q", i, vc.ID)
		}
		seen[vc.ID] = struct{}{}

		switch vc.Kind {
		case KindConstantProduct, KindConcentrated, KindOrderbook:
		default:
			return fmt.Errorf("venues[%d] %s: invalid kind %q", i, vc.ID, vc.Kind)
		}
		if vc.TokenA == "" || vc.TokenB == "" {
			return fmt.Errorf("venues[%d] %s: token_a and token_b are required", i, vc.ID)
		}
		if vc.TokenA == vc.TokenB {
			return fmt.Errorf("venues[%d] %s: token_a and token_b must differ", i, vc.ID)
		}
		if vc.FeeBps < 0 || vc.FeeBps >= 10000 {
			return fmt.Errorf("venues[%d] %s: fee_bps must be in [0, 10000), got %d", i, vc.ID, vc.FeeBps)
		}
	}
	return nil
}
