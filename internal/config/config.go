package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/simaogato/tradesim-backend/internal/usecase/fee"
	"github.com/simaogato/tradesim-backend/internal/usecase/seeder"
	"github.com/simaogato/tradesim-backend/internal/usecase/simulation"
)

// EnvPrefix prefixes every environment override, e.g. TRADESIM_MARKET_TICK_INTERVAL
const EnvPrefix = "TRADESIM"

// ConfigPathEnv names an explicit config file, bypassing the search paths
const ConfigPathEnv = "TRADESIM_CONFIG"

// Config is the process configuration
type Config struct {
	Market     MarketConfig     `mapstructure:"market"`
	Fees       FeesConfig       `mapstructure:"fees"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

type MarketConfig struct {
	TickInterval     time.Duration      `mapstructure:"tick_interval"`
	VolatilityFactor float64            `mapstructure:"volatility_factor"`
	Instruments      []InstrumentConfig `mapstructure:"instruments"`
}

type InstrumentConfig struct {
	Symbol    string  `mapstructure:"symbol"`
	Name      string  `mapstructure:"name"`
	Sector    string  `mapstructure:"sector"`
	BasePrice float64 `mapstructure:"base_price"`
}

type FeesConfig struct {
	BuyRate    float64 `mapstructure:"buy_rate"`
	SellRate   float64 `mapstructure:"sell_rate"`
	MinimumFee float64 `mapstructure:"minimum_fee"`
}

type ServerConfig struct {
	GRPCAddr    string `mapstructure:"grpc_addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type SimulationConfig struct {
	Autostart bool `mapstructure:"autostart"`
}

// DefaultInstruments is the market a fresh process trades
var DefaultInstruments = []InstrumentConfig{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", BasePrice: 150},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", BasePrice: 2800},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", BasePrice: 300},
	{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Automotive", BasePrice: 800},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "E-commerce", BasePrice: 3300},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial", BasePrice: 145},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", BasePrice: 165},
}

// Load reads config.yaml (from ".", "./config" or $TRADESIM_CONFIG) and applies
// TRADESIM_* environment overrides on top of the defaults.
// A missing config file is fine unless it was named explicitly.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := os.Getenv(ConfigPathEnv)
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("market.tick_interval", "5s")
	v.SetDefault("market.volatility_factor", 0.02)
	v.SetDefault("market.instruments", defaultInstrumentMaps())
	v.SetDefault("fees.buy_rate", 0.001)
	v.SetDefault("fees.sell_rate", 0.001)
	v.SetDefault("fees.minimum_fee", 1.00)
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("logging.level", "info")
	v.SetDefault("simulation.autostart", true)
}

func defaultInstrumentMaps() []map[string]any {
	out := make([]map[string]any, 0, len(DefaultInstruments))
	for _, inst := range DefaultInstruments {
		out = append(out, map[string]any{
			"symbol":     inst.Symbol,
			"name":       inst.Name,
			"sector":     inst.Sector,
			"base_price": inst.BasePrice,
		})
	}
	return out
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.Market.TickInterval <= 0 {
		return errors.New("market tick interval must be positive")
	}
	if c.Market.VolatilityFactor < 0 {
		return errors.New("market volatility factor cannot be negative")
	}
	if len(c.Market.Instruments) == 0 {
		return errors.New("at least one instrument must be configured")
	}

	seen := make(map[string]struct{}, len(c.Market.Instruments))
	for _, inst := range c.Market.Instruments {
		if inst.Symbol == "" {
			return errors.New("instrument symbol cannot be empty")
		}
		if _, ok := seen[inst.Symbol]; ok {
			return fmt.Errorf("duplicate instrument symbol %s", inst.Symbol)
		}
		seen[inst.Symbol] = struct{}{}
		if inst.BasePrice <= 0 {
			return fmt.Errorf("base price of %s must be positive", inst.Symbol)
		}
	}

	return c.FeePolicy().Validate()
}

// FeePolicy converts the fee settings to exact decimals
func (c *Config) FeePolicy() fee.Policy {
	return fee.Policy{
		BuyRate:    decimal.NewFromFloat(c.Fees.BuyRate),
		SellRate:   decimal.NewFromFloat(c.Fees.SellRate),
		MinimumFee: decimal.NewFromFloat(c.Fees.MinimumFee),
	}
}

// InstrumentSeeds converts the configured instruments for the seeder
func (c *Config) InstrumentSeeds() []seeder.InstrumentSeed {
	seeds := make([]seeder.InstrumentSeed, 0, len(c.Market.Instruments))
	for _, inst := range c.Market.Instruments {
		seeds = append(seeds, seeder.InstrumentSeed{
			Symbol:    inst.Symbol,
			Name:      inst.Name,
			Sector:    inst.Sector,
			BasePrice: decimal.NewFromFloat(inst.BasePrice),
		})
	}
	return seeds
}

// SimulatorConfig returns the market simulator settings
func (c *Config) SimulatorConfig() simulation.Config {
	return simulation.Config{
		TickInterval:     c.Market.TickInterval,
		VolatilityFactor: c.Market.VolatilityFactor,
	}
}
