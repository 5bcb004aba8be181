package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no stray config.yaml is found
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnv, "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Market.TickInterval)
	assert.Equal(t, 0.02, cfg.Market.VolatilityFactor)
	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Simulation.Autostart)
	assert.Equal(t, DefaultInstruments, cfg.Market.Instruments)

	policy := cfg.FeePolicy()
	assert.True(t, policy.BuyRate.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, policy.SellRate.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, policy.MinimumFee.Equal(decimal.NewFromInt(1)))
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TRADESIM_MARKET_TICK_INTERVAL", "250ms")
	t.Setenv("TRADESIM_FEES_BUY_RATE", "0.01")
	t.Setenv("TRADESIM_LOGGING_LEVEL", "debug")
	t.Setenv("TRADESIM_SIMULATION_AUTOSTART", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Market.TickInterval)
	assert.Equal(t, 0.01, cfg.Fees.BuyRate)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Simulation.Autostart)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := `
market:
  tick_interval: 1s
  volatility_factor: 0.05
  instruments:
    - symbol: BTC
      name: Bitcoin
      sector: Crypto
      base_price: 30000
fees:
  minimum_fee: 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Market.TickInterval)
	assert.Equal(t, 0.05, cfg.Market.VolatilityFactor)
	require.Len(t, cfg.Market.Instruments, 1)
	assert.Equal(t, "BTC", cfg.Market.Instruments[0].Symbol)
	assert.Equal(t, 2.5, cfg.Fees.MinimumFee)
	assert.Equal(t, 0.001, cfg.Fees.SellRate, "unset keys keep their default")

	seeds := cfg.InstrumentSeeds()
	require.Len(t, seeds, 1)
	assert.True(t, seeds[0].BasePrice.Equal(decimal.NewFromInt(30000)))
}

func TestLoad_SearchesConfigDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte("server:\n  grpc_addr: \":7000\"\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Server.GRPCAddr)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	dir := isolate(t)
	t.Setenv(ConfigPathEnv, filepath.Join(dir, "absent.yaml"))

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	isolate(t)
	t.Setenv("TRADESIM_FEES_SELL_RATE", "-0.5")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sell fee rate cannot be negative")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Market: MarketConfig{
				TickInterval:     time.Second,
				VolatilityFactor: 0.02,
				Instruments:      []InstrumentConfig{{Symbol: "AAPL", BasePrice: 150}, {Symbol: "JNJ", BasePrice: 165}},
			},
			Fees: FeesConfig{BuyRate: 0.001, SellRate: 0.001, MinimumFee: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero tick interval",
			mutate:  func(c *Config) { c.Market.TickInterval = 0 },
			wantErr: true,
			errMsg:  "tick interval must be positive",
		},
		{
			name:    "negative volatility",
			mutate:  func(c *Config) { c.Market.VolatilityFactor = -1 },
			wantErr: true,
			errMsg:  "volatility factor cannot be negative",
		},
		{
			name:    "no instruments",
			mutate:  func(c *Config) { c.Market.Instruments = nil },
			wantErr: true,
			errMsg:  "at least one instrument",
		},
		{
			name:    "empty symbol",
			mutate:  func(c *Config) { c.Market.Instruments[0].Symbol = "" },
			wantErr: true,
			errMsg:  "symbol cannot be empty",
		},
		{
			name:    "duplicate symbol",
			mutate:  func(c *Config) { c.Market.Instruments[1].Symbol = "AAPL" },
			wantErr: true,
			errMsg:  "duplicate instrument symbol AAPL",
		},
		{
			name:    "non-positive base price",
			mutate:  func(c *Config) { c.Market.Instruments[1].BasePrice = 0 },
			wantErr: true,
			errMsg:  "base price of JNJ must be positive",
		},
		{
			name:    "negative minimum fee",
			mutate:  func(c *Config) { c.Fees.MinimumFee = -1 },
			wantErr: true,
			errMsg:  "minimum fee cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
