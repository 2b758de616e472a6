package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	wheelerr "github.com/quantwheel/options-wheel-bot/internal/errors"
	"github.com/quantwheel/options-wheel-bot/internal/strikes"
	"github.com/quantwheel/options-wheel-bot/internal/volatility"
)

// Config is the engine configuration, loaded from a JSON file with
// WHEEL_* environment overrides.
type Config struct {
	Symbol  string  `json:"symbol"`
	Capital float64 `json:"capital"`
	Profile string  `json:"profile"`

	ShortWindow    int `json:"short_window"`
	LongWindow     int `json:"long_window"`
	RegimeLookback int `json:"regime_lookback"`
	MinSamples     int `json:"min_samples"`

	RiskFreeRate float64 `json:"risk_free_rate"`

	Blend volatility.BlendWeights `json:"blend"`

	Liquidity strikes.LiquidityFilters `json:"liquidity"`

	PerContractFee      float64 `json:"per_contract_fee"`
	SlippagePerContract float64 `json:"slippage_per_contract"`

	MaxDTE     int `json:"max_dte"`
	MaxResults int `json:"max_results"`

	DataDir     string `json:"data_dir"`
	MetricsAddr string `json:"metrics_addr"`
}

// NewDefaultConfig returns a configuration with standard engine defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Profile:             string(strikes.ProfileConservative),
		ShortWindow:         volatility.DefaultShortWindow,
		LongWindow:          volatility.DefaultLongWindow,
		RegimeLookback:      volatility.DefaultRegimeLookback,
		MinSamples:          volatility.DefaultMinSamples,
		RiskFreeRate:        strikes.DefaultRiskFreeRate,
		Blend:               volatility.DefaultBlendWeights(),
		Liquidity:           strikes.DefaultLiquidityFilters(),
		PerContractFee:      0.65,
		SlippagePerContract: 1.00,
		MaxDTE:              45,
		MaxResults:          3,
		DataDir:             "data",
	}
}

// Load reads configuration: defaults, then the JSON file (if given), then
// environment overrides, then validation.
func Load(configFile string) (*Config, error) {
	// Missing .env is fine; environment may be set directly.
	_ = godotenv.Load()

	cfg := NewDefaultConfig()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("could not parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WHEEL_SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("WHEEL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Capital = f
		}
	}
	if v := os.Getenv("WHEEL_PROFILE"); v != "" {
		cfg.Profile = v
	}
	if v := os.Getenv("WHEEL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("WHEEL_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("WHEEL_RISK_FREE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RiskFreeRate = f
		}
	}
}

// Validate performs bounds validation on all configuration parameters.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return wheelerr.NewConfigurationError("config", "validate", "symbol is required")
	}
	if c.Capital <= 0 {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("capital must be positive, got: %.2f", c.Capital))
	}
	if _, err := strikes.ParseProfile(c.Profile); err != nil {
		return err
	}
	if c.ShortWindow <= 1 {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("short window must be greater than 1, got: %d", c.ShortWindow))
	}
	if c.LongWindow <= c.ShortWindow {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("long window (%d) must be greater than short window (%d)", c.LongWindow, c.ShortWindow))
	}
	if c.RegimeLookback < c.LongWindow {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("regime lookback (%d) must be at least the long window (%d)", c.RegimeLookback, c.LongWindow))
	}
	if c.MinSamples < 2 {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("min samples must be at least 2, got: %d", c.MinSamples))
	}
	if c.RiskFreeRate < 0 || c.RiskFreeRate > 0.25 {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("risk-free rate must be between 0 and 0.25, got: %.4f", c.RiskFreeRate))
	}
	if err := c.Blend.Validate(); err != nil {
		return err
	}
	if c.Liquidity.MinOpenInterest < 0 {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("min open interest must be non-negative, got: %d", c.Liquidity.MinOpenInterest))
	}
	if c.Liquidity.MaxAbsoluteSpread <= 0 || c.Liquidity.MaxRelativeSpread <= 0 {
		return wheelerr.NewConfigurationError("config", "validate",
			"spread thresholds must be positive")
	}
	if c.PerContractFee < 0 || c.SlippagePerContract < 0 {
		return wheelerr.NewConfigurationError("config", "validate",
			"fees and slippage must be non-negative")
	}
	if c.MaxDTE <= 0 {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("max DTE must be positive, got: %d", c.MaxDTE))
	}
	if c.MaxResults <= 0 {
		return wheelerr.NewConfigurationError("config", "validate",
			fmt.Sprintf("max results must be positive, got: %d", c.MaxResults))
	}
	return nil
}

// WheelProfile returns the parsed strike-selection profile.
func (c *Config) WheelProfile() strikes.Profile {
	p, _ := strikes.ParseProfile(c.Profile)
	return p
}
