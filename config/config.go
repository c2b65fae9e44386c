package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/pool"
)

// Config represents the complete simulation configuration
type Config struct {
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Rewards    RewardsConfig    `json:"rewards" yaml:"rewards"`
	Trading    TradingConfig    `json:"trading" yaml:"trading"`
	Scenario   ScenarioConfig   `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	Data       DataConfig       `json:"data,omitempty" yaml:"data,omitempty"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// SimulationConfig contains the farm position parameters
type SimulationConfig struct {
	Capital     float64 `json:"capital" yaml:"capital"`
	Leverage    float64 `json:"leverage" yaml:"leverage"`
	FeeSwap     float64 `json:"fee_swap" yaml:"fee_swap"`
	FeeGas      float64 `json:"fee_gas" yaml:"fee_gas"`
	OpenOnStart bool    `json:"open_on_start" yaml:"open_on_start"`

	// Optional scalar overrides applied to every input row that does not
	// already carry its own value.
	APYTradingFee    *float64 `json:"apy_trading_fee,omitempty" yaml:"apy_trading_fee,omitempty"`
	APYReward        *float64 `json:"apy_reward,omitempty" yaml:"apy_reward,omitempty"`
	APYBorrowToken0  *float64 `json:"apy_borrow_token0,omitempty" yaml:"apy_borrow_token0,omitempty"`
	APYBorrowToken1  *float64 `json:"apy_borrow_token1,omitempty" yaml:"apy_borrow_token1,omitempty"`
	RewardTokenPrice *float64 `json:"reward_token_price,omitempty" yaml:"reward_token_price,omitempty"`
}

// RewardsConfig selects the reward-handling strategy
type RewardsConfig struct {
	Strategy string  `json:"strategy" yaml:"strategy"` // "sell", "compound" or "none"
	Fraction float64 `json:"fraction" yaml:"fraction"`
}

// TradingConfig selects the position-management strategy
type TradingConfig struct {
	Strategy  string  `json:"strategy" yaml:"strategy"` // "hold" or "rebalance"
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Amount    float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	// Anchor price for rebalancing. Defaults to the first epoch's token1
	// price when unset.
	Anchor *float64 `json:"anchor,omitempty" yaml:"anchor,omitempty"`
}

// ScenarioConfig describes a synthetic price history
type ScenarioConfig struct {
	Name        string  `json:"name" yaml:"name"` // constant, small-example, linear, linear-and-back, random-walk
	Days        int     `json:"days,omitempty" yaml:"days,omitempty"`
	Token0Price float64 `json:"token0_price,omitempty" yaml:"token0_price,omitempty"`
	Token1Start float64 `json:"token1_start,omitempty" yaml:"token1_start,omitempty"`
	Token1Stop  float64 `json:"token1_stop,omitempty" yaml:"token1_stop,omitempty"`
	RewardStart float64 `json:"reward_start,omitempty" yaml:"reward_start,omitempty"`
	RewardStop  float64 `json:"reward_stop,omitempty" yaml:"reward_stop,omitempty"`
	Bias        float64 `json:"bias,omitempty" yaml:"bias,omitempty"`
	Variance    float64 `json:"variance,omitempty" yaml:"variance,omitempty"`
	Seed        int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// DataConfig points at historical inputs on disk
type DataConfig struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"` // "csv" or "snapshots"

	// Source "csv": a ready-made simulator input table.
	HistoryCSV string `json:"history_csv,omitempty" yaml:"history_csv,omitempty"`

	// Source "snapshots": raw APY snapshots joined with a price table.
	CoindixPath  string `json:"coindix_path,omitempty" yaml:"coindix_path,omitempty"`
	CreamPath    string `json:"cream_path,omitempty" yaml:"cream_path,omitempty"`
	PricesCSV    string `json:"prices_csv,omitempty" yaml:"prices_csv,omitempty"`
	Chain        string `json:"chain,omitempty" yaml:"chain,omitempty"`
	Protocol     string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Pair         string `json:"pair,omitempty" yaml:"pair,omitempty"`
	Comptroller  string `json:"comptroller,omitempty" yaml:"comptroller,omitempty"`
	Token0Symbol string `json:"token0_symbol,omitempty" yaml:"token0_symbol,omitempty"`
	Token1Symbol string `json:"token1_symbol,omitempty" yaml:"token1_symbol,omitempty"`

	// Splits total pool APY into reward vs trading-fee shares when the
	// snapshot has no reward series of its own.
	RewardAPYRatio *float64 `json:"reward_apy_ratio,omitempty" yaml:"reward_apy_ratio,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type    string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath  string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	CSVPath string `json:"csv_path,omitempty" yaml:"csv_path,omitempty"`
	Label   string `json:"label,omitempty" yaml:"label,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Simulation.Capital <= 0 {
		return fmt.Errorf("simulation.capital must be positive")
	}
	if !pool.ValidLeverage(c.Simulation.Leverage) {
		return fmt.Errorf("simulation.leverage must be 1 or at least 2")
	}
	if c.Simulation.FeeSwap < 0 || c.Simulation.FeeSwap >= 1 {
		return fmt.Errorf("simulation.fee_swap must be in [0, 1)")
	}
	if c.Simulation.FeeGas < 0 {
		return fmt.Errorf("simulation.fee_gas must not be negative")
	}

	switch strings.ToLower(c.Rewards.Strategy) {
	case "sell", "sell-rewards", "compound", "compound-rewards", "none", "noop":
	default:
		return fmt.Errorf("rewards.strategy must be 'sell', 'compound' or 'none'")
	}
	if c.Rewards.Fraction < 0 || c.Rewards.Fraction > 1 {
		return fmt.Errorf("rewards.fraction must be between 0 and 1")
	}

	switch strings.ToLower(c.Trading.Strategy) {
	case "hold", "hodl", "passive":
	case "rebalance", "threshold-rebalance":
		if c.Trading.Threshold <= 0 {
			return fmt.Errorf("trading.threshold must be positive for rebalancing")
		}
		if c.Trading.Amount <= 0 || c.Trading.Amount > 1 {
			return fmt.Errorf("trading.amount must be in (0, 1]")
		}
	default:
		return fmt.Errorf("trading.strategy must be 'hold' or 'rebalance'")
	}

	if c.Scenario.Name == "" && c.Data.Source == "" {
		return fmt.Errorf("either scenario or data must be configured")
	}
	if c.Scenario.Name != "" && c.Data.Source != "" {
		return fmt.Errorf("scenario and data are mutually exclusive")
	}
	switch c.Data.Source {
	case "":
	case "csv":
		if c.Data.HistoryCSV == "" {
			return fmt.Errorf("data.history_csv required for CSV source")
		}
	case "snapshots":
		if c.Data.CoindixPath == "" || c.Data.CreamPath == "" || c.Data.PricesCSV == "" {
			return fmt.Errorf("data coindix_path, cream_path and prices_csv required for snapshot source")
		}
	default:
		return fmt.Errorf("data.source must be 'csv' or 'snapshots'")
	}

	switch c.Journal.Type {
	case "none", "":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "csv":
		if c.Journal.CSVPath == "" {
			return fmt.Errorf("journal csv_path required for CSV type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Capital:     1000,
			Leverage:    3,
			FeeSwap:     0.002,
			FeeGas:      1,
			OpenOnStart: true,
		},
		Rewards: RewardsConfig{
			Strategy: "sell",
			Fraction: 1,
		},
		Trading: TradingConfig{
			Strategy: "hold",
		},
		Scenario: ScenarioConfig{
			Name:        "random-walk",
			Days:        365,
			Token0Price: 1,
			Token1Start: 100,
			Variance:    0.0001,
			Seed:        1,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./lpfarm.db",
		},
	}
}
