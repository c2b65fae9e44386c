package strategies

import (
	"fmt"
	"strings"
)

// RewardConfig carries the parameters the reward-strategy factory needs.
type RewardConfig struct {
	// Fraction of newly earned rewards sold (or sold-then-reinvested)
	// each epoch.
	Fraction float64
}

// TradingConfig carries the parameters the trading-strategy factory needs.
// Fee parameters mirror the run-level fee settings so a rebalance pays the
// same costs an operator-initiated close/open would.
type TradingConfig struct {
	Anchor    float64
	Threshold float64
	Leverage  float64
	Amount    float64
	FeeSwap   float64
	FeeGas    float64
}

// RewardsByName builds a reward strategy from its configuration name.
func RewardsByName(name string, cfg RewardConfig) (RewardStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sell", "sell-rewards":
		return SellRewards{Fraction: cfg.Fraction}, nil

	case "compound", "compound-rewards":
		return CompoundRewards{Fraction: cfg.Fraction}, nil

	case "none", "noop":
		// Accumulate rewards untouched.
		return SellRewards{Fraction: 0}, nil

	default:
		return nil, fmt.Errorf("strategies: unknown reward strategy %q (supported: sell, compound, none)", name)
	}
}

// TradingByName builds a trading strategy from its configuration name.
func TradingByName(name string, cfg TradingConfig) (TradingStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hold", "hodl", "passive":
		return Hold{}, nil

	case "rebalance", "threshold-rebalance":
		return NewRebalance(cfg.Anchor, cfg.Threshold, cfg.Leverage, cfg.Amount, cfg.FeeSwap, cfg.FeeGas)

	default:
		return nil, fmt.Errorf("strategies: unknown trading strategy %q (supported: hold, rebalance)", name)
	}
}
