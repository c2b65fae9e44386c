// Package strategies holds the two pluggable decision points the simulation
// engine delegates to each epoch: what to do with newly earned reward tokens,
// and what to do with the open position. Strategies own their configuration
// and any per-run mutable state; the engine only sees what they return.
package strategies

import (
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/pool"
)

// RewardStrategy decides how reward tokens earned this epoch convert to cash
// or pool tokens. poolTokens passes through as a delta the engine merges into
// its working supply; implementations must not assume it holds the full pool.
type RewardStrategy interface {
	Name() string
	Execute(rewardTokens, rewardPrice float64, poolTokens, poolPrices pool.Pair, feeSwap, feeGas float64) (remaining float64, updated pool.Pair, cash, fees float64)
}

// sellRewards converts a fraction of the reward balance to cash at
// rewardPrice less the swap fee. Shared by both reward strategies. No gas is
// charged if nothing was actually sold.
func sellRewards(rewardTokens, rewardPrice, fraction, feeSwap, feeGas float64) (remaining, cash, fees float64) {
	if fraction <= 0 {
		return rewardTokens, 0, 0
	}

	sold := fraction * rewardTokens
	remaining = rewardTokens - sold
	cash = sold * (1.0 - feeSwap) * rewardPrice
	if sold > 0 {
		fees = feeGas
	}
	return remaining, cash, fees
}

// SellRewards sells a fixed fraction of each epoch's reward tokens to cash
// and leaves the rest in the reward balance.
type SellRewards struct {
	// Fraction of newly earned rewards sold each epoch, 0..1. Zero or
	// negative makes the strategy a no-op.
	Fraction float64
}

func (s SellRewards) Name() string { return "sell" }

func (s SellRewards) Execute(rewardTokens, rewardPrice float64, poolTokens, poolPrices pool.Pair, feeSwap, feeGas float64) (float64, pool.Pair, float64, float64) {
	remaining, cash, fees := sellRewards(rewardTokens, rewardPrice, s.Fraction, feeSwap, feeGas)
	return remaining, poolTokens, cash, fees
}

// CompoundRewards sells a fraction of each epoch's rewards like SellRewards,
// but reinvests the proceeds: the cash splits 50/50 by value and buys both
// pool tokens (each buy paying the swap fee again), so no cash leaves the
// strategy. Costs three extra gas events: two token buys plus the LP
// re-entry.
type CompoundRewards struct {
	Fraction float64
}

func (s CompoundRewards) Name() string { return "compound" }

func (s CompoundRewards) Execute(rewardTokens, rewardPrice float64, poolTokens, poolPrices pool.Pair, feeSwap, feeGas float64) (float64, pool.Pair, float64, float64) {
	if s.Fraction <= 0 {
		return rewardTokens, poolTokens, 0, 0
	}

	remaining, cash, fees := sellRewards(rewardTokens, rewardPrice, s.Fraction, feeSwap, feeGas)
	if cash == 0 {
		// Nothing earned, nothing to reinvest.
		return remaining, poolTokens, 0, fees
	}

	for i := range poolTokens {
		bought := 0.5 * cash * (1.0 - feeSwap) / poolPrices[i]
		poolTokens[i] += bought
	}
	fees += 3 * feeGas

	return remaining, poolTokens, 0, fees
}
