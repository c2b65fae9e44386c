// Package scenario builds synthetic input histories for the simulator:
// constant, linear, and random-walk price paths. These generate the
// exogenous table only; they contain no decision logic.
package scenario

import (
	"math"
	"math/rand"
	"time"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/market"
)

// DefaultStart anchors generated histories when the caller does not care
// about calendar placement.
var DefaultStart = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func base(days int, start time.Time, token0Price, token1Price float64) market.History {
	if start.IsZero() {
		start = DefaultStart
	}
	h := make(market.History, days)
	for i := range h {
		h[i] = market.NewRow(start.AddDate(0, 0, i), token0Price, token1Price)
	}
	return h
}

// Constant produces a flat price path. Useful for isolating interest and
// fee accrual from impermanent loss.
func Constant(days int, token0Price, token1Price float64, start time.Time) market.History {
	return base(days, start, token0Price, token1Price)
}

// SmallExample is the canonical 4-record table: open, an identical second
// day, a 90% token1 crash, then a 5x rise over the original price. It
// exercises impermanent loss in both directions.
func SmallExample() market.History {
	h := base(4, DefaultStart, 1.0, 0.1)
	h[2].Token1Price = 0.01
	h[3].Token1Price = 0.5
	return h
}

// Linear moves token1 linearly from token1Initial to token1Final, and
// optionally the reward token likewise when both reward prices are positive.
func Linear(days int, token0Price, token1Initial, token1Final, rewardInitial, rewardFinal float64, start time.Time) market.History {
	h := base(days, start, token0Price, token1Initial)

	prices := linspace(token1Initial, token1Final, days)
	for i := range h {
		h[i].Token1Price = prices[i]
	}
	if rewardInitial > 0 && rewardFinal > 0 {
		rewards := linspace(rewardInitial, rewardFinal, days)
		for i := range h {
			h[i].RewardTokenPrice = rewards[i]
		}
	}
	return h
}

// LinearAndBack runs token1 linearly from base to peak and back again over
// the series, with an optional matching reward-token path.
func LinearAndBack(days int, token0Price, token1Base, token1Peak, rewardBase, rewardPeak float64, start time.Time) market.History {
	h := base(days, start, token0Price, token1Base)

	prices := thereAndBack(token1Base, token1Peak, days)
	for i := range h {
		h[i].Token1Price = prices[i]
	}
	if rewardBase > 0 && rewardPeak > 0 {
		rewards := thereAndBack(rewardBase, rewardPeak, days)
		for i := range h {
			h[i].RewardTokenPrice = rewards[i]
		}
	}
	return h
}

// RandomWalk produces an n-step multiplicative random walk starting at
// origin. Each step multiplies by 1 + N(bias, variance). The caller owns the
// generator, so seeding it makes the walk reproducible.
func RandomWalk(n int, origin, bias, variance float64, rng *rand.Rand) []float64 {
	walk := make([]float64, n)
	cur := origin
	for i := range walk {
		walk[i] = cur
		cur *= 1 + bias + rng.NormFloat64()*math.Sqrt(variance)
	}
	return walk
}

// RandomWalkHistory builds a history whose token1 price follows a random
// walk while token0 stays pinned at $1. When rewardInitial is positive the
// reward token follows its own walk drawn from the same generator.
func RandomWalkHistory(days int, token1Initial, bias, variance, rewardInitial float64, rng *rand.Rand, start time.Time) market.History {
	h := base(days, start, 1.0, token1Initial)

	prices := RandomWalk(days, token1Initial, bias, variance, rng)
	for i := range h {
		h[i].Token1Price = prices[i]
	}
	if rewardInitial > 0 {
		rewards := RandomWalk(days, rewardInitial, bias, variance, rng)
		for i := range h {
			h[i].RewardTokenPrice = rewards[i]
		}
	}
	return h
}

func linspace(from, to float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = from
		return out
	}
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + step*float64(i)
	}
	return out
}

// thereAndBack joins two linspace legs, from -> peak -> from, covering n
// points.
func thereAndBack(from, peak float64, n int) []float64 {
	half := n/2 + 1
	up := linspace(from, peak, half)
	down := linspace(peak, from, half+1)

	out := make([]float64, 0, n)
	out = append(out, up...)
	out = append(out, down[1:]...)
	return out[:n]
}
