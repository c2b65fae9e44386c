package dataset

import (
	"fmt"
	"math"
	"sort"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/logger"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/market"
)

var buildLog = logger.GetForComponent("dataset")

// BuildOptions tunes how the merged history is assembled.
type BuildOptions struct {
	// RewardAPYRatio splits the pool's total APY into reward vs trading-fee
	// shares when the APY snapshot carries no usable reward series of its
	// own. A real reward series always wins over the ratio; the ratio is
	// only a fallback. Nil disables the fallback.
	RewardAPYRatio *float64
}

// BuildHistory inner-joins a pool-APY series, a borrow-APY series, and a
// price history by calendar day into a simulator input table. Prices supply
// the token prices (and optionally the reward token price); the APY sources
// fill the yield columns. Days missing from any source are dropped.
func BuildHistory(apys []APYPoint, borrows []BorrowPoint, prices market.History, opts BuildOptions) (market.History, error) {
	if err := prices.Validate(); err != nil {
		return nil, err
	}

	// Decide the reward split once, for the whole series.
	useRatio := false
	if opts.RewardAPYRatio != nil {
		rewardSeen := false
		for _, p := range apys {
			if !math.IsNaN(p.Reward) && p.Reward > 0 {
				rewardSeen = true
				break
			}
		}
		if !rewardSeen {
			useRatio = true
			buildLog.Warn().
				Float64("reward_apy_ratio", *opts.RewardAPYRatio).
				Msg("no reward series in pool APY history, splitting total APY by ratio")
		}
	}

	apyByDay := make(map[int64]APYPoint, len(apys))
	for _, p := range apys {
		apyByDay[dayKey(p.Date).Unix()] = p
	}
	borrowByDay := make(map[int64]BorrowPoint, len(borrows))
	for _, b := range borrows {
		borrowByDay[dayKey(b.Date).Unix()] = b
	}

	var h market.History
	for _, priceRow := range prices {
		key := dayKey(priceRow.Date).Unix()
		apy, ok := apyByDay[key]
		if !ok {
			continue
		}
		borrow, ok := borrowByDay[key]
		if !ok {
			continue
		}

		row := market.NewRow(dayKey(priceRow.Date), priceRow.Token0Price, priceRow.Token1Price)
		row.RewardTokenPrice = priceRow.RewardTokenPrice

		tradingFee := nanToZero(apy.APY)
		reward := nanToZero(apy.Reward)
		if useRatio {
			reward = tradingFee * *opts.RewardAPYRatio
			tradingFee = tradingFee * (1.0 - *opts.RewardAPYRatio)
		}
		row.APYTradingFee = tradingFee
		row.APYReward = reward
		row.APYBorrowToken0 = borrow.Token0
		row.APYBorrowToken1 = borrow.Token1

		h = append(h, row)
	}

	if len(h) == 0 {
		return nil, fmt.Errorf("dataset: no dates shared by all input series")
	}
	sort.Slice(h, func(i, j int) bool { return h[i].Date.Before(h[j].Date) })

	buildLog.Debug().
		Int("days", len(h)).
		Time("from", h[0].Date).
		Time("to", h[len(h)-1].Date).
		Msg("assembled history")

	return h, h.Validate()
}

func nanToZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
