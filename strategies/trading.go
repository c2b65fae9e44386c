package strategies

import (
	"errors"
	"fmt"
	"math"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/logger"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/market"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/pool"
)

var rebalanceLog = logger.GetForComponent("rebalance")

// ErrAnchor reports a non-positive rebalance anchor price.
var ErrAnchor = errors.New("strategies: anchor price must be positive")

// TradingStrategy decides, once per epoch, whether to modify the open
// position. hist is the input series up to and including the current epoch,
// so trend-following variants can look backward. The metadata map is
// strategy-defined diagnostics; the engine records it verbatim and never
// reads it.
type TradingStrategy interface {
	Name() string
	Execute(supply, debt pool.Pair, hist market.History, cash float64) (pool.Pair, pool.Pair, float64, float64, map[string]float64)
}

// Hold never touches the position. It represents "open and walk away".
type Hold struct{}

func (Hold) Name() string { return "hold" }

func (Hold) Execute(supply, debt pool.Pair, hist market.History, cash float64) (pool.Pair, pool.Pair, float64, float64, map[string]float64) {
	return supply, debt, cash, 0, map[string]float64{}
}

// Rebalance closes and reopens the position whenever token1's price drifts
// beyond a threshold from the anchor, then re-anchors at the trigger price.
// The rebalance itself is deliberately blunt: full (or fractional) close
// followed by a fresh open at the target leverage, with the cash from the
// close funding the reopen.
type Rebalance struct {
	threshold float64
	leverage  float64
	amount    float64
	feeSwap   float64
	feeGas    float64

	anchor float64
}

// NewRebalance validates the configuration up front so Execute cannot fail
// mid-run. anchor is the initial reference price for token1; amount is the
// equity fraction closed on each trigger (1 = full close).
func NewRebalance(anchor, threshold, leverage, amount, feeSwap, feeGas float64) (*Rebalance, error) {
	if anchor <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrAnchor, anchor)
	}
	if !pool.ValidLeverage(leverage) {
		return nil, fmt.Errorf("%w: got %g", pool.ErrLeverage, leverage)
	}
	return &Rebalance{
		threshold: threshold,
		leverage:  leverage,
		amount:    amount,
		feeSwap:   feeSwap,
		feeGas:    feeGas,
		anchor:    anchor,
	}, nil
}

func (s *Rebalance) Name() string { return "rebalance" }

func (s *Rebalance) Execute(supply, debt pool.Pair, hist market.History, cash float64) (pool.Pair, pool.Pair, float64, float64, map[string]float64) {
	cur := hist[len(hist)-1]
	prices := pool.Pair{cur.Token0Price, cur.Token1Price}

	priceDelta := math.Abs(cur.Token1Price-s.anchor) / s.anchor
	meta := map[string]float64{"price_delta": priceDelta}

	var fees float64
	if priceDelta > s.threshold {
		rebalanceLog.Info().
			Time("date", cur.Date).
			Float64("price_delta", priceDelta).
			Float64("threshold", s.threshold).
			Float64("anchor", s.anchor).
			Float64("price", cur.Token1Price).
			Msg("price drift exceeded threshold, rebalancing")

		remSupply, remDebt, cashClose, feesClose := pool.Close(supply, debt, prices, s.amount, s.feeSwap, s.feeGas)

		// Leverage was validated at construction, so Open cannot fail here.
		newSupply, newDebt, feesOpen, _ := pool.Open(cashClose, s.leverage, prices, s.feeSwap, s.feeGas)

		supply = remSupply.Add(newSupply)
		debt = remDebt.Add(newDebt)
		fees = feesClose + feesOpen
		s.anchor = cur.Token1Price
	}

	return supply, debt, cash, fees, meta
}
