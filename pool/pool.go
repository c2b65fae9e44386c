// Package pool holds the constant-product liquidity math: opening and
// closing a leveraged two-sided position, and repricing pool holdings when
// the price ratio moves. Everything here is stateless; all running-total
// bookkeeping belongs to the caller.
package pool

import (
	"errors"
	"fmt"
	"math"
)

// ErrLeverage reports an unsupported leverage value. Positions can be opened
// unlevered (1x) or levered at 2x and above; anything in between has no
// borrow construction.
var ErrLeverage = errors.New("pool: leverage must be 1 or >= 2")

// Pair is a (token0, token1) amount pair. Token0 is the stable side.
type Pair [2]float64

// Value prices the pair in dollars.
func (p Pair) Value(prices Pair) float64 {
	return p[0]*prices[0] + p[1]*prices[1]
}

// Add returns the component-wise sum.
func (p Pair) Add(q Pair) Pair {
	return Pair{p[0] + q[0], p[1] + q[1]}
}

// ValidLeverage reports whether a position can be constructed at this
// leverage.
func ValidLeverage(leverage float64) bool {
	return leverage == 1 || leverage >= 2
}

// Open opens a leveraged LP position from capital dollars. A single swap fee
// comes off the top regardless of leverage; gas costs scale with the number
// of transactions each construction needs.
//
//	1x:  split 50/50, no debt, one gas event.
//	2x:  borrow 100% of capital in token1, four gas events.
//	>2x: position value = leverage*capital split evenly, debt =
//	     (leverage-1)*capital split risk-weighted, six gas events.
func Open(capital, leverage float64, prices Pair, feeSwap, feeGas float64) (supply, debt Pair, fees float64, err error) {
	if !ValidLeverage(leverage) {
		return Pair{}, Pair{}, 0, fmt.Errorf("%w: got %g", ErrLeverage, leverage)
	}

	capital *= 1.0 - feeSwap

	switch {
	case leverage == 1:
		supply = Pair{
			capital / 2 / prices[0],
			capital / 2 / prices[1],
		}
		fees = feeGas

	case leverage == 2:
		// Single borrow position: the whole principal buys token0, and an
		// equal value of token1 is borrowed to match it.
		debt = Pair{0, capital / prices[1]}
		supply = Pair{capital / prices[0], debt[1]}
		fees = 4 * feeGas

	default: // leverage > 2
		supply = Pair{
			0.5 * leverage * capital / prices[0],
			0.5 * leverage * capital / prices[1],
		}

		// Borrow split is L/(L-2):1 risky:stable, e.g. 3x borrows 25%
		// stable / 75% risky of the (L-1)*capital debt.
		token0Frac := 1 / (leverage/(leverage-2) + 1)
		token1Frac := 1.0 - token0Frac
		multiplier := leverage - 1
		debt = Pair{
			capital * token0Frac * multiplier / prices[0],
			capital * token1Frac * multiplier / prices[1],
		}
		fees = 6 * feeGas
	}

	return supply, debt, fees, nil
}

// Close liquidates amount (a 0..1 fraction of current equity) of the
// position. Remaining supply and debt scale by (1-amount); the sold equity
// converts to cash at current prices less the swap fee, one swap per token
// side.
func Close(supply, debt, prices Pair, amount, feeSwap, feeGas float64) (remSupply, remDebt Pair, cash, fees float64) {
	for i := range supply {
		remSupply[i] = supply[i] * (1.0 - amount)
		remDebt[i] = debt[i] * (1.0 - amount)

		equity := supply[i] - debt[i]
		cash += equity * amount * prices[i] * (1.0 - feeSwap)
		fees += feeGas
	}
	return remSupply, remDebt, cash, fees
}

// Reprice returns the pool holdings after the marginal price ratio moves to
// ratio (= p1/p0) while the constant product k = s0*s1 holds. The two sides
// stay equal in value: s0 = sqrt(k*r), s1 = sqrt(k/r). This is the
// impermanent-loss shift; callers must feed it the previous epoch's closing
// supplies, not the original opening ones, or the loss stops compounding.
func Reprice(k, ratio float64) Pair {
	return Pair{
		math.Sqrt(k * ratio),
		math.Sqrt(k / ratio),
	}
}
