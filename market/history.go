// Package market defines the exogenous input series a simulation consumes:
// one row per day of token prices and annualized yields. Rows are produced by
// the scenario generators or the dataset loaders, never by the engine itself.
package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmpty    = errors.New("market: empty history")
	ErrUnsorted = errors.New("market: dates must be unique and strictly increasing")
	ErrPrice    = errors.New("market: token prices must be positive")
)

// Row is a single day of inputs. Token0 is the stable/base asset by
// convention; token1 carries the price risk. APYs are annualized fractions
// (0.1 means 10%/yr). Optional fields hold NaN until something fills them in.
type Row struct {
	Date             time.Time
	Token0Price      float64
	Token1Price      float64
	RewardTokenPrice float64
	APYTradingFee    float64
	APYReward        float64
	APYBorrowToken0  float64
	APYBorrowToken1  float64
}

// NewRow returns a Row with the required price columns set and every
// optional column marked absent (NaN).
func NewRow(date time.Time, token0Price, token1Price float64) Row {
	nan := math.NaN()
	return Row{
		Date:             date,
		Token0Price:      token0Price,
		Token1Price:      token1Price,
		RewardTokenPrice: nan,
		APYTradingFee:    nan,
		APYReward:        nan,
		APYBorrowToken0:  nan,
		APYBorrowToken1:  nan,
	}
}

// Ratio is the price of token1 relative to token0.
func (r Row) Ratio() float64 {
	return r.Token1Price / r.Token0Price
}

// History is a chronologically ordered series of input rows.
type History []Row

// Validate checks the structural contract the engine relies on: at least one
// row, unique strictly-increasing dates, positive token prices.
func (h History) Validate() error {
	if len(h) == 0 {
		return ErrEmpty
	}
	for i, row := range h {
		if row.Token0Price <= 0 || row.Token1Price <= 0 {
			return fmt.Errorf("%w: row %d (%s)", ErrPrice, i, row.Date.Format("2006-01-02"))
		}
		if i > 0 && !h[i-1].Date.Before(row.Date) {
			return fmt.Errorf("%w: row %d (%s)", ErrUnsorted, i, row.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Clone returns an independent copy. The engine clones before applying
// scalar overrides so callers keep their original series untouched.
func (h History) Clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}
