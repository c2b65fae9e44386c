package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BorrowPoint is one day of borrow APYs for the two pool tokens, as
// fractions.
type BorrowPoint struct {
	Date   time.Time
	Token0 float64
	Token1 float64
}

type creamSample struct {
	Date             string      `json:"date"`
	BorrowAPY        looseNumber `json:"borrow_apy"`
	UnderlyingSymbol string      `json:"underlying_symbol"`
	Comptroller      string      `json:"comptroller"`
}

// looseNumber tolerates the snapshot's habit of quoting numeric fields.
type looseNumber float64

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse borrow_apy %q: %w", s, err)
	}
	*n = looseNumber(v)
	return nil
}

// LoadCreamBorrowAPY reads a Cream Finance history snapshot (an array of
// per-market series) and returns the inner-joined daily borrow APYs for the
// two pool tokens on the given comptroller. Percentages in the file become
// fractions here.
func LoadCreamBorrowAPY(path, comptroller, sym0, sym1 string) ([]BorrowPoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read cream history: %w", err)
	}

	var markets [][]creamSample
	if err := json.Unmarshal(raw, &markets); err != nil {
		return nil, fmt.Errorf("dataset: parse cream history: %w", err)
	}

	series0, err := creamSeries(markets, comptroller, sym0)
	if err != nil {
		return nil, err
	}
	series1, err := creamSeries(markets, comptroller, sym1)
	if err != nil {
		return nil, err
	}

	points := make([]BorrowPoint, 0, len(series0))
	for _, s0 := range series0 {
		date0, err := parseDate(s0.Date)
		if err != nil {
			return nil, fmt.Errorf("dataset: cream series for %s: %w", sym0, err)
		}
		for _, s1 := range series1 {
			date1, err := parseDate(s1.Date)
			if err != nil {
				return nil, fmt.Errorf("dataset: cream series for %s: %w", sym1, err)
			}
			if dayKey(date0) != dayKey(date1) {
				continue
			}
			points = append(points, BorrowPoint{
				Date:   dayKey(date0),
				Token0: float64(s0.BorrowAPY) / 100.0,
				Token1: float64(s1.BorrowAPY) / 100.0,
			})
			break
		}
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("dataset: no overlapping dates for %s and %s on %s", sym0, sym1, comptroller)
	}
	return points, nil
}

func creamSeries(markets [][]creamSample, comptroller, symbol string) ([]creamSample, error) {
	for _, m := range markets {
		if len(m) == 0 {
			continue
		}
		if m[0].UnderlyingSymbol == symbol && strings.EqualFold(m[0].Comptroller, comptroller) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("dataset: no cream market for symbol=%q comptroller=%q", symbol, comptroller)
}
