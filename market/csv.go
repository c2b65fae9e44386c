package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// csvHeader is the on-disk column order. Optional columns are written as
// empty cells when absent and read back as NaN.
var csvHeader = []string{
	"date",
	"token0_price",
	"token1_price",
	"reward_token_price",
	"apy_trading_fee",
	"apy_reward",
	"apy_borrow_token0",
	"apy_borrow_token1",
}

// WriteCSV writes the history in the simulator's input format.
func WriteCSV(w io.Writer, h History) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range h {
		rec := []string{
			row.Date.Format(dateLayout),
			f(row.Token0Price),
			f(row.Token1Price),
			f(row.RewardTokenPrice),
			f(row.APYTradingFee),
			f(row.APYReward),
			f(row.APYBorrowToken0),
			f(row.APYBorrowToken1),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a history written by WriteCSV (or any file with the same
// header). Missing optional columns and empty cells come back as NaN.
func ReadCSV(r io.Reader) (History, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("market: read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range csvHeader[:3] {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("market: csv missing %q column", required)
		}
	}

	var h History
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("market: read csv: %w", err)
		}
		for _, required := range csvHeader[:3] {
			if col[required] >= len(rec) {
				return nil, fmt.Errorf("market: csv line %d: missing %q cell", line, required)
			}
		}
		date, err := time.Parse(dateLayout, rec[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("market: csv line %d: %w", line, err)
		}
		row := NewRow(date, 0, 0)
		fields := map[string]*float64{
			"token0_price":       &row.Token0Price,
			"token1_price":       &row.Token1Price,
			"reward_token_price": &row.RewardTokenPrice,
			"apy_trading_fee":    &row.APYTradingFee,
			"apy_reward":         &row.APYReward,
			"apy_borrow_token0":  &row.APYBorrowToken0,
			"apy_borrow_token1":  &row.APYBorrowToken1,
		}
		for name, dst := range fields {
			idx, ok := col[name]
			if !ok || idx >= len(rec) || rec[idx] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("market: csv line %d, column %s: %w", line, name, err)
			}
			*dst = v
		}
		h = append(h, row)
	}
	return h, nil
}

func f(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
