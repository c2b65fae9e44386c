package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/market"
)

// LoadPriceCSV reads a two-column date,price table of daily token1 prices
// and returns it as a history with token0 pinned at $1. This is the shape
// price exports usually come in; a full input table should go through
// market.ReadCSV instead.
func LoadPriceCSV(path string) (market.History, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read price history: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	var h market.History
	line := 0
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: parse price history: %w", err)
		}
		line++

		// Tolerate a header row.
		if line == 1 {
			if _, err := strconv.ParseFloat(cells[1], 64); err != nil {
				continue
			}
		}

		date, err := parseDate(cells[0])
		if err != nil {
			return nil, fmt.Errorf("dataset: price history line %d: %w", line, err)
		}
		price, err := strconv.ParseFloat(cells[1], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: price history line %d: %w", line, err)
		}

		h = append(h, market.NewRow(date, 1.0, price))
	}

	return h, h.Validate()
}
