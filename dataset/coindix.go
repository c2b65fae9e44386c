// Package dataset extracts historical pool, reward, and borrow APYs from
// locally saved snapshot files and merges them with a price history into a
// simulator input table. Nothing here touches the network; fetching the
// snapshots is somebody else's job.
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

// APYPoint is one day of pool APYs from a CoinDix vault history: the base
// (trading-fee) APY and the reward APY, both as fractions. Reward is NaN
// when the snapshot carries no reward series for that day.
type APYPoint struct {
	Date   time.Time
	APY    float64
	Reward float64
}

type coindixVault struct {
	Name     string          `json:"name"`
	Protocol string          `json:"protocol"`
	Chain    string          `json:"chain"`
	Series   []coindixSample `json:"series"`
}

type coindixSample struct {
	Date   string   `json:"date"`
	APY    *float64 `json:"apy"`
	Reward *float64 `json:"reward"`
}

// LoadCoindixAPY reads a CoinDix vault-history snapshot and returns the
// daily APY series for one pair on one protocol and chain. Matching on
// protocol and chain is case-insensitive; the pair name must match exactly.
func LoadCoindixAPY(path, chain, protocol, pair string) ([]APYPoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read coindix history: %w", err)
	}

	var vaults []coindixVault
	if err := json.Unmarshal(raw, &vaults); err != nil {
		return nil, fmt.Errorf("dataset: parse coindix history: %w", err)
	}

	for _, v := range vaults {
		if v.Name != pair ||
			!strings.EqualFold(v.Protocol, protocol) ||
			!strings.EqualFold(v.Chain, chain) {
			continue
		}

		points := make([]APYPoint, 0, len(v.Series))
		for _, s := range v.Series {
			date, err := parseDate(s.Date)
			if err != nil {
				return nil, fmt.Errorf("dataset: coindix series for %s: %w", pair, err)
			}
			points = append(points, APYPoint{
				Date:   date,
				APY:    deref(s.APY),
				Reward: deref(s.Reward),
			})
		}
		return points, nil
	}

	return nil, fmt.Errorf("dataset: no coindix vault matches pair=%q protocol=%q chain=%q", pair, protocol, chain)
}

func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// parseDate accepts the timestamp formats the snapshot files carry.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// dayKey truncates to calendar day for joining series sampled at different
// times of day.
func dayKey(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
