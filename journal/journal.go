// journal/journal.go
package journal

import (
	"time"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/sim"
)

// RunRecord summarizes one completed simulation run. The per-epoch ledger
// is stored separately, keyed by the run ID.
type RunRecord struct {
	ID        string
	CreatedAt time.Time
	Label     string

	Capital         float64
	Leverage        float64
	RewardStrategy  string
	TradingStrategy string

	Days        int
	Profit      float64
	ROI         float64
	Fees        float64
	TradeEvents int
}

// Journal persists simulation runs and their epoch ledgers.
type Journal interface {
	RecordRun(run RunRecord, records []sim.Record) error
	Close() error
}
