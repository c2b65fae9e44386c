package sim

import (
	"time"
)

// Record is one fully derived epoch of the simulation: the input row it was
// computed from plus every valuation, performance, and risk metric. Rows are
// appended in date order and never revisited.
type Record struct {
	Date time.Time

	// Input echo
	Token0Price      float64
	Token1Price      float64
	RewardTokenPrice float64
	APYTradingFee    float64
	APYReward        float64
	APYBorrowToken0  float64
	APYBorrowToken1  float64

	// Pool composition after impermanent-loss repricing, before earnings.
	Token0SupplyOpen        float64
	Token1SupplyOpen        float64
	PositionPoolOpenDollars float64

	// Earnings by source.
	APYTotal                  float64
	Token0Earnings            float64
	Token1Earnings            float64
	TradingFeeEarningsDollars float64
	RewardEarningsDollars     float64
	RewardTokenEarnings       float64
	CashFromRewards           float64

	// Closing composition carried into the next epoch.
	Token0SupplyClose float64
	Token1SupplyClose float64
	Token0DebtClose   float64
	Token1DebtClose   float64

	// Valuations.
	PoolValue     float64
	CashValue     float64
	RewardsValue  float64
	FeesValue     float64
	PositionValue float64
	DebtValue     float64
	PoolEquity    float64
	EquityValue   float64

	// Performance and risk.
	ProfitValue       float64
	ROI               float64
	AnnualizedAPR     float64
	DebtRatio         float64
	EffectiveLeverage float64
	ILoss             float64

	// Buy-and-hold benchmark of the initial token amounts.
	PositionHODLDollars float64

	// True when the trading strategy changed supply or debt this epoch.
	TradeEvent bool

	// Metadata is the trading strategy's own diagnostics for the epoch.
	// Its schema is strategy-specific; nothing in the engine reads it.
	Metadata map[string]float64
}

// Result bundles the full epoch ledger with end-of-run summary figures.
type Result struct {
	Records []Record

	Profit      float64
	ROI         float64
	Fees        float64
	TradeEvents int
}

// Final returns the last epoch record. Run never produces an empty ledger,
// so this is safe on any returned Result.
func (r *Result) Final() Record {
	return r.Records[len(r.Records)-1]
}
