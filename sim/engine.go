// Package sim drives the day-by-day recurrence of a leveraged LP position:
// constant-product repricing, fee and reward accrual, debt compounding,
// strategy delegation, and the derived valuation ledger.
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/market"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/pool"
	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/strategies"
)

// Accrual uses the mean solar year; annualization keeps the conventional
// 365-day exponent.
const (
	accrualDaysPerYear = 365.25
	aprDaysPerYear     = 365.0
)

var (
	ErrCapital       = errors.New("sim: initial capital must be positive")
	ErrFeeSwap       = errors.New("sim: fee_swap must be in [0, 1)")
	ErrFeeGas        = errors.New("sim: fee_gas must be >= 0")
	ErrStrategy      = errors.New("sim: both a reward and a trading strategy are required")
	ErrMissingColumn = errors.New("sim: required input column missing")
)

// Params are the run-level knobs. The pointer fields are scalar overrides
// for input columns that are constant across the run; a nil override means
// the history itself must carry the column.
type Params struct {
	InitialCapital float64
	Leverage       float64
	FeeSwap        float64
	FeeGas         float64

	// OpenOnStart opens the position at epoch 0. When false the capital
	// sits as cash and opening is left to the trading strategy.
	OpenOnStart bool

	RewardTokenPrice *float64
	APYTradingFee    *float64
	APYReward        *float64
	APYBorrowToken0  *float64
	APYBorrowToken1  *float64
}

// Validate fails fast on configuration errors, before any epoch runs.
func (p Params) Validate() error {
	if p.InitialCapital <= 0 {
		return fmt.Errorf("%w: got %g", ErrCapital, p.InitialCapital)
	}
	if !pool.ValidLeverage(p.Leverage) {
		return fmt.Errorf("%w: got %g", pool.ErrLeverage, p.Leverage)
	}
	if p.FeeSwap < 0 || p.FeeSwap >= 1 {
		return fmt.Errorf("%w: got %g", ErrFeeSwap, p.FeeSwap)
	}
	if p.FeeGas < 0 {
		return fmt.Errorf("%w: got %g", ErrFeeGas, p.FeeGas)
	}
	return nil
}

// Engine runs one simulation. Engines are single-writer and not safe for
// concurrent use; run independent configurations on independent engines.
type Engine struct {
	params  Params
	rewards strategies.RewardStrategy
	trading strategies.TradingStrategy
}

// New builds an engine, failing fast on invalid parameters.
func New(params Params, rewards strategies.RewardStrategy, trading strategies.TradingStrategy) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rewards == nil || trading == nil {
		return nil, ErrStrategy
	}
	return &Engine{params: params, rewards: rewards, trading: trading}, nil
}

// Run executes the simulation over the history and returns the epoch ledger.
// The input history is never mutated.
func (e *Engine) Run(hist market.History) (*Result, error) {
	if err := hist.Validate(); err != nil {
		return nil, err
	}

	eff := e.applyOverrides(hist)
	if err := checkColumns(eff); err != nil {
		return nil, err
	}

	p := e.params
	first := eff[0]
	ratioInitial := first.Ratio()

	var supplyInitial, debtInitial pool.Pair
	cash := p.InitialCapital
	var feesAccum float64

	if p.OpenOnStart {
		supply, debt, feesOpen, err := pool.Open(
			p.InitialCapital, p.Leverage,
			pool.Pair{first.Token0Price, first.Token1Price},
			p.FeeSwap, p.FeeGas,
		)
		if err != nil {
			return nil, err
		}
		supplyInitial, debtInitial = supply, debt
		cash = 0
		feesAccum = feesOpen
	}

	var rewardsAccum float64
	lastSupply := supplyInitial
	lastDebt := debtInitial
	firstDate := first.Date

	records := make([]Record, 0, len(eff))
	tradeEvents := 0

	for i, row := range eff {
		daysElapsed := int(row.Date.Sub(firstDate).Hours()/24) + 1
		prices := pool.Pair{row.Token0Price, row.Token1Price}
		ratio := row.Ratio()

		// Impermanent-loss shift: the pool rebalances itself to the new
		// price ratio, holding last epoch's constant product.
		k := lastSupply[0] * lastSupply[1]
		supplyOpen := pool.Reprice(k, ratio)
		supply := supplyOpen
		debt := lastDebt

		poolOpenValue := supplyOpen.Value(prices)

		// Trading fees accrue as extra pool tokens.
		earnings := pool.Pair{
			supplyOpen[0] * row.APYTradingFee / accrualDaysPerYear,
			supplyOpen[1] * row.APYTradingFee / accrualDaysPerYear,
		}
		supply = supply.Add(earnings)

		// Farming rewards accrue in dollars on the pool's opening value,
		// paid out in reward tokens.
		rewardEarningsDollars := poolOpenValue * row.APYReward / accrualDaysPerYear
		var rewardTokenEarnings float64
		if rewardEarningsDollars != 0 {
			rewardTokenEarnings = rewardEarningsDollars / row.RewardTokenPrice
		}

		// Debt compounds continuously on both sides, whether or not
		// anything else happened this epoch.
		debt[0] *= math.Exp(row.APYBorrowToken0 / accrualDaysPerYear)
		debt[1] *= math.Exp(row.APYBorrowToken1 / accrualDaysPerYear)

		rewardRemaining, poolFromRewards, cashRewards, feesRewards := e.rewards.Execute(
			rewardTokenEarnings, row.RewardTokenPrice,
			pool.Pair{}, prices,
			p.FeeSwap, p.FeeGas,
		)
		supply = supply.Add(poolFromRewards)

		cashIn := cash + cashRewards
		supplyIn, debtIn := supply, debt
		supplyOut, debtOut, cashOut, feesTrade, meta := e.trading.Execute(supply, debt, eff[:i+1], cashIn)

		tradeEvent := supplyOut != supplyIn || debtOut != debtIn
		if tradeEvent {
			tradeEvents++
		}

		supply, debt = supplyOut, debtOut
		cash = cashOut
		rewardsAccum += rewardRemaining
		feesAccum += feesRewards + feesTrade

		// Close out the epoch and derive the reported metrics.
		poolValue := supply.Value(prices)
		debtValue := debt.Value(prices)
		rewardsValue := rewardsAccum * row.RewardTokenPrice
		positionValue := poolValue + rewardsValue + cash - feesAccum
		poolEquity := poolValue - debtValue
		equityValue := positionValue - debtValue
		profitValue := equityValue - p.InitialCapital
		roi := profitValue / p.InitialCapital

		relRatio := ratioInitial / ratio
		iloss := 2*math.Sqrt(relRatio)/(1+relRatio) - 1

		records = append(records, Record{
			Date:             row.Date,
			Token0Price:      row.Token0Price,
			Token1Price:      row.Token1Price,
			RewardTokenPrice: row.RewardTokenPrice,
			APYTradingFee:    row.APYTradingFee,
			APYReward:        row.APYReward,
			APYBorrowToken0:  row.APYBorrowToken0,
			APYBorrowToken1:  row.APYBorrowToken1,

			Token0SupplyOpen:        supplyOpen[0],
			Token1SupplyOpen:        supplyOpen[1],
			PositionPoolOpenDollars: poolOpenValue,

			APYTotal:                  row.APYTradingFee + row.APYReward,
			Token0Earnings:            earnings[0],
			Token1Earnings:            earnings[1],
			TradingFeeEarningsDollars: earnings.Value(prices),
			RewardEarningsDollars:     rewardEarningsDollars,
			RewardTokenEarnings:       rewardTokenEarnings,
			CashFromRewards:           cashRewards,

			Token0SupplyClose: supply[0],
			Token1SupplyClose: supply[1],
			Token0DebtClose:   debt[0],
			Token1DebtClose:   debt[1],

			PoolValue:     poolValue,
			CashValue:     cash,
			RewardsValue:  rewardsValue,
			FeesValue:     feesAccum,
			PositionValue: positionValue,
			DebtValue:     debtValue,
			PoolEquity:    poolEquity,
			EquityValue:   equityValue,

			ProfitValue:   profitValue,
			ROI:           roi,
			AnnualizedAPR: math.Pow(1+roi, aprDaysPerYear/float64(daysElapsed)) - 1,
			// Zero pool equity yields IEEE sentinels here, never a panic.
			DebtRatio:         debtValue / (debtValue + poolEquity),
			EffectiveLeverage: poolValue / poolEquity,
			ILoss:             iloss,

			PositionHODLDollars: supplyInitial.Value(prices) / p.Leverage,

			TradeEvent: tradeEvent,
			Metadata:   meta,
		})

		lastSupply, lastDebt = supply, debt
	}

	final := records[len(records)-1]
	return &Result{
		Records:     records,
		Profit:      final.ProfitValue,
		ROI:         final.ROI,
		Fees:        final.FeesValue,
		TradeEvents: tradeEvents,
	}, nil
}

// applyOverrides clones the history and fills optional columns from the
// run-level scalar overrides. Columns the history already carries win over
// nothing; overrides fill only where the table is silent (NaN).
func (e *Engine) applyOverrides(hist market.History) market.History {
	eff := hist.Clone()
	for i := range eff {
		fill(&eff[i].RewardTokenPrice, e.params.RewardTokenPrice)
		fill(&eff[i].APYTradingFee, e.params.APYTradingFee)
		fill(&eff[i].APYReward, e.params.APYReward)
		fill(&eff[i].APYBorrowToken0, e.params.APYBorrowToken0)
		fill(&eff[i].APYBorrowToken1, e.params.APYBorrowToken1)
	}
	return eff
}

func fill(dst *float64, override *float64) {
	if math.IsNaN(*dst) && override != nil {
		*dst = *override
	}
}

// checkColumns verifies, before the loop starts, that every cell the loop
// will read is present. The reward token price is only required when reward
// accrual is actually in play; otherwise it defaults to zero so the
// valuation fields stay finite.
func checkColumns(eff market.History) error {
	rewardActive := false
	for i := range eff {
		row := &eff[i]
		switch {
		case math.IsNaN(row.APYTradingFee):
			return fmt.Errorf("%w: apy_trading_fee at %s", ErrMissingColumn, row.Date.Format("2006-01-02"))
		case math.IsNaN(row.APYReward):
			return fmt.Errorf("%w: apy_reward at %s", ErrMissingColumn, row.Date.Format("2006-01-02"))
		case math.IsNaN(row.APYBorrowToken0):
			return fmt.Errorf("%w: apy_borrow_token0 at %s", ErrMissingColumn, row.Date.Format("2006-01-02"))
		case math.IsNaN(row.APYBorrowToken1):
			return fmt.Errorf("%w: apy_borrow_token1 at %s", ErrMissingColumn, row.Date.Format("2006-01-02"))
		}
		if row.APYReward > 0 {
			rewardActive = true
		}
	}
	for i := range eff {
		row := &eff[i]
		if !math.IsNaN(row.RewardTokenPrice) {
			continue
		}
		if rewardActive {
			return fmt.Errorf("%w: reward_token_price at %s (reward accrual is enabled)", ErrMissingColumn, row.Date.Format("2006-01-02"))
		}
		row.RewardTokenPrice = 0
	}
	return nil
}
