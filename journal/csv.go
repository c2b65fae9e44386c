// journal/csv.go
package journal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/sim"
)

var csvHeader = []string{
	"date",
	"token0_price", "token1_price", "reward_token_price",
	"apy_trading_fee", "apy_reward", "apy_borrow_token0", "apy_borrow_token1",
	"token0_supply_open", "token1_supply_open", "position_pool_open",
	"token0_supply_close", "token1_supply_close", "token0_debt_close", "token1_debt_close",
	"pool_value", "cash_value", "rewards_value", "fees_value", "position_value",
	"debt_value", "pool_equity", "equity_value",
	"profit_value", "roi", "annualized_apr", "debt_ratio", "effective_leverage", "iloss",
	"position_hodl", "trade_event", "metadata",
}

// WriteCSV exports the full epoch ledger. Non-finite metrics are written
// as their IEEE names (NaN, +Inf) and strategy metadata as a JSON object.
func WriteCSV(w io.Writer, records []sim.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, rec := range records {
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("journal: marshal epoch metadata: %w", err)
		}

		row := []string{
			rec.Date.Format(time.RFC3339),
			f(rec.Token0Price), f(rec.Token1Price), f(rec.RewardTokenPrice),
			f(rec.APYTradingFee), f(rec.APYReward), f(rec.APYBorrowToken0), f(rec.APYBorrowToken1),
			f(rec.Token0SupplyOpen), f(rec.Token1SupplyOpen), f(rec.PositionPoolOpenDollars),
			f(rec.Token0SupplyClose), f(rec.Token1SupplyClose), f(rec.Token0DebtClose), f(rec.Token1DebtClose),
			f(rec.PoolValue), f(rec.CashValue), f(rec.RewardsValue), f(rec.FeesValue), f(rec.PositionValue),
			f(rec.DebtValue), f(rec.PoolEquity), f(rec.EquityValue),
			f(rec.ProfitValue), f(rec.ROI), f(rec.AnnualizedAPR), f(rec.DebtRatio), f(rec.EffectiveLeverage), f(rec.ILoss),
			f(rec.PositionHODLDollars), strconv.FormatBool(rec.TradeEvent), string(meta),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
