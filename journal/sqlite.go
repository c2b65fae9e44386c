package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ClaudeF4491/defi-leveraged-yield-farming-sim/sim"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordRun stores the run summary and its full epoch ledger in one
// transaction. Non-finite performance and risk metrics are stored as NULL;
// they come back as NaN from EpochsByRun.
func (j *SQLite) RecordRun(run RunRecord, records []sim.Record) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs
		(run_id, created_at, label, capital, leverage, reward_strategy, trading_strategy,
		 days, profit, roi, fees, trade_events)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt, run.Label, run.Capital, run.Leverage,
		run.RewardStrategy, run.TradingStrategy,
		run.Days, run.Profit, run.ROI, run.Fees, run.TradeEvents,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO epochs
		(run_id, seq, date,
		 token0_price, token1_price, reward_token_price,
		 apy_trading_fee, apy_reward, apy_borrow_token0, apy_borrow_token1,
		 token0_supply_open, token1_supply_open, position_pool_open,
		 token0_supply_close, token1_supply_close, token0_debt_close, token1_debt_close,
		 pool_value, cash_value, rewards_value, fees_value, position_value,
		 debt_value, pool_equity, equity_value,
		 profit_value, roi, annualized_apr, debt_ratio, effective_leverage, iloss,
		 position_hodl, trade_event, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range records {
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("journal: marshal epoch metadata: %w", err)
		}

		_, err = stmt.Exec(
			run.ID, i, rec.Date,
			rec.Token0Price, rec.Token1Price, rec.RewardTokenPrice,
			rec.APYTradingFee, rec.APYReward, rec.APYBorrowToken0, rec.APYBorrowToken1,
			rec.Token0SupplyOpen, rec.Token1SupplyOpen, rec.PositionPoolOpenDollars,
			rec.Token0SupplyClose, rec.Token1SupplyClose, rec.Token0DebtClose, rec.Token1DebtClose,
			rec.PoolValue, rec.CashValue, rec.RewardsValue, rec.FeesValue, rec.PositionValue,
			rec.DebtValue, rec.PoolEquity, rec.EquityValue,
			rec.ProfitValue, finiteOrNull(rec.ROI), finiteOrNull(rec.AnnualizedAPR),
			finiteOrNull(rec.DebtRatio), finiteOrNull(rec.EffectiveLeverage), finiteOrNull(rec.ILoss),
			rec.PositionHODLDollars, rec.TradeEvent, string(meta),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRuns returns every stored run summary, newest first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created_at, label, capital, leverage, reward_strategy, trading_strategy,
		       days, profit, roi, fees, trade_events
		FROM runs
		ORDER BY created_at DESC, run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.CreatedAt, &r.Label, &r.Capital, &r.Leverage,
			&r.RewardStrategy, &r.TradingStrategy,
			&r.Days, &r.Profit, &r.ROI, &r.Fees, &r.TradeEvents,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// EpochsByRun returns the stored epoch ledger for one run, in epoch order.
func (j *SQLite) EpochsByRun(runID string) ([]sim.Record, error) {
	rows, err := j.db.Query(`
		SELECT date,
		       token0_price, token1_price, reward_token_price,
		       apy_trading_fee, apy_reward, apy_borrow_token0, apy_borrow_token1,
		       token0_supply_open, token1_supply_open, position_pool_open,
		       token0_supply_close, token1_supply_close, token0_debt_close, token1_debt_close,
		       pool_value, cash_value, rewards_value, fees_value, position_value,
		       debt_value, pool_equity, equity_value,
		       profit_value, roi, annualized_apr, debt_ratio, effective_leverage, iloss,
		       position_hodl, trade_event, metadata
		FROM epochs
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.Record
	for rows.Next() {
		var (
			rec         sim.Record
			roi         sql.NullFloat64
			apr         sql.NullFloat64
			debtRatio   sql.NullFloat64
			effLeverage sql.NullFloat64
			iloss       sql.NullFloat64
			meta        string
		)
		if err := rows.Scan(
			&rec.Date,
			&rec.Token0Price, &rec.Token1Price, &rec.RewardTokenPrice,
			&rec.APYTradingFee, &rec.APYReward, &rec.APYBorrowToken0, &rec.APYBorrowToken1,
			&rec.Token0SupplyOpen, &rec.Token1SupplyOpen, &rec.PositionPoolOpenDollars,
			&rec.Token0SupplyClose, &rec.Token1SupplyClose, &rec.Token0DebtClose, &rec.Token1DebtClose,
			&rec.PoolValue, &rec.CashValue, &rec.RewardsValue, &rec.FeesValue, &rec.PositionValue,
			&rec.DebtValue, &rec.PoolEquity, &rec.EquityValue,
			&rec.ProfitValue, &roi, &apr, &debtRatio, &effLeverage, &iloss,
			&rec.PositionHODLDollars, &rec.TradeEvent, &meta,
		); err != nil {
			return nil, err
		}

		rec.ROI = nullToNaN(roi)
		rec.AnnualizedAPR = nullToNaN(apr)
		rec.DebtRatio = nullToNaN(debtRatio)
		rec.EffectiveLeverage = nullToNaN(effLeverage)
		rec.ILoss = nullToNaN(iloss)
		if err := json.Unmarshal([]byte(meta), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("journal: unmarshal epoch metadata: %w", err)
		}

		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("journal: run %q not found", runID)
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func finiteOrNull(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
