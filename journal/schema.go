// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	label TEXT NOT NULL,
	capital REAL NOT NULL,
	leverage REAL NOT NULL,
	reward_strategy TEXT NOT NULL,
	trading_strategy TEXT NOT NULL,
	days INTEGER NOT NULL,
	profit REAL NOT NULL,
	roi REAL NOT NULL,
	fees REAL NOT NULL,
	trade_events INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS epochs (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	seq INTEGER NOT NULL,
	date DATETIME NOT NULL,
	token0_price REAL NOT NULL,
	token1_price REAL NOT NULL,
	reward_token_price REAL NOT NULL,
	apy_trading_fee REAL NOT NULL,
	apy_reward REAL NOT NULL,
	apy_borrow_token0 REAL NOT NULL,
	apy_borrow_token1 REAL NOT NULL,
	token0_supply_open REAL NOT NULL,
	token1_supply_open REAL NOT NULL,
	position_pool_open REAL NOT NULL,
	token0_supply_close REAL NOT NULL,
	token1_supply_close REAL NOT NULL,
	token0_debt_close REAL NOT NULL,
	token1_debt_close REAL NOT NULL,
	pool_value REAL NOT NULL,
	cash_value REAL NOT NULL,
	rewards_value REAL NOT NULL,
	fees_value REAL NOT NULL,
	position_value REAL NOT NULL,
	debt_value REAL NOT NULL,
	pool_equity REAL NOT NULL,
	equity_value REAL NOT NULL,
	profit_value REAL NOT NULL,
	roi REAL,
	annualized_apr REAL,
	debt_ratio REAL,
	effective_leverage REAL,
	iloss REAL,
	position_hodl REAL NOT NULL,
	trade_event INTEGER NOT NULL,
	metadata TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_epochs_date ON epochs(date);
`
