package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	tp1 REAL NOT NULL,
	tp2 REAL NOT NULL,
	tp3 REAL NOT NULL,
	position_size REAL NOT NULL,
	risk_amount REAL NOT NULL,
	risk_reward REAL NOT NULL,
	outcome TEXT NOT NULL,
	realized_pl REAL NOT NULL,
	r_multiple REAL NOT NULL,
	close_time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	daily_pnl REAL NOT NULL,
	weekly_pnl REAL NOT NULL,
	monthly_pnl REAL NOT NULL,
	total_pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);

CREATE TABLE IF NOT EXISTS plans (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_price REAL NOT NULL,
	stop_loss REAL NOT NULL,
	risk_percent REAL NOT NULL,
	account_size REAL NOT NULL,
	tp1 REAL NOT NULL,
	tp2 REAL NOT NULL,
	tp3 REAL NOT NULL,
	position_size REAL NOT NULL,
	risk_amount REAL NOT NULL,
	notes TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	is_active INTEGER NOT NULL,
	tp1_hit INTEGER NOT NULL,
	tp2_hit INTEGER NOT NULL,
	tp3_hit INTEGER NOT NULL,
	stopped_out INTEGER NOT NULL,
	current_sl REAL NOT NULL,
	trailing_enabled INTEGER NOT NULL,
	trailing_percent REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	trade_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	type TEXT NOT NULL,
	level INTEGER NOT NULL,
	price REAL NOT NULL,
	old_sl REAL NOT NULL,
	new_sl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_trade ON events(trade_id, time);
`

// pgSchema is Schema for Postgres: only closed trades and equity are shared.
const pgSchema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	stop_loss DOUBLE PRECISION NOT NULL,
	tp1 DOUBLE PRECISION NOT NULL,
	tp2 DOUBLE PRECISION NOT NULL,
	tp3 DOUBLE PRECISION NOT NULL,
	position_size DOUBLE PRECISION NOT NULL,
	risk_amount DOUBLE PRECISION NOT NULL,
	risk_reward DOUBLE PRECISION NOT NULL,
	outcome TEXT NOT NULL,
	realized_pl DOUBLE PRECISION NOT NULL,
	r_multiple DOUBLE PRECISION NOT NULL,
	close_time TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);

CREATE TABLE IF NOT EXISTS equity (
	time TIMESTAMPTZ NOT NULL,
	balance DOUBLE PRECISION NOT NULL,
	daily_pnl DOUBLE PRECISION NOT NULL,
	weekly_pnl DOUBLE PRECISION NOT NULL,
	monthly_pnl DOUBLE PRECISION NOT NULL,
	total_pnl DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
