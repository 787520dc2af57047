package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the local journal. Times are stored in UTC so range queries
// compare like with like.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	return insertTrade(j.db, t)
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	return insertEquity(j.db, e)
}

// BookTrade stores a closed trade and the equity right after it in one
// transaction. Either both rows land or neither does.
func (j *SQLite) BookTrade(t TradeRecord, e EquitySnapshot) (err error) {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertTrade(tx, t); err != nil {
		return err
	}
	if err = insertEquity(tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTrade(x execer, t TradeRecord) error {
	_, err := x.Exec(`
		INSERT INTO trades
		(trade_id, symbol, side, entry_price, stop_loss, tp1, tp2, tp3,
		 position_size, risk_amount, risk_reward, outcome, realized_pl, r_multiple, close_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Side, t.EntryPrice, t.StopLoss, t.TP1, t.TP2, t.TP3,
		t.PositionSize, t.RiskAmount, t.RiskReward, t.Outcome, t.RealizedPL, t.RMultiple,
		t.CloseTime.UTC(),
	)
	return err
}

func insertEquity(x execer, e EquitySnapshot) error {
	_, err := x.Exec(`
		INSERT INTO equity
		(time, balance, daily_pnl, weekly_pnl, monthly_pnl, total_pnl)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Time.UTC(), e.Balance, e.DailyPnL, e.WeeklyPnL, e.MonthlyPnL, e.TotalPnL,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
