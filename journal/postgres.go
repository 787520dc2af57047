package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a shared journal for closed trades and equity. Planned trades
// and their events stay in the local SQLite store.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// pgExecer is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (j *Postgres) RecordTrade(t TradeRecord) error {
	return j.RecordTradeContext(context.Background(), t)
}

func (j *Postgres) RecordTradeContext(ctx context.Context, t TradeRecord) error {
	return pgInsertTrade(ctx, j.pool, t)
}

func (j *Postgres) RecordEquity(e EquitySnapshot) error {
	return j.RecordEquityContext(context.Background(), e)
}

func (j *Postgres) RecordEquityContext(ctx context.Context, e EquitySnapshot) error {
	return pgInsertEquity(ctx, j.pool, e)
}

func (j *Postgres) BookTrade(t TradeRecord, e EquitySnapshot) error {
	return j.BookTradeContext(context.Background(), t, e)
}

// BookTradeContext stores the trade and its equity snapshot in one transaction.
func (j *Postgres) BookTradeContext(ctx context.Context, t TradeRecord, e EquitySnapshot) error {
	tx, err := j.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := pgInsertTrade(ctx, tx, t); err != nil {
		return err
	}
	if err := pgInsertEquity(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func pgInsertTrade(ctx context.Context, x pgExecer, t TradeRecord) error {
	_, err := x.Exec(ctx, `
		INSERT INTO trades
		(trade_id, symbol, side, entry_price, stop_loss, tp1, tp2, tp3,
		 position_size, risk_amount, risk_reward, outcome, realized_pl, r_multiple, close_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.TradeID, t.Symbol, t.Side, t.EntryPrice, t.StopLoss, t.TP1, t.TP2, t.TP3,
		t.PositionSize, t.RiskAmount, t.RiskReward, t.Outcome, t.RealizedPL, t.RMultiple,
		t.CloseTime.UTC(),
	)
	return err
}

func pgInsertEquity(ctx context.Context, x pgExecer, e EquitySnapshot) error {
	_, err := x.Exec(ctx, `
		INSERT INTO equity (time, balance, daily_pnl, weekly_pnl, monthly_pnl, total_pnl)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Time.UTC(), e.Balance, e.DailyPnL, e.WeeklyPnL, e.MonthlyPnL, e.TotalPnL,
	)
	return err
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *Postgres) ListTradesClosedBetween(ctx context.Context, start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT `+tradeColumns+`
		FROM trades
		WHERE close_time >= $1 AND close_time < $2
		ORDER BY close_time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *Postgres) Close() error {
	j.pool.Close()
	return nil
}
