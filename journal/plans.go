package journal

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rustyeddy/tradeplan/risk"
	"github.com/rustyeddy/tradeplan/trade"
)

const planColumns = `id, symbol, side, entry_price, stop_loss, risk_percent, account_size,
	tp1, tp2, tp3, position_size, risk_amount, notes, created_at,
	is_active, tp1_hit, tp2_hit, tp3_hit, stopped_out, current_sl, trailing_enabled, trailing_percent`

// SavePlan stores a newly planned trade.
func (j *SQLite) SavePlan(t trade.Trade) error {
	_, err := j.db.Exec(`
		INSERT INTO plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, string(t.Setup.Setup.Side), t.EntryPrice, t.StopLoss, t.RiskPercent, t.AccountSize,
		t.TP1, t.TP2, t.TP3, t.PositionSize, t.RiskAmount, t.Notes, t.CreatedAt.UTC(),
		t.Status.IsActive, t.Status.TP1Hit, t.Status.TP2Hit, t.Status.TP3Hit, t.Status.StoppedOut,
		t.Status.CurrentSL, t.Status.TrailingStopEnabled, t.Status.TrailingStopPercent,
	)
	return err
}

// ApplyTransition stores the new status of t together with the events that
// produced it. Either both land or neither does.
func (j *SQLite) ApplyTransition(t trade.Trade, events []trade.Event) (err error) {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.Exec(`
		UPDATE plans SET
			is_active = ?, tp1_hit = ?, tp2_hit = ?, tp3_hit = ?, stopped_out = ?,
			current_sl = ?, trailing_enabled = ?, trailing_percent = ?
		WHERE id = ?`,
		t.Status.IsActive, t.Status.TP1Hit, t.Status.TP2Hit, t.Status.TP3Hit, t.Status.StoppedOut,
		t.Status.CurrentSL, t.Status.TrailingStopEnabled, t.Status.TrailingStopPercent,
		t.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("plan %q: %w", t.ID, ErrNotFound)
	}

	for _, e := range events {
		if err = insertEvent(tx, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanPlan(s scanner) (trade.Trade, error) {
	var (
		t    trade.Trade
		side string
	)
	err := s.Scan(
		&t.ID, &t.Symbol, &side, &t.EntryPrice, &t.StopLoss, &t.RiskPercent, &t.AccountSize,
		&t.TP1, &t.TP2, &t.TP3, &t.PositionSize, &t.RiskAmount, &t.Notes, &t.CreatedAt,
		&t.Status.IsActive, &t.Status.TP1Hit, &t.Status.TP2Hit, &t.Status.TP3Hit, &t.Status.StoppedOut,
		&t.Status.CurrentSL, &t.Status.TrailingStopEnabled, &t.Status.TrailingStopPercent,
	)
	t.Setup.Setup.Side = risk.Side(side)
	return t, err
}

func (j *SQLite) GetPlan(id string) (trade.Trade, error) {
	row := j.db.QueryRow(`SELECT `+planColumns+` FROM plans WHERE id = ?`, id)
	t, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return trade.Trade{}, fmt.Errorf("plan %q: %w", id, ErrNotFound)
		}
		return trade.Trade{}, err
	}
	return t, nil
}

// ListPlans returns planned trades, newest first.
func (j *SQLite) ListPlans(activeOnly bool) ([]trade.Trade, error) {
	q := `SELECT ` + planColumns + ` FROM plans`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := j.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trade.Trade
	for rows.Next() {
		t, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertEvent(x execer, e trade.Event) error {
	_, err := x.Exec(`
		INSERT INTO events (trade_id, time, type, level, price, old_sl, new_sl)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.TradeID, e.Time.UTC(), string(e.Type), int(e.Level), e.Price, e.OldSL, e.NewSL,
	)
	return err
}

func (j *SQLite) RecordEvent(e trade.Event) error {
	return insertEvent(j.db, e)
}

// ListEvents returns the lifecycle of one trade in the order it happened.
func (j *SQLite) ListEvents(tradeID string) ([]trade.Event, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, time, type, level, price, old_sl, new_sl
		FROM events
		WHERE trade_id = ?
		ORDER BY time ASC, rowid ASC`, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trade.Event
	for rows.Next() {
		var (
			e     trade.Event
			typ   string
			level int
		)
		if err := rows.Scan(&e.TradeID, &e.Time, &typ, &level, &e.Price, &e.OldSL, &e.NewSL); err != nil {
			return nil, err
		}
		e.Type = trade.EventType(typ)
		e.Level = trade.Level(level)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePlanStatus stores the status of t without any events.
func (j *SQLite) UpdatePlanStatus(t trade.Trade) error {
	return j.ApplyTransition(t, nil)
}
