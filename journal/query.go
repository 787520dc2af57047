package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

const tradeColumns = `trade_id, symbol, side, entry_price, stop_loss, tp1, tp2, tp3,
	position_size, risk_amount, risk_reward, outcome, realized_pl, r_multiple, close_time`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.Symbol,
		&rec.Side,
		&rec.EntryPrice,
		&rec.StopLoss,
		&rec.TP1,
		&rec.TP2,
		&rec.TP3,
		&rec.PositionSize,
		&rec.RiskAmount,
		&rec.RiskReward,
		&rec.Outcome,
		&rec.RealizedPL,
		&rec.RMultiple,
		&rec.CloseTime,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns up to limit trades, most recent first. limit <= 0 means all.
func (j *SQLite) ListTrades(limit int) ([]TradeRecord, error) {
	q := `SELECT ` + tradeColumns + ` FROM trades ORDER BY close_time DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

func collectTrades(rows *sql.Rows) ([]TradeRecord, error) {
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

// ListEquityBetween returns equity snapshots within [start, end), oldest first.
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, balance, daily_pnl, weekly_pnl, monthly_pnl, total_pnl
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Balance, &e.DailyPnL, &e.WeeklyPnL, &e.MonthlyPnL, &e.TotalPnL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary aggregates realized P/L over a set of trades.
type Summary struct {
	Trades       int
	Wins         int
	Losses       int
	GrossProfit  float64
	GrossLoss    float64 // positive
	NetPL        float64
	ProfitFactor float64 // 0 when there were no losses
	AvgR         float64
}

func Summarize(trades []TradeRecord) Summary {
	var s Summary
	var sumR float64
	for _, t := range trades {
		s.Trades++
		s.NetPL += t.RealizedPL
		sumR += t.RMultiple
		switch {
		case t.RealizedPL > 0:
			s.Wins++
			s.GrossProfit += t.RealizedPL
		case t.RealizedPL < 0:
			s.Losses++
			s.GrossLoss -= t.RealizedPL
		}
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	if s.Trades > 0 {
		s.AvgR = sumR / float64(s.Trades)
	}
	return s
}
