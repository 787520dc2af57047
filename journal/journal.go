// Package journal persists closed trades, account equity, planned trades and
// their lifecycle events. SQLite is the default store; CSV, Postgres, Org and
// XLSX cover export and shared setups.
package journal

import (
	"time"

	"github.com/rustyeddy/tradeplan/funded"
	"github.com/rustyeddy/tradeplan/risk"
)

// TradeRecord is a closed trade as stored.
type TradeRecord struct {
	TradeID      string
	Symbol       string
	Side         string
	EntryPrice   float64
	StopLoss     float64
	TP1          float64
	TP2          float64
	TP3          float64
	PositionSize float64
	RiskAmount   float64
	RiskReward   float64
	Outcome      string
	RealizedPL   float64
	RMultiple    float64
	CloseTime    time.Time
}

// EquitySnapshot is the account state right after a trade was booked.
type EquitySnapshot struct {
	Time       time.Time
	Balance    float64
	DailyPnL   float64
	WeeklyPnL  float64
	MonthlyPnL float64
	TotalPnL   float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Booker is implemented by journals that can store a trade and its equity
// snapshot atomically.
type Booker interface {
	BookTrade(TradeRecord, EquitySnapshot) error
}

// book writes t and e to j, atomically when j is a Booker.
func book(j Journal, t TradeRecord, e EquitySnapshot) error {
	if b, ok := j.(Booker); ok {
		return b.BookTrade(t, e)
	}
	if err := j.RecordTrade(t); err != nil {
		return err
	}
	return j.RecordEquity(e)
}

// FromLoggedTrade converts a booked trade to its stored form.
func FromLoggedTrade(lt funded.LoggedTrade) TradeRecord {
	return TradeRecord{
		TradeID:      lt.ID,
		Symbol:       lt.Symbol,
		Side:         string(lt.Side),
		EntryPrice:   lt.Entry,
		StopLoss:     lt.Stop,
		TP1:          lt.TP1,
		TP2:          lt.TP2,
		TP3:          lt.TP3,
		PositionSize: lt.PositionSize,
		RiskAmount:   lt.RiskAmount,
		RiskReward:   lt.RiskReward,
		Outcome:      string(lt.Outcome),
		RealizedPL:   lt.PnL,
		RMultiple:    lt.RMultiple,
		CloseTime:    lt.ClosedAt,
	}
}

// LoggedTrade is the inverse of FromLoggedTrade. An unknown side comes back
// unspecified.
func (r TradeRecord) LoggedTrade() funded.LoggedTrade {
	side, _ := risk.ParseSide(r.Side)
	return funded.LoggedTrade{
		ID:       r.TradeID,
		Symbol:   r.Symbol,
		Side:     side,
		Entry:    r.EntryPrice,
		Stop:     r.StopLoss,
		TP1:      r.TP1,
		TP2:      r.TP2,
		TP3:      r.TP3,
		Outcome:  funded.Outcome(r.Outcome),
		ClosedAt: r.CloseTime,
		Result: funded.Result{
			PositionSize: r.PositionSize,
			RiskAmount:   r.RiskAmount,
			PnL:          r.RealizedPL,
			RMultiple:    r.RMultiple,
			RiskReward:   r.RiskReward,
		},
	}
}

func LoggedTrades(recs []TradeRecord) []funded.LoggedTrade {
	out := make([]funded.LoggedTrade, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.LoggedTrade())
	}
	return out
}

func SnapshotAt(t time.Time, a funded.Account) EquitySnapshot {
	return EquitySnapshot{
		Time:       t,
		Balance:    a.Balance,
		DailyPnL:   a.DailyPnL,
		WeeklyPnL:  a.WeeklyPnL,
		MonthlyPnL: a.MonthlyPnL,
		TotalPnL:   a.TotalPnL,
	}
}

type recorder struct {
	j Journal
}

// Recorder lets a funded.Book write through to j: one trade row and one
// equity row per booked trade, in one transaction when j supports it.
func Recorder(j Journal) funded.Recorder {
	return recorder{j: j}
}

func (r recorder) RecordLoggedTrade(lt funded.LoggedTrade, a funded.Account) error {
	return book(r.j, FromLoggedTrade(lt), SnapshotAt(lt.ClosedAt, a))
}
