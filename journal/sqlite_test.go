package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func sampleTrade(id string, closeT time.Time, pl float64) TradeRecord {
	return TradeRecord{
		TradeID:      id,
		Symbol:       "BTCUSDT",
		Side:         "long",
		EntryPrice:   50000,
		StopLoss:     48000,
		TP1:          52000,
		TP2:          55000,
		TP3:          60000,
		PositionSize: 0.1,
		RiskAmount:   200,
		RiskReward:   1,
		Outcome:      "tp1",
		RealizedPL:   pl,
		RMultiple:    pl / 200,
		CloseTime:    closeT,
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	for _, name := range []string{"trades", "equity", "plans", "events"} {
		assert.True(t, found[name], name)
	}
}

func TestSQLiteReopen(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.RecordTrade(sampleTrade("T1", time.Now(), 50)))
	require.NoError(t, j.Close())

	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	got, err := j.ListTrades(0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteRecordTrade(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	closeT := time.Date(2024, 1, 2, 4, 5, 6, 0, time.UTC)
	rec := sampleTrade("T1", closeT, 50)

	assert.NoError(t, j.RecordTrade(rec))
	assert.Error(t, j.RecordTrade(rec), "duplicate trade id")
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var (
		tradeID   string
		symbol    string
		outcome   string
		size      float64
		pl        float64
		closeTime time.Time
	)

	err = db.QueryRow(`
        SELECT trade_id, symbol, outcome, position_size, realized_pl, close_time
        FROM trades LIMIT 1`).Scan(&tradeID, &symbol, &outcome, &size, &pl, &closeTime)
	require.NoError(t, err)

	assert.Equal(t, rec.TradeID, tradeID)
	assert.Equal(t, rec.Symbol, symbol)
	assert.Equal(t, rec.Outcome, outcome)
	assert.InDelta(t, rec.PositionSize, size, 1e-9)
	assert.InDelta(t, rec.RealizedPL, pl, 1e-6)
	assert.True(t, closeTime.Equal(rec.CloseTime))
}

func TestSQLiteRecordEquity(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)

	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	rec := EquitySnapshot{
		Time:       ts,
		Balance:    100250,
		DailyPnL:   250,
		WeeklyPnL:  400,
		MonthlyPnL: 900,
		TotalPnL:   250,
	}

	assert.NoError(t, j.RecordEquity(rec))
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var (
		gotTime time.Time
		balance float64
		daily   float64
		weekly  float64
		monthly float64
		total   float64
	)

	err = db.QueryRow(`
        SELECT time, balance, daily_pnl, weekly_pnl, monthly_pnl, total_pnl
        FROM equity LIMIT 1`).Scan(&gotTime, &balance, &daily, &weekly, &monthly, &total)
	require.NoError(t, err)

	assert.True(t, gotTime.Equal(rec.Time))
	assert.InDelta(t, rec.Balance, balance, 1e-6)
	assert.InDelta(t, rec.DailyPnL, daily, 1e-6)
	assert.InDelta(t, rec.WeeklyPnL, weekly, 1e-6)
	assert.InDelta(t, rec.MonthlyPnL, monthly, 1e-6)
	assert.InDelta(t, rec.TotalPnL, total, 1e-6)
}
