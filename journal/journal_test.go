package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradeplan/funded"
	"github.com/rustyeddy/tradeplan/risk"
)

func TestLoggedTradeConversion(t *testing.T) {
	t.Parallel()

	lt := funded.LoggedTrade{
		ID:       "L1",
		Symbol:   "BTCUSDT",
		Side:     risk.Short,
		Entry:    100,
		Stop:     102,
		TP1:      98,
		TP2:      96,
		Outcome:  funded.OutcomeTP2,
		ClosedAt: time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC),
		Result: funded.Result{
			PositionSize: 250,
			RiskAmount:   500,
			PnL:          550,
			RMultiple:    1.1,
			RiskReward:   1,
		},
	}

	rec := FromLoggedTrade(lt)
	assert.Equal(t, "short", rec.Side)
	assert.Equal(t, "tp2", rec.Outcome)
	assert.Equal(t, 550.0, rec.RealizedPL)
	assert.Equal(t, lt, rec.LoggedTrade())

	lt.Side = risk.SideUnspecified
	assert.Equal(t, risk.SideUnspecified, FromLoggedTrade(lt).LoggedTrade().Side)
}

func TestRecorderWritesThroughBook(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	at := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	p := risk.DefaultPolicy()
	b := funded.NewBook(p, funded.NewAccount(p, 0.5),
		funded.WithRecorder(Recorder(j)),
		funded.WithClock(func() time.Time { return at }),
	)

	lt, err := b.Log(funded.Input{
		Symbol: "btcusdt", Side: risk.Short,
		Entry: 100, Stop: 102, TP1: 98, TP2: 96, TP3: 94,
		Outcome: funded.OutcomeTP3,
	})
	require.NoError(t, err)

	got, err := j.GetTrade(lt.ID)
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.InDelta(t, 850.0, got.RealizedPL, 1e-9)

	eq, err := j.ListEquityBetween(at, at.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, eq, 1)
	assert.InDelta(t, 100850.0, eq[0].Balance, 1e-9)

	// history rebuilt from the journal matches the live book
	recs, err := j.ListTrades(0)
	require.NoError(t, err)
	rebuilt := funded.AccountFromHistory(p, 0.5, LoggedTrades(recs), at)
	assert.Equal(t, b.Account(), rebuilt)
}

type failingJournal struct {
	tradeErr  error
	equityErr error
	trades    int
	closed    bool
}

func (f *failingJournal) RecordTrade(TradeRecord) error {
	if f.tradeErr != nil {
		return f.tradeErr
	}
	f.trades++
	return nil
}

func (f *failingJournal) RecordEquity(EquitySnapshot) error { return f.equityErr }
func (f *failingJournal) Close() error                     { f.closed = true; return nil }

func TestTee(t *testing.T) {
	t.Parallel()

	a, _ := newTestSQLite(t)
	b, _ := newTestSQLite(t)

	j := Tee(a, b)
	require.NoError(t, j.RecordTrade(sampleTrade("T", time.Now(), 1)))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: time.Now()}))

	for _, s := range []*SQLite{a, b} {
		got, err := s.ListTrades(0)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	require.NoError(t, j.Close())

	// the local journal is written last, so a remote failure leaves it untouched
	c, _ := newTestSQLite(t)
	bad := &failingJournal{tradeErr: errors.New("boom")}
	j = Tee(c, bad)
	assert.Error(t, j.RecordTrade(sampleTrade("T", time.Now(), 1)))
	got, err := c.ListTrades(0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, j.Close())
	assert.True(t, bad.closed)
}

func failingLog(t *testing.T, j Journal) error {
	t.Helper()

	p := risk.DefaultPolicy()
	b := funded.NewBook(p, funded.NewAccount(p, 0.5), funded.WithRecorder(Recorder(j)))
	_, err := b.Log(funded.Input{
		Symbol: "btcusdt", Side: risk.Short,
		Entry: 100, Stop: 102, TP1: 98, TP2: 96, TP3: 94,
		Outcome: funded.OutcomeTP3,
	})
	require.Error(t, err)
	assert.Empty(t, b.Trades(0))
	return err
}

func TestRecorder_FailedEquityWriteLeavesNoTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.db.Exec(`DROP TABLE equity`)
	require.NoError(t, err)

	err = failingLog(t, j)
	assert.Contains(t, err.Error(), "equity")

	recs, err := j.ListTrades(0)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// the next run rebuilds an untouched account
	p := risk.DefaultPolicy()
	acct := funded.AccountFromHistory(p, 0.5, LoggedTrades(recs), time.Now())
	assert.Equal(t, p.AccountStartBalance, acct.Balance)
	assert.Equal(t, p.TradesPerDay, acct.TradesLeft)
}

func TestRecorder_FailedRemoteLeavesLocalEmpty(t *testing.T) {
	t.Parallel()

	local, _ := newTestSQLite(t)
	remote := &failingJournal{equityErr: errors.New("connection reset")}
	j := Tee(local, remote)
	defer j.Close()

	err := failingLog(t, j)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 1, remote.trades)

	recs, err := local.ListTrades(0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteBookTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	at := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.BookTrade(sampleTrade("B1", at, 5), EquitySnapshot{Time: at, Balance: 100005}))

	// duplicate ID fails on the trade insert; no second equity row
	assert.Error(t, j.BookTrade(sampleTrade("B1", at, 5), EquitySnapshot{Time: at, Balance: 100010}))

	eq, err := j.ListEquityBetween(at, at.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, eq, 1)
	assert.Equal(t, 100005.0, eq[0].Balance)
}
