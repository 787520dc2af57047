package trade

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHit_TP1MovesStopToBreakEven(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, longSetup())

	next, events, err := tr.Hit(TP1, t0)
	require.NoError(t, err)

	assert.True(t, next.Status.TP1Hit)
	assert.Equal(t, 50000.0, next.Status.CurrentSL)
	assert.Equal(t, StateTP1Hit, next.Status.State())
	assert.Equal(t, 33, next.Status.Progress())

	require.Len(t, events, 2)
	assert.Equal(t, EventTPHit, events[0].Type)
	assert.Equal(t, TP1, events[0].Level)
	assert.Equal(t, 52000.0, events[0].Price)
	assert.Equal(t, EventMovedToBreakeven, events[1].Type)
	assert.Equal(t, 48000.0, events[1].OldSL)
	assert.Equal(t, 50000.0, events[1].NewSL)

	// receiver untouched
	assert.False(t, tr.Status.TP1Hit)
	assert.Equal(t, 48000.0, tr.Status.CurrentSL)
}

func TestHit_TP1Idempotent(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, longSetup())
	once, _, err := tr.Hit(TP1, t0)
	require.NoError(t, err)

	twice, events, err := once.Hit(TP1, t0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, once, twice)
	assert.Equal(t, 50000.0, twice.Status.CurrentSL)
}

func TestHit_FullLifecycle(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, shortSetup())

	tr, _, err := tr.Hit(TP1, t0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, tr.Status.CurrentSL)

	tr, events, err := tr.Hit(TP2, t0)
	require.NoError(t, err)
	assert.True(t, tr.Status.TrailingStopEnabled)
	assert.Equal(t, DefaultTrailingStopPercent, tr.Status.TrailingStopPercent)
	assert.Equal(t, StateTP2Hit, tr.Status.State())
	require.Len(t, events, 2)
	assert.Equal(t, EventTrailingActivated, events[1].Type)

	tr, events, err = tr.Hit(TP3, t0)
	require.NoError(t, err)
	assert.True(t, tr.Status.TP3Hit)
	assert.False(t, tr.Status.IsActive)
	assert.Equal(t, StateClosed, tr.Status.State())
	assert.Equal(t, 100, tr.Status.Progress())
	require.Len(t, events, 2)
	assert.Equal(t, EventPositionClosed, events[1].Type)
}

func TestHit_OutOfOrderRejected(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, longSetup())

	for _, lvl := range []Level{TP2, TP3} {
		got, events, err := tr.Hit(lvl, t0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutOfOrder), lvl.String())
		assert.Empty(t, events)
		assert.Equal(t, tr, got)

		var terr *TransitionError
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, tr.ID, terr.TradeID)
	}

	afterTP1, _, err := tr.Hit(TP1, t0)
	require.NoError(t, err)
	_, _, err = afterTP1.Hit(TP3, t0)
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestHit_ClosedTradeStaysClosed(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, longSetup())
	for _, lvl := range []Level{TP1, TP2, TP3} {
		var err error
		tr, _, err = tr.Hit(lvl, t0)
		require.NoError(t, err)
	}
	require.False(t, tr.Status.IsActive)

	// re-firing any level is a no-op and never reactivates
	for _, lvl := range []Level{TP1, TP2, TP3} {
		next, _, err := tr.Hit(lvl, t0)
		require.NoError(t, err)
		assert.False(t, next.Status.IsActive)
	}

	trailed, events := tr.Trail(70000, t0)
	assert.Empty(t, events)
	assert.False(t, trailed.Status.IsActive)

	_, _, err := tr.StopOut(t0)
	assert.ErrorIs(t, err, ErrTradeClosed)
}

func TestHit_UnknownLevel(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, longSetup())
	_, _, err := tr.Hit(Level(7), t0)
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestStopOut(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, longSetup())
	tr, _, err := tr.Hit(TP1, t0)
	require.NoError(t, err)

	stopped, events, err := tr.StopOut(t0)
	require.NoError(t, err)
	assert.False(t, stopped.Status.IsActive)
	assert.True(t, stopped.Status.StoppedOut)
	assert.Equal(t, StateStopped, stopped.Status.State())
	require.Len(t, events, 2)
	assert.Equal(t, EventSLHit, events[0].Type)
	assert.Equal(t, 50000.0, events[0].Price)

	again, events, err := stopped.StopOut(t0)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, stopped, again)

	_, _, err = stopped.Hit(TP2, t0)
	assert.ErrorIs(t, err, ErrTradeClosed)
}

func TestTrail_Long(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, longSetup())

	// not armed before TP2
	same, events := tr.Trail(56000, t0)
	assert.Empty(t, events)
	assert.Equal(t, tr, same)

	tr, _, _ = tr.Hit(TP1, t0)
	tr, _, _ = tr.Hit(TP2, t0)

	tr, events = tr.Trail(56000, t0)
	require.Len(t, events, 1)
	assert.InDelta(t, 54320, tr.Status.CurrentSL, 1e-9)
	assert.Equal(t, 50000.0, events[0].OldSL)

	// a pullback never moves the stop backward
	tr, events = tr.Trail(55000, t0)
	assert.Empty(t, events)
	assert.InDelta(t, 54320, tr.Status.CurrentSL, 1e-9)

	tr, _ = tr.Trail(58000, t0)
	assert.InDelta(t, 56260, tr.Status.CurrentSL, 1e-9)

	assert.True(t, tr.StopHit(56000))
	assert.False(t, tr.StopHit(57000))
}

func TestTrail_Short(t *testing.T) {
	t.Parallel()

	tr := mustPlan(t, shortSetup())
	tr, _, _ = tr.Hit(TP1, t0)
	tr, _, _ = tr.Hit(TP2, t0)

	tr, events := tr.Trail(90, t0)
	require.Len(t, events, 1)
	assert.InDelta(t, 92.7, tr.Status.CurrentSL, 1e-9)

	tr, events = tr.Trail(95, t0)
	assert.Empty(t, events)
	assert.InDelta(t, 92.7, tr.Status.CurrentSL, 1e-9)

	assert.True(t, tr.StopHit(93))
	assert.False(t, tr.StopHit(91))
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Level{"tp1": TP1, "TP2": TP2, " 3 ": TP3} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("tp4")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
