package trade

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Level is a take-profit target.
type Level int

const (
	TP1 Level = iota + 1
	TP2
	TP3
)

func (l Level) String() string {
	switch l {
	case TP1, TP2, TP3:
		return fmt.Sprintf("tp%d", int(l))
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func (l Level) valid() bool { return l >= TP1 && l <= TP3 }

// ParseLevel accepts "tp1".."tp3" or "1".."3".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tp1", "1":
		return TP1, nil
	case "tp2", "2":
		return TP2, nil
	case "tp3", "3":
		return TP3, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

var (
	ErrOutOfOrder   = errors.New("previous take-profit level not hit yet")
	ErrTradeClosed  = errors.New("trade is no longer active")
	ErrUnknownLevel = errors.New("unknown take-profit level")
)

// TransitionError reports a rejected lifecycle transition.
type TransitionError struct {
	TradeID string
	Action  string
	Err     error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("trade %s: %s: %v", e.TradeID, e.Action, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// Hit marks a take-profit level as reached and applies its side effect:
//
//	TP1: stop moves to the entry (break-even)
//	TP2: trailing stop is enabled at the configured percent
//	TP3: trade becomes inactive
//
// Marking a level that is already hit is a no-op. Marking a level before the
// previous one, or on a trade that is no longer active, returns a
// *TransitionError wrapping ErrOutOfOrder or ErrTradeClosed.
func (t Trade) Hit(level Level, at time.Time) (Trade, []Event, error) {
	action := "mark " + level.String() + " hit"
	if !level.valid() {
		return t, nil, &TransitionError{TradeID: t.ID, Action: action, Err: ErrUnknownLevel}
	}
	if t.Status.hit(level) {
		return t, nil, nil
	}
	if !t.Status.IsActive {
		return t, nil, &TransitionError{TradeID: t.ID, Action: action, Err: ErrTradeClosed}
	}
	if level > TP1 && !t.Status.hit(level-1) {
		return t, nil, &TransitionError{TradeID: t.ID, Action: action, Err: ErrOutOfOrder}
	}

	price := t.target(level)
	events := []Event{t.event(EventTPHit, at, level, price)}

	switch level {
	case TP1:
		t.Status.TP1Hit = true
		if t.favourable(t.EntryPrice, t.Status.CurrentSL) {
			old := t.Status.CurrentSL
			t.Status.CurrentSL = t.EntryPrice
			e := t.event(EventMovedToBreakeven, at, level, price)
			e.OldSL, e.NewSL = old, t.EntryPrice
			events = append(events, e)
		}
	case TP2:
		t.Status.TP2Hit = true
		t.Status.TrailingStopEnabled = true
		events = append(events, t.event(EventTrailingActivated, at, level, price))
	case TP3:
		t.Status.TP3Hit = true
		t.Status.IsActive = false
		events = append(events, t.event(EventPositionClosed, at, level, price))
	}

	return t, events, nil
}

// StopOut closes the remaining position at the current stop. It is a no-op on
// a trade that is already stopped and an error on one closed at TP3.
func (t Trade) StopOut(at time.Time) (Trade, []Event, error) {
	if t.Status.StoppedOut {
		return t, nil, nil
	}
	if !t.Status.IsActive {
		return t, nil, &TransitionError{TradeID: t.ID, Action: "stop out", Err: ErrTradeClosed}
	}

	t.Status.StoppedOut = true
	t.Status.IsActive = false

	return t, []Event{
		t.event(EventSLHit, at, 0, t.Status.CurrentSL),
		t.event(EventPositionClosed, at, 0, t.Status.CurrentSL),
	}, nil
}

// Trail ratchets the stop behind price once the trailing stop is enabled.
// The candidate stop is price*(1-pct/100) for longs and price*(1+pct/100) for
// shorts; CurrentSL only moves when the candidate is more favourable.
func (t Trade) Trail(price float64, at time.Time) (Trade, []Event) {
	if !t.Status.IsActive || !t.Status.TrailingStopEnabled || price <= 0 {
		return t, nil
	}

	pct := t.Status.TrailingStopPercent / 100
	candidate := price * (1 + pct)
	if t.IsLong() {
		candidate = price * (1 - pct)
	}
	if !t.favourable(candidate, t.Status.CurrentSL) {
		return t, nil
	}

	e := t.event(EventTrailingUpdated, at, 0, price)
	e.OldSL, e.NewSL = t.Status.CurrentSL, candidate
	t.Status.CurrentSL = candidate
	return t, []Event{e}
}

// StopHit reports whether price has crossed the current stop of an active trade.
func (t Trade) StopHit(price float64) bool {
	if !t.Status.IsActive {
		return false
	}
	if t.IsLong() {
		return price <= t.Status.CurrentSL
	}
	return price >= t.Status.CurrentSL
}

// favourable reports whether moving the stop from current to candidate
// locks in more profit for the trade's side.
func (t Trade) favourable(candidate, current float64) bool {
	if t.IsLong() {
		return candidate > current
	}
	return candidate < current
}

func (t Trade) target(l Level) float64 {
	switch l {
	case TP1:
		return t.TP1
	case TP2:
		return t.TP2
	case TP3:
		return t.TP3
	}
	return 0
}
