// Package trade models a planned trade and the take-profit lifecycle it
// moves through: TP1 moves the stop to break-even, TP2 turns on the trailing
// stop and TP3 closes the trade.
//
// Trades are values. Every transition returns a new Trade and leaves the
// receiver untouched, so callers own sequencing and persistence.
package trade

import (
	"errors"
	"strings"
	"time"

	"github.com/rustyeddy/tradeplan/pkg/id"
	"github.com/rustyeddy/tradeplan/risk"
)

type Side = risk.Side

const (
	Long  = risk.Long
	Short = risk.Short
)

// DefaultTrailingStopPercent is the trailing distance armed at TP2.
const DefaultTrailingStopPercent = 3.0

// Setup is the immutable plan: the trader's inputs plus the derived size.
type Setup struct {
	risk.Setup

	Symbol       string  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	PositionSize float64 `json:"position_size" yaml:"position_size"`
	RiskAmount   float64 `json:"risk_amount" yaml:"risk_amount"`
}

// Trade is a planned trade with its lifecycle state.
type Trade struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Notes     string    `json:"notes,omitempty"`

	Setup
	Status Status `json:"status"`
}

var ErrUnsizeable = errors.New("position size is zero: entry and stop are the same")

// ValidationError carries every rule a setup broke, in check order.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid trade setup: " + strings.Join(e.Errors, "; ")
}

// PlanOption adjusts a trade before it is returned from Plan.
type PlanOption func(*Trade)

// WithTrailingStopPercent overrides DefaultTrailingStopPercent.
func WithTrailingStopPercent(pct float64) PlanOption {
	return func(t *Trade) {
		if pct > 0 {
			t.Status.TrailingStopPercent = pct
		}
	}
}

// WithID sets a caller-chosen ID instead of a fresh ULID.
func WithID(tradeID string) PlanOption {
	return func(t *Trade) { t.ID = tradeID }
}

func WithNotes(notes string) PlanOption {
	return func(t *Trade) { t.Notes = notes }
}

// Plan validates s, sizes it and returns a new active trade.
//
// The side is fixed at planning time: the explicit side if given, else the
// TP1 heuristic, else the side of the stop relative to the entry.
func Plan(symbol string, s risk.Setup, now time.Time, opts ...PlanOption) (Trade, error) {
	if errs := risk.ValidateSetup(s); len(errs) > 0 {
		return Trade{}, &ValidationError{Errors: errs}
	}

	sizing := risk.PositionSize(s.EntryPrice, s.StopLoss, s.RiskPercent, s.AccountSize)
	if !sizing.Sizeable() {
		return Trade{}, ErrUnsizeable
	}

	side, ok := s.Direction()
	if !ok {
		side = Short
		if s.StopLoss < s.EntryPrice {
			side = Long
		}
	}
	s.Side = side

	t := Trade{
		ID:        id.NewAt(now),
		CreatedAt: now,
		Setup: Setup{
			Setup:        s,
			Symbol:       strings.ToUpper(strings.TrimSpace(symbol)),
			PositionSize: sizing.PositionSize,
			RiskAmount:   sizing.RiskAmount,
		},
		Status: NewStatus(s.StopLoss),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t, nil
}

// Allocations returns the size closed at each target.
func (t Trade) Allocations() risk.Allocations {
	return risk.TPAllocations(t.PositionSize)
}

// ProfitPotential returns the per-target profit of the plan.
func (t Trade) ProfitPotential() risk.Profit {
	return risk.ProfitPotential(t.EntryPrice, t.TP1, t.TP2, t.TP3, t.PositionSize)
}

// IsLong reports the direction fixed at planning time.
func (t Trade) IsLong() bool {
	return t.Setup.Setup.Side == Long
}
