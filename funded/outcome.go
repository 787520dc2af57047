// Package funded keeps the books of a funded (prop firm) account: closed
// trades with their realized P/L and R-multiple, the running daily, weekly,
// monthly and total P/L, and the firm's loss limits and profit goals.
package funded

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradeplan/risk"
)

// Outcome is how a trade ended.
type Outcome string

const (
	OutcomeTP1      Outcome = "tp1" // 50% closed at TP1
	OutcomeTP2      Outcome = "tp2" // 80% closed by TP2
	OutcomeTP3      Outcome = "tp3" // fully closed at TP3
	OutcomeStopLoss Outcome = "sl"
)

func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(strings.ToLower(strings.TrimSpace(s))); o {
	case OutcomeTP1, OutcomeTP2, OutcomeTP3, OutcomeStopLoss:
		return o, nil
	}
	return "", fmt.Errorf("unknown outcome %q (want tp1, tp2, tp3 or sl)", s)
}

var (
	ErrIncompleteTrade = errors.New("entry, stop loss and TP1 are required")
	ErrInvalidTrade    = errors.New("invalid trade")
)

// Input is a closed trade as entered by the trader.
type Input struct {
	Symbol  string
	Side    risk.Side
	Entry   float64
	Stop    float64
	TP1     float64
	TP2     float64 // optional unless Outcome is tp2 or tp3
	TP3     float64 // optional unless Outcome is tp3
	Outcome Outcome
}

// Result is the arithmetic of a closed trade.
type Result struct {
	PositionSize float64
	RiskAmount   float64
	PnL          float64
	RMultiple    float64
	RiskReward   float64 // TP1 distance over stop distance
}

// LoggedTrade is an immutable closed-trade record.
type LoggedTrade struct {
	ID       string
	Symbol   string
	Side     risk.Side
	Entry    float64
	Stop     float64
	TP1      float64
	TP2      float64
	TP3      float64
	Outcome  Outcome
	ClosedAt time.Time
	Result
}

// Compute works out size, P/L and R for a closed trade on an account of the
// given balance risking riskPercent per trade.
//
// A stop-out loses exactly the risk amount (-1R). A TP outcome realizes the
// scale-out tiers up to and including that level.
func Compute(balance, riskPercent float64, in Input) (Result, error) {
	if in.Entry <= 0 || in.Stop <= 0 || in.TP1 <= 0 {
		return Result{}, ErrIncompleteTrade
	}
	switch in.Outcome {
	case OutcomeTP1, OutcomeStopLoss:
	case OutcomeTP2:
		if in.TP2 <= 0 {
			return Result{}, fmt.Errorf("%w: outcome tp2 needs TP2", ErrIncompleteTrade)
		}
	case OutcomeTP3:
		if in.TP2 <= 0 || in.TP3 <= 0 {
			return Result{}, fmt.Errorf("%w: outcome tp3 needs TP2 and TP3", ErrIncompleteTrade)
		}
	default:
		return Result{}, fmt.Errorf("%w: unknown outcome %q", ErrInvalidTrade, in.Outcome)
	}

	errs := risk.ValidateSetup(risk.Setup{
		Side:        in.Side,
		EntryPrice:  in.Entry,
		StopLoss:    in.Stop,
		RiskPercent: riskPercent,
		AccountSize: balance,
		TP1:         in.TP1,
		TP2:         in.TP2,
		TP3:         in.TP3,
	})
	if len(errs) > 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidTrade, strings.Join(errs, "; "))
	}

	sizing := risk.PositionSize(in.Entry, in.Stop, riskPercent, balance)
	alloc := risk.TPAllocations(sizing.PositionSize)

	r := Result{
		PositionSize: sizing.PositionSize,
		RiskAmount:   sizing.RiskAmount,
		RiskReward:   risk.RR(in.Entry, in.Stop, in.TP1),
	}

	tier := func(tp, size float64) float64 {
		d := tp - in.Entry
		if d < 0 {
			d = -d
		}
		return d * size
	}

	switch in.Outcome {
	case OutcomeStopLoss:
		r.PnL = -r.RiskAmount
		r.RMultiple = -1
		return r, nil
	case OutcomeTP1:
		r.PnL = tier(in.TP1, alloc.TP1)
	case OutcomeTP2:
		r.PnL = tier(in.TP1, alloc.TP1) + tier(in.TP2, alloc.TP2)
	case OutcomeTP3:
		r.PnL = tier(in.TP1, alloc.TP1) + tier(in.TP2, alloc.TP2) + tier(in.TP3, alloc.TP3)
	}
	if r.RiskAmount > 0 {
		r.RMultiple = r.PnL / r.RiskAmount
	}
	return r, nil
}
