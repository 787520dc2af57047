package risk

import (
	"fmt"
	"strings"
)

// Side is the trade direction. The zero value means the caller did not say,
// in which case validation falls back to inferring it from TP1.
type Side string

const (
	SideUnspecified Side = ""
	Long            Side = "long"
	Short           Side = "short"
)

// ParseSide accepts "long", "short" (any case) or "" for unspecified.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SideUnspecified, nil
	case "long", "buy":
		return Long, nil
	case "short", "sell":
		return Short, nil
	default:
		return SideUnspecified, fmt.Errorf("unknown side %q (want long or short)", s)
	}
}

func (s Side) String() string {
	if s == SideUnspecified {
		return "unspecified"
	}
	return string(s)
}

// InferSide is the legacy direction heuristic: a plan is long when TP1 sits
// above the entry, short otherwise. TP1 == entry therefore reads as short.
func InferSide(entry, tp1 float64) Side {
	if entry < tp1 {
		return Long
	}
	return Short
}

// Setup is a (possibly partial) trade plan as typed in by the trader. A zero
// field means the value has not been entered.
type Setup struct {
	Side        Side    `json:"side,omitempty" yaml:"side,omitempty"`
	EntryPrice  float64 `json:"entry_price" yaml:"entry_price"`
	StopLoss    float64 `json:"stop_loss" yaml:"stop_loss"`
	RiskPercent float64 `json:"risk_percent" yaml:"risk_percent"`
	AccountSize float64 `json:"account_size" yaml:"account_size"`
	TP1         float64 `json:"tp1" yaml:"tp1"`
	TP2         float64 `json:"tp2" yaml:"tp2"`
	TP3         float64 `json:"tp3" yaml:"tp3"`
}

// Direction resolves the side of the plan: the explicit Side when set,
// otherwise InferSide. ok is false when neither is possible.
func (s Setup) Direction() (side Side, ok bool) {
	if s.Side != SideUnspecified {
		return s.Side, true
	}
	if present(s.EntryPrice) && present(s.TP1) {
		return InferSide(s.EntryPrice, s.TP1), true
	}
	return SideUnspecified, false
}

const MaxRiskPercent = 20

// Validation messages, in the order the rules run.
const (
	MsgEntryRequired   = "Entry price must be greater than 0"
	MsgStopRequired    = "Stop loss must be greater than 0"
	MsgRiskRange       = "Risk percent must be between 0.1% and 20%"
	MsgAccountRequired = "Account size must be greater than 0"
	MsgEntryEqualsStop = "Entry price and stop loss cannot be the same"
	MsgLongStop        = "For long positions, stop loss must be below entry price"
	MsgShortStop       = "For short positions, stop loss must be above entry price"
	MsgLongTargets     = "For long positions, TP levels must be: Entry < TP1 < TP2 < TP3"
	MsgShortTargets    = "For short positions, TP levels must be: Entry > TP1 > TP2 > TP3"
)

// present reports whether a field was entered. NaN and negatives are not.
func present(v float64) bool { return v > 0 }

// ValidateSetup checks a plan and returns every violated rule in order. An
// empty result means the plan is valid. Rules are independent: one failure
// does not stop the others from running.
func ValidateSetup(s Setup) []string {
	var errs []string

	if !present(s.EntryPrice) {
		errs = append(errs, MsgEntryRequired)
	}
	if !present(s.StopLoss) {
		errs = append(errs, MsgStopRequired)
	}
	if !(s.RiskPercent > 0 && s.RiskPercent <= MaxRiskPercent) {
		errs = append(errs, MsgRiskRange)
	}
	if !present(s.AccountSize) {
		errs = append(errs, MsgAccountRequired)
	}

	if present(s.EntryPrice) && present(s.StopLoss) && s.EntryPrice == s.StopLoss {
		errs = append(errs, MsgEntryEqualsStop)
	}

	side, ok := s.Direction()
	if !ok || !present(s.EntryPrice) {
		return errs
	}
	isLong := side == Long

	if present(s.StopLoss) {
		if isLong && s.StopLoss >= s.EntryPrice {
			errs = append(errs, MsgLongStop)
		}
		if !isLong && s.StopLoss <= s.EntryPrice {
			errs = append(errs, MsgShortStop)
		}
	}

	if present(s.TP1) && present(s.TP2) && present(s.TP3) {
		if isLong {
			if !(s.EntryPrice < s.TP1 && s.TP1 < s.TP2 && s.TP2 < s.TP3) {
				errs = append(errs, MsgLongTargets)
			}
		} else {
			if !(s.EntryPrice > s.TP1 && s.TP1 > s.TP2 && s.TP2 > s.TP3) {
				errs = append(errs, MsgShortTargets)
			}
		}
	}

	return errs
}
