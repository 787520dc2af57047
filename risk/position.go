package risk

// Sizing is the output of PositionSize.
type Sizing struct {
	PositionSize float64 // units, rounded to 4 decimals
	RiskAmount   float64 // account currency, rounded to cents
}

// Sizeable reports whether the plan produced a usable size. A zero size
// comes from entry == stop and must block submission.
func (s Sizing) Sizeable() bool {
	return s.PositionSize > 0
}

// PositionSize sizes a position so that a stop-out loses riskPercent of
// accountSize.
//
//	riskAmount   = accountSize * riskPercent / 100
//	riskPerUnit  = |entry - stop|
//	positionSize = riskAmount / riskPerUnit   (0 when riskPerUnit is 0)
//
// Rounding happens once, here. Callers should pass the rounded size on
// rather than recomputing it.
func PositionSize(entry, stop, riskPercent, accountSize float64) Sizing {
	riskAmount := accountSize * riskPercent / 100
	riskPerUnit := abs(entry - stop)

	var size float64
	if riskPerUnit > 0 {
		size = riskAmount / riskPerUnit
	}

	return Sizing{
		PositionSize: Round4(size),
		RiskAmount:   Round2(riskAmount),
	}
}
