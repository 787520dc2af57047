package risk

// Fixed scale-out weights: half the position at TP1, 30% at TP2 and the
// remaining 20% at TP3.
const (
	TP1Weight = 0.5
	TP2Weight = 0.3
	TP3Weight = 0.2
)

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Allocations is the share of a position closed at each take-profit level.
type Allocations struct {
	TP1 float64
	TP2 float64
	TP3 float64
}

// Total returns the sum of the three tiers.
func (a Allocations) Total() float64 {
	return a.TP1 + a.TP2 + a.TP3
}

// TPAllocations splits positionSize 50/30/20 across the three targets.
// No rounding is applied; the tiers sum to positionSize within float tolerance.
func TPAllocations(positionSize float64) Allocations {
	return Allocations{
		TP1: positionSize * TP1Weight,
		TP2: positionSize * TP2Weight,
		TP3: positionSize * TP3Weight,
	}
}

// Profit is the realizable profit at each target if the whole plan plays out.
type Profit struct {
	TP1   float64
	TP2   float64
	TP3   float64
	Total float64
}

// ProfitPotential computes per-tier profit as |tpN - entry| * allocationN.
//
// Distances are absolute so the same call serves longs and shorts. Each tier
// is rounded to cents on its own and Total is the plain sum of the rounded
// tiers; it is not rounded again.
func ProfitPotential(entry, tp1, tp2, tp3, positionSize float64) Profit {
	alloc := TPAllocations(positionSize)

	p := Profit{
		TP1: Round2(abs(tp1-entry) * alloc.TP1),
		TP2: Round2(abs(tp2-entry) * alloc.TP2),
		TP3: Round2(abs(tp3-entry) * alloc.TP3),
	}
	// Sum of the rounded tiers, not the rounded exact sum, so the table always
	// adds up. The two can differ by a cent.
	p.Total = p.TP1 + p.TP2 + p.TP3
	return p
}

// RR is the reward-to-risk ratio of a single target. Zero risk yields 0.
func RR(entry, stop, takeProfit float64) float64 {
	risk := abs(entry - stop)
	reward := abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}
