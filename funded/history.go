package funded

import (
	"sort"
	"time"

	"github.com/rustyeddy/tradeplan/risk"
)

// AccountFromHistory rebuilds the account state from persisted trades as of
// now. Periods are taken in now's location: calendar day, Monday-based week,
// calendar month.
func AccountFromHistory(p risk.Policy, riskPerTrade float64, trades []LoggedTrade, now time.Time) Account {
	a := NewAccount(p, riskPerTrade)

	dayStart, dayEnd := DayBounds(now)
	weekStart, weekEnd := WeekBounds(now)
	monthStart, monthEnd := MonthBounds(now)

	today := 0
	for _, t := range trades {
		at := t.ClosedAt.In(now.Location())

		a.Balance += t.PnL
		a.TotalPnL += t.PnL
		if within(at, dayStart, dayEnd) {
			a.DailyPnL += t.PnL
			today++
		}
		if within(at, weekStart, weekEnd) {
			a.WeeklyPnL += t.PnL
		}
		if within(at, monthStart, monthEnd) {
			a.MonthlyPnL += t.PnL
		}
	}

	if p.TradesPerDay > 0 {
		a.TradesLeft = p.TradesPerDay - today
		if a.TradesLeft < 0 {
			a.TradesLeft = 0
		}
	}
	a.DailyGoalReached = p.DailyGoal > 0 && a.DailyPnL >= p.DailyGoal
	return a
}

func sortNewestFirst(trades []LoggedTrade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ClosedAt.After(trades[j].ClosedAt)
	})
}
