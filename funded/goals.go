package funded

// Goals are the profit targets the trader tracks.
type Goals struct {
	Daily   float64 `json:"daily" yaml:"daily"`
	Weekly  float64 `json:"weekly" yaml:"weekly"`
	Monthly float64 `json:"monthly" yaml:"monthly"`
	Total   float64 `json:"total" yaml:"total"`
}

// DefaultGoals: $1k a day, $7k a week, $20k in the first month, $50k overall.
func DefaultGoals() Goals {
	return Goals{Daily: 1000, Weekly: 7000, Monthly: 20000, Total: 50000}
}

// Progress returns pnl as a percentage of goal, clamped to [0, 100].
func Progress(pnl, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	p := pnl / goal * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

type GoalProgress struct {
	Name    string
	PnL     float64
	Goal    float64
	Percent float64
	Reached bool
}

// Report lists progress for each goal, shortest horizon first.
func (g Goals) Report(a Account) []GoalProgress {
	row := func(name string, pnl, goal float64) GoalProgress {
		return GoalProgress{
			Name:    name,
			PnL:     pnl,
			Goal:    goal,
			Percent: Progress(pnl, goal),
			Reached: goal > 0 && pnl >= goal,
		}
	}
	return []GoalProgress{
		row("daily", a.DailyPnL, g.Daily),
		row("weekly", a.WeeklyPnL, g.Weekly),
		row("monthly", a.MonthlyPnL, g.Monthly),
		row("total", a.TotalPnL, g.Total),
	}
}
