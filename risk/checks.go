package risk

import "fmt"

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	DailyRiskRemaining float64 // MaxDailyLoss + DailyPnL
	DrawdownRemaining  float64 // MaxTotalDrawdown + TotalPnL
	TargetRemaining    float64 // ProfitTarget - TotalPnL
	MaxRiskAmount      float64 // Balance * RiskPerTrade / 100
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Has reports whether the decision carries a violation with the given code.
func (d Decision) Has(code string) bool {
	for _, v := range d.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

const (
	CodeDailyGoalReached   = "DAILY_GOAL_REACHED"
	CodeDailyLossLimit     = "DAILY_LOSS_LIMIT"
	CodeTotalDrawdownLimit = "TOTAL_DRAWDOWN_LIMIT"
	CodeNoTradesLeft       = "NO_TRADES_LEFT"
	CodeRiskTooHigh        = "RISK_TOO_HIGH"
)

// Evaluate decides whether another trade may be taken on the account.
// Zero-valued policy limits are treated as "not enforced".
func Evaluate(p Policy, acct AccountSnapshot) Decision {
	d := Decision{
		Allowed:            true,
		DailyRiskRemaining: p.MaxDailyLoss + acct.DailyPnL,
		DrawdownRemaining:  p.MaxTotalDrawdown + acct.TotalPnL,
		TargetRemaining:    p.ProfitTarget - acct.TotalPnL,
		MaxRiskAmount:      Round2(acct.Balance * acct.RiskPerTrade / 100),
	}

	if p.DailyGoal > 0 && acct.DailyPnL >= p.DailyGoal {
		d.add(CodeDailyGoalReached,
			fmt.Sprintf("daily P/L %.2f reached goal %.2f; stop trading for today", acct.DailyPnL, p.DailyGoal))
	}

	if p.MaxDailyLoss > 0 && d.DailyRiskRemaining <= 0 {
		d.add(CodeDailyLossLimit,
			fmt.Sprintf("daily P/L %.2f <= limit %.2f", acct.DailyPnL, -p.MaxDailyLoss))
	}
	if p.MaxTotalDrawdown > 0 && d.DrawdownRemaining <= 0 {
		d.add(CodeTotalDrawdownLimit,
			fmt.Sprintf("total P/L %.2f <= limit %.2f", acct.TotalPnL, -p.MaxTotalDrawdown))
	}

	if p.TradesPerDay > 0 && acct.TradesLeft <= 0 {
		d.add(CodeNoTradesLeft, fmt.Sprintf("no trades left today (max %d)", p.TradesPerDay))
	}

	if p.MaxRiskPct > 0 && acct.RiskPerTrade > p.MaxRiskPct {
		d.add(CodeRiskTooHigh,
			fmt.Sprintf("risk per trade %.2f%% exceeds max %.2f%%", acct.RiskPerTrade, p.MaxRiskPct))
	}

	return d
}
