package risk

// Policy holds the funded-account (prop firm) rules a trader must stay inside.
// Amounts are in account currency; percents are whole percents (0.5 = 0.5%).
type Policy struct {
	AccountBaseCurrency string  // "USD"
	AccountStartBalance float64 // e.g. 100000

	// Per-trade limit
	MaxRiskPct float64 // 2

	// Goals and circuit breakers
	DailyGoal        float64 // 1000, stop trading once reached
	MaxDailyLoss     float64 // 5000 (5% of 100k)
	MaxTotalDrawdown float64 // 10000 (10% of 100k)
	ProfitTarget     float64 // 50000

	TradesPerDay int // 10
}

// DefaultPolicy mirrors a $100k funded account.
func DefaultPolicy() Policy {
	return Policy{
		AccountBaseCurrency: "USD",
		AccountStartBalance: 100000,
		MaxRiskPct:          2,
		DailyGoal:           1000,
		MaxDailyLoss:        5000,
		MaxTotalDrawdown:    10000,
		ProfitTarget:        50000,
		TradesPerDay:        10,
	}
}

// AccountSnapshot is what Evaluate needs to know about the account right now.
type AccountSnapshot struct {
	Balance      float64
	RiskPerTrade float64 // percent
	DailyPnL     float64
	TotalPnL     float64
	TradesLeft   int
}
