package funded

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradeplan/pkg/id"
	"github.com/rustyeddy/tradeplan/risk"
)

// Account is the running state of a funded account.
type Account struct {
	Balance          float64
	DailyPnL         float64
	WeeklyPnL        float64
	MonthlyPnL       float64
	TotalPnL         float64
	RiskPerTrade     float64 // percent of balance
	TradesLeft       int
	DailyGoalReached bool
}

// NewAccount opens an account at the policy's starting balance.
func NewAccount(p risk.Policy, riskPerTrade float64) Account {
	return Account{
		Balance:      p.AccountStartBalance,
		RiskPerTrade: riskPerTrade,
		TradesLeft:   p.TradesPerDay,
	}
}

func (a Account) Snapshot() risk.AccountSnapshot {
	return risk.AccountSnapshot{
		Balance:      a.Balance,
		RiskPerTrade: a.RiskPerTrade,
		DailyPnL:     a.DailyPnL,
		TotalPnL:     a.TotalPnL,
		TradesLeft:   a.TradesLeft,
	}
}

// LimitError is returned when the policy blocks a new trade.
type LimitError struct {
	Decision risk.Decision
}

func (e *LimitError) Error() string {
	msgs := make([]string, 0, len(e.Decision.Violations))
	for _, v := range e.Decision.Violations {
		msgs = append(msgs, v.Code+": "+v.Msg)
	}
	return "trade blocked: " + strings.Join(msgs, "; ")
}

// Recorder persists logged trades. journal.Recorder adapts a journal to it.
type Recorder interface {
	RecordLoggedTrade(LoggedTrade, Account) error
}

type BookOption func(*Book)

func WithRecorder(r Recorder) BookOption {
	return func(b *Book) { b.rec = r }
}

func WithLogger(l zerolog.Logger) BookOption {
	return func(b *Book) { b.log = l }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) BookOption {
	return func(b *Book) { b.now = now }
}

// WithHistory seeds the book with previously logged trades (any order).
func WithHistory(trades []LoggedTrade) BookOption {
	return func(b *Book) {
		b.trades = append(b.trades[:0], trades...)
		sortNewestFirst(b.trades)
	}
}

// Book is the append-only trade log of one account. It is owned by a single
// caller and is not safe for concurrent use.
type Book struct {
	policy  risk.Policy
	account Account
	trades  []LoggedTrade // newest first

	rec Recorder
	log zerolog.Logger
	now func() time.Time
}

func NewBook(p risk.Policy, acct Account, opts ...BookOption) *Book {
	b := &Book{
		policy:  p,
		account: acct,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Book) Account() Account    { return b.account }
func (b *Book) Policy() risk.Policy { return b.policy }

// Decision evaluates the policy against the current account.
func (b *Book) Decision() risk.Decision {
	return risk.Evaluate(b.policy, b.account.Snapshot())
}

// SetRiskPerTrade changes the percent risked on the next trade.
func (b *Book) SetRiskPerTrade(pct float64) error {
	if pct <= 0 || pct > risk.MaxRiskPercent {
		return fmt.Errorf("risk per trade must be in (0, %v]", risk.MaxRiskPercent)
	}
	b.account.RiskPerTrade = pct
	return nil
}

// Log records a closed trade. It refuses when the policy blocks trading
// (daily goal reached, loss limits hit, no trades left) or when the trade
// itself is incomplete or inconsistent.
func (b *Book) Log(in Input) (LoggedTrade, error) {
	if d := b.Decision(); !d.Allowed {
		err := &LimitError{Decision: d}
		b.log.Warn().Str("symbol", in.Symbol).Err(err).Msg("trade blocked by policy")
		return LoggedTrade{}, err
	}

	res, err := Compute(b.account.Balance, b.account.RiskPerTrade, in)
	if err != nil {
		return LoggedTrade{}, err
	}

	closedAt := b.now()
	lt := LoggedTrade{
		ID:       id.NewAt(closedAt),
		Symbol:   strings.ToUpper(strings.TrimSpace(in.Symbol)),
		Side:     in.Side,
		Entry:    in.Entry,
		Stop:     in.Stop,
		TP1:      in.TP1,
		TP2:      in.TP2,
		TP3:      in.TP3,
		Outcome:  in.Outcome,
		ClosedAt: closedAt,
		Result:   res,
	}

	next := b.apply(b.account, lt.PnL)
	if b.rec != nil {
		if err := b.rec.RecordLoggedTrade(lt, next); err != nil {
			return LoggedTrade{}, fmt.Errorf("record trade: %w", err)
		}
	}

	b.account = next
	b.trades = append([]LoggedTrade{lt}, b.trades...)

	b.log.Info().
		Str("trade_id", lt.ID).
		Str("symbol", lt.Symbol).
		Str("outcome", string(lt.Outcome)).
		Float64("pnl", lt.PnL).
		Float64("r", lt.RMultiple).
		Float64("balance", b.account.Balance).
		Msg("trade logged")
	if b.account.DailyGoalReached {
		b.log.Info().Float64("daily_pnl", b.account.DailyPnL).Msg("daily goal reached, stop trading for today")
	}

	return lt, nil
}

func (b *Book) apply(a Account, pnl float64) Account {
	a.Balance += pnl
	a.DailyPnL += pnl
	a.WeeklyPnL += pnl
	a.MonthlyPnL += pnl
	a.TotalPnL += pnl
	if a.TradesLeft > 0 {
		a.TradesLeft--
	}
	a.DailyGoalReached = b.policy.DailyGoal > 0 && a.DailyPnL >= b.policy.DailyGoal
	return a
}

// ResetDaily starts a new trading day.
func (b *Book) ResetDaily() {
	b.account.DailyPnL = 0
	b.account.DailyGoalReached = false
	b.account.TradesLeft = b.policy.TradesPerDay
}

// Trades returns up to limit trades, most recent first. limit <= 0 means all.
func (b *Book) Trades(limit int) []LoggedTrade {
	n := len(b.trades)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]LoggedTrade, n)
	copy(out, b.trades[:n])
	return out
}
