package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplan/funded"
	"github.com/rustyeddy/tradeplan/journal"
	"github.com/rustyeddy/tradeplan/risk"
)

type logOptions struct {
	symbol  string
	side    string
	entry   float64
	stop    float64
	tp1     float64
	tp2     float64
	tp3     float64
	outcome string
	risk    float64
}

func newLogCmd(a *app) *cobra.Command {
	o := &logOptions{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Book a closed trade against the funded account",
		Long: `Book a closed trade. The account state is rebuilt from the journal,
the firm's rules are checked, and the trade's P/L and R-multiple are
recorded.

Example:
  tradeplan log --symbol BTCUSDT --side short --entry 100 --stop 102 \
      --tp1 98 --tp2 96 --tp3 94 --outcome tp2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLog(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.symbol, "symbol", "", "instrument symbol")
	f.StringVar(&o.side, "side", "", "long|short (inferred from TP1 when empty)")
	f.Float64Var(&o.entry, "entry", 0, "entry price")
	f.Float64Var(&o.stop, "stop", 0, "stop-loss price")
	f.Float64Var(&o.tp1, "tp1", 0, "first target")
	f.Float64Var(&o.tp2, "tp2", 0, "second target (needed for tp2 and tp3 outcomes)")
	f.Float64Var(&o.tp3, "tp3", 0, "third target (needed for a tp3 outcome)")
	f.StringVar(&o.outcome, "outcome", "", "tp1|tp2|tp3|sl")
	f.Float64Var(&o.risk, "risk", 0, "percent risked on this trade (default account.risk_percent)")
	_ = cmd.MarkFlagRequired("outcome")

	return cmd
}

func (a *app) runLog(ctx context.Context, w io.Writer, o *logOptions) error {
	side, err := risk.ParseSide(o.side)
	if err != nil {
		return err
	}
	outcome, err := funded.ParseOutcome(o.outcome)
	if err != nil {
		return err
	}
	if o.risk == 0 {
		o.risk = a.cfg.Account.RiskPercent
	}

	local, err := a.openSQLite()
	if err != nil {
		return err
	}
	book, j, err := a.openBook(ctx, local, o.risk)
	if err != nil {
		_ = local.Close()
		return err
	}
	defer j.Close()

	lt, err := book.Log(funded.Input{
		Symbol:  o.symbol,
		Side:    side,
		Entry:   o.entry,
		Stop:    o.stop,
		TP1:     o.tp1,
		TP2:     o.tp2,
		TP3:     o.tp3,
		Outcome: outcome,
	})
	var lerr *funded.LimitError
	if errors.As(err, &lerr) {
		printDecision(w, lerr.Decision)
		return err
	}
	if err != nil {
		return err
	}

	acct := book.Account()
	t := newTable(w, "Trade logged "+lt.Symbol)
	t.AppendRows([]table.Row{
		{"ID", lt.ID},
		{"Outcome", string(lt.Outcome)},
		{"Position size", fmt.Sprintf("%g", lt.PositionSize)},
		{"Risk amount", money(lt.RiskAmount)},
		{"P/L", money(lt.PnL)},
		{"R-multiple", fmt.Sprintf("%.2fR", lt.RMultiple)},
		{"Balance", money(acct.Balance)},
		{"Daily P/L", money(acct.DailyPnL)},
		{"Trades left today", acct.TradesLeft},
	})
	t.Render()
	if acct.DailyGoalReached {
		fmt.Fprintln(w, "Daily goal reached. Stop trading for today.")
	}
	return nil
}

// openBook rebuilds the funded book from the local journal as of now and
// wires it to write through j. Closing j closes local.
func (a *app) openBook(ctx context.Context, local *journal.SQLite, riskPct float64) (*funded.Book, journal.Journal, error) {
	recs, err := local.ListTrades(0)
	if err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}
	history := journal.LoggedTrades(recs)

	p := a.cfg.Policy()
	acct := funded.AccountFromHistory(p, riskPct, history, a.now())

	j, err := a.openJournal(ctx, local)
	if err != nil {
		return nil, nil, err
	}

	book := funded.NewBook(p, acct,
		funded.WithHistory(history),
		funded.WithRecorder(journal.Recorder(j)),
		funded.WithLogger(a.log),
		funded.WithClock(a.now),
	)
	return book, j, nil
}

// accountNow is the account state without opening any write side.
func (a *app) accountNow(local *journal.SQLite) (funded.Account, error) {
	recs, err := local.ListTrades(0)
	if err != nil {
		return funded.Account{}, fmt.Errorf("load history: %w", err)
	}
	return funded.AccountFromHistory(a.cfg.Policy(), a.cfg.Account.RiskPercent, journal.LoggedTrades(recs), a.now()), nil
}

func printDecision(w io.Writer, d risk.Decision) {
	t := newTable(w, "Trading blocked")
	t.AppendHeader(table.Row{"Rule", "Detail"})
	for _, v := range d.Violations {
		t.AppendRow(table.Row{v.Code, v.Msg})
	}
	t.Render()
}

