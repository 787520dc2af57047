package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplan/risk"
	"github.com/rustyeddy/tradeplan/trade"
)

type planOptions struct {
	symbol   string
	side     string
	entry    float64
	stop     float64
	tp1      float64
	tp2      float64
	tp3      float64
	risk     float64
	account  float64
	trailing float64
	notes    string
	save     bool
}

// ErrInvalidSetup is returned after the validation messages were printed.
var ErrInvalidSetup = errors.New("invalid trade setup")

func newPlanCmd(a *app) *cobra.Command {
	o := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Size a trade and split it over three take-profit targets",
		Long: `Validate a setup, size it from the account risk and print the
50/30/20 allocation with the profit at each target.

Risk and account size default to account.risk_percent and account.balance
from the config file.

Example:
  tradeplan plan --symbol BTCUSDT --entry 50000 --stop 48000 \
      --tp1 52000 --tp2 55000 --tp3 60000 --risk 2 --account 10000 --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlan(cmd.OutOrStdout(), o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.symbol, "symbol", "", "instrument symbol (default trade.symbol)")
	f.StringVar(&o.side, "side", "", "long|short (inferred from TP1 when empty)")
	f.Float64Var(&o.entry, "entry", 0, "entry price")
	f.Float64Var(&o.stop, "stop", 0, "stop-loss price")
	f.Float64Var(&o.tp1, "tp1", 0, "first target, closes 50%")
	f.Float64Var(&o.tp2, "tp2", 0, "second target, closes 30%")
	f.Float64Var(&o.tp3, "tp3", 0, "third target, closes the last 20%")
	f.Float64Var(&o.risk, "risk", 0, "percent of the account to risk")
	f.Float64Var(&o.account, "account", 0, "account size")
	f.Float64Var(&o.trailing, "trailing", 0, "trailing stop percent armed at TP2 (default trade.trailing_stop_percent)")
	f.StringVar(&o.notes, "notes", "", "free-form notes stored with the plan")
	f.BoolVar(&o.save, "save", false, "store the plan in the journal")

	return cmd
}

func (a *app) runPlan(w io.Writer, o *planOptions) error {
	side, err := risk.ParseSide(o.side)
	if err != nil {
		return err
	}
	if o.risk == 0 {
		o.risk = a.cfg.Account.RiskPercent
	}
	if o.account == 0 {
		o.account = a.cfg.Account.Balance
	}
	if o.trailing == 0 {
		o.trailing = a.cfg.Trade.TrailingStopPercent
	}
	if o.symbol == "" {
		o.symbol = a.cfg.Trade.Symbol
	}

	setup := risk.Setup{
		Side:        side,
		EntryPrice:  o.entry,
		StopLoss:    o.stop,
		RiskPercent: o.risk,
		AccountSize: o.account,
		TP1:         o.tp1,
		TP2:         o.tp2,
		TP3:         o.tp3,
	}

	t, err := trade.Plan(o.symbol, setup, a.now(),
		trade.WithTrailingStopPercent(o.trailing),
		trade.WithNotes(o.notes),
	)
	var verr *trade.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(w, "Setup is not valid:")
		for _, msg := range verr.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
		return ErrInvalidSetup
	}
	if err != nil {
		return err
	}

	printPlan(w, t)

	if !o.save {
		return nil
	}
	j, err := a.openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()
	if err := j.SavePlan(t); err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	a.log.Info().Str("trade_id", t.ID).Str("symbol", t.Symbol).Msg("plan saved")
	fmt.Fprintf(w, "Saved plan %s\n", t.ID)
	return nil
}

func printPlan(w io.Writer, t trade.Trade) {
	title := "Trade plan"
	if t.Symbol != "" {
		title += " " + t.Symbol
	}

	st := newTable(w, title)
	st.AppendRows([]table.Row{
		{"Side", t.Setup.Setup.Side.String()},
		{"Entry", price(t.EntryPrice)},
		{"Stop loss", price(t.StopLoss)},
		{"Risk", fmt.Sprintf("%.2f%% of %s", t.RiskPercent, money(t.AccountSize))},
		{"Risk amount", money(t.RiskAmount)},
		{"Position size", fmt.Sprintf("%g", t.PositionSize)},
	})
	st.Render()

	alloc := t.Allocations()
	profit := t.ProfitPotential()

	tt := newTable(w, "Take profits")
	tt.AppendHeader(table.Row{"Target", "Price", "Close", "Size", "Profit", "R:R"})
	rows := []struct {
		name   string
		tp     float64
		weight float64
		size   float64
		profit float64
	}{
		{"TP1", t.TP1, risk.TP1Weight, alloc.TP1, profit.TP1},
		{"TP2", t.TP2, risk.TP2Weight, alloc.TP2, profit.TP2},
		{"TP3", t.TP3, risk.TP3Weight, alloc.TP3, profit.TP3},
	}
	for _, r := range rows {
		rr := "-"
		if r.tp > 0 {
			rr = fmt.Sprintf("%.2f", risk.RR(t.EntryPrice, t.StopLoss, r.tp))
		}
		tt.AppendRow(table.Row{r.name, price(r.tp), fmt.Sprintf("%.0f%%", r.weight*100), fmt.Sprintf("%g", risk.Round4(r.size)), money(r.profit), rr})
	}
	tt.AppendFooter(table.Row{"Total", "", "100%", fmt.Sprintf("%g", risk.Round4(alloc.Total())), money(profit.Total), ""})
	alignRight(tt, 2, 3, 4, 5, 6)
	tt.Render()
}
