package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplan/funded"
	"github.com/rustyeddy/tradeplan/risk"
)

func newProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show goal progress and the firm's limits for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			acct, err := a.accountNow(j)
			if err != nil {
				return err
			}
			printProgress(cmd.OutOrStdout(), a.cfg.Goals, a.cfg.Policy(), acct)
			return nil
		},
	}
}

func printProgress(w io.Writer, goals funded.Goals, p risk.Policy, acct funded.Account) {
	gt := newTable(w, "Goals")
	gt.AppendHeader(table.Row{"Goal", "P/L", "Target", "Progress", ""})
	for _, g := range goals.Report(acct) {
		gt.AppendRow(table.Row{g.Name, money(g.PnL), money(g.Goal), fmt.Sprintf("%.0f%%", g.Percent), check(g.Reached)})
	}
	alignRight(gt, 2, 3, 4)
	gt.Render()

	d := risk.Evaluate(p, acct.Snapshot())

	lt := newTable(w, "Account")
	lt.AppendRows([]table.Row{
		{"Balance", money(acct.Balance)},
		{"Risk per trade", fmt.Sprintf("%.2f%% (%s)", acct.RiskPerTrade, money(d.MaxRiskAmount))},
		{"Trades left today", acct.TradesLeft},
	})
	if p.MaxDailyLoss > 0 {
		lt.AppendRow(table.Row{"Daily loss room", money(d.DailyRiskRemaining)})
	}
	if p.MaxTotalDrawdown > 0 {
		lt.AppendRow(table.Row{"Drawdown room", money(d.DrawdownRemaining)})
	}
	if p.ProfitTarget > 0 {
		lt.AppendRow(table.Row{"To profit target", money(d.TargetRemaining)})
	}
	lt.Render()

	if d.Allowed {
		fmt.Fprintln(w, "Trading allowed.")
		return
	}
	printDecision(w, d)
}
