package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplan/internal/replay"
	"github.com/rustyeddy/tradeplan/journal"
	"github.com/rustyeddy/tradeplan/trade"
)

func newTradeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Follow a saved plan through its take-profit lifecycle",
		Long: `Move a saved plan through its lifecycle.

  hit tp1   stop moves to break-even
  hit tp2   trailing stop is armed
  hit tp3   position closed
  trail     ratchet the trailing stop behind a new price
  stop      the remaining position was stopped out
  replay    walk a plan through a CSV of prices (time,price[,event,arg])

Examples:
  tradeplan trade list
  tradeplan trade hit 01HQ... tp1
  tradeplan trade trail 01HQ... 56000
  tradeplan trade replay 01HQ... prices.csv`,
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved plans (active only unless --all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			plans, err := j.ListPlans(!all)
			if err != nil {
				return fmt.Errorf("list plans: %w", err)
			}
			printPlans(cmd.OutOrStdout(), plans)
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include closed and stopped plans")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a plan with its event log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			t, err := j.GetPlan(args[0])
			if err != nil {
				return err
			}
			events, err := j.ListEvents(t.ID)
			if err != nil {
				return fmt.Errorf("list events: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatPlanOrg(t, events))
			return nil
		},
	}

	hit := &cobra.Command{
		Use:   "hit <id> <tp1|tp2|tp3>",
		Short: "Mark a take-profit level as reached",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := trade.ParseLevel(args[1])
			if err != nil {
				return err
			}
			return a.transition(cmd.OutOrStdout(), args[0], func(t trade.Trade) (trade.Trade, []trade.Event, error) {
				return t.Hit(level, a.now())
			})
		},
	}

	stop := &cobra.Command{
		Use:   "stop <id>",
		Short: "Close the remaining position at the current stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(cmd.OutOrStdout(), args[0], func(t trade.Trade) (trade.Trade, []trade.Event, error) {
				return t.StopOut(a.now())
			})
		},
	}

	trail := &cobra.Command{
		Use:   "trail <id> <price>",
		Short: "Report a new price: ratchets the trailing stop, stops out if crossed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			px, err := strconv.ParseFloat(args[1], 64)
			if err != nil || px <= 0 {
				return fmt.Errorf("invalid price %q", args[1])
			}
			return a.transition(cmd.OutOrStdout(), args[0], func(t trade.Trade) (trade.Trade, []trade.Event, error) {
				if t.StopHit(px) {
					return t.StopOut(a.now())
				}
				next, events := t.Trail(px, a.now())
				return next, events, nil
			})
		},
	}

	var opts replay.Options
	var dryRun bool
	replayCmd := &cobra.Command{
		Use:   "replay <id> <prices.csv>",
		Short: "Replay observed prices against a plan: targets, stops and trailing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.replay(cmd, args[0], args[1], opts, dryRun)
		},
	}
	replayCmd.Flags().BoolVar(&opts.TickThenEvent, "tick-then-event", false, "apply the price before the scripted event on each row")
	replayCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the result without storing it")

	cmd.AddCommand(list, show, hit, stop, trail, replayCmd)
	return cmd
}

func (a *app) replay(cmd *cobra.Command, id, csvPath string, opts replay.Options, dryRun bool) error {
	w := cmd.OutOrStdout()
	if dryRun {
		j, err := a.openSQLite()
		if err != nil {
			return err
		}
		defer j.Close()

		t, err := j.GetPlan(id)
		if err != nil {
			return err
		}
		res, err := replay.CSV(cmd.Context(), csvPath, t, opts)
		if err != nil {
			return fmt.Errorf("replay %s: %w", csvPath, err)
		}
		for _, e := range res.Events {
			fmt.Fprintf(w, "%s %s\n", shortRef(e.TradeID), describe(e))
		}
		fmt.Fprintf(w, "%d prices replayed (dry run): %s, stop %s\n", res.Ticks, res.Trade.Status.State(), price(res.Trade.Status.CurrentSL))
		return nil
	}

	ticks := 0
	err := a.transition(w, id, func(t trade.Trade) (trade.Trade, []trade.Event, error) {
		res, err := replay.CSV(cmd.Context(), csvPath, t, opts)
		if err != nil {
			return t, nil, fmt.Errorf("replay %s: %w", csvPath, err)
		}
		ticks = res.Ticks
		return res.Trade, res.Events, nil
	})
	if err != nil {
		return err
	}
	a.log.Debug().Str("trade_id", id).Str("file", csvPath).Int("ticks", ticks).Msg("replay done")
	fmt.Fprintf(w, "%d prices replayed\n", ticks)
	return nil
}

// transition loads a plan, applies fn and stores the result with its events.
func (a *app) transition(w io.Writer, id string, fn func(trade.Trade) (trade.Trade, []trade.Event, error)) error {
	j, err := a.openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.GetPlan(id)
	if err != nil {
		return err
	}

	next, events, err := fn(t)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintf(w, "%s: nothing changed (%s, stop %s)\n", next.ID, next.Status.State(), price(next.Status.CurrentSL))
		return nil
	}
	if err := j.ApplyTransition(next, events); err != nil {
		return fmt.Errorf("store transition: %w", err)
	}

	for _, e := range events {
		ev := a.log.Info().Str("trade_id", e.TradeID).Str("event", string(e.Type))
		if e.Level != 0 {
			ev = ev.Str("level", e.Level.String())
		}
		if e.NewSL != 0 {
			ev = ev.Float64("old_sl", e.OldSL).Float64("new_sl", e.NewSL)
		}
		ev.Msg("trade event")
		fmt.Fprintf(w, "%s %s\n", shortRef(e.TradeID), describe(e))
	}
	fmt.Fprintf(w, "%s: %s, stop %s, %d%% of targets done\n", shortRef(next.ID), next.Status.State(), price(next.Status.CurrentSL), next.Status.Progress())
	return nil
}

func describe(e trade.Event) string {
	switch e.Type {
	case trade.EventTPHit:
		return fmt.Sprintf("%s hit at %s", e.Level, price(e.Price))
	case trade.EventMovedToBreakeven:
		return fmt.Sprintf("stop moved to break-even %s (was %s)", price(e.NewSL), price(e.OldSL))
	case trade.EventTrailingActivated:
		return "trailing stop activated"
	case trade.EventTrailingUpdated:
		return fmt.Sprintf("trailing stop %s -> %s", price(e.OldSL), price(e.NewSL))
	case trade.EventSLHit:
		return fmt.Sprintf("stop hit at %s", price(e.Price))
	case trade.EventPositionClosed:
		return "position closed"
	}
	return string(e.Type)
}

func printPlans(w io.Writer, plans []trade.Trade) {
	t := newTable(w, "Plans")
	t.AppendHeader(table.Row{"ID", "Symbol", "Side", "Entry", "Stop", "TP1", "TP2", "TP3", "State", "Done"})
	for _, p := range plans {
		t.AppendRow(table.Row{
			p.ID,
			p.Symbol,
			p.Setup.Setup.Side.String(),
			price(p.EntryPrice),
			price(p.Status.CurrentSL),
			check(p.Status.TP1Hit),
			check(p.Status.TP2Hit),
			check(p.Status.TP3Hit),
			p.Status.State().String(),
			fmt.Sprintf("%d%%", p.Status.Progress()),
		})
	}
	if len(plans) == 0 {
		t.AppendRow(table.Row{"(none)"})
	}
	t.Render()
}

func shortRef(id string) string {
	if len(id) <= 10 {
		return id
	}
	return id[:10]
}
