package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradeplan/funded"
	"github.com/rustyeddy/tradeplan/journal"
)

func newJournalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query trade journal data",
		Long: `Query and export closed trades from the SQLite journal.

Subcommands:
  trade   - Show a specific trade by ID
  today   - List trades closed today
  day     - List trades closed on a specific day
  equity  - Show the balance after each booked trade
  export  - Write trades to CSV, XLSX or Org

Examples:
  tradeplan journal trade <trade-id>
  tradeplan journal today
  tradeplan journal day 2024-01-15
  tradeplan journal equity --from 2024-01-01
  tradeplan journal export --format xlsx --out trades.xlsx --from 2024-01-01`,
	}

	tradeCmd := &cobra.Command{
		Use:   "trade <trade-id>",
		Short: "Show a specific trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			rec, err := j.GetTrade(args[0])
			if err != nil {
				return fmt.Errorf("get trade: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
			return nil
		},
	}

	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "List trades closed today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end := funded.DayBounds(a.now())
			return a.printDay(cmd.OutOrStdout(), start, end)
		},
	}

	dayCmd := &cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "List trades closed on a specific day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := funded.ParseDay(a.now().Location(), args[0])
			if err != nil {
				return fmt.Errorf("date: %w", err)
			}
			return a.printDay(cmd.OutOrStdout(), start, end)
		},
	}

	cmd.AddCommand(tradeCmd, todayCmd, dayCmd, newEquityCmd(a), newExportCmd(a))
	return cmd
}

func (a *app) printDay(w io.Writer, start, end time.Time) error {
	j, err := a.openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintf(w, "No trades closed on %s\n", start.Format("2006-01-02"))
		return nil
	}

	fmt.Fprintln(w, journal.FormatTradesOrg(recs))
	s := journal.Summarize(recs)
	fmt.Fprintf(w, "\n%d trades, %d wins, %d losses, net %s, avg %.2fR\n", s.Trades, s.Wins, s.Losses, money(s.NetPL), s.AvgR)
	return nil
}

func newExportCmd(a *app) *cobra.Command {
	var format, out, from, to string
	var remote bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export closed trades to csv, xlsx or org",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.dayRange(from, to)
			if err != nil {
				return err
			}

			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			}

			recs, err := a.closedTrades(cmd.Context(), remote, start, end)
			if err != nil {
				return err
			}

			switch format {
			case "csv":
				err = journal.WriteTradesCSV(out, recs)
			case "xlsx":
				err = journal.ExportXLSX(out, recs)
			case "org":
				if out == "-" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
					return err
				}
				err = writeFile(out, journal.FormatTradesOrg(recs))
			default:
				return fmt.Errorf("unknown export format %q (want csv, xlsx or org)", format)
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			a.log.Info().Str("format", format).Str("out", out).Int("trades", len(recs)).Msg("journal exported")
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d trades to %s\n", len(recs), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "csv|xlsx|org (default from --out extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "trades.csv", "output path ('-' for org on stdout)")
	cmd.Flags().StringVar(&from, "from", "", "first day to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day to include, YYYY-MM-DD")
	cmd.Flags().BoolVar(&remote, "remote", false, "read from the shared Postgres journal instead of the local store")
	return cmd
}

// closedTrades reads trades closed within [start, end) from the local store,
// or from Postgres when remote is set.
func (a *app) closedTrades(ctx context.Context, remote bool, start, end time.Time) ([]journal.TradeRecord, error) {
	if remote {
		if a.cfg.Journal.DSN == "" {
			return nil, fmt.Errorf("--remote needs journal.dsn")
		}
		p, err := journal.NewPostgres(ctx, a.cfg.Journal.DSN)
		if err != nil {
			return nil, err
		}
		defer p.Close()

		recs, err := p.ListTradesClosedBetween(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("query remote trades: %w", err)
		}
		return recs, nil
	}

	j, err := a.openSQLite()
	if err != nil {
		return nil, err
	}
	defer j.Close()

	recs, err := j.ListTradesClosedBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	return recs, nil
}

// dayRange turns optional --from/--to days into [start, end). Without --to
// the range runs up to now.
func (a *app) dayRange(from, to string) (time.Time, time.Time, error) {
	loc := a.now().Location()
	start := time.Time{}
	end := a.now().Add(time.Second)
	if from != "" {
		s, _, err := funded.ParseDay(loc, from)
		if err != nil {
			return start, end, fmt.Errorf("--from: %w", err)
		}
		start = s
	}
	if to != "" {
		_, e, err := funded.ParseDay(loc, to)
		if err != nil {
			return start, end, fmt.Errorf("--to: %w", err)
		}
		end = e
	}
	return start, end, nil
}

func newEquityCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "equity",
		Short: "Show the account balance after each booked trade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.dayRange(from, to)
			if err != nil {
				return err
			}

			j, err := a.openSQLite()
			if err != nil {
				return err
			}
			defer j.Close()

			snaps, err := j.ListEquityBetween(start, end)
			if err != nil {
				return fmt.Errorf("query equity: %w", err)
			}
			printEquity(cmd.OutOrStdout(), a.now().Location(), snaps)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day to include, YYYY-MM-DD")
	return cmd
}

func printEquity(w io.Writer, loc *time.Location, snaps []journal.EquitySnapshot) {
	t := newTable(w, "Equity")
	t.AppendHeader(table.Row{"Time", "Balance", "Daily", "Weekly", "Monthly", "Total"})
	for _, e := range snaps {
		t.AppendRow(table.Row{
			e.Time.In(loc).Format("2006-01-02 15:04"),
			money(e.Balance),
			money(e.DailyPnL),
			money(e.WeeklyPnL),
			money(e.MonthlyPnL),
			money(e.TotalPnL),
		})
	}
	if len(snaps) == 0 {
		t.AppendRow(table.Row{"(none)"})
	}
	alignRight(t, 2, 3, 4, 5, 6)
	t.Render()
}

func writeFile(path, s string) error {
	return os.WriteFile(path, []byte(s), 0644)
}
