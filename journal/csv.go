package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var (
	tradeHeader  = []string{"trade_id", "symbol", "side", "entry_price", "stop_loss", "tp1", "tp2", "tp3", "position_size", "risk_amount", "risk_reward", "outcome", "realized_pl", "r_multiple", "close_time"}
	equityHeader = []string{"time", "balance", "daily_pnl", "weekly_pnl", "monthly_pnl", "total_pnl"}
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

// NewCSV opens the two files for appending, creating them with a header
// row when they are new or empty.
func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := openCSV(tradesPath, tradeHeader)
	if err != nil {
		return nil, err
	}
	ef, err := openCSV(equityPath, equityHeader)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}
	return &CSVJournal{csv.NewWriter(tf), csv.NewWriter(ef), tf, ef}, nil
}

func openCSV(path string, header []string) (*os.File, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	st, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, err
	}
	if st.Size() > 0 {
		return fh, nil
	}

	w := csv.NewWriter(fh)
	if err := w.Write(header); err != nil {
		_ = fh.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = fh.Close()
		return nil, err
	}
	return fh, nil
}

func (j *CSVJournal) write(w *csv.Writer, rec []string) error {
	if err := w.Write(rec); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return j.write(j.trades, tradeRow(t))
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return j.write(j.equity, []string{
		e.Time.UTC().Format(time.RFC3339),
		f(e.Balance),
		f(e.DailyPnL),
		f(e.WeeklyPnL),
		f(e.MonthlyPnL),
		f(e.TotalPnL),
	})
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

// WriteTradesCSV exports trades to a single file in the journal's column layout.
func WriteTradesCSV(path string, trades []TradeRecord) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(fh)
	if err := w.Write(tradeHeader); err != nil {
		_ = fh.Close()
		return err
	}
	for _, t := range trades {
		if err := w.Write(tradeRow(t)); err != nil {
			_ = fh.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

func tradeRow(t TradeRecord) []string {
	return []string{
		t.TradeID,
		t.Symbol,
		t.Side,
		f(t.EntryPrice),
		f(t.StopLoss),
		f(t.TP1),
		f(t.TP2),
		f(t.TP3),
		f(t.PositionSize),
		f(t.RiskAmount),
		f(t.RiskReward),
		t.Outcome,
		f(t.RealizedPL),
		f(t.RMultiple),
		t.CloseTime.UTC().Format(time.RFC3339),
	}
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
