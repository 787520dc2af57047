package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	tradesSheet  = "Trades"
	summarySheet = "Summary"
)

// ExportXLSX writes trades (one row each, oldest first as given) and a
// summary sheet to path.
func ExportXLSX(path string, trades []TradeRecord) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), tradesSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	header, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return err
	}
	money, err := fx.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	for i, h := range tradeHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(tradesSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(tradeHeader), 1)
	if err := fx.SetCellStyle(tradesSheet, "A1", last, header); err != nil {
		return err
	}

	for r, t := range trades {
		row := r + 2
		values := []any{
			t.TradeID, t.Symbol, t.Side, t.EntryPrice, t.StopLoss, t.TP1, t.TP2, t.TP3,
			t.PositionSize, t.RiskAmount, t.RiskReward, t.Outcome, t.RealizedPL, t.RMultiple,
			t.CloseTime.UTC().Format("2006-01-02 15:04:05"),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := fx.SetCellValue(tradesSheet, cell, v); err != nil {
				return err
			}
		}
		plCell, _ := excelize.CoordinatesToCellName(13, row)
		if err := fx.SetCellStyle(tradesSheet, plCell, plCell, money); err != nil {
			return err
		}
	}

	s := Summarize(trades)
	rows := [][]any{
		{"Metric", "Value"},
		{"Trades", s.Trades},
		{"Wins", s.Wins},
		{"Losses", s.Losses},
		{"Gross profit", s.GrossProfit},
		{"Gross loss", s.GrossLoss},
		{"Net P/L", s.NetPL},
		{"Profit factor", s.ProfitFactor},
		{"Average R", s.AvgR},
	}
	for r, kv := range rows {
		for c, v := range kv {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := fx.SetCellValue(summarySheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := fx.SetCellStyle(summarySheet, "A1", "B1", header); err != nil {
		return err
	}
	if err := fx.SetColWidth(summarySheet, "A", "A", 16); err != nil {
		return err
	}

	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	return fx.SaveAs(path)
}
