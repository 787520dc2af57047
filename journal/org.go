package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/tradeplan/trade"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block suitable for pasting into a journal.
// Structured facts go in the PROPERTIES drawer, the narrative sections are left for the trader.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** Trade: %s %s %s (%s)", t.Symbol, sideLabel(t.Side), strings.ToUpper(t.Outcome), shortID(t.TradeID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.TradeID))
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.TradeID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", sideLabel(t.Side)))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.5f\n", t.EntryPrice))
	b.WriteString(fmt.Sprintf(":STOP_LOSS: %.5f\n", t.StopLoss))
	b.WriteString(fmt.Sprintf(":TP1: %.5f\n", t.TP1))
	if t.TP2 > 0 {
		b.WriteString(fmt.Sprintf(":TP2: %.5f\n", t.TP2))
	}
	if t.TP3 > 0 {
		b.WriteString(fmt.Sprintf(":TP3: %.5f\n", t.TP3))
	}
	b.WriteString(fmt.Sprintf(":POSITION_SIZE: %.4f\n", t.PositionSize))
	b.WriteString(fmt.Sprintf(":RISK_AMOUNT: %.2f\n", t.RiskAmount))
	b.WriteString(fmt.Sprintf(":OUTCOME: %s\n", t.Outcome))
	b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", t.CloseTime.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":REALIZED_PL: %.2f\n", t.RealizedPL))
	b.WriteString(fmt.Sprintf(":R_MULTIPLE: %.2f\n", t.RMultiple))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

// FormatPlanOrg renders a planned trade with its event log as a checklist.
func FormatPlanOrg(t trade.Trade, events []trade.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Plan: %s %s (%s)\n", t.Symbol, sideLabel(string(t.Setup.Setup.Side)), shortID(t.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", t.ID)
	fmt.Fprintf(&b, ":CREATED: %s\n", t.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":STATE: %s\n", t.Status.State())
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.5f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":STOP_LOSS: %.5f\n", t.StopLoss)
	fmt.Fprintf(&b, ":CURRENT_SL: %.5f\n", t.Status.CurrentSL)
	fmt.Fprintf(&b, ":POSITION_SIZE: %.4f\n", t.PositionSize)
	fmt.Fprintf(&b, ":RISK_AMOUNT: %.2f\n", t.RiskAmount)
	b.WriteString(":END:\n")

	alloc := t.Allocations()
	checks := []struct {
		done  bool
		price float64
		size  float64
	}{
		{t.Status.TP1Hit, t.TP1, alloc.TP1},
		{t.Status.TP2Hit, t.TP2, alloc.TP2},
		{t.Status.TP3Hit, t.TP3, alloc.TP3},
	}
	for i, c := range checks {
		box := " "
		if c.done {
			box = "X"
		}
		fmt.Fprintf(&b, "- [%s] TP%d %.5f close %.4f\n", box, i+1, c.price, c.size)
	}

	if len(events) > 0 {
		b.WriteString("*** Log\n")
		for _, e := range events {
			fmt.Fprintf(&b, "- %s %s", e.Time.UTC().Format(time.RFC3339), e.Type)
			if e.Level != 0 {
				fmt.Fprintf(&b, " %s", e.Level)
			}
			if e.NewSL != 0 {
				fmt.Fprintf(&b, " sl %.5f -> %.5f", e.OldSL, e.NewSL)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sideLabel(side string) string {
	if side == "" {
		return "?"
	}
	return strings.ToUpper(side)
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
