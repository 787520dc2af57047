package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// alignRight right-aligns the given 1-based columns.
func alignRight(t table.Writer, cols ...int) {
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for _, c := range cols {
		cfgs = append(cfgs, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	t.SetColumnConfigs(cfgs)
}

func money(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func price(v float64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func check(b bool) string {
	if b {
		return "✓"
	}
	return ""
}
