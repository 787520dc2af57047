// Package replay walks a planned trade through a series of observed prices:
// targets reached are hit in order, a crossed stop closes the trade and the
// trailing stop follows price once armed.
package replay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradeplan/trade"
)

// Options controls how replay behaves.
type Options struct {
	// If true: process the price first, then the scripted event.
	TickThenEvent bool
}

// Tick is one observed price with an optional scripted event.
type Tick struct {
	Time  time.Time
	Price float64
	Event string
	Arg   string
}

// Result is the trade after the last tick and everything that happened on the way.
type Result struct {
	Trade  trade.Trade
	Events []trade.Event
	Ticks  int
}

// CSV replays prices from a CSV file against t.
//
// CSV formats supported:
//
//  1. Basic prices:
//     time,price
//
//  2. Prices + events:
//     time,price,event,arg
//
// Events (case-insensitive):
//
//	HIT:   arg=tp1|tp2|tp3   mark a level by hand (partial fill, manual close)
//	STOP:                    close the remaining position at the current stop
//
// Replay stops early once the trade is no longer active.
func CSV(ctx context.Context, csvPath string, t trade.Trade, opts Options) (Result, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()
	return Read(ctx, f, t, opts)
}

// Read is CSV over any reader.
func Read(ctx context.Context, r io.Reader, t trade.Trade, opts Options) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	res := Result{Trade: t}
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		row, err := cr.Read()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		// file line of the record; blank lines are skipped by the reader
		line, _ := cr.FieldPos(0)
		header := first && strings.EqualFold(strings.TrimSpace(row[0]), "time")
		first = false
		if header {
			continue
		}

		tk, err := parseRow(row)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		next, events, err := Step(res.Trade, tk, opts)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		res.Trade = next
		res.Events = append(res.Events, events...)
		res.Ticks++

		if !res.Trade.Status.IsActive {
			return res, nil
		}
	}
}

func parseRow(row []string) (Tick, error) {
	if len(row) < 2 {
		return Tick{}, fmt.Errorf("bad row (need at least 2 cols time,price): %v", row)
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
	if err != nil {
		return Tick{}, fmt.Errorf("bad time %q: %w", row[0], err)
	}
	px, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return Tick{}, fmt.Errorf("bad price %q: %w", row[1], err)
	}

	tk := Tick{Time: ts, Price: px}
	if len(row) >= 3 {
		tk.Event = strings.TrimSpace(row[2])
	}
	if len(row) >= 4 {
		tk.Arg = strings.TrimSpace(row[3])
	}
	return tk, nil
}

// Step applies one tick to t.
func Step(t trade.Trade, tk Tick, opts Options) (trade.Trade, []trade.Event, error) {
	var all []trade.Event
	apply := func(f func(trade.Trade) (trade.Trade, []trade.Event, error)) error {
		next, events, err := f(t)
		if err != nil {
			return err
		}
		t = next
		all = append(all, events...)
		return nil
	}

	price := func(t trade.Trade) (trade.Trade, []trade.Event, error) {
		return onPrice(t, tk)
	}
	event := func(t trade.Trade) (trade.Trade, []trade.Event, error) {
		return onEvent(t, tk)
	}

	steps := []func(trade.Trade) (trade.Trade, []trade.Event, error){event, price}
	if opts.TickThenEvent {
		steps = []func(trade.Trade) (trade.Trade, []trade.Event, error){price, event}
	}
	for _, s := range steps {
		if err := apply(s); err != nil {
			return t, all, err
		}
	}
	return t, all, nil
}

// onPrice checks the stop first, then targets in order, then trails.
func onPrice(t trade.Trade, tk Tick) (trade.Trade, []trade.Event, error) {
	if tk.Price <= 0 || !t.Status.IsActive {
		return t, nil, nil
	}
	if t.StopHit(tk.Price) {
		return t.StopOut(tk.Time)
	}

	var all []trade.Event
	for _, level := range []trade.Level{trade.TP1, trade.TP2, trade.TP3} {
		if !reached(t, level, tk.Price) {
			break
		}
		next, events, err := t.Hit(level, tk.Time)
		if err != nil {
			return t, all, err
		}
		t = next
		all = append(all, events...)
	}

	next, events := t.Trail(tk.Price, tk.Time)
	return next, append(all, events...), nil
}

func reached(t trade.Trade, level trade.Level, price float64) bool {
	var tp float64
	switch level {
	case trade.TP1:
		tp = t.TP1
	case trade.TP2:
		tp = t.TP2
	case trade.TP3:
		tp = t.TP3
	}
	if tp <= 0 {
		return false
	}
	if t.IsLong() {
		return price >= tp
	}
	return price <= tp
}

func onEvent(t trade.Trade, tk Tick) (trade.Trade, []trade.Event, error) {
	switch strings.ToUpper(tk.Event) {
	case "":
		return t, nil, nil
	case "HIT":
		level, err := trade.ParseLevel(tk.Arg)
		if err != nil {
			return t, nil, fmt.Errorf("HIT: %w", err)
		}
		return t.Hit(level, tk.Time)
	case "STOP":
		return t.StopOut(tk.Time)
	default:
		return t, nil, fmt.Errorf("unknown event %q", tk.Event)
	}
}
