package trade

import "time"

// EventType names a lifecycle change worth journaling.
type EventType string

const (
	EventTPHit             EventType = "tp_hit"
	EventMovedToBreakeven  EventType = "moved_to_breakeven"
	EventTrailingActivated EventType = "trailing_activated"
	EventTrailingUpdated   EventType = "trailing_updated"
	EventSLHit             EventType = "sl_hit"
	EventPositionClosed    EventType = "position_closed"
)

// Event is one applied lifecycle change. Level is zero for stop events.
// OldSL/NewSL are set only when the stop moved.
type Event struct {
	TradeID string    `json:"trade_id"`
	Time    time.Time `json:"time"`
	Type    EventType `json:"type"`
	Level   Level     `json:"level,omitempty"`
	Price   float64   `json:"price,omitempty"`
	OldSL   float64   `json:"old_sl,omitempty"`
	NewSL   float64   `json:"new_sl,omitempty"`
}

func (t Trade) event(typ EventType, at time.Time, level Level, price float64) Event {
	return Event{
		TradeID: t.ID,
		Time:    at,
		Type:    typ,
		Level:   level,
		Price:   price,
	}
}
