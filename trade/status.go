package trade

// Status is the mutable half of a trade, kept as a value.
//
// TP flags only go false->true, TP2 implies TP1 and TP3 implies TP2.
// CurrentSL starts at the planned stop and only moves toward profit.
// Once TP3 is hit or the trade is stopped out, IsActive stays false.
type Status struct {
	IsActive            bool    `json:"is_active"`
	TP1Hit              bool    `json:"tp1_hit"`
	TP2Hit              bool    `json:"tp2_hit"`
	TP3Hit              bool    `json:"tp3_hit"`
	StoppedOut          bool    `json:"stopped_out"`
	CurrentSL           float64 `json:"current_sl"`
	TrailingStopEnabled bool    `json:"trailing_stop_enabled"`
	TrailingStopPercent float64 `json:"trailing_stop_percent"`
}

// NewStatus is the state of a freshly planned trade.
func NewStatus(stopLoss float64) Status {
	return Status{
		IsActive:            true,
		CurrentSL:           stopLoss,
		TrailingStopPercent: DefaultTrailingStopPercent,
	}
}

type State int

const (
	StatePlanned State = iota
	StateTP1Hit
	StateTP2Hit
	StateClosed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateTP1Hit:
		return "tp1_hit"
	case StateTP2Hit:
		return "tp2_hit"
	case StateClosed:
		return "closed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

func (s Status) State() State {
	switch {
	case s.TP3Hit:
		return StateClosed
	case s.StoppedOut:
		return StateStopped
	case s.TP2Hit:
		return StateTP2Hit
	case s.TP1Hit:
		return StateTP1Hit
	default:
		return StatePlanned
	}
}

// Progress is the share of targets reached, in percent (33/66/100).
func (s Status) Progress() int {
	p := 0
	if s.TP1Hit {
		p += 33
	}
	if s.TP2Hit {
		p += 33
	}
	if s.TP3Hit {
		p += 34
	}
	return p
}

func (s Status) hit(l Level) bool {
	switch l {
	case TP1:
		return s.TP1Hit
	case TP2:
		return s.TP2Hit
	case TP3:
		return s.TP3Hit
	}
	return false
}
