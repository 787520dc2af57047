package funded

import "time"

// DayBounds returns [start of day, start of next day) in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds returns the Monday-based week containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day, _ := DayBounds(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// MonthBounds returns the calendar month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// ParseDay parses YYYY-MM-DD in loc and returns that day's bounds.
func ParseDay(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, end := DayBounds(t)
	return start, end, nil
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
