package schedule

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	SlotLayout = "15:04"
)

var (
	ErrSlotUnavailable = errors.New("no time slot available on the selected date")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidSlot     = errors.New("time must be HH:MM")
)

// DefaultSlots are the hourly slots offered by the scheduler.
var DefaultSlots = []string{
	"06:00", "07:00", "08:00", "09:00", "10:00", "11:00",
	"12:00", "13:00", "14:00", "15:00", "16:00", "17:00",
	"18:00", "19:00", "20:00", "21:00",
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// ParseSlot returns the slot as minutes after midnight.
func ParseSlot(s string) (int, error) {
	t, err := time.Parse(SlotLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Disabled reports whether slot can no longer be picked: every slot of a
// past date, and on today (in now's location) the slots at or before the
// current wall clock. Malformed slots are always disabled.
func Disabled(slot, date string, now time.Time) bool {
	mins, err := ParseSlot(slot)
	if err != nil {
		return true
	}
	// YYYY-MM-DD orders lexically.
	today := now.Format(DateLayout)
	switch {
	case date < today:
		return true
	case date > today:
		return false
	}
	return mins <= now.Hour()*60+now.Minute()
}

func Available(slots []string, date string, now time.Time) []string {
	var out []string
	for _, s := range slots {
		if !Disabled(s, date, now) {
			out = append(out, s)
		}
	}
	return out
}

// Resolve keeps selected while it is still enabled, otherwise moves to the
// next enabled slot after it, falling back to the earliest enabled one.
func Resolve(selected string, slots []string, date string, now time.Time) (string, error) {
	if !Disabled(selected, date, now) {
		return selected, nil
	}
	open := Available(slots, date, now)
	if len(open) == 0 {
		return "", ErrSlotUnavailable
	}
	sel, err := ParseSlot(selected)
	if err != nil {
		return open[0], nil
	}
	for _, s := range open {
		if m, _ := ParseSlot(s); m > sel {
			return s, nil
		}
	}
	return open[0], nil
}

// Validate checks a date/slot pair chosen for scheduling or rescheduling.
func Validate(date, slot string, now time.Time) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	if _, err := ParseSlot(slot); err != nil {
		return err
	}
	if Disabled(slot, date, now) {
		return fmt.Errorf("%w: %s %s has passed", ErrSlotUnavailable, date, slot)
	}
	return nil
}

type Day struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	DayName string `json:"day_name"`
}

// NextDays lists n consecutive days starting today.
func NextDays(now time.Time, n int) []Day {
	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		d := now.AddDate(0, 0, i)
		label := d.Format("Mon, Jan 2")
		switch i {
		case 0:
			label = "Today"
		case 1:
			label = "Tomorrow"
		}
		days = append(days, Day{
			Date:    d.Format(DateLayout),
			Label:   label,
			DayName: d.Weekday().String(),
		})
	}
	return days
}
