package nutrition

import (
	"math"
	"time"
)

const MlPerOz = 29.5735

// Hydration tracks today's water intake in litres against a daily goal.
type Hydration struct {
	CurrentL float64
	GoalL    float64
	Streak   int

	day     string
	goalMet bool
}

type HydrationView struct {
	CurrentL float64 `json:"current"`
	GoalL    float64 `json:"goal"`
	Streak   int     `json:"streak"`
	Progress float64 `json:"progress"`
	GoalMet  bool    `json:"goal_met"`
}

func NewHydration(goalL float64, now time.Time) *Hydration {
	return &Hydration{GoalL: goalL, day: now.Format(dayLayout)}
}

// AddWater records ml of intake. The streak grows once per day, on the
// first intake that reaches the goal. Non-positive amounts are ignored.
func (h *Hydration) AddWater(ml float64, now time.Time) {
	if ml <= 0 || math.IsNaN(ml) || math.IsInf(ml, 0) {
		return
	}
	h.Rollover(now)
	h.CurrentL += ml / 1000
	if !h.goalMet && h.GoalL > 0 && h.CurrentL >= h.GoalL {
		h.goalMet = true
		h.Streak++
	}
}

// Progress is today's share of the goal, clamped to [0, 1].
func (h *Hydration) Progress() float64 {
	if h.GoalL <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, h.CurrentL/h.GoalL))
}

// Rollover closes the current day when now falls on a later one. The streak
// breaks if the closing day missed the goal or whole days passed with no
// intake at all. Calling it again on the same day is a no-op.
func (h *Hydration) Rollover(now time.Time) {
	day := now.Format(dayLayout)
	if day == h.day {
		return
	}
	if !h.goalMet || daysBetween(h.day, now) > 1 {
		h.Streak = 0
	}
	h.CurrentL = 0
	h.goalMet = false
	h.day = day
}

// daysBetween counts calendar days from the day string to now's date, in
// now's location. Unparsable days count as zero.
func daysBetween(day string, now time.Time) int {
	from, err := time.ParseInLocation(dayLayout, day, now.Location())
	if err != nil {
		return 0
	}
	y, m, d := now.Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return int(math.Round(to.Sub(from).Hours() / 24))
}

func (h *Hydration) View() HydrationView {
	return HydrationView{
		CurrentL: h.CurrentL,
		GoalL:    h.GoalL,
		Streak:   h.Streak,
		Progress: h.Progress(),
		GoalMet:  h.goalMet,
	}
}
