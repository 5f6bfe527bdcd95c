package appstate

type Stats struct {
	Sessions int `json:"sessions"`
	Minutes  int `json:"minutes"`
	Calories int `json:"calories"`
}

// SessionStats aggregates the session history.
func SessionStats(history []WorkoutSession) Stats {
	st := Stats{Sessions: len(history)}
	for _, ws := range history {
		st.Minutes += ws.DurationMin
		st.Calories += ws.TotalCalories
	}
	return st
}
