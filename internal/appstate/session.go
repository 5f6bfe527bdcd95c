package appstate

import "time"

// NewSessionFromTemplate prepares an in-progress session whose exercise
// results mirror the template's plan, none completed yet.
func NewSessionFromTemplate(t WorkoutTemplate, scheduledWorkoutID string, start time.Time) WorkoutSession {
	results := make([]ExerciseResult, 0, len(t.Exercises))
	for _, ex := range t.Exercises {
		results = append(results, ExerciseResult{
			ExerciseID:        ex.ID,
			Name:              ex.Name,
			TargetSets:        ex.Sets,
			TargetReps:        ex.Reps,
			RestTimeSec:       ex.RestTimeSec,
			EstimatedCalories: ex.EstimatedCalories,
		})
	}
	return WorkoutSession{
		TemplateID:         t.ID,
		TemplateName:       t.Name,
		ScheduledWorkoutID: scheduledWorkoutID,
		StartTime:          start,
		Exercises:          results,
	}
}

// CompleteSet records one finished set of exercise i and returns the rest
// period to start, in seconds. The exercise is marked completed once its
// target set count (at least one) is reached.
func (ws *WorkoutSession) CompleteSet(i int) int {
	if i < 0 || i >= len(ws.Exercises) {
		return 0
	}
	ex := &ws.Exercises[i]
	ex.ActualSets++
	target := ex.TargetSets
	if target < 1 {
		target = 1
	}
	if ex.ActualSets >= target {
		ex.Completed = true
	}
	return ex.RestTimeSec
}

// ToggleExercise flips the completion flag of exercise i.
func (ws *WorkoutSession) ToggleExercise(i int) {
	if i < 0 || i >= len(ws.Exercises) {
		return
	}
	ws.Exercises[i].Completed = !ws.Exercises[i].Completed
}

// CompletedExercises counts exercises marked completed.
func (ws WorkoutSession) CompletedExercises() int {
	n := 0
	for _, ex := range ws.Exercises {
		if ex.Completed {
			n++
		}
	}
	return n
}

// Progress is the completed share of exercises in [0, 1]; 0 without exercises.
func (ws WorkoutSession) Progress() float64 {
	if len(ws.Exercises) == 0 {
		return 0
	}
	return float64(ws.CompletedExercises()) / float64(len(ws.Exercises))
}

// Finish stamps the end of the session. Duration is whole elapsed minutes
// and calories are the estimates summed over every exercise.
func (ws *WorkoutSession) Finish(end time.Time) {
	ws.EndTime = &end
	ws.CompletedAt = end
	if !ws.StartTime.IsZero() && end.After(ws.StartTime) {
		ws.DurationMin = int(end.Sub(ws.StartTime) / time.Minute)
	}
	total := 0
	for _, ex := range ws.Exercises {
		total += ex.EstimatedCalories
	}
	ws.TotalCalories = total
}
