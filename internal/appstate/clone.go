package appstate

import "slices"

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		Workouts:          cloneEach(s.Workouts, cloneWorkoutData),
		WorkoutTemplates:  cloneEach(s.WorkoutTemplates, cloneTemplate),
		ScheduledWorkouts: cloneEach(s.ScheduledWorkouts, cloneScheduled),
		WorkoutSessions:   cloneEach(s.WorkoutSessions, cloneSession),
		IsLoading:         s.IsLoading,
	}
	if s.UserProfile != nil {
		p := *s.UserProfile
		out.UserProfile = &p
	}
	if s.FitnessGoals != nil {
		g := cloneGoals(*s.FitnessGoals)
		out.FitnessGoals = &g
	}
	if s.CurrentSession != nil {
		cur := cloneSession(*s.CurrentSession)
		out.CurrentSession = &cur
	}
	return out
}

func cloneEach[T any](in []T, fn func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneGoals(g FitnessGoals) FitnessGoals {
	g.TargetMetrics.Weight = cloneFloat(g.TargetMetrics.Weight)
	g.TargetMetrics.VO2Max = cloneFloat(g.TargetMetrics.VO2Max)
	return g
}

func clonePlan(e ExercisePlan) ExercisePlan {
	e.Weight = cloneFloat(e.Weight)
	return e
}

func cloneResult(e ExerciseResult) ExerciseResult {
	e.ActualWeight = cloneFloat(e.ActualWeight)
	return e
}

func cloneTemplate(t WorkoutTemplate) WorkoutTemplate {
	t.Exercises = cloneEach(t.Exercises, clonePlan)
	return t
}

func cloneScheduled(sw ScheduledWorkout) ScheduledWorkout {
	sw.Template = cloneTemplate(sw.Template)
	return sw
}

func cloneSession(ws WorkoutSession) WorkoutSession {
	ws.Exercises = cloneEach(ws.Exercises, cloneResult)
	if ws.EndTime != nil {
		end := *ws.EndTime
		ws.EndTime = &end
	}
	return ws
}

func cloneWorkoutData(w WorkoutData) WorkoutData {
	w.Distance = cloneFloat(w.Distance)
	w.HeartRate = cloneInt(w.HeartRate)
	w.Calories = cloneInt(w.Calories)
	return w
}

// appendCopy appends v to a fresh copy of in so earlier states never share
// a backing array with later ones.
func appendCopy[T any](in []T, v T) []T {
	out := slices.Grow(slices.Clone(in), 1)
	return append(out, v)
}
