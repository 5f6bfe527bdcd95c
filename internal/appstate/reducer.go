package appstate

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format of ScheduledWorkout.ScheduledDate.
const DateLayout = "2006-01-02"

type env struct {
	now   time.Time
	newID func() string
}

// action is one state transition. The set is closed: only this package
// defines actions, and the store exposes one method per action.
type action interface {
	apply(s *State, e env) bool
}

// reduce applies a to a shallow copy of s. Collections touched by the
// action are replaced, never written through, so s stays valid.
func reduce(s State, a action, e env) (State, bool) {
	next := s
	if !a.apply(&next, e) {
		return s, false
	}
	return next, true
}

func defaultEnv(now time.Time) env {
	return env{now: now, newID: uuid.NewString}
}

func uniqueID(id string, taken func(string) bool, newID func() string) string {
	if id != "" && !taken(id) {
		return id
	}
	for {
		candidate := newID()
		if !taken(candidate) {
			return candidate
		}
	}
}

// CompletionDate is the UTC calendar date a session was completed on.
func CompletionDate(ws WorkoutSession) string {
	return ws.CompletedAt.UTC().Format(DateLayout)
}

type setUserProfile struct{ profile UserProfile }

func (a setUserProfile) apply(s *State, _ env) bool {
	p := a.profile
	s.UserProfile = &p
	return true
}

type setFitnessGoals struct{ goals FitnessGoals }

func (a setFitnessGoals) apply(s *State, _ env) bool {
	g := cloneGoals(a.goals)
	s.FitnessGoals = &g
	return true
}

type logWorkoutData struct{ workout WorkoutData }

func (a logWorkoutData) apply(s *State, e env) bool {
	w := cloneWorkoutData(a.workout)
	w.ID = uniqueID(w.ID, func(id string) bool {
		return slices.ContainsFunc(s.Workouts, func(x WorkoutData) bool { return x.ID == id })
	}, e.newID)
	if w.Date == "" {
		w.Date = e.now.UTC().Format(DateLayout)
	}
	s.Workouts = appendCopy(s.Workouts, w)
	return true
}

type createWorkoutTemplate struct{ template WorkoutTemplate }

func (a createWorkoutTemplate) apply(s *State, e env) bool {
	t := cloneTemplate(a.template)
	t.ID = uniqueID(t.ID, func(id string) bool {
		_, ok := findTemplate(s.WorkoutTemplates, id)
		return ok
	}, e.newID)
	seen := map[string]bool{}
	for i := range t.Exercises {
		t.Exercises[i].ID = uniqueID(t.Exercises[i].ID, func(id string) bool { return seen[id] }, e.newID)
		seen[t.Exercises[i].ID] = true
	}
	if t.Category == "" {
		t.Category = CategoryMixed
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = e.now
	}
	s.WorkoutTemplates = appendCopy(s.WorkoutTemplates, t)
	return true
}

type scheduleWorkout struct{ workout ScheduledWorkout }

func (a scheduleWorkout) apply(s *State, e env) bool {
	sw := cloneScheduled(a.workout)
	sw.ID = uniqueID(sw.ID, func(id string) bool {
		return indexScheduled(s.ScheduledWorkouts, id) >= 0
	}, e.newID)
	if sw.TemplateID == "" {
		sw.TemplateID = sw.Template.ID
	}
	if sw.Template.ID == "" {
		if t, ok := findTemplate(s.WorkoutTemplates, sw.TemplateID); ok {
			sw.Template = cloneTemplate(t)
		}
	}
	sw.Status = StatusScheduled
	s.ScheduledWorkouts = appendCopy(s.ScheduledWorkouts, sw)
	return true
}

type cancelScheduledWorkout struct{ id string }

func (a cancelScheduledWorkout) apply(s *State, _ env) bool {
	i := indexScheduled(s.ScheduledWorkouts, a.id)
	if i < 0 || !s.ScheduledWorkouts[i].Status.Open() {
		return false
	}
	s.ScheduledWorkouts = slices.Delete(slices.Clone(s.ScheduledWorkouts), i, i+1)
	return true
}

type rescheduleWorkout struct {
	id, date, slot string
}

func (a rescheduleWorkout) apply(s *State, _ env) bool {
	return updateScheduled(s, a.id, func(sw *ScheduledWorkout) bool {
		if !sw.Status.Open() {
			return false
		}
		sw.ScheduledDate = a.date
		sw.ScheduledTime = a.slot
		return true
	})
}

type markScheduled struct {
	id     string
	status ScheduleStatus
}

func (a markScheduled) apply(s *State, _ env) bool {
	return updateScheduled(s, a.id, func(sw *ScheduledWorkout) bool {
		switch a.status {
		case StatusCompleted:
			if !sw.Status.Open() {
				return false
			}
		case StatusSkipped:
			if sw.Status != StatusScheduled {
				return false
			}
		default:
			return false
		}
		sw.Status = a.status
		return true
	})
}

type startWorkoutSession struct{ session WorkoutSession }

func (a startWorkoutSession) apply(s *State, e env) bool {
	ws := cloneSession(a.session)
	ws.ID = uniqueID(ws.ID, func(id string) bool {
		return indexSession(s.WorkoutSessions, id) >= 0
	}, e.newID)
	if ws.StartTime.IsZero() {
		ws.StartTime = e.now
	}
	if ws.ScheduledWorkoutID != "" {
		updateScheduled(s, ws.ScheduledWorkoutID, func(sw *ScheduledWorkout) bool {
			if sw.Status != StatusScheduled {
				return false
			}
			sw.Status = StatusInProgress
			return true
		})
	}
	s.CurrentSession = &ws
	return true
}

type updateWorkoutSession struct{ session WorkoutSession }

func (a updateWorkoutSession) apply(s *State, _ env) bool {
	ws := cloneSession(a.session)
	s.CurrentSession = &ws
	return true
}

type completeWorkoutSession struct{ session WorkoutSession }

func (a completeWorkoutSession) apply(s *State, e env) bool {
	ws := cloneSession(a.session)
	ws.ID = uniqueID(ws.ID, func(id string) bool {
		return indexSession(s.WorkoutSessions, id) >= 0
	}, e.newID)
	if ws.CompletedAt.IsZero() {
		ws.CompletedAt = e.now
	}
	if ws.EndTime == nil {
		end := ws.CompletedAt
		ws.EndTime = &end
	}

	if ws.ScheduledWorkoutID != "" {
		markScheduled{id: ws.ScheduledWorkoutID, status: StatusCompleted}.apply(s, e)
	} else if ids := MatchScheduled(*s, ws); len(ids) == 1 {
		markScheduled{id: ids[0], status: StatusCompleted}.apply(s, e)
	}

	s.WorkoutSessions = appendCopy(s.WorkoutSessions, ws)
	s.CurrentSession = nil
	return true
}

type updateCurrentSession struct{ fn func(*WorkoutSession) bool }

func (a updateCurrentSession) apply(s *State, _ env) bool {
	if s.CurrentSession == nil {
		return false
	}
	ws := cloneSession(*s.CurrentSession)
	if !a.fn(&ws) {
		return false
	}
	s.CurrentSession = &ws
	return true
}

type completeCurrentSession struct{ finish func(*WorkoutSession) }

func (a completeCurrentSession) apply(s *State, e env) bool {
	if s.CurrentSession == nil {
		return false
	}
	ws := cloneSession(*s.CurrentSession)
	if a.finish != nil {
		a.finish(&ws)
	}
	return completeWorkoutSession{session: ws}.apply(s, e)
}

type setLoading struct{ loading bool }

func (a setLoading) apply(s *State, _ env) bool {
	s.IsLoading = a.loading
	return true
}

// MatchScheduled returns the ids of open scheduled workouts that a session
// without an explicit ScheduledWorkoutID would complete: same template,
// scheduled on the session's completion date.
func MatchScheduled(s State, ws WorkoutSession) []string {
	date := CompletionDate(ws)
	var ids []string
	for _, sw := range s.ScheduledWorkouts {
		if sw.TemplateID == ws.TemplateID && sw.ScheduledDate == date && sw.Status.Open() {
			ids = append(ids, sw.ID)
		}
	}
	return ids
}

func updateScheduled(s *State, id string, fn func(*ScheduledWorkout) bool) bool {
	i := indexScheduled(s.ScheduledWorkouts, id)
	if i < 0 {
		return false
	}
	sw := s.ScheduledWorkouts[i]
	if !fn(&sw) {
		return false
	}
	next := slices.Clone(s.ScheduledWorkouts)
	next[i] = sw
	s.ScheduledWorkouts = next
	return true
}

func indexScheduled(list []ScheduledWorkout, id string) int {
	return slices.IndexFunc(list, func(sw ScheduledWorkout) bool { return sw.ID == id })
}

func indexSession(list []WorkoutSession, id string) int {
	return slices.IndexFunc(list, func(ws WorkoutSession) bool { return ws.ID == id })
}

func findTemplate(list []WorkoutTemplate, id string) (WorkoutTemplate, bool) {
	i := slices.IndexFunc(list, func(t WorkoutTemplate) bool { return t.ID == id })
	if i < 0 {
		return WorkoutTemplate{}, false
	}
	return list[i], true
}
