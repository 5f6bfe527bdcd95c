package appstate

import (
	"context"
	"log"
	"slices"
	"sync"
	"time"
)

const saveTimeout = 5 * time.Second

// Persister loads and saves whole-state snapshots.
type Persister interface {
	Load(ctx context.Context) (State, bool, error)
	Save(ctx context.Context, s State) error
}

// Listener receives the state after every applied transition. The value is
// shared between listeners and must not be modified. Listeners run in
// dispatch order and must not call mutating Store methods.
type Listener func(State)

type Option func(*Store)

func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithListener(l Listener) Option {
	return func(s *Store) { s.listeners = append(s.listeners, l) }
}

// Store is the single authoritative holder of application state. Every
// mutation goes through one of its methods; each applies atomically and in
// call order.
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	state     State
	now       func() time.Time
	persister Persister
	listeners []Listener
}

func NewStore(initial State, opts ...Option) *Store {
	s := &Store{
		state: initial.Clone(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore reads the persisted snapshot, or an empty state when none exists.
func Restore(ctx context.Context, p Persister) (State, error) {
	if p == nil {
		return State{}, nil
	}
	st, ok, err := p.Load(ctx)
	if err != nil {
		return State{}, err
	}
	if !ok {
		return State{}, nil
	}
	return st, nil
}

func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Template(id string) (WorkoutTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := findTemplate(s.state.WorkoutTemplates, id)
	if !ok {
		return WorkoutTemplate{}, false
	}
	return cloneTemplate(t), true
}

func (s *Store) ScheduledWorkout(id string) (ScheduledWorkout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexScheduled(s.state.ScheduledWorkouts, id)
	if i < 0 {
		return ScheduledWorkout{}, false
	}
	return cloneScheduled(s.state.ScheduledWorkouts[i]), true
}

// Flush saves the current state through the persister, if any.
func (s *Store) Flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	return s.persister.Save(ctx, s.Snapshot())
}

func (s *Store) SetUserProfile(p UserProfile) {
	s.dispatch(setUserProfile{profile: p})
}

func (s *Store) SetFitnessGoals(g FitnessGoals) {
	s.dispatch(setFitnessGoals{goals: g})
}

// LogWorkoutData appends an activity to the workout log and returns it as stored.
func (s *Store) LogWorkoutData(w WorkoutData) WorkoutData {
	st, _ := s.dispatch(logWorkoutData{workout: w})
	return st.Workouts[len(st.Workouts)-1]
}

// CreateWorkoutTemplate appends to the catalog and returns the stored
// template with its assigned ids.
func (s *Store) CreateWorkoutTemplate(t WorkoutTemplate) WorkoutTemplate {
	st, _ := s.dispatch(createWorkoutTemplate{template: t})
	return st.WorkoutTemplates[len(st.WorkoutTemplates)-1]
}

// ScheduleWorkout places a template on the calendar. The status is always
// reset to scheduled.
func (s *Store) ScheduleWorkout(sw ScheduledWorkout) ScheduledWorkout {
	st, _ := s.dispatch(scheduleWorkout{workout: sw})
	return st.ScheduledWorkouts[len(st.ScheduledWorkouts)-1]
}

// CancelScheduledWorkout removes an open scheduled workout. It reports
// false when the id is unknown or the workout already completed or skipped.
func (s *Store) CancelScheduledWorkout(id string) bool {
	_, ok := s.dispatch(cancelScheduledWorkout{id: id})
	return ok
}

// RescheduleWorkout moves an open scheduled workout to a new date and time.
func (s *Store) RescheduleWorkout(id, date, slot string) bool {
	_, ok := s.dispatch(rescheduleWorkout{id: id, date: date, slot: slot})
	return ok
}

func (s *Store) MarkScheduledWorkoutCompleted(id string) bool {
	_, ok := s.dispatch(markScheduled{id: id, status: StatusCompleted})
	return ok
}

func (s *Store) MarkScheduledWorkoutMissed(id string) bool {
	_, ok := s.dispatch(markScheduled{id: id, status: StatusSkipped})
	return ok
}

// StartWorkoutSession sets the current session, replacing any session
// already in progress.
func (s *Store) StartWorkoutSession(ws WorkoutSession) WorkoutSession {
	st, _ := s.dispatchWith(startWorkoutSession{session: ws}, func(prev State) {
		if prev.CurrentSession != nil && prev.CurrentSession.ID != ws.ID {
			log.Printf("appstate: session %s replaced before completion", prev.CurrentSession.ID)
		}
	})
	return *st.CurrentSession
}

// UpdateWorkoutSession replaces the current session wholesale.
func (s *Store) UpdateWorkoutSession(ws WorkoutSession) {
	s.dispatch(updateWorkoutSession{session: ws})
}

// UpdateCurrentSession edits the current session in place under the store
// lock. fn gets a private copy and returns false to discard its changes; it
// must not call Store methods. Reports false when no session is in progress.
func (s *Store) UpdateCurrentSession(fn func(*WorkoutSession) bool) (WorkoutSession, bool) {
	st, ok := s.dispatch(updateCurrentSession{fn: fn})
	if !ok {
		return WorkoutSession{}, false
	}
	return *st.CurrentSession, true
}

// CompleteWorkoutSession moves the session into history, clears the
// current slot, and marks the linked scheduled workout completed.
func (s *Store) CompleteWorkoutSession(ws WorkoutSession) WorkoutSession {
	st, _ := s.dispatchWith(completeWorkoutSession{session: ws}, func(prev State) {
		s.warnAmbiguous(prev, ws)
	})
	return st.WorkoutSessions[len(st.WorkoutSessions)-1]
}

// CompleteCurrentSession completes whatever session is in progress, after
// finish (if non-nil) has stamped its copy. finish runs under the store lock.
func (s *Store) CompleteCurrentSession(finish func(*WorkoutSession)) (WorkoutSession, bool) {
	st, ok := s.dispatchWith(completeCurrentSession{finish: finish}, func(prev State) {
		if prev.CurrentSession == nil {
			return
		}
		ws := cloneSession(*prev.CurrentSession)
		if finish != nil {
			finish(&ws)
		}
		s.warnAmbiguous(prev, ws)
	})
	if !ok {
		return WorkoutSession{}, false
	}
	return st.WorkoutSessions[len(st.WorkoutSessions)-1], true
}

func (s *Store) warnAmbiguous(prev State, ws WorkoutSession) {
	if ws.ScheduledWorkoutID != "" {
		return
	}
	if ws.CompletedAt.IsZero() {
		ws.CompletedAt = s.now()
	}
	if ids := MatchScheduled(prev, ws); len(ids) > 1 {
		log.Printf("appstate: session %s matches %d scheduled workouts, none marked", ws.ID, len(ids))
	}
}

func (s *Store) SetLoading(loading bool) {
	s.dispatch(setLoading{loading: loading})
}

func (s *Store) dispatch(a action) (State, bool) {
	return s.dispatchWith(a, nil)
}

// dispatchWith applies a under the state lock, then hands the lock over to
// notifyMu before releasing it so listeners observe transitions in order.
// inspect sees the pre-transition state while the lock is held.
func (s *Store) dispatchWith(a action, inspect func(prev State)) (State, bool) {
	s.mu.Lock()
	if inspect != nil {
		inspect(s.state)
	}
	next, applied := reduce(s.state, a, defaultEnv(s.now()))
	if !applied {
		s.mu.Unlock()
		return State{}, false
	}
	s.state = next
	snap := next.Clone()
	listeners := slices.Clone(s.listeners)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.save(snap)
	for _, l := range listeners {
		l(snap)
	}
	return next.Clone(), true
}

func (s *Store) save(st State) {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.persister.Save(ctx, st); err != nil {
		log.Printf("appstate: save snapshot: %v", err)
	}
}
