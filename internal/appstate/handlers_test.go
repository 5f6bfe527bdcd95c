package appstate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

var handlerNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func newTestApp(opts ...Option) (*fiber.App, *Store) {
	opts = append([]Option{WithClock(fixedClock(handlerNow))}, opts...)
	store := NewStore(State{}, opts...)
	app := fiber.New()
	RegisterRoutes(app.Group("/state"), store, fixedClock(handlerNow))
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestStateHandlersTemplateFlow(t *testing.T) {
	app, _ := newTestApp()

	resp := doJSON(t, app, http.MethodPost, "/state/templates", WorkoutTemplate{
		Name:      "Upper Body Strength",
		Category:  CategoryStrength,
		Exercises: []ExercisePlan{{Name: "Bench Press", Sets: 2, Reps: 10, RestTimeSec: 90, EstimatedCalories: 60}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create template status %d", resp.StatusCode)
	}
	tpl := decode[WorkoutTemplate](t, resp)

	resp = doJSON(t, app, http.MethodGet, "/state/templates/"+tpl.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get template status %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodGet, "/state/templates/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPost, "/state/templates", WorkoutTemplate{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unnamed template, got %d", resp.StatusCode)
	}
}

func TestStateHandlersScheduleAndReschedule(t *testing.T) {
	app, store := newTestApp()
	store.CreateWorkoutTemplate(WorkoutTemplate{ID: "t1", Name: "Cardio Blast"})

	resp := doJSON(t, app, http.MethodPost, "/state/scheduled", ScheduledWorkout{
		TemplateID: "t1", ScheduledDate: "2024-01-15", ScheduledTime: "08:00",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected past slot rejected, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/state/scheduled", ScheduledWorkout{
		TemplateID: "t1", ScheduledDate: "2024-01-15", ScheduledTime: "18:00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("schedule status %d", resp.StatusCode)
	}
	sw := decode[ScheduledWorkout](t, resp)
	if sw.Template.Name != "Cardio Blast" {
		t.Fatalf("expected embedded template, got %+v", sw.Template)
	}

	resp = doJSON(t, app, http.MethodPatch, "/state/scheduled/"+sw.ID, rescheduleRequest{ScheduledDate: "2024-01-16", ScheduledTime: "07:00"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reschedule status %d", resp.StatusCode)
	}
	moved := decode[ScheduledWorkout](t, resp)
	if moved.ScheduledDate != "2024-01-16" || moved.ScheduledTime != "07:00" {
		t.Fatalf("unexpected reschedule result %+v", moved)
	}

	resp = doJSON(t, app, http.MethodPatch, "/state/scheduled/"+sw.ID, rescheduleRequest{ScheduledDate: "2024-01-15", ScheduledTime: "09:00"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected slot rule enforced, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPatch, "/state/scheduled/"+sw.ID, rescheduleRequest{ScheduledDate: "2024-01-14", ScheduledTime: "20:00"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected past date rejected, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPatch, "/state/scheduled/missing", rescheduleRequest{ScheduledDate: "2024-01-16", ScheduledTime: "07:00"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPatch, "/state/scheduled/"+sw.ID, rescheduleRequest{ScheduledDate: "tomorrow", ScheduledTime: "07:00"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/state/scheduled/"+sw.ID+"/missed", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("missed status %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodDelete, "/state/scheduled/"+sw.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected skipped workout not cancellable, got %d", resp.StatusCode)
	}
}

func TestStateHandlersCancel(t *testing.T) {
	app, store := newTestApp()
	store.ScheduleWorkout(ScheduledWorkout{ID: "s1", TemplateID: "t1", ScheduledDate: "2024-01-16"})

	resp := doJSON(t, app, http.MethodDelete, "/state/scheduled/s1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("cancel status %d", resp.StatusCode)
	}
	if len(store.Snapshot().ScheduledWorkouts) != 0 {
		t.Fatalf("expected removal")
	}
	resp = doJSON(t, app, http.MethodPost, "/state/scheduled/s1/complete", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStateHandlersSessionLifecycle(t *testing.T) {
	app, store := newTestApp()
	store.CreateWorkoutTemplate(WorkoutTemplate{
		ID:   "t1",
		Name: "Upper Body Strength",
		Exercises: []ExercisePlan{
			{ID: "e1", Name: "Push-ups", Sets: 1, RestTimeSec: 45, EstimatedCalories: 30},
			{ID: "e2", Name: "Plank", EstimatedCalories: 10},
		},
	})
	store.ScheduleWorkout(ScheduledWorkout{ID: "s1", TemplateID: "t1", ScheduledDate: "2024-01-15", ScheduledTime: "18:00"})

	resp := doJSON(t, app, http.MethodPost, "/state/session", startSessionRequest{ScheduledWorkoutID: "s1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status %d", resp.StatusCode)
	}
	if sw, _ := store.ScheduledWorkout("s1"); sw.Status != StatusInProgress {
		t.Fatalf("expected in-progress, got %q", sw.Status)
	}

	resp = doJSON(t, app, http.MethodPost, "/state/session/exercises/0/sets", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete set status %d", resp.StatusCode)
	}
	body := decode[struct {
		Session     WorkoutSession `json:"session"`
		RestSeconds int            `json:"rest_seconds"`
	}](t, resp)
	if body.RestSeconds != 45 || !body.Session.Exercises[0].Completed {
		t.Fatalf("unexpected set result %+v", body)
	}

	resp = doJSON(t, app, http.MethodPost, "/state/session/exercises/1/toggle", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPost, "/state/session/exercises/9/toggle", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad index, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, "/state/session/complete", completeSessionRequest{Notes: "solid"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete status %d", resp.StatusCode)
	}
	done := decode[WorkoutSession](t, resp)
	if done.TotalCalories != 40 || done.Notes != "solid" {
		t.Fatalf("unexpected completed session %+v", done)
	}

	snap := store.Snapshot()
	if snap.CurrentSession != nil || len(snap.WorkoutSessions) != 1 {
		t.Fatalf("expected session moved to history")
	}
	if snap.ScheduledWorkouts[0].Status != StatusCompleted {
		t.Fatalf("expected s1 completed, got %q", snap.ScheduledWorkouts[0].Status)
	}

	resp = doJSON(t, app, http.MethodPost, "/state/session/complete", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without session, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/state/stats", nil)
	stats := decode[Stats](t, resp)
	if stats.Sessions != 1 || stats.Calories != 40 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestStateHandlersStartUnknownTemplate(t *testing.T) {
	app, _ := newTestApp()
	resp := doJSON(t, app, http.MethodPost, "/state/session", startSessionRequest{TemplateID: "missing"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStateHandlersProfileGoalsWorkoutsLoading(t *testing.T) {
	app, store := newTestApp()

	resp := doJSON(t, app, http.MethodPut, "/state/profile", UserProfile{ID: "u1", Name: "Alex", Role: RoleClient})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPut, "/state/goals", FitnessGoals{PrimaryGoal: GoalGeneral})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("goals status %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPost, "/state/workouts", WorkoutData{Type: ActivityRun, DurationMin: 25})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("workouts status %d", resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodPut, "/state/loading", loadingRequest{Loading: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("loading status %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, "/state/", nil)
	snap := decode[State](t, resp)
	if snap.UserProfile == nil || snap.UserProfile.Name != "Alex" || len(snap.Workouts) != 1 || !snap.IsLoading {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if store.Snapshot().FitnessGoals.PrimaryGoal != GoalGeneral {
		t.Fatalf("expected goals stored")
	}
}

func TestStateHandlersBadBody(t *testing.T) {
	app, _ := newTestApp()
	for _, path := range []string{"/state/workouts", "/state/templates", "/state/scheduled", "/state/session"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil || resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected bad request for %s", path)
		}
	}
}

func TestStateHandlersSlots(t *testing.T) {
	app, _ := newTestApp()
	resp := doJSON(t, app, http.MethodGet, "/state/slots?date=2024-01-15&selected=09:00", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("slots status %d", resp.StatusCode)
	}
	body := decode[struct {
		Available []string `json:"available"`
		Selected  string   `json:"selected"`
	}](t, resp)
	if body.Selected != "10:00" || body.Available[0] != "10:00" {
		t.Fatalf("unexpected slots %+v", body)
	}

	resp = doJSON(t, app, http.MethodGet, "/state/slots?date=soon", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

type failingPersister struct{}

func (failingPersister) Load(context.Context) (State, bool, error) { return State{}, false, nil }
func (failingPersister) Save(context.Context, State) error     { return errors.New("unavailable") }

func TestStateHandlersFlush(t *testing.T) {
	app, _ := newTestApp()
	resp := doJSON(t, app, http.MethodPost, "/state/flush", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("flush status %d", resp.StatusCode)
	}

	app, _ = newTestApp(WithPersister(failingPersister{}))
	resp = doJSON(t, app, http.MethodPost, "/state/flush", nil)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

type slowPersister struct{}

func (slowPersister) Load(context.Context) (State, bool, error) { return State{}, false, nil }

func (slowPersister) Save(context.Context, State) error {
	time.Sleep(time.Millisecond)
	return nil
}

func TestStateHandlersConcurrentSetsAreNotLost(t *testing.T) {
	app, store := newTestApp(WithPersister(slowPersister{}))
	store.StartWorkoutSession(WorkoutSession{
		ID:        "w1",
		Exercises: []ExerciseResult{{ExerciseID: "e1", TargetSets: 100}},
	})

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/state/session/exercises/0/sets", nil), -1)
			if err != nil {
				errs <- err
				return
			}
			if resp.StatusCode != http.StatusOK {
				errs <- errors.New(resp.Status)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("set request: %v", err)
	}

	cur := store.Snapshot().CurrentSession
	if cur == nil || cur.Exercises[0].ActualSets != n {
		t.Fatalf("expected %d sets recorded, got %+v", n, cur)
	}
}

func TestStateHandlersSetsAfterCompleteDoNotReviveSession(t *testing.T) {
	app, store := newTestApp(WithPersister(slowPersister{}))
	store.StartWorkoutSession(WorkoutSession{ID: "w1", Exercises: []ExerciseResult{{ExerciseID: "e1", TargetSets: 10}}})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := "/state/session/exercises/0/sets"
			if i == 5 {
				path = "/state/session/complete"
			}
			_, _ = app.Test(httptest.NewRequest(http.MethodPost, path, nil), -1)
		}(i)
	}
	wg.Wait()

	snap := store.Snapshot()
	if snap.CurrentSession != nil || len(snap.WorkoutSessions) != 1 {
		t.Fatalf("expected completed session to stay in history only, current=%v history=%d", snap.CurrentSession, len(snap.WorkoutSessions))
	}
}
