package persist

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Pritam-2002/firness-track/internal/appstate"
	"github.com/Pritam-2002/firness-track/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
)

func sampleState() appstate.State {
	return appstate.State{
		UserProfile: &appstate.UserProfile{ID: "u1", Name: "Alex", Role: appstate.RoleClient},
		ScheduledWorkouts: []appstate.ScheduledWorkout{
			{ID: "s1", TemplateID: "t1", ScheduledDate: "2024-01-15", ScheduledTime: "18:00", Status: appstate.StatusScheduled},
		},
		WorkoutSessions: []appstate.WorkoutSession{
			{ID: "w1", TemplateID: "t1", CompletedAt: time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)},
		},
	}
}

func TestRedisBackendRoundTrip(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	b := NewRedisBackend(rdb, "runcoach:state")

	_, ok, err := b.Load(context.Background())
	if err != nil || ok {
		t.Fatalf("expected empty load, got ok=%v err=%v", ok, err)
	}

	if err := b.Save(context.Background(), sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !s.Exists("runcoach:state") {
		t.Fatalf("expected key written")
	}

	st, ok, err := b.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if st.UserProfile.Name != "Alex" || st.ScheduledWorkouts[0].ID != "s1" || !st.WorkoutSessions[0].CompletedAt.Equal(time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestRedisBackendErrors(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	b := NewRedisBackend(rdb, "k")

	if err := s.Set("k", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := b.Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}

	s.Close()
	if err := b.Save(context.Background(), appstate.State{}); err == nil {
		t.Fatalf("expected save error when redis is down")
	}
}

func TestPostgresBackendSaveLoad(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	raw, _ := json.Marshal(sampleState())
	mock.ExpectExec(`INSERT INTO app_state`).
		WithArgs("runcoach:state", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT payload FROM app_state WHERE id=\$1`).
		WithArgs("runcoach:state").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(raw))

	b := NewPostgresBackend(mock, "runcoach:state")
	if err := b.Save(context.Background(), sampleState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, ok, err := b.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if len(st.WorkoutSessions) != 1 || st.WorkoutSessions[0].ID != "w1" {
		t.Fatalf("unexpected state %+v", st)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresBackendNotFoundAndErrors(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT payload FROM app_state`).
		WithArgs("k").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT payload FROM app_state`).
		WithArgs("k").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectExec(`INSERT INTO app_state`).
		WithArgs("k", pgxmock.AnyArg()).
		WillReturnError(errors.New("read only"))

	b := NewPostgresBackend(mock, "k")
	if _, ok, err := b.Load(context.Background()); ok || err != nil {
		t.Fatalf("expected not found, got ok=%v err=%v", ok, err)
	}
	if _, _, err := b.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if err := b.Save(context.Background(), appstate.State{}); err == nil {
		t.Fatalf("expected save error")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	p, err := New(ctx, config.Config{StateBackend: config.BackendMemory}, nil, nil)
	if err != nil || p != nil {
		t.Fatalf("memory backend should have no persister")
	}

	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	p, err = New(ctx, config.Config{StateBackend: config.BackendRedis, StateKey: "k"}, nil, rdb)
	if err != nil {
		t.Fatalf("redis backend: %v", err)
	}
	if _, ok := p.(*RedisBackend); !ok {
		t.Fatalf("expected redis backend, got %T", p)
	}
	if _, err := New(ctx, config.Config{StateBackend: config.BackendRedis}, nil, nil); err == nil {
		t.Fatalf("expected error without redis")
	}

	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS app_state`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	p, err = New(ctx, config.Config{StateBackend: config.BackendPostgres, StateKey: "k"}, mock, nil)
	if err != nil {
		t.Fatalf("postgres backend: %v", err)
	}
	if _, ok := p.(*PostgresBackend); !ok {
		t.Fatalf("expected postgres backend, got %T", p)
	}

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS app_state`).
		WillReturnError(errors.New("permission denied"))
	if _, err := New(ctx, config.Config{StateBackend: config.BackendPostgres}, mock, nil); err == nil {
		t.Fatalf("expected migrate error")
	}
	if _, err := New(ctx, config.Config{StateBackend: config.BackendPostgres}, nil, nil); err == nil {
		t.Fatalf("expected error without postgres")
	}
	if _, err := New(ctx, config.Config{StateBackend: "etcd"}, nil, nil); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestStoreRestoresThroughBackend(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()
	b := NewRedisBackend(rdb, "runcoach:state")

	store := appstate.NewStore(appstate.State{}, appstate.WithPersister(b))
	store.CreateWorkoutTemplate(appstate.WorkoutTemplate{ID: "t1", Name: "Cardio Blast"})

	st, err := appstate.Restore(context.Background(), b)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	restored := appstate.NewStore(st)
	if _, ok := restored.Template("t1"); !ok {
		t.Fatalf("expected template after restore")
	}
}
