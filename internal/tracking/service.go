package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Pritam-2002/firness-track/internal/appstate"
	"github.com/Pritam-2002/firness-track/internal/shared/geo"
	"github.com/Pritam-2002/firness-track/internal/stream"

	"github.com/google/uuid"
)

var (
	ErrRunNotFound     = errors.New("run not found")
	ErrRunExists       = errors.New("run already active")
	ErrInvalidDistance = errors.New("distance must be positive")
)

// Recorder receives finished runs.
type Recorder interface {
	LogWorkoutData(w appstate.WorkoutData) appstate.WorkoutData
}

// TickSource returns a channel ticking every interval and a func releasing it.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

func realTicks(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

type run struct {
	id        string
	startedAt time.Time
	timer     *Timer
	release   func()

	mu         sync.Mutex
	distanceKm float64
	last       *geo.Point
	samples    int
}

type Service struct {
	hub      *stream.Hub
	recorder Recorder
	interval time.Duration
	ticks    TickSource
	now      func() time.Time

	mu   sync.Mutex
	runs map[string]*run
}

func NewService(hub *stream.Hub, recorder Recorder, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Second
	}
	return &Service{
		hub:      hub,
		recorder: recorder,
		interval: interval,
		ticks:    realTicks,
		now:      time.Now,
		runs:     map[string]*run{},
	}
}

// StartRun registers a run and starts its timer. The timer lives until
// StopRun or Close, not for the lifetime of ctx.
func (s *Service) StartRun(_ context.Context, id string) (Summary, error) {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	if _, ok := s.runs[id]; ok {
		s.mu.Unlock()
		return Summary{}, ErrRunExists
	}
	tick, release := s.ticks(s.interval)
	r := &run{id: id, startedAt: s.now(), release: release}
	r.timer = NewTimer(tick, func(TimerState) { s.publish(r) })
	s.runs[id] = r
	s.mu.Unlock()

	r.timer.Start(context.Background())
	return r.summary(), nil
}

func (s *Service) AddDistance(id string, km float64) (Summary, error) {
	if km <= 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return Summary{}, ErrInvalidDistance
	}
	r, err := s.get(id)
	if err != nil {
		return Summary{}, err
	}
	r.mu.Lock()
	r.distanceKm += km
	r.mu.Unlock()
	return r.summary(), nil
}

// AddSample extends the route with a coordinate fix. Fixes taken while
// paused move the anchor without adding distance.
func (s *Service) AddSample(id string, p geo.Point) (Summary, error) {
	r, err := s.get(id)
	if err != nil {
		return Summary{}, err
	}
	paused := r.timer.Snapshot().Paused
	r.mu.Lock()
	if r.last != nil && !paused {
		r.distanceKm += geo.HaversineKm(r.last.Lat, r.last.Lng, p.Lat, p.Lng)
	}
	r.last = &p
	r.samples++
	r.mu.Unlock()
	return r.summary(), nil
}

func (s *Service) Pause(id string) (Summary, error) {
	return s.control(id, func(t *Timer) { t.Pause() })
}

func (s *Service) Resume(id string) (Summary, error) {
	return s.control(id, func(t *Timer) { t.Resume() })
}

func (s *Service) StartRest(id string, sec int) (Summary, error) {
	return s.control(id, func(t *Timer) { t.StartRest(sec) })
}

func (s *Service) SkipRest(id string) (Summary, error) {
	return s.control(id, func(t *Timer) { t.SkipRest() })
}

func (s *Service) Summary(id string) (Summary, error) {
	r, err := s.get(id)
	if err != nil {
		return Summary{}, err
	}
	return r.summary(), nil
}

// StopRun stops the timer, forgets the run, and hands it to the recorder.
func (s *Service) StopRun(id string) (Summary, error) {
	s.mu.Lock()
	r, ok := s.runs[id]
	if ok {
		delete(s.runs, id)
	}
	s.mu.Unlock()
	if !ok {
		return Summary{}, ErrRunNotFound
	}

	r.stop()
	sum := r.summary()
	if s.recorder != nil {
		s.recorder.LogWorkoutData(workoutFromSummary(sum))
	}
	return sum, nil
}

// Close stops every active run without recording it.
func (s *Service) Close() {
	s.mu.Lock()
	runs := s.runs
	s.runs = map[string]*run{}
	s.mu.Unlock()

	for _, r := range runs {
		r.stop()
	}
}

func (s *Service) control(id string, fn func(*Timer)) (Summary, error) {
	r, err := s.get(id)
	if err != nil {
		return Summary{}, err
	}
	fn(r.timer)
	return r.summary(), nil
}

func (s *Service) get(id string) (*run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}
	return r, nil
}

func (s *Service) publish(r *run) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(r.summary())
	if err != nil {
		log.Printf("tracking: encode summary: %v", err)
		return
	}
	s.hub.Broadcast(r.id, payload)
}

func (r *run) stop() {
	r.timer.Stop()
	if r.release != nil {
		r.release()
	}
}

func (r *run) summary() Summary {
	ts := r.timer.Snapshot()
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summary{
		RunID:            r.id,
		StartedAt:        r.startedAt,
		ElapsedSec:       ts.ElapsedSec,
		Elapsed:          FormatElapsed(ts.ElapsedSec),
		DistanceKm:       r.distanceKm,
		Pace:             Pace(r.distanceKm, ts.ElapsedSec),
		Samples:          r.samples,
		Paused:           ts.Paused,
		Resting:          ts.Resting,
		RestRemainingSec: ts.RestRemainingSec,
	}
}

func workoutFromSummary(sum Summary) appstate.WorkoutData {
	w := appstate.WorkoutData{
		ID:          sum.RunID,
		Date:        sum.StartedAt.UTC().Format(appstate.DateLayout),
		Type:        appstate.ActivityRun,
		DurationMin: sum.ElapsedSec / 60,
	}
	if sum.DistanceKm > 0 {
		d := sum.DistanceKm
		w.Distance = &d
		w.Pace = sum.Pace + "/km"
	}
	return w
}
