package tracking

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

type TimerState struct {
	ElapsedSec       int  `json:"elapsed_sec"`
	Paused           bool `json:"paused"`
	Resting          bool `json:"resting"`
	RestRemainingSec int  `json:"rest_remaining_sec"`
}

// Timer counts the elapsed seconds of one session. Each value received from
// tick is one second. A paused timer freezes both the elapsed count and the
// rest countdown.
type Timer struct {
	tick   <-chan time.Time
	onTick func(TimerState)

	mu    sync.Mutex
	state TimerState

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewTimer(tick <-chan time.Time, onTick func(TimerState)) *Timer {
	return &Timer{
		tick:   tick,
		onTick: onTick,
		done:   make(chan struct{}),
	}
}

// Start runs the timer until ctx ends or Stop is called. Later calls are no-ops.
func (t *Timer) Start(ctx context.Context) {
	t.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		t.mu.Lock()
		t.cancel = cancel
		t.mu.Unlock()
		go t.loop(ctx)
	})
}

func (t *Timer) loop(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-t.tick:
			if !ok {
				return
			}
			st := t.advance()
			if t.onTick != nil {
				t.onTick(st)
			}
		}
	}
}

func (t *Timer) advance() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Paused {
		return t.state
	}
	t.state.ElapsedSec++
	if t.state.Resting {
		t.state.RestRemainingSec--
		if t.state.RestRemainingSec <= 0 {
			t.state.Resting = false
			t.state.RestRemainingSec = 0
		}
	}
	return t.state
}

// Stop ends the timer goroutine and waits for it. Safe to call repeatedly
// and on a timer that never started.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		started := true
		t.startOnce.Do(func() { started = false })
		if !started {
			return
		}
		t.mu.Lock()
		cancel := t.cancel
		t.mu.Unlock()
		cancel()
		<-t.done
	})
}

func (t *Timer) Pause() {
	t.mu.Lock()
	t.state.Paused = true
	t.mu.Unlock()
}

func (t *Timer) Resume() {
	t.mu.Lock()
	t.state.Paused = false
	t.mu.Unlock()
}

// StartRest begins a countdown of sec seconds; non-positive values are ignored.
func (t *Timer) StartRest(sec int) {
	if sec <= 0 {
		return
	}
	t.mu.Lock()
	t.state.Resting = true
	t.state.RestRemainingSec = sec
	t.mu.Unlock()
}

func (t *Timer) SkipRest() {
	t.mu.Lock()
	t.state.Resting = false
	t.state.RestRemainingSec = 0
	t.mu.Unlock()
}

func (t *Timer) Snapshot() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// FormatElapsed renders seconds as MM:SS, or HH:MM:SS from the first hour.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Pace is the time per distance unit as M:SS, "0:00" without distance.
// Partial seconds are dropped.
func Pace(distance float64, elapsedSec int) string {
	if distance <= 0 || elapsedSec <= 0 {
		return "0:00"
	}
	per := int(math.Floor(float64(elapsedSec) / distance))
	return fmt.Sprintf("%d:%02d", per/60, per%60)
}
