package systems

import (
	"time"

	"snake-duel/clock"
	"snake-duel/models"
)

// TimerSystem derives the remaining match time from StartTime on every
// update instead of counting ticks.
type TimerSystem struct {
	state    *models.GameState
	clock    clock.Clock
	duration time.Duration
}

func NewTimerSystem(state *models.GameState, clk clock.Clock, duration time.Duration) *TimerSystem {
	return &TimerSystem{state: state, clock: clk, duration: duration}
}

func (t *TimerSystem) Start() {
	t.state.StartTime = t.clock.Now()
	t.state.RemainingSeconds = int(t.duration.Seconds())
}

func (t *TimerSystem) Elapsed() time.Duration {
	return t.clock.Now().Sub(t.state.StartTime)
}

// Update refreshes RemainingSeconds and decides the match once it hits zero.
func (t *TimerSystem) Update() {
	if t.state.IsGameOver {
		return
	}
	remaining := int(t.duration.Seconds()) - int(t.Elapsed().Seconds())
	t.state.RemainingSeconds = max(0, remaining)

	if t.state.RemainingSeconds == 0 {
		t.state.DetermineWinner(true)
	}
}
