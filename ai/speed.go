// Package ai drives computer controlled snakes: a progressive speed curve,
// a bounded breadth-first path finder and the per-move decision logic.
package ai

import (
	"math"
	"time"

	"snake-duel/clock"
)

type SpeedConfig struct {
	BaseMs        int
	Factor        float64
	Interval      time.Duration
	MaxMultiplier float64
	MinMs         int
}

// SpeedScaler maps elapsed match time to the AI move interval. Every call
// reads the clock; nothing is cached.
type SpeedScaler struct {
	clock clock.Clock
	start time.Time
	cfg   SpeedConfig
}

func NewSpeedScaler(clk clock.Clock, start time.Time, cfg SpeedConfig) *SpeedScaler {
	return &SpeedScaler{clock: clk, start: start, cfg: cfg}
}

// Multiplier is Factor^(whole intervals elapsed), capped at MaxMultiplier.
// A non-positive Interval never speeds up.
func (s *SpeedScaler) Multiplier() float64 {
	if s.cfg.Interval <= 0 {
		return 1
	}
	intervals := int(s.clock.Now().Sub(s.start) / s.cfg.Interval)
	return math.Min(math.Pow(s.cfg.Factor, float64(intervals)), s.cfg.MaxMultiplier)
}

// GetCurrentSpeed returns milliseconds per AI move.
func (s *SpeedScaler) GetCurrentSpeed() int {
	return max(int(float64(s.cfg.BaseMs)/s.Multiplier()), s.cfg.MinMs)
}

func (s *SpeedScaler) GetSpeedPercentage() int {
	return int(s.Multiplier() * 100)
}

func (s *SpeedScaler) Interval() time.Duration {
	return time.Duration(s.GetCurrentSpeed()) * time.Millisecond
}
