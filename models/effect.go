package models

import "time"

type EffectType string

const (
	EffectSpeed         EffectType = "speed"
	EffectSlow          EffectType = "slow"
	EffectInvincibility EffectType = "invincibility"
	EffectMagnet        EffectType = "magnet"
)

// Effect is the timed effect a pickup grants.
type Effect struct {
	Type       EffectType
	Duration   time.Duration
	Multiplier float64
}

// ActiveEffect is an effect applied to a player until ExpiresAt.
type ActiveEffect struct {
	Type       EffectType
	ExpiresAt  time.Time
	Multiplier float64
}
