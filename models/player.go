package models

import "time"

// DeathCause classifies the collision that killed a snake.
type DeathCause string

const (
	CauseWall     DeathCause = "wall"
	CauseSelf     DeathCause = "self"
	CauseOpponent DeathCause = "opponent"
)

// Player is one side of a duel and owns exactly one Snake.
type Player struct {
	ID             string
	Name           string
	IsAI           bool
	Snake          Snake
	LivesRemaining int
	DeathCount     int
	Score          int
	MaxLength      int
	IsRespawning   bool
	RespawnTime    *time.Time
	LastDeathCause DeathCause
	Effects        []ActiveEffect
	// PendingGrowth is the number of segments still to be added, one per move.
	PendingGrowth int
	// MoveCredit accumulates fractional moves under speed effects.
	MoveCredit float64
}

func NewPlayer(id, name string, lives int) *Player {
	return &Player{
		ID:             id,
		Name:           name,
		LivesRemaining: lives,
	}
}

func (p *Player) IsAlive() bool {
	return p.LivesRemaining > 0
}

// Collidable is the single rule deciding whether a player's body blocks
// others: dead or respawning snakes keep stale segments that never count.
func (p *Player) Collidable() bool {
	return p != nil && !p.Snake.IsDead && !p.IsRespawning && len(p.Snake.Body) > 0
}

// Effect returns the active effect of the given type, if any.
func (p *Player) Effect(t EffectType) (ActiveEffect, bool) {
	for _, e := range p.Effects {
		if e.Type == t {
			return e, true
		}
	}
	return ActiveEffect{}, false
}
