package models

import "time"

type SnakeSnapshot struct {
	Body      []Position `json:"body"`
	Direction string     `json:"direction"`
	IsDead    bool       `json:"is_dead"`
}

type EffectSnapshot struct {
	Type        EffectType `json:"type"`
	Multiplier  float64    `json:"multiplier"`
	RemainingMs int64      `json:"remaining_ms"`
}

type PlayerSnapshot struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	IsAI           bool             `json:"is_ai"`
	Snake          SnakeSnapshot    `json:"snake"`
	Lives          int              `json:"lives"`
	Deaths         int              `json:"deaths"`
	Score          int              `json:"score"`
	MaxLength      int              `json:"max_length"`
	IsRespawning   bool             `json:"is_respawning"`
	RespawnInMs    int64            `json:"respawn_in_ms,omitempty"`
	LastDeathCause DeathCause       `json:"last_death_cause,omitempty"`
	Effects        []EffectSnapshot `json:"effects,omitempty"`
}

type CollectibleSnapshot struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Category Category `json:"category"`
	VisualID string   `json:"visual_id"`
	Position Position `json:"position"`
}

// Message is a pickup notice raised during a tick.
type Message struct {
	PlayerID string `json:"player_id"`
	Text     string `json:"text"`
}

// Snapshot is an immutable value copy of a match after a tick. Nothing in
// it aliases engine state.
type Snapshot struct {
	MatchID          string                `json:"match_id"`
	Mode             GameMode              `json:"mode"`
	Tick             uint64                `json:"tick"`
	MapSize          int                   `json:"map_size"`
	Player1          *PlayerSnapshot       `json:"player1,omitempty"`
	Player2          *PlayerSnapshot       `json:"player2,omitempty"`
	Collectibles     []CollectibleSnapshot `json:"collectibles"`
	RemainingSeconds int                   `json:"remaining_seconds"`
	IsGameOver       bool                  `json:"is_game_over"`
	WinnerID         *string               `json:"winner_id"`
	EndReason        EndReason             `json:"end_reason,omitempty"`
	AISpeedMs        int                   `json:"ai_speed_ms,omitempty"`
	AISpeedPercent   int                   `json:"ai_speed_percent,omitempty"`
	Messages         []Message             `json:"messages,omitempty"`
}

// Snapshot copies the state at now.
func (s *GameState) Snapshot(now time.Time, tick uint64) Snapshot {
	snap := Snapshot{
		MatchID:          s.MatchID,
		Mode:             s.Mode,
		Tick:             tick,
		MapSize:          s.MapSize,
		Player1:          snapshotPlayer(s.Player1, now),
		Player2:          snapshotPlayer(s.Player2, now),
		Collectibles:     make([]CollectibleSnapshot, 0, len(s.Collectibles)),
		RemainingSeconds: s.RemainingSeconds,
		IsGameOver:       s.IsGameOver,
		EndReason:        s.EndReason,
	}
	if s.WinnerID != nil {
		id := *s.WinnerID
		snap.WinnerID = &id
	}
	for _, c := range s.Collectibles {
		snap.Collectibles = append(snap.Collectibles, CollectibleSnapshot{
			ID:       c.InstanceID,
			Kind:     c.ID(),
			Category: c.Category(),
			VisualID: c.VisualID(),
			Position: c.Position,
		})
	}
	return snap
}

func snapshotPlayer(p *Player, now time.Time) *PlayerSnapshot {
	if p == nil {
		return nil
	}
	body := make([]Position, len(p.Snake.Body))
	copy(body, p.Snake.Body)

	ps := &PlayerSnapshot{
		ID:   p.ID,
		Name: p.Name,
		IsAI: p.IsAI,
		Snake: SnakeSnapshot{
			Body:      body,
			Direction: p.Snake.CurrentDirection.String(),
			IsDead:    p.Snake.IsDead,
		},
		Lives:          p.LivesRemaining,
		Deaths:         p.DeathCount,
		Score:          p.Score,
		MaxLength:      p.MaxLength,
		IsRespawning:   p.IsRespawning,
		LastDeathCause: p.LastDeathCause,
	}
	if p.IsRespawning && p.RespawnTime != nil {
		ps.RespawnInMs = max(0, p.RespawnTime.Sub(now).Milliseconds())
	}
	for _, e := range p.Effects {
		ps.Effects = append(ps.Effects, EffectSnapshot{
			Type:        e.Type,
			Multiplier:  e.Multiplier,
			RemainingMs: max(0, e.ExpiresAt.Sub(now).Milliseconds()),
		})
	}
	return ps
}
