package models

import (
	"math/rand"
	"time"
)

type GameMode string

const (
	ModePvP        GameMode = "pvp"
	ModeAITraining GameMode = "ai_training"
)

type EndReason string

const (
	EndTimeout     EndReason = "timeout"
	EndElimination EndReason = "elimination"
	EndForfeit     EndReason = "forfeit"
	EndDisconnect  EndReason = "disconnect"
	EndNoContest   EndReason = "no_contest"
	EndInvariant   EndReason = "invariant"
)

// GameState is the root aggregate of one match. It is mutated only by the
// engine and its systems.
type GameState struct {
	MatchID          string
	MapSize          int
	Mode             GameMode
	Player1          *Player
	Player2          *Player
	Collectibles     []*Collectible
	StartTime        time.Time
	RemainingSeconds int
	IsGameOver       bool
	WinnerID         *string
	EndReason        EndReason
}

func NewGameState(matchID string, mapSize int, mode GameMode) *GameState {
	return &GameState{
		MatchID: matchID,
		MapSize: mapSize,
		Mode:    mode,
	}
}

// Players returns the non-nil players in slot order.
func (s *GameState) Players() []*Player {
	out := make([]*Player, 0, 2)
	if s.Player1 != nil {
		out = append(out, s.Player1)
	}
	if s.Player2 != nil {
		out = append(out, s.Player2)
	}
	return out
}

// Opponent returns the other side of p, or nil.
func (s *GameState) Opponent(p *Player) *Player {
	switch p {
	case s.Player1:
		return s.Player2
	case s.Player2:
		return s.Player1
	}
	return nil
}

func (s *GameState) IsPositionValid(pos Position) bool {
	return pos.InBounds(s.MapSize)
}

// IsPositionOccupied reports whether a collidable snake covers pos.
func (s *GameState) IsPositionOccupied(pos Position) bool {
	for _, p := range s.Players() {
		if p.Collidable() && p.Snake.Occupies(pos) {
			return true
		}
	}
	return false
}

func (s *GameState) CollectibleAt(pos Position) *Collectible {
	for _, c := range s.Collectibles {
		if c.Position == pos {
			return c
		}
	}
	return nil
}

// IsCellFree reports whether pos is on the grid and holds neither a live
// snake segment nor a collectible.
func (s *GameState) IsCellFree(pos Position) bool {
	return s.IsPositionValid(pos) && !s.IsPositionOccupied(pos) && s.CollectibleAt(pos) == nil
}

// Center is the deterministic fallback cell for exhausted placement.
func (s *GameState) Center() Position {
	return Position{X: s.MapSize / 2, Y: s.MapSize / 2}
}

// GetRandomEmptyPosition samples up to attempts random cells and returns the
// first free one. When every attempt fails it returns the grid center and false.
func (s *GameState) GetRandomEmptyPosition(rng *rand.Rand, attempts int) (Position, bool) {
	return s.RandomPosition(rng, attempts, s.IsCellFree)
}

// RandomPosition is GetRandomEmptyPosition with a caller supplied predicate.
func (s *GameState) RandomPosition(rng *rand.Rand, attempts int, ok func(Position) bool) (Position, bool) {
	for i := 0; i < attempts; i++ {
		pos := Position{X: rng.Intn(s.MapSize), Y: rng.Intn(s.MapSize)}
		if ok(pos) {
			return pos, true
		}
	}
	return s.Center(), false
}

func (s *GameState) AddCollectible(c *Collectible) {
	s.Collectibles = append(s.Collectibles, c)
}

func (s *GameState) RemoveCollectible(c *Collectible) bool {
	for i, existing := range s.Collectibles {
		if existing == c {
			s.Collectibles = append(s.Collectibles[:i], s.Collectibles[i+1:]...)
			return true
		}
	}
	return false
}

// End finishes the match. A nil winner is a draw or no-contest.
func (s *GameState) End(winner *Player, reason EndReason) {
	if s.IsGameOver {
		return
	}
	s.IsGameOver = true
	s.EndReason = reason
	s.WinnerID = nil
	if winner != nil {
		id := winner.ID
		s.WinnerID = &id
	}
}

// DetermineWinner applies the end-of-match rules in order:
//  1. a missing player ends the match as a no-contest;
//  2. a player out of lives loses to the other (checked every tick);
//  3. on time expiry, fewer deaths wins, then the longer snake, else a draw.
//
// Both players running out of lives on the same tick falls through to rule 3.
func (s *GameState) DetermineWinner(timeUp bool) {
	if s.IsGameOver {
		return
	}
	if s.Player1 == nil || s.Player2 == nil {
		s.End(nil, EndNoContest)
		return
	}

	p1Out := !s.Player1.IsAlive()
	p2Out := !s.Player2.IsAlive()
	switch {
	case p1Out && !p2Out:
		s.End(s.Player2, EndElimination)
	case p2Out && !p1Out:
		s.End(s.Player1, EndElimination)
	case p1Out && p2Out:
		s.End(s.tieBreak(), EndElimination)
	case timeUp:
		s.End(s.tieBreak(), EndTimeout)
	}
}

func (s *GameState) tieBreak() *Player {
	p1, p2 := s.Player1, s.Player2
	switch {
	case p1.DeathCount < p2.DeathCount:
		return p1
	case p2.DeathCount < p1.DeathCount:
		return p2
	case p1.Snake.Length() > p2.Snake.Length():
		return p1
	case p2.Snake.Length() > p1.Snake.Length():
		return p2
	}
	return nil
}
