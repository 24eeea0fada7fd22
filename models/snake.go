package models

import "snake-duel/constants"

// Snake is an ordered body with Body[0] as the head.
type Snake struct {
	Body             []Position
	CurrentDirection constants.Direction
	NextDirection    constants.Direction
	IsDead           bool
}

func (s *Snake) Head() Position {
	if len(s.Body) == 0 {
		return Position{}
	}
	return s.Body[0]
}

func (s *Snake) Length() int {
	return len(s.Body)
}

// Initialize lays a fresh snake with its head at start and the rest of the
// body trailing behind, opposite to the direction of travel.
func (s *Snake) Initialize(start Position, direction constants.Direction) {
	s.Body = s.Body[:0]
	seg := start
	for i := 0; i < constants.INITIAL_SNAKE_LENGTH; i++ {
		s.Body = append(s.Body, seg)
		seg = seg.Step(direction.Opposite())
	}
	s.CurrentDirection = direction
	s.NextDirection = direction
	s.IsDead = false
}

// SetDirection buffers d for the next move. Reversals of the current
// direction are dropped; otherwise the latest call wins.
func (s *Snake) SetDirection(d constants.Direction) bool {
	if d == s.CurrentDirection.Opposite() {
		return false
	}
	s.NextDirection = d
	return true
}

// PeekNextHead is the cell the head would occupy after the next Move.
func (s *Snake) PeekNextHead() Position {
	return s.Head().Step(s.NextDirection)
}

// Move commits NextDirection and advances one cell. Bounds and collisions
// are not checked here.
func (s *Snake) Move(grow bool) {
	s.CurrentDirection = s.NextDirection
	newHead := s.Head().Step(s.CurrentDirection)

	s.Body = append(s.Body, Position{})
	copy(s.Body[1:], s.Body[:len(s.Body)-1])
	s.Body[0] = newHead

	if !grow {
		s.Body = s.Body[:len(s.Body)-1]
	}
}

// Shrink drops up to n tail segments, always keeping the head.
func (s *Snake) Shrink(n int) int {
	removed := 0
	for removed < n && len(s.Body) > 1 {
		s.Body = s.Body[:len(s.Body)-1]
		removed++
	}
	return removed
}

// Occupies reports whether any segment, head included, sits on p.
func (s *Snake) Occupies(p Position) bool {
	for _, seg := range s.Body {
		if seg == p {
			return true
		}
	}
	return false
}

func (s *Snake) Clone() Snake {
	out := *s
	out.Body = make([]Position, len(s.Body))
	copy(out.Body, s.Body)
	return out
}
