package models

import "snake-duel/constants"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the neighbouring cell in direction d. Up decreases Y.
func (p Position) Step(d constants.Direction) Position {
	switch d {
	case constants.UP:
		return Position{X: p.X, Y: p.Y - 1}
	case constants.DOWN:
		return Position{X: p.X, Y: p.Y + 1}
	case constants.LEFT:
		return Position{X: p.X - 1, Y: p.Y}
	case constants.RIGHT:
		return Position{X: p.X + 1, Y: p.Y}
	}
	return p
}

// InBounds reports whether p lies on a size×size grid.
func (p Position) InBounds(size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// DirectionTo returns the direction of a unit step from p to next.
func (p Position) DirectionTo(next Position) (constants.Direction, bool) {
	switch {
	case next.X > p.X:
		return constants.RIGHT, true
	case next.X < p.X:
		return constants.LEFT, true
	case next.Y > p.Y:
		return constants.DOWN, true
	case next.Y < p.Y:
		return constants.UP, true
	}
	return 0, false
}

func ManhattanDistance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
