// Package systems holds the per-tick subsystems the engine composes:
// collision detection, death and respawn, the match timer and timed effects.
package systems

import "snake-duel/models"

// CollisionDetector answers collision questions about a match. It holds no
// state of its own.
type CollisionDetector struct {
	state *models.GameState
}

func NewCollisionDetector(state *models.GameState) *CollisionDetector {
	return &CollisionDetector{state: state}
}

func (d *CollisionDetector) CheckWallCollision(snake *models.Snake) bool {
	return !d.state.IsPositionValid(snake.Head())
}

// CheckSelfCollision reports whether the head overlaps any other segment.
func (d *CollisionDetector) CheckSelfCollision(snake *models.Snake) bool {
	head := snake.Head()
	for _, seg := range snake.Body[min(1, len(snake.Body)):] {
		if seg == head {
			return true
		}
	}
	return false
}

// CheckOpponentCollision reports whether the head of snake lies on the body of
// opponent. Only collidable opponents count.
func (d *CollisionDetector) CheckOpponentCollision(snake *models.Snake, opponent *models.Player) bool {
	if !opponent.Collidable() {
		return false
	}
	return opponent.Snake.Occupies(snake.Head())
}

// CheckCollectibleCollision returns the collectible at pos, if any.
func (d *CollisionDetector) CheckCollectibleCollision(pos models.Position) *models.Collectible {
	return d.state.CollectibleAt(pos)
}

// CollectiblesInRange returns the collectibles within radius (Manhattan) of
// pos, nearest first in collection order.
func (d *CollisionDetector) CollectiblesInRange(pos models.Position, radius int) []*models.Collectible {
	var out []*models.Collectible
	for dist := 0; dist <= radius; dist++ {
		for _, c := range d.state.Collectibles {
			if models.ManhattanDistance(pos, c.Position) == dist {
				out = append(out, c)
			}
		}
	}
	return out
}

// Classify runs the wall, self and opponent checks in that order for a
// collidable player. Invincible players only die on walls.
func (d *CollisionDetector) Classify(p *models.Player) (models.DeathCause, bool) {
	if !p.Collidable() {
		return "", false
	}
	if d.CheckWallCollision(&p.Snake) {
		return models.CauseWall, true
	}
	if _, shielded := p.Effect(models.EffectInvincibility); shielded {
		return "", false
	}
	if d.CheckSelfCollision(&p.Snake) {
		return models.CauseSelf, true
	}
	if opp := d.state.Opponent(p); opp != nil && d.CheckOpponentCollision(&p.Snake, opp) {
		return models.CauseOpponent, true
	}
	return "", false
}
