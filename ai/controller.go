package ai

import (
	"math/rand"
	"time"

	"snake-duel/constants"
	"snake-duel/models"
	"snake-duel/systems"
)

// Controller decides the direction of one AI player.
type Controller struct {
	player   *models.Player
	state    *models.GameState
	finder   *PathFinder
	scaler   *SpeedScaler
	rng      *rand.Rand
	lastMove time.Time
}

func NewController(player *models.Player, state *models.GameState, finder *PathFinder, scaler *SpeedScaler, rng *rand.Rand) *Controller {
	return &Controller{
		player:   player,
		state:    state,
		finder:   finder,
		scaler:   scaler,
		rng:      rng,
		lastMove: state.StartTime,
	}
}

func (c *Controller) Player() *models.Player {
	return c.player
}

func (c *Controller) Scaler() *SpeedScaler {
	return c.scaler
}

// MoveInterval is the scaled AI interval adjusted by the player's speed
// effects.
func (c *Controller) MoveInterval() time.Duration {
	return time.Duration(float64(c.scaler.Interval()) / systems.MoveMultiplier(c.player))
}

// Due reports whether the AI may move at now.
func (c *Controller) Due(now time.Time) bool {
	return now.Sub(c.lastMove) >= c.MoveInterval()
}

// MarkMoved advances the move schedule by one interval, so late or early
// ticks do not shift later moves. After a stall of more than one interval
// the schedule restarts at now.
func (c *Controller) MarkMoved(now time.Time) {
	interval := c.MoveInterval()
	c.lastMove = c.lastMove.Add(interval)
	if now.Sub(c.lastMove) >= interval {
		c.lastMove = now
	}
}

// DecideDirection heads for the nearest food along a shortest path, falls
// back to a random safe turn, and goes straight when nothing is safe.
func (c *Controller) DecideDirection() constants.Direction {
	snake := &c.player.Snake
	if snake.IsDead || len(snake.Body) == 0 {
		return snake.CurrentDirection
	}

	if food := c.findNearestFood(); food != nil {
		path, ok := c.finder.FindPath(snake.Head(), food.Position)
		if ok && len(path) > 1 {
			if d, ok := snake.Head().DirectionTo(path[1]); ok && c.IsSafeDirection(d) {
				return d
			}
		}
	}

	if safe := c.SafeDirections(); len(safe) > 0 {
		return safe[c.rng.Intn(len(safe))]
	}
	return snake.CurrentDirection
}

func (c *Controller) findNearestFood() *models.Collectible {
	var nearest *models.Collectible
	best := 0
	head := c.player.Snake.Head()
	for _, col := range c.state.Collectibles {
		if col.Category() != models.CategoryFood {
			continue
		}
		if dist := models.ManhattanDistance(head, col.Position); nearest == nil || dist < best {
			nearest, best = col, dist
		}
	}
	return nearest
}

// IsSafeDirection reports whether one step in d stays on the grid and off
// both snakes.
func (c *Controller) IsSafeDirection(d constants.Direction) bool {
	next := c.player.Snake.Head().Step(d)
	if !c.state.IsPositionValid(next) || c.player.Snake.Occupies(next) {
		return false
	}
	opp := c.state.Opponent(c.player)
	return !(opp.Collidable() && opp.Snake.Occupies(next))
}

// SafeDirections lists the safe non-reversing directions in expansion order.
func (c *Controller) SafeDirections() []constants.Direction {
	var safe []constants.Direction
	reverse := c.player.Snake.CurrentDirection.Opposite()
	for _, d := range constants.Directions {
		if d != reverse && c.IsSafeDirection(d) {
			safe = append(safe, d)
		}
	}
	return safe
}
