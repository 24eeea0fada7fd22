package systems

import (
	"math/rand"
	"time"

	"github.com/pion/logging"

	"snake-duel/clock"
	"snake-duel/constants"
	"snake-duel/models"
)

// DeathSystem turns collisions into lost lives and brings snakes back after
// the respawn delay.
type DeathSystem struct {
	state    *models.GameState
	clock    clock.Clock
	rng      *rand.Rand
	delay    time.Duration
	attempts int
	log      logging.LeveledLogger
}

func NewDeathSystem(state *models.GameState, clk clock.Clock, rng *rand.Rand, delay time.Duration, attempts int, log logging.LeveledLogger) *DeathSystem {
	return &DeathSystem{
		state:    state,
		clock:    clk,
		rng:      rng,
		delay:    delay,
		attempts: attempts,
		log:      log,
	}
}

// HandleDeath is a no-op for a player already out of lives.
func (s *DeathSystem) HandleDeath(p *models.Player, cause models.DeathCause) {
	if p == nil || p.LivesRemaining <= 0 {
		return
	}

	p.Snake.IsDead = true
	p.DeathCount++
	p.LivesRemaining--
	p.LastDeathCause = cause
	p.MaxLength = max(p.MaxLength, p.Snake.Length())
	p.PendingGrowth = 0
	p.MoveCredit = 0
	p.Effects = nil

	if p.LivesRemaining > 0 {
		at := s.clock.Now().Add(s.delay)
		p.IsRespawning = true
		p.RespawnTime = &at
	}
	s.log.Debugf("match %s: %s died (%s), lives=%d", s.state.MatchID, p.ID, cause, p.LivesRemaining)
}

// ProcessRespawns re-creates every snake whose respawn time has passed and
// returns the players that came back.
func (s *DeathSystem) ProcessRespawns() []*models.Player {
	var respawned []*models.Player
	now := s.clock.Now()
	for _, p := range s.state.Players() {
		if !p.IsRespawning || p.RespawnTime == nil || now.Before(*p.RespawnTime) {
			continue
		}
		pos := s.findRespawnPosition()
		p.Snake.Initialize(pos, constants.RIGHT)
		p.MaxLength = max(p.MaxLength, p.Snake.Length())
		p.IsRespawning = false
		p.RespawnTime = nil
		respawned = append(respawned, p)
	}
	return respawned
}

// findRespawnPosition picks a head cell whose whole initial body is free and
// whose first step to the right lands on an open cell.
func (s *DeathSystem) findRespawnPosition() models.Position {
	pos, ok := s.state.RandomPosition(s.rng, s.attempts, func(head models.Position) bool {
		ahead := head.Step(constants.RIGHT)
		if !s.state.IsPositionValid(ahead) || s.state.IsPositionOccupied(ahead) {
			return false
		}
		seg := head
		for i := 0; i < constants.INITIAL_SNAKE_LENGTH; i++ {
			if !s.state.IsCellFree(seg) {
				return false
			}
			seg = seg.Step(constants.LEFT)
		}
		return true
	})
	if !ok {
		s.log.Warnf("match %s: no free respawn cell after %d attempts, using center", s.state.MatchID, s.attempts)
	}
	return pos
}
