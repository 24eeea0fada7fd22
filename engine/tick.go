package engine

import (
	"snake-duel/models"
	"snake-duel/systems"
)

// Tick advances the match by one step. A panic inside the step ends the
// match as a no-contest instead of escaping to the caller.
func (e *Engine) Tick() (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return ErrNotInitialized
	}
	if e.state.IsGameOver {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Errorf("match %s: tick %d panicked: %v", e.matchID, e.tick, r)
			e.state.End(nil, models.EndNoContest)
		}
	}()

	e.tick++
	e.messages = e.messages[:0]

	e.timer.Update()
	if e.state.IsGameOver {
		return nil
	}

	players := e.state.Players()
	for _, p := range players {
		e.effects.Expire(p)
	}
	e.deaths.ProcessRespawns()

	// intents are fixed before anything moves
	moves := make(map[*models.Player]int, len(players))
	now := e.clock.Now()
	for _, c := range e.controllers {
		p := c.Player()
		if p.Collidable() && c.Due(now) {
			p.Snake.SetDirection(c.DecideDirection())
			c.MarkMoved(now)
			moves[p] = 1
		}
	}
	steps := 0
	for _, p := range players {
		if p.IsAI {
			steps = max(steps, moves[p])
			continue
		}
		if !p.Collidable() {
			p.MoveCredit = 0
			continue
		}
		moves[p] = systems.MovesThisTick(p)
		steps = max(steps, moves[p])
	}

	for step := 0; step < steps; step++ {
		var moved []*models.Player
		for _, p := range players {
			if moves[p] > step && p.Collidable() {
				e.advance(p)
				moved = append(moved, p)
			}
		}
		e.resolveCollisions(moved)
	}

	if e.checkInvariants() {
		return nil
	}
	e.maintainCollectibles()
	e.state.DetermineWinner(false)
	return nil
}

// advance resolves pickups on the cell the head is about to enter, then
// moves the snake one cell.
func (e *Engine) advance(p *models.Player) {
	next := p.Snake.PeekNextHead()
	if e.state.IsPositionValid(next) {
		radius := 0
		if _, ok := p.Effect(models.EffectMagnet); ok {
			radius = e.cfg.MagnetRadius
		}
		for _, c := range e.collisions.CollectiblesInRange(next, radius) {
			e.collect(p, c)
		}
	}

	grow := p.PendingGrowth > 0
	if grow {
		p.PendingGrowth--
	}
	p.Snake.Move(grow)
	p.MaxLength = max(p.MaxLength, p.Snake.Length())
}

func (e *Engine) collect(p *models.Player, c *models.Collectible) {
	res := c.OnCollected(&p.Snake, e.state)

	switch {
	case res.GrowthAmount < 0:
		p.Snake.Shrink(-res.GrowthAmount)
	case res.GrowSnake:
		p.PendingGrowth += max(res.GrowthAmount, 1)
	}
	p.Score += res.ScoreBonus
	if res.AppliedEffect != nil {
		e.effects.Apply(p, *res.AppliedEffect)
	}
	if res.RemoveCollectible {
		e.state.RemoveCollectible(c)
	}
	if res.Message != "" {
		e.messages = append(e.messages, models.Message{PlayerID: p.ID, Text: res.Message})
	}
	e.log.Tracef("match %s: %s collected %s at %v", e.matchID, p.ID, c.ID(), c.Position)
}

// resolveCollisions classifies every moved snake before any death is applied,
// so two heads meeting kill both.
func (e *Engine) resolveCollisions(moved []*models.Player) {
	type death struct {
		player *models.Player
		cause  models.DeathCause
	}
	var deaths []death
	for _, p := range moved {
		if cause, hit := e.collisions.Classify(p); hit {
			deaths = append(deaths, death{p, cause})
		}
	}
	for _, d := range deaths {
		e.deaths.HandleDeath(d.player, d.cause)
	}
}

// maintainCollectibles tops the board up to the target count. When no free
// cell turns up the grid center is used if it is free; otherwise spawning
// waits for the next tick.
func (e *Engine) maintainCollectibles() {
	for len(e.state.Collectibles) < e.cfg.CollectibleTarget {
		pos, ok := e.state.GetRandomEmptyPosition(e.rng, e.cfg.PlacementAttempts)
		if !ok {
			if !e.state.IsCellFree(pos) {
				e.log.Warnf("match %s: board full, %d collectibles short", e.matchID, e.cfg.CollectibleTarget-len(e.state.Collectibles))
				return
			}
			e.log.Debugf("match %s: placement fell back to center", e.matchID)
		}
		c, err := e.registry.SpawnRandom(pos)
		if err != nil {
			e.log.Warnf("match %s: spawn collectible: %v", e.matchID, err)
			return
		}
		e.state.AddCollectible(c)
	}
}

// checkInvariants ends the match when a live snake is empty or off the grid.
func (e *Engine) checkInvariants() bool {
	for _, p := range e.state.Players() {
		if !p.IsAlive() || p.IsRespawning || p.Snake.IsDead {
			continue
		}
		if len(p.Snake.Body) == 0 {
			return e.violate(p, "empty snake")
		}
		for _, seg := range p.Snake.Body {
			if !e.state.IsPositionValid(seg) {
				return e.violate(p, "segment off grid")
			}
		}
	}
	return false
}

func (e *Engine) violate(p *models.Player, what string) bool {
	e.log.Errorf("match %s: invariant violated by %s: %s", e.matchID, p.ID, what)
	e.state.End(nil, models.EndInvariant)
	return true
}
