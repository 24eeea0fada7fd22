package systems

import (
	"snake-duel/clock"
	"snake-duel/models"
)

// EffectSystem keeps the per-player queue of timed effects.
type EffectSystem struct {
	clock clock.Clock
}

func NewEffectSystem(clk clock.Clock) *EffectSystem {
	return &EffectSystem{clock: clk}
}

// Apply starts eff on p. An effect of a kind that is already active has its
// expiry and multiplier replaced.
func (s *EffectSystem) Apply(p *models.Player, eff models.Effect) {
	active := models.ActiveEffect{
		Type:       eff.Type,
		ExpiresAt:  s.clock.Now().Add(eff.Duration),
		Multiplier: eff.Multiplier,
	}
	for i := range p.Effects {
		if p.Effects[i].Type == eff.Type {
			p.Effects[i] = active
			return
		}
	}
	p.Effects = append(p.Effects, active)
}

// Expire drops every effect whose expiry has passed.
func (s *EffectSystem) Expire(p *models.Player) {
	now := s.clock.Now()
	kept := p.Effects[:0]
	for _, e := range p.Effects {
		if now.Before(e.ExpiresAt) {
			kept = append(kept, e)
		}
	}
	p.Effects = kept
}

// MoveMultiplier combines active speed and slow effects.
func MoveMultiplier(p *models.Player) float64 {
	m := 1.0
	for _, e := range p.Effects {
		if (e.Type == models.EffectSpeed || e.Type == models.EffectSlow) && e.Multiplier > 0 {
			m *= e.Multiplier
		}
	}
	return m
}

// MovesThisTick adds the player's multiplier to its move credit and returns
// the whole moves available.
func MovesThisTick(p *models.Player) int {
	p.MoveCredit += MoveMultiplier(p)
	moves := int(p.MoveCredit)
	p.MoveCredit -= float64(moves)
	return moves
}
