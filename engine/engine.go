// Package engine runs the authoritative simulation of a single match. One
// Engine owns one GameState; callers serialize access through its methods.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/pion/logging"

	"snake-duel/ai"
	"snake-duel/clock"
	"snake-duel/collectible"
	"snake-duel/config"
	"snake-duel/constants"
	"snake-duel/models"
	"snake-duel/systems"
)

var (
	ErrNotInitialized  = errors.New("engine not initialized")
	ErrUnknownSlot     = errors.New("unknown player slot")
	ErrTooManyPlayers  = errors.New("a match has at most two players")
	ErrInvalidIdentity = errors.New("player identity needs an id")
)

type Slot int

const (
	Slot1 Slot = 1
	Slot2 Slot = 2
)

// Identity names a participant. IsAI hands the slot to an AI controller.
type Identity struct {
	ID   string
	Name string
	IsAI bool
}

type Options struct {
	Match  config.Match
	Clock  clock.Clock
	Seed   int64
	Logger logging.LeveledLogger
	// Registry builds the collectible catalog from the match rng. Nil uses
	// the built-in kinds.
	Registry func(rng *rand.Rand) *collectible.Registry
}

type Engine struct {
	mu sync.Mutex

	matchID  string
	cfg      config.Match
	clock    clock.Clock
	rng      *rand.Rand
	log      logging.LeveledLogger
	registry *collectible.Registry

	state       *models.GameState
	collisions  *systems.CollisionDetector
	deaths      *systems.DeathSystem
	timer       *systems.TimerSystem
	effects     *systems.EffectSystem
	controllers []*ai.Controller

	tick        uint64
	messages    []models.Message
	initialized bool
}

func New(matchID string, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDefaultLoggerFactory().NewLogger("engine")
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	registry := collectible.NewDefaultRegistry(rng)
	if opts.Registry != nil {
		registry = opts.Registry(rng)
	}

	return &Engine{
		matchID:  matchID,
		cfg:      opts.Match,
		clock:    opts.Clock,
		rng:      rng,
		log:      opts.Logger,
		registry: registry,
	}
}

func (e *Engine) MatchID() string {
	return e.matchID
}

// Registry exposes the catalog so callers can add kinds before Initialize.
func (e *Engine) Registry() *collectible.Registry {
	return e.registry
}

// Initialize lays out a fresh match. In AI training mode a single identity
// gets an AI opponent in slot 2. Calling it again starts over.
func (e *Engine) Initialize(mode models.GameMode, identities ...Identity) error {
	if len(identities) > 2 {
		return ErrTooManyPlayers
	}
	for _, id := range identities {
		if id.ID == "" {
			return ErrInvalidIdentity
		}
	}
	if mode == models.ModeAITraining && len(identities) == 1 {
		identities = append(identities, Identity{
			ID:   constants.AI_PLAYER_ID,
			Name: constants.AI_PLAYER_NAME,
			IsAI: true,
		})
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state := models.NewGameState(e.matchID, e.cfg.MapSize, mode)
	e.state = state
	e.collisions = systems.NewCollisionDetector(state)
	e.deaths = systems.NewDeathSystem(state, e.clock, e.rng, e.cfg.RespawnDelay, e.cfg.PlacementAttempts, e.log)
	e.timer = systems.NewTimerSystem(state, e.clock, e.cfg.MatchDuration)
	e.effects = systems.NewEffectSystem(e.clock)
	e.controllers = nil
	e.tick = 0
	e.messages = nil

	e.timer.Start()

	mid := e.cfg.MapSize / 2
	starts := []struct {
		pos models.Position
		dir constants.Direction
	}{
		{models.Position{X: e.cfg.StartEdgeOffset, Y: mid}, constants.RIGHT},
		{models.Position{X: e.cfg.MapSize - 1 - e.cfg.StartEdgeOffset, Y: mid}, constants.LEFT},
	}
	for i, id := range identities {
		p := models.NewPlayer(id.ID, id.Name, e.cfg.StartingLives)
		p.IsAI = id.IsAI
		p.Snake.Initialize(starts[i].pos, starts[i].dir)
		p.MaxLength = p.Snake.Length()
		if i == 0 {
			state.Player1 = p
		} else {
			state.Player2 = p
		}
		if p.IsAI {
			e.controllers = append(e.controllers, e.newController(p))
		}
	}

	e.maintainCollectibles()
	e.initialized = true
	e.log.Infof("match %s initialized: mode=%s players=%d", e.matchID, mode, len(identities))
	return nil
}

func (e *Engine) newController(p *models.Player) *ai.Controller {
	scaler := ai.NewSpeedScaler(e.clock, e.state.StartTime, ai.SpeedConfig{
		BaseMs:        e.cfg.AIBaseSpeedMs,
		Factor:        e.cfg.AISpeedFactor,
		Interval:      e.cfg.AISpeedInterval,
		MaxMultiplier: e.cfg.AIMaxMultiplier,
		MinMs:         e.cfg.AIMinSpeedMs,
	})
	finder := ai.NewPathFinder(e.state, e.cfg.PathMaxExpansions)
	return ai.NewController(p, e.state, finder, scaler, e.rng)
}

// SetDirection buffers a turn for the player in slot. Reversals are dropped
// silently; the last accepted call before the next tick wins.
func (e *Engine) SetDirection(slot Slot, d constants.Direction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.player(slot)
	if err != nil {
		return err
	}
	p.Snake.SetDirection(d)
	return nil
}

// SlotOf finds the slot held by playerID.
func (e *Engine) SlotOf(playerID string) (Slot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return 0, false
	}
	if e.state.Player1 != nil && e.state.Player1.ID == playerID {
		return Slot1, true
	}
	if e.state.Player2 != nil && e.state.Player2.ID == playerID {
		return Slot2, true
	}
	return 0, false
}

func (e *Engine) player(slot Slot) (*models.Player, error) {
	if !e.initialized {
		return nil, ErrNotInitialized
	}
	var p *models.Player
	switch slot {
	case Slot1:
		p = e.state.Player1
	case Slot2:
		p = e.state.Player2
	}
	if p == nil {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrUnknownSlot)
	}
	return p, nil
}

// Forfeit ends the match in favour of the other slot.
func (e *Engine) Forfeit(slot Slot) error {
	return e.Concede(slot, models.EndForfeit)
}

// Concede ends the match in favour of the other slot with the given reason.
// Without an opponent the match ends without a winner.
func (e *Engine) Concede(slot Slot, reason models.EndReason) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.player(slot)
	if err != nil {
		return err
	}
	e.state.End(e.state.Opponent(p), reason)
	return nil
}

// Abort ends the match without a winner.
func (e *Engine) Abort(reason models.EndReason) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != nil {
		e.state.End(nil, reason)
	}
}

func (e *Engine) IsGameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != nil && e.state.IsGameOver
}

func (e *Engine) WinnerID() *string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil || e.state.WinnerID == nil {
		return nil
	}
	id := *e.state.WinnerID
	return &id
}

// Snapshot returns a value copy of the match after the last tick.
func (e *Engine) Snapshot() (models.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return models.Snapshot{}, ErrNotInitialized
	}
	snap := e.state.Snapshot(e.clock.Now(), e.tick)
	if len(e.messages) > 0 {
		snap.Messages = append([]models.Message(nil), e.messages...)
	}
	if e.state.Mode == models.ModeAITraining && len(e.controllers) > 0 {
		scaler := e.controllers[0].Scaler()
		snap.AISpeedMs = scaler.GetCurrentSpeed()
		snap.AISpeedPercent = scaler.GetSpeedPercentage()
	}
	return snap, nil
}
