package systems

import (
	"math/rand"
	"testing"
	"time"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snake-duel/clock"
	"snake-duel/constants"
	"snake-duel/models"
)

var testLog = logging.NewDefaultLoggerFactory().NewLogger("systems")

func newDuel() *models.GameState {
	s := models.NewGameState("m1", 30, models.ModePvP)
	s.Player1 = models.NewPlayer("p1", "alice", 3)
	s.Player1.Snake.Initialize(models.Position{X: 5, Y: 15}, constants.RIGHT)
	s.Player2 = models.NewPlayer("p2", "bob", 3)
	s.Player2.Snake.Initialize(models.Position{X: 24, Y: 15}, constants.LEFT)
	return s
}

func TestWallCollision(t *testing.T) {
	s := newDuel()
	d := NewCollisionDetector(s)

	for _, head := range []models.Position{{X: -1, Y: 5}, {X: 30, Y: 5}, {X: 5, Y: -1}, {X: 5, Y: 30}} {
		snake := &models.Snake{Body: []models.Position{head}}
		assert.True(t, d.CheckWallCollision(snake), "%v", head)
	}
	for _, head := range []models.Position{{X: 0, Y: 0}, {X: 29, Y: 29}, {X: 0, Y: 29}} {
		snake := &models.Snake{Body: []models.Position{head}}
		assert.False(t, d.CheckWallCollision(snake), "%v", head)
	}
}

func TestSelfCollision(t *testing.T) {
	d := NewCollisionDetector(newDuel())

	snake := &models.Snake{Body: []models.Position{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}, {X: 5, Y: 5}}}
	assert.True(t, d.CheckSelfCollision(snake))

	snake = &models.Snake{Body: []models.Position{{X: 5, Y: 5}}}
	assert.False(t, d.CheckSelfCollision(snake))
}

func TestOpponentCollisionIgnoresDeadSnake(t *testing.T) {
	s := newDuel()
	d := NewCollisionDetector(s)
	snake := &models.Snake{Body: []models.Position{{X: 25, Y: 15}}}

	assert.True(t, d.CheckOpponentCollision(snake, s.Player2))

	s.Player2.Snake.IsDead = true
	assert.False(t, d.CheckOpponentCollision(snake, s.Player2))
}

func TestClassify(t *testing.T) {
	s := newDuel()
	d := NewCollisionDetector(s)

	_, hit := d.Classify(s.Player1)
	assert.False(t, hit)

	s.Player1.Snake.Body[0] = models.Position{X: 24, Y: 15}
	cause, hit := d.Classify(s.Player1)
	assert.True(t, hit)
	assert.Equal(t, models.CauseOpponent, cause)

	s.Player1.Effects = []models.ActiveEffect{{Type: models.EffectInvincibility}}
	_, hit = d.Classify(s.Player1)
	assert.False(t, hit, "shield ignores opponents")

	s.Player1.Snake.Body[0] = models.Position{X: 30, Y: 15}
	cause, hit = d.Classify(s.Player1)
	assert.True(t, hit, "shield does not ignore walls")
	assert.Equal(t, models.CauseWall, cause)
}

func TestCollectiblesInRange(t *testing.T) {
	s := newDuel()
	kind := &models.Kind{ID: "food_apple", Category: models.CategoryFood}
	far := &models.Collectible{InstanceID: "far", Kind: kind, Position: models.Position{X: 12, Y: 10}}
	near := &models.Collectible{InstanceID: "near", Kind: kind, Position: models.Position{X: 10, Y: 11}}
	s.AddCollectible(far)
	s.AddCollectible(near)
	d := NewCollisionDetector(s)

	got := d.CollectiblesInRange(models.Position{X: 10, Y: 10}, 2)
	assert.Equal(t, []*models.Collectible{near, far}, got)
	assert.Empty(t, d.CollectiblesInRange(models.Position{X: 0, Y: 0}, 2))
	assert.Equal(t, near, d.CheckCollectibleCollision(models.Position{X: 10, Y: 11}))
}

func TestHandleDeathSchedulesRespawn(t *testing.T) {
	s := newDuel()
	clk := clock.NewMock(time.Unix(1000, 0))
	deaths := NewDeathSystem(s, clk, rand.New(rand.NewSource(1)), 3*time.Second, 100, testLog)

	deaths.HandleDeath(s.Player1, models.CauseWall)

	p := s.Player1
	assert.True(t, p.Snake.IsDead)
	assert.Equal(t, 2, p.LivesRemaining)
	assert.Equal(t, 1, p.DeathCount)
	assert.Equal(t, 3, p.MaxLength)
	assert.Equal(t, models.CauseWall, p.LastDeathCause)
	require.True(t, p.IsRespawning)
	assert.Equal(t, clk.Now().Add(3*time.Second), *p.RespawnTime)
	assert.False(t, p.Collidable())
}

func TestHandleDeathLastLife(t *testing.T) {
	s := newDuel()
	deaths := NewDeathSystem(s, clock.NewMock(time.Unix(0, 0)), rand.New(rand.NewSource(1)), 3*time.Second, 100, testLog)
	s.Player1.LivesRemaining = 1

	deaths.HandleDeath(s.Player1, models.CauseSelf)
	assert.Equal(t, 0, s.Player1.LivesRemaining)
	assert.False(t, s.Player1.IsRespawning)
	assert.Nil(t, s.Player1.RespawnTime)

	deaths.HandleDeath(s.Player1, models.CauseSelf)
	assert.Equal(t, 1, s.Player1.DeathCount, "no-op once out of lives")
}

func TestProcessRespawns(t *testing.T) {
	s := newDuel()
	clk := clock.NewMock(time.Unix(0, 0))
	deaths := NewDeathSystem(s, clk, rand.New(rand.NewSource(5)), 3*time.Second, 100, testLog)
	kind := &models.Kind{ID: "food_apple", Category: models.CategoryFood}
	for x := 0; x < 30; x += 3 {
		s.AddCollectible(&models.Collectible{InstanceID: "c", Kind: kind, Position: models.Position{X: x, Y: x}})
	}

	deaths.HandleDeath(s.Player1, models.CauseWall)

	clk.Advance(2999 * time.Millisecond)
	assert.Empty(t, deaths.ProcessRespawns())
	assert.True(t, s.Player1.IsRespawning)

	clk.Advance(time.Millisecond)
	respawned := deaths.ProcessRespawns()
	require.Equal(t, []*models.Player{s.Player1}, respawned)

	p := s.Player1
	assert.False(t, p.IsRespawning)
	assert.Nil(t, p.RespawnTime)
	assert.False(t, p.Snake.IsDead)
	assert.Equal(t, 3, p.Snake.Length())
	assert.Equal(t, constants.RIGHT, p.Snake.CurrentDirection)
	for _, seg := range p.Snake.Body {
		assert.True(t, seg.InBounds(30))
		assert.Nil(t, s.CollectibleAt(seg))
		assert.False(t, s.Player2.Snake.Occupies(seg))
	}
}

func TestTimerSystem(t *testing.T) {
	s := newDuel()
	clk := clock.NewMock(time.Unix(0, 0))
	timer := NewTimerSystem(s, clk, 120*time.Second)
	timer.Start()
	assert.Equal(t, 120, s.RemainingSeconds)

	clk.Advance(1500 * time.Millisecond)
	timer.Update()
	assert.Equal(t, 119, s.RemainingSeconds)
	assert.False(t, s.IsGameOver)

	// a stalled loop still sees the right time
	clk.Advance(200 * time.Second)
	timer.Update()
	assert.Equal(t, 0, s.RemainingSeconds)
	assert.True(t, s.IsGameOver)
	assert.Equal(t, models.EndTimeout, s.EndReason)
	assert.Nil(t, s.WinnerID)
}

func TestEffectSystem(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	fx := NewEffectSystem(clk)
	p := models.NewPlayer("p1", "alice", 3)

	fx.Apply(p, models.Effect{Type: models.EffectSpeed, Duration: 3 * time.Second, Multiplier: 1.5})
	assert.Equal(t, 1.5, MoveMultiplier(p))

	assert.Equal(t, 1, MovesThisTick(p))
	assert.Equal(t, 2, MovesThisTick(p))

	clk.Advance(2 * time.Second)
	fx.Apply(p, models.Effect{Type: models.EffectSpeed, Duration: 3 * time.Second, Multiplier: 1.5})
	require.Len(t, p.Effects, 1, "reapplying refreshes")

	clk.Advance(2 * time.Second)
	fx.Expire(p)
	assert.Len(t, p.Effects, 1)

	clk.Advance(time.Second)
	fx.Expire(p)
	assert.Empty(t, p.Effects)
	assert.Equal(t, 1.0, MoveMultiplier(p))
}

func TestSlowEffectSkipsTicks(t *testing.T) {
	fx := NewEffectSystem(clock.NewMock(time.Unix(0, 0)))
	p := models.NewPlayer("p1", "alice", 3)
	fx.Apply(p, models.Effect{Type: models.EffectSlow, Duration: time.Second, Multiplier: 0.5})

	assert.Equal(t, 0, MovesThisTick(p))
	assert.Equal(t, 1, MovesThisTick(p))
	assert.Equal(t, 0, MovesThisTick(p))
}
