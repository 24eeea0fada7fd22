package collectible

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snake-duel/models"
)

func TestCreateKnownKinds(t *testing.T) {
	r := NewDefaultRegistry(rand.New(rand.NewSource(1)))
	pos := models.Position{X: 3, Y: 4}

	tests := []struct {
		id       string
		category models.Category
		visual   string
		grow     int
		score    int
		effect   models.EffectType
	}{
		{BasicFoodID, models.CategoryFood, "apple", 1, 10, ""},
		{SuperFoodID, models.CategoryFood, "golden_apple", 3, 50, ""},
		{SpeedBoostID, models.CategoryPowerUp, "lightning", 0, 5, models.EffectSpeed},
		{ShieldID, models.CategoryPowerUp, "shield", 0, 0, models.EffectInvincibility},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, err := r.Create(tt.id, pos)
			require.NoError(t, err)
			assert.Equal(t, tt.id, c.ID())
			assert.Equal(t, tt.category, c.Category())
			assert.Equal(t, tt.visual, c.VisualID())
			assert.Equal(t, pos, c.Position)
			assert.NotEmpty(t, c.InstanceID)

			res := c.OnCollected(&models.Snake{}, &models.GameState{})
			assert.True(t, res.RemoveCollectible)
			assert.Equal(t, tt.grow, res.GrowthAmount)
			assert.Equal(t, tt.grow > 0, res.GrowSnake)
			assert.Equal(t, tt.score, res.ScoreBonus)
			if tt.effect == "" {
				assert.Nil(t, res.AppliedEffect)
			} else {
				require.NotNil(t, res.AppliedEffect)
				assert.Equal(t, tt.effect, res.AppliedEffect.Type)
			}
		})
	}
}

func TestCreateUnknownKind(t *testing.T) {
	r := NewDefaultRegistry(rand.New(rand.NewSource(1)))

	c, err := r.Create("trap_bomb", models.Position{})
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRegisterRejectsDuplicatesAndInvalid(t *testing.T) {
	r := NewDefaultRegistry(rand.New(rand.NewSource(1)))

	err := r.Register(Builtins()[0])
	assert.ErrorIs(t, err, ErrDuplicateKind)
	assert.ErrorIs(t, r.Register(&models.Kind{ID: "x"}), ErrInvalidKind)
	assert.Equal(t, []string{BasicFoodID, SuperFoodID, SpeedBoostID, ShieldID}, r.IDs())
}

func TestSpawnRandomFollowsWeights(t *testing.T) {
	r := NewDefaultRegistry(rand.New(rand.NewSource(42)))
	const draws = 145000

	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		c, err := r.SpawnRandom(models.Position{})
		require.NoError(t, err)
		counts[c.ID()]++
	}

	// weights 100/10/20/15 out of 145
	expected := map[string]float64{
		BasicFoodID:  100.0 / 145,
		SuperFoodID:  10.0 / 145,
		SpeedBoostID: 20.0 / 145,
		ShieldID:     15.0 / 145,
	}
	for id, p := range expected {
		got := float64(counts[id]) / draws
		assert.InDelta(t, p, got, 0.01, id)
	}
}

func TestSpawnRandomSkipsZeroWeight(t *testing.T) {
	r := NewRegistry(rand.New(rand.NewSource(3)))
	_, err := r.SpawnRandom(models.Position{})
	assert.ErrorIs(t, err, ErrEmptyRegistry)

	noop := func(*models.Snake, *models.GameState) models.CollectResult { return models.CollectResult{} }
	require.NoError(t, r.Register(&models.Kind{ID: "hidden", SpawnWeight: 0, OnCollected: noop}))
	require.NoError(t, r.Register(&models.Kind{ID: "seen", SpawnWeight: 1, OnCollected: noop}))

	for i := 0; i < 100; i++ {
		c, err := r.SpawnRandom(models.Position{})
		require.NoError(t, err)
		assert.Equal(t, "seen", c.ID())
	}
	_, err = r.Create("hidden", models.Position{})
	assert.NoError(t, err)
}

func TestSameSeedSameSequence(t *testing.T) {
	a := NewDefaultRegistry(rand.New(rand.NewSource(9)))
	b := NewDefaultRegistry(rand.New(rand.NewSource(9)))

	for i := 0; i < 200; i++ {
		ca, _ := a.SpawnRandom(models.Position{})
		cb, _ := b.SpawnRandom(models.Position{})
		assert.Equal(t, ca.ID(), cb.ID())
	}
}
