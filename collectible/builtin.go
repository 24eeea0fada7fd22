package collectible

import (
	"time"

	"snake-duel/models"
)

const (
	BasicFoodID  = "food_apple"
	SuperFoodID  = "food_golden_apple"
	SpeedBoostID = "powerup_speed"
	ShieldID     = "powerup_shield"
)

// Builtins returns fresh copies of the standard catalog.
func Builtins() []*models.Kind {
	return []*models.Kind{
		{
			ID:          BasicFoodID,
			Category:    models.CategoryFood,
			VisualID:    "apple",
			SpawnWeight: 100,
			OnCollected: func(*models.Snake, *models.GameState) models.CollectResult {
				return models.CollectResult{
					GrowSnake:         true,
					GrowthAmount:      1,
					ScoreBonus:        10,
					RemoveCollectible: true,
				}
			},
		},
		{
			ID:          SuperFoodID,
			Category:    models.CategoryFood,
			VisualID:    "golden_apple",
			SpawnWeight: 10,
			OnCollected: func(*models.Snake, *models.GameState) models.CollectResult {
				return models.CollectResult{
					GrowSnake:         true,
					GrowthAmount:      3,
					ScoreBonus:        50,
					RemoveCollectible: true,
					Message:           "Super Food! +3",
				}
			},
		},
		{
			ID:          SpeedBoostID,
			Category:    models.CategoryPowerUp,
			VisualID:    "lightning",
			SpawnWeight: 20,
			OnCollected: func(*models.Snake, *models.GameState) models.CollectResult {
				return models.CollectResult{
					ScoreBonus: 5,
					AppliedEffect: &models.Effect{
						Type:       models.EffectSpeed,
						Duration:   3000 * time.Millisecond,
						Multiplier: 1.5,
					},
					RemoveCollectible: true,
					Message:           "Speed Boost!",
				}
			},
		},
		{
			ID:          ShieldID,
			Category:    models.CategoryPowerUp,
			VisualID:    "shield",
			SpawnWeight: 15,
			OnCollected: func(*models.Snake, *models.GameState) models.CollectResult {
				return models.CollectResult{
					AppliedEffect: &models.Effect{
						Type:       models.EffectInvincibility,
						Duration:   2000 * time.Millisecond,
						Multiplier: 1,
					},
					RemoveCollectible: true,
					Message:           "Shield!",
				}
			},
		},
	}
}
