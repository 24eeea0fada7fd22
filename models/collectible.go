package models

type Category string

const (
	CategoryFood    Category = "food"
	CategoryPowerUp Category = "powerup"
	CategoryTrap    Category = "trap"
	CategoryBonus   Category = "bonus"
	CategorySpecial Category = "special"
)

// CollectResult describes the effect of a single pickup. It is consumed by
// the engine on the tick it is produced.
type CollectResult struct {
	GrowSnake         bool
	GrowthAmount      int
	ScoreBonus        int
	AppliedEffect     *Effect
	RemoveCollectible bool
	Message           string
}

// CollectFunc resolves a pickup for the collecting snake.
type CollectFunc func(snake *Snake, state *GameState) CollectResult

// Kind is one variant of the collectible catalog.
type Kind struct {
	ID          string
	Category    Category
	VisualID    string
	SpawnWeight int
	OnCollected CollectFunc
}

// Collectible is a live item on the grid.
type Collectible struct {
	InstanceID string
	Kind       *Kind
	Position   Position
}

func (c *Collectible) ID() string {
	return c.Kind.ID
}

func (c *Collectible) Category() Category {
	return c.Kind.Category
}

func (c *Collectible) VisualID() string {
	return c.Kind.VisualID
}

func (c *Collectible) SpawnWeight() int {
	return c.Kind.SpawnWeight
}

func (c *Collectible) OnCollected(snake *Snake, state *GameState) CollectResult {
	return c.Kind.OnCollected(snake, state)
}
