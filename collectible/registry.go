// Package collectible holds the catalog of pickup kinds and draws new items
// from it by spawn weight.
package collectible

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"snake-duel/models"
)

var (
	ErrUnknownKind   = errors.New("unknown collectible kind")
	ErrDuplicateKind = errors.New("collectible kind already registered")
	ErrInvalidKind   = errors.New("invalid collectible kind")
	ErrEmptyRegistry = errors.New("no collectible kinds registered")
)

// Registry is scoped to one match and shares the match's rng, so draws are
// reproducible for a fixed seed.
type Registry struct {
	kinds       map[string]*models.Kind
	order       []string
	totalWeight int
	rng         *rand.Rand
	mu          sync.RWMutex
}

func NewRegistry(rng *rand.Rand) *Registry {
	return &Registry{
		kinds: make(map[string]*models.Kind),
		rng:   rng,
	}
}

// NewDefaultRegistry returns a registry preloaded with the built-in kinds.
func NewDefaultRegistry(rng *rand.Rand) *Registry {
	r := NewRegistry(rng)
	for _, k := range Builtins() {
		// built-ins are distinct and valid
		_ = r.Register(k)
	}
	return r
}

// Register adds a kind. Kinds with a zero weight can be created by id but are
// never drawn by SpawnRandom.
func (r *Registry) Register(k *models.Kind) error {
	if k == nil || k.ID == "" || k.OnCollected == nil || k.SpawnWeight < 0 {
		return ErrInvalidKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[k.ID]; exists {
		return fmt.Errorf("%s: %w", k.ID, ErrDuplicateKind)
	}
	r.kinds[k.ID] = k
	r.order = append(r.order, k.ID)
	r.totalWeight += k.SpawnWeight
	return nil
}

func (r *Registry) Kind(id string) (*models.Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[id]
	return k, ok
}

// IDs returns the registered kind ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Create instantiates the kind registered under id at pos.
func (r *Registry) Create(id string, pos models.Position) (*models.Collectible, error) {
	k, ok := r.Kind(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownKind)
	}
	return newCollectible(k, pos), nil
}

// SpawnRandom draws a kind with probability proportional to its weight.
func (r *Registry) SpawnRandom(pos models.Position) (*models.Collectible, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.totalWeight <= 0 {
		return nil, ErrEmptyRegistry
	}

	roll := r.rng.Intn(r.totalWeight)
	for _, id := range r.order {
		k := r.kinds[id]
		if roll < k.SpawnWeight {
			return newCollectible(k, pos), nil
		}
		roll -= k.SpawnWeight
	}
	// unreachable while totalWeight matches the registered weights
	return nil, ErrEmptyRegistry
}

func newCollectible(k *models.Kind, pos models.Position) *models.Collectible {
	return &models.Collectible{
		InstanceID: uuid.NewString(),
		Kind:       k,
		Position:   pos,
	}
}
