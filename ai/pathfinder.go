package ai

import (
	"snake-duel/constants"
	"snake-duel/models"
)

// PathFinder searches the grid breadth-first, treating live snake segments
// and off-grid cells as walls.
type PathFinder struct {
	state         *models.GameState
	maxExpansions int
}

func NewPathFinder(state *models.GameState, maxExpansions int) *PathFinder {
	return &PathFinder{state: state, maxExpansions: maxExpansions}
}

// FindPath returns the cells from start to goal inclusive. The search gives
// up after maxExpansions dequeues; a missing path is reported with false.
func (f *PathFinder) FindPath(start, goal models.Position) ([]models.Position, bool) {
	parent := map[models.Position]models.Position{start: start}
	queue := []models.Position{start}

	for expansions := 0; len(queue) > 0 && expansions < f.maxExpansions; expansions++ {
		current := queue[0]
		queue = queue[1:]

		if current == goal {
			return tracePath(parent, start, goal), true
		}

		for _, d := range constants.Directions {
			next := current.Step(d)
			if _, seen := parent[next]; seen {
				continue
			}
			if !f.state.IsPositionValid(next) || f.state.IsPositionOccupied(next) {
				continue
			}
			parent[next] = current
			queue = append(queue, next)
		}
	}
	return nil, false
}

func tracePath(parent map[models.Position]models.Position, start, goal models.Position) []models.Position {
	var path []models.Position
	for p := goal; ; p = parent[p] {
		path = append(path, p)
		if p == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
