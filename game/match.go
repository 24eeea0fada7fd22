package game

import (
	"context"
	"sync"

	"snake-duel/constants"
	"snake-duel/engine"
	"snake-duel/models"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCountdown Status = "countdown"
	StatusPlaying   Status = "playing"
	StatusFinished  Status = "finished"
)

// Match is a hosted duel: the connected participants around one Engine.
// Player2 is nil when the opponent is the AI.
type Match struct {
	ID         string
	Mode       models.GameMode
	Player1    *models.Client
	Player2    *models.Client
	Spectators map[string]*models.Client
	Status     Status
	Countdown  int
	Engine     *engine.Engine
	IsActive   bool
	Mutex      sync.RWMutex

	ready    map[string]bool
	rematch  map[string]bool
	last     *models.Snapshot
	cancel   context.CancelFunc
	accepted bool
}

func newMatch(id string, mode models.GameMode, p1, p2 *models.Client) *Match {
	return &Match{
		ID:         id,
		Mode:       mode,
		Player1:    p1,
		Player2:    p2,
		Spectators: make(map[string]*models.Client),
		Status:     StatusWaiting,
		ready:      make(map[string]bool),
		rematch:    make(map[string]bool),
	}
}

// isPlayer reports whether id plays in m. Callers hold m.Mutex.
func (m *Match) isPlayer(id string) bool {
	return (m.Player1 != nil && m.Player1.ID == id) || (m.Player2 != nil && m.Player2.ID == id)
}

// other returns the human opponent of id, nil against the AI.
func (m *Match) other(id string) *models.Client {
	if m.Player1 != nil && m.Player1.ID == id {
		return m.Player2
	}
	return m.Player1
}

func (m *Match) players() []*models.Client {
	out := make([]*models.Client, 0, 2)
	if m.Player1 != nil {
		out = append(out, m.Player1)
	}
	if m.Player2 != nil {
		out = append(out, m.Player2)
	}
	return out
}

// recipients lists players and spectators. Callers hold m.Mutex.
func (m *Match) recipients() []*models.Client {
	out := m.players()
	for _, s := range m.Spectators {
		out = append(out, s)
	}
	return out
}

func (m *Match) playerStatuses() []models.PlayerStatus {
	out := make([]models.PlayerStatus, 0, 2)
	for _, c := range m.players() {
		out = append(out, models.PlayerStatus{ID: c.ID, Username: c.Username, Ready: m.ready[c.ID]})
	}
	return out
}

func (m *Match) setSnapshot(s models.Snapshot) {
	m.Mutex.Lock()
	m.last = &s
	m.Mutex.Unlock()
}

// info is the games list entry for m. Callers hold m.Mutex.
func (m *Match) info() map[string]any {
	p2 := constants.AI_PLAYER_NAME
	if m.Player2 != nil {
		p2 = m.Player2.Username
	}
	entry := map[string]any{
		"id":         m.ID,
		"mode":       string(m.Mode),
		"player1":    m.Player1.Username,
		"player2":    p2,
		"status":     string(m.Status),
		"spectators": len(m.Spectators),
	}
	if m.Status == StatusPlaying && m.last != nil {
		scores := map[string]int{}
		for _, p := range []*models.PlayerSnapshot{m.last.Player1, m.last.Player2} {
			if p != nil {
				scores[p.Name] = p.Score
			}
		}
		entry["scores"] = scores
		entry["remaining_seconds"] = m.last.RemainingSeconds
	}
	return entry
}

// AuthorizeGameAccess reports whether playerID plays in or watches gameID.
func (gm *Manager) AuthorizeGameAccess(playerID, gameID string) bool {
	match, ok := gm.getMatch(gameID)
	if !ok {
		return false
	}
	match.Mutex.RLock()
	defer match.Mutex.RUnlock()
	if match.isPlayer(playerID) {
		return true
	}
	_, watching := match.Spectators[playerID]
	return watching
}

// MatchSnapshot returns the last published state of gameID.
func (gm *Manager) MatchSnapshot(gameID string) (models.Snapshot, bool) {
	match, ok := gm.getMatch(gameID)
	if !ok {
		return models.Snapshot{}, false
	}
	match.Mutex.RLock()
	defer match.Mutex.RUnlock()
	if match.last == nil {
		return models.Snapshot{}, false
	}
	return *match.last, true
}

// FindClientByID looks a connected client up in the lobby and in every match.
func (gm *Manager) FindClientByID(id string) *models.Client {
	if c, ok := gm.Lobby.Get(id); ok {
		return c
	}
	gm.Mutex.RLock()
	defer gm.Mutex.RUnlock()
	for _, match := range gm.Games {
		match.Mutex.RLock()
		for _, c := range match.recipients() {
			if c.ID == id {
				match.Mutex.RUnlock()
				return c
			}
		}
		match.Mutex.RUnlock()
	}
	return nil
}

// UsernameTaken reports whether a connected client already uses username.
func (gm *Manager) UsernameTaken(username string) bool {
	if gm.Lobby.ExistsByUsername(username) {
		return true
	}
	gm.Mutex.RLock()
	defer gm.Mutex.RUnlock()
	for _, match := range gm.Games {
		match.Mutex.RLock()
		for _, c := range match.recipients() {
			if c.Username == username && !c.Closed() {
				match.Mutex.RUnlock()
				return true
			}
		}
		match.Mutex.RUnlock()
	}
	return false
}

func (gm *Manager) getMatch(gameID string) (*Match, bool) {
	gm.Mutex.RLock()
	defer gm.Mutex.RUnlock()
	m, ok := gm.Games[gameID]
	return m, ok
}
