// Package lobby tracks connected clients that are not in a match, in join
// order.
package lobby

import (
	"sync"

	"snake-duel/models"
)

type Service struct {
	mu      sync.RWMutex
	clients map[string]*models.Client
	order   []string
}

func NewService() *Service {
	return &Service{
		clients: make(map[string]*models.Client),
		order:   make([]string, 0),
	}
}

// Add appends client unless its id or username is already present.
func (s *Service) Add(client *models.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[client.ID]; exists {
		return false
	}
	for _, c := range s.clients {
		if c.Username == client.Username {
			return false
		}
	}

	s.clients[client.ID] = client
	s.order = append(s.order, client.ID)
	return true
}

func (s *Service) Remove(clientID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[clientID]; !exists {
		return false
	}
	delete(s.clients, clientID)
	for i, id := range s.order {
		if id == clientID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Service) Get(clientID string) (*models.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	return client, exists
}

func (s *Service) ExistsByUsername(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients {
		if c.Username == username {
			return true
		}
	}
	return false
}

// Snapshot returns the clients in join order.
func (s *Service) Snapshot() []*models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Client, 0, len(s.order))
	for _, id := range s.order {
		if client, exists := s.clients[id]; exists {
			result = append(result, client)
		}
	}
	return result
}

// Statuses is the lobby as sent to clients.
func (s *Service) Statuses() []models.PlayerStatus {
	clients := s.Snapshot()
	out := make([]models.PlayerStatus, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.Status())
	}
	return out
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
