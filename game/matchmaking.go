package game

import (
	"fmt"

	"github.com/google/uuid"

	"snake-duel/constants"
	"snake-duel/models"
)

func (gm *Manager) SendGameRequest(from *models.Client, toID string) {
	if from.ID == toID {
		gm.sendError(from, "INVALID_TARGET", "You cannot challenge yourself")
		return
	}
	target, exists := gm.Lobby.Get(toID)
	if !exists {
		gm.sendError(from, "PLAYER_NOT_FOUND", "Player not found in lobby")
		return
	}

	gameID := uuid.New().String()
	match := newMatch(gameID, models.ModePvP, from, target)

	gm.Mutex.Lock()
	if gm.PendingRequests[toID] == nil {
		gm.PendingRequests[toID] = make(map[string]*Match)
	}
	if _, exists := gm.PendingRequests[toID][from.ID]; exists {
		gm.Mutex.Unlock()
		gm.sendError(from, "DUPLICATE_REQUEST", "You already sent a request to this player")
		return
	}

	gm.Games[gameID] = match
	gm.PendingRequests[toID][from.ID] = match
	gm.Mutex.Unlock()

	gm.log.Infof("game request %s: %s -> %s", gameID, from.Username, target.Username)

	gm.sendMessage(target, constants.MSG_MATCH_FOUND, map[string]any{
		"game_id":     gameID,
		"from_player": from.Status(),
	})

	gm.sendMessage(from, constants.MSG_GAME_REQUEST_SENT, map[string]any{
		"game_id":   gameID,
		"to_player": target.Status(),
		"status":    "pending",
	})
}

func (gm *Manager) CancelGameRequest(from *models.Client, toID string) {
	gm.Mutex.Lock()
	targetRequests, exists := gm.PendingRequests[toID]
	if !exists {
		gm.Mutex.Unlock()
		return
	}
	match, hasRequest := targetRequests[from.ID]
	if !hasRequest {
		gm.Mutex.Unlock()
		return
	}
	delete(targetRequests, from.ID)
	if len(targetRequests) == 0 {
		delete(gm.PendingRequests, toID)
	}
	delete(gm.Games, match.ID)
	gm.Mutex.Unlock()

	if target, ok := gm.Lobby.Get(toID); ok {
		gm.sendMessage(target, constants.MSG_GAME_REQUEST_CANCEL, map[string]any{
			"game_id":     match.ID,
			"from_player": from.Status(),
			"message":     fmt.Sprintf("%s cancelled the game request", from.Username),
		})
	}

	gm.sendMessage(from, constants.MSG_GAME_REQUEST_CANCEL, map[string]any{
		"game_id":   match.ID,
		"to_player": toID,
		"status":    "cancelled",
	})
}

// AcceptGameRequest confirms a pending request. Every other request to or
// from the accepting player is dropped.
func (gm *Manager) AcceptGameRequest(client *models.Client, gameID string) {
	match, exists := gm.getMatch(gameID)
	if !exists {
		gm.sendError(client, "GAME_NOT_FOUND", "Game not found")
		return
	}

	match.Mutex.RLock()
	target := match.Player2
	requester := match.Player1
	status := match.Status
	match.Mutex.RUnlock()

	if target == nil || target.ID != client.ID {
		gm.sendError(client, "NOT_TARGET", "You are not the target player")
		return
	}
	if status != StatusWaiting {
		gm.sendError(client, "GAME_STARTED", "Game already started")
		return
	}

	gm.Mutex.Lock()
	if gm.PendingRequests[client.ID][requester.ID] != match {
		gm.Mutex.Unlock()
		gm.sendError(client, "REQUEST_NOT_FOUND", "Request no longer pending")
		return
	}
	involved := func(id string) bool { return id == client.ID || id == requester.ID }
	var dropped []*Match
	for targetID, requests := range gm.PendingRequests {
		for fromID, other := range requests {
			if other == match {
				delete(requests, fromID)
				continue
			}
			if involved(targetID) || involved(fromID) {
				delete(requests, fromID)
				delete(gm.Games, other.ID)
				dropped = append(dropped, other)
			}
		}
		if len(requests) == 0 {
			delete(gm.PendingRequests, targetID)
		}
	}
	gm.Mutex.Unlock()

	match.Mutex.Lock()
	match.accepted = true
	match.Mutex.Unlock()

	for _, other := range dropped {
		gm.broadcastToPlayers(other, constants.MSG_GAME_REQUEST_CANCEL, map[string]any{
			"game_id": other.ID,
			"status":  "cancelled",
			"message": "Player joined another game",
		})
	}

	match.Mutex.RLock()
	players := match.playerStatuses()
	match.Mutex.RUnlock()

	gm.broadcastToPlayers(match, constants.MSG_GAME_ACCEPT, map[string]any{
		"game_id": gameID,
		"status":  string(StatusWaiting),
		"players": players,
	})

	gm.BroadcastGamesList()
}

func (gm *Manager) RejectGameRequest(client *models.Client, gameID string) {
	gm.Mutex.Lock()
	match, exists := gm.Games[gameID]
	if !exists {
		gm.Mutex.Unlock()
		return
	}

	match.Mutex.RLock()
	requester, target, status := match.Player1, match.Player2, match.Status
	match.Mutex.RUnlock()

	if target == nil || target.ID != client.ID || status != StatusWaiting {
		gm.Mutex.Unlock()
		return
	}
	targetRequests := gm.PendingRequests[client.ID]
	if targetRequests[requester.ID] != match {
		gm.Mutex.Unlock()
		return
	}
	delete(targetRequests, requester.ID)
	if len(targetRequests) == 0 {
		delete(gm.PendingRequests, client.ID)
	}
	delete(gm.Games, gameID)
	gm.Mutex.Unlock()

	gm.sendMessage(requester, constants.MSG_GAME_REJECT, map[string]any{
		"game_id":     gameID,
		"from_player": client.Status(),
	})
}
