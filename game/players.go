package game

import (
	"fmt"

	"snake-duel/constants"
	"snake-duel/models"
)

// RemovePlayer forgets a disconnected client: its lobby entry, peer,
// requests and matches. An opponent still playing wins by disconnect.
func (gm *Manager) RemovePlayer(clientID string) {
	gm.Lobby.Remove(clientID)
	if gm.WebRTCManager != nil {
		gm.WebRTCManager.RemovePeer(clientID)
	}

	var involved []*Match
	gm.Mutex.Lock()
	for targetID, requests := range gm.PendingRequests {
		for fromID := range requests {
			if targetID == clientID || fromID == clientID {
				delete(requests, fromID)
			}
		}
		if len(requests) == 0 {
			delete(gm.PendingRequests, targetID)
		}
	}
	for gameID, match := range gm.Games {
		match.Mutex.Lock()
		if match.isPlayer(clientID) {
			involved = append(involved, match)
			delete(gm.Games, gameID)
		} else {
			delete(match.Spectators, clientID)
		}
		match.Mutex.Unlock()
	}
	gm.Mutex.Unlock()

	for _, match := range involved {
		gm.dropPlayer(match, clientID, models.EndDisconnect, constants.MSG_PLAYER_DISCONNECTED)
	}

	gm.log.Infof("player %s removed", clientID)

	gm.BroadcastLobbyStatus()
	gm.BroadcastGamesList()
}

// dropPlayer ends match for a player who left it. The caller has already
// removed match from gm.Games.
func (gm *Manager) dropPlayer(match *Match, clientID string, reason models.EndReason, notice string) {
	match.Mutex.RLock()
	status := match.Status
	eng := match.Engine
	other := match.other(clientID)
	var leaver *models.Client
	for _, c := range match.players() {
		if c.ID == clientID {
			leaver = c
		}
	}
	match.Mutex.RUnlock()

	if leaver == nil {
		return
	}

	switch status {
	case StatusWaiting:
		gm.sendMessage(other, constants.MSG_GAME_REQUEST_CANCEL, map[string]any{
			"game_id":     match.ID,
			"from_player": leaver.Status(),
			"message":     fmt.Sprintf("%s left the lobby", leaver.Username),
		})
		gm.returnToLobby(other)
		return
	case StatusPlaying:
		if slot, ok := eng.SlotOf(clientID); ok {
			if err := eng.Concede(slot, reason); err != nil {
				gm.log.Warnf("match %s: concede %s: %v", match.ID, leaver.Username, err)
			}
		}
		gm.endGame(match)
	case StatusCountdown:
		gm.endGame(match)
	}

	gm.sendMessage(other, notice, map[string]any{
		"game_id": match.ID,
		"player":  leaver.Username,
		"message": leaver.Username + " has left the game",
	})
	gm.returnToLobby(other)
}

// Forfeit concedes an active match. The match stays listed for a rematch.
func (gm *Manager) Forfeit(client *models.Client, gameID string) {
	match, exists := gm.getMatch(gameID)
	if !exists {
		gm.sendError(client, "GAME_NOT_FOUND", "Game not found")
		return
	}

	match.Mutex.RLock()
	isPlayer := match.isPlayer(client.ID)
	eng := match.Engine
	playing := match.Status == StatusPlaying
	match.Mutex.RUnlock()

	if !isPlayer {
		gm.sendError(client, "NOT_A_PLAYER", "Only players can forfeit")
		return
	}
	if !playing || eng == nil {
		return
	}
	if slot, ok := eng.SlotOf(client.ID); ok {
		if err := eng.Forfeit(slot); err != nil {
			gm.log.Warnf("match %s: forfeit %s: %v", gameID, client.Username, err)
			return
		}
	}
	gm.log.Infof("match %s: %s forfeited", gameID, client.Username)
	gm.endGame(match)
}

// LeaveGame takes client out of a match it plays in or watches. A player
// leaving an unfinished match forfeits it.
func (gm *Manager) LeaveGame(client *models.Client, gameID string) {
	gm.Mutex.Lock()
	match, exists := gm.Games[gameID]
	if !exists {
		gm.Mutex.Unlock()
		gm.returnToLobby(client)
		return
	}

	match.Mutex.Lock()
	isPlayer := match.isPlayer(client.ID)
	_, watching := match.Spectators[client.ID]
	if isPlayer {
		delete(gm.Games, gameID)
		for targetID, requests := range gm.PendingRequests {
			for fromID, m := range requests {
				if m == match {
					delete(requests, fromID)
				}
			}
			if len(requests) == 0 {
				delete(gm.PendingRequests, targetID)
			}
		}
	} else if watching {
		delete(match.Spectators, client.ID)
	}
	match.Mutex.Unlock()
	gm.Mutex.Unlock()

	if isPlayer {
		gm.dropPlayer(match, client.ID, models.EndForfeit, constants.MSG_LEAVE_GAME)
	}
	gm.returnToLobby(client)
	gm.BroadcastGamesList()
}

func (gm *Manager) AddSpectator(client *models.Client, gameID string) {
	match, exists := gm.getMatch(gameID)
	if !exists {
		gm.sendError(client, "GAME_NOT_FOUND", "Game not found")
		return
	}

	match.Mutex.Lock()
	if match.isPlayer(client.ID) {
		match.Mutex.Unlock()
		gm.sendError(client, "ALREADY_PLAYER", "You are already a player in this game")
		return
	}
	if match.Status == StatusFinished {
		match.Mutex.Unlock()
		gm.sendError(client, "GAME_FINISHED", "Game is over")
		return
	}
	if _, exists := match.Spectators[client.ID]; exists {
		match.Mutex.Unlock()
		return
	}
	match.Spectators[client.ID] = client
	data := map[string]any{
		"game_id": gameID,
		"status":  string(match.Status),
	}
	if match.last != nil {
		data["data"] = *match.last
	}
	match.Mutex.Unlock()

	gm.sendMessage(client, constants.MSG_SPECTATOR_UPDATE, data)
	gm.BroadcastGamesList()
}

// HandleRematchRequest records that client wants a rematch. Once every
// human player has asked, the rematch countdown starts.
func (gm *Manager) HandleRematchRequest(client *models.Client, gameID string) {
	match, exists := gm.getMatch(gameID)
	if !exists {
		gm.sendError(client, "GAME_NOT_FOUND", "Game not found")
		return
	}

	match.Mutex.Lock()
	if !match.isPlayer(client.ID) {
		match.Mutex.Unlock()
		gm.sendError(client, "NOT_A_PLAYER", "Only players can request rematch")
		return
	}
	if match.Status != StatusFinished {
		match.Mutex.Unlock()
		gm.sendError(client, "GAME_NOT_FINISHED", "Game is still running")
		return
	}

	other := match.other(client.ID)
	if match.Mode == models.ModePvP && (other == nil || other.Closed()) {
		match.Mutex.Unlock()
		gm.sendError(client, "OPPONENT_DISCONNECTED", "Opponent has left the game. Returning to lobby...")
		gm.Mutex.Lock()
		delete(gm.Games, gameID)
		gm.Mutex.Unlock()
		gm.returnToLobby(client)
		return
	}

	match.rematch[client.ID] = true
	start := other == nil || match.rematch[other.ID]
	if start {
		match.Status = StatusCountdown
		match.rematch = make(map[string]bool)
	}
	match.Mutex.Unlock()

	if !start {
		gm.sendMessage(other, constants.MSG_REMATCH_REQUEST, map[string]any{
			"game_id":        gameID,
			"requester_id":   client.ID,
			"requester_name": client.Username,
		})
		return
	}

	gm.broadcastToPlayers(match, constants.MSG_REMATCH_ACCEPT, map[string]any{
		"game_id":        gameID,
		"accepted_by":    client.Username,
		"accepted_by_id": client.ID,
	})
	go gm.startRematch(match)
}

// HandleRematchAccept answers a pending rematch request.
func (gm *Manager) HandleRematchAccept(client *models.Client, gameID string) {
	gm.HandleRematchRequest(client, gameID)
}

func (gm *Manager) startRematch(match *Match) {
	if gm.countdown(match, constants.REMATCH_COUNTDOWN, constants.MSG_REMATCH_COUNTDOWN) {
		gm.startMatch(match)
	}
}
