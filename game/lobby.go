package game

import (
	"snake-duel/constants"
	"snake-duel/models"
)

// AddToLobby reports false when the client or its username is already
// there.
func (gm *Manager) AddToLobby(client *models.Client) bool {
	if added := gm.Lobby.Add(client); !added {
		gm.log.Debugf("player %s (%s) already in lobby", client.ID, client.Username)
		return false
	}

	gm.log.Infof("player %s (%s) joined the lobby, total players: %d", client.ID, client.Username, gm.Lobby.Len())

	gm.BroadcastLobbyStatus()
	gm.SendGamesList(client)
	return true
}

func (gm *Manager) RemoveFromLobby(clientID string) {
	if gm.Lobby.Remove(clientID) {
		gm.BroadcastLobbyStatus()
	}
}

func (gm *Manager) BroadcastLobbyStatus() {
	clients := gm.Lobby.Snapshot()
	statuses := gm.Lobby.Statuses()

	gm.log.Tracef("broadcasting lobby status to %d players", len(clients))

	for _, c := range clients {
		gm.sendMessage(c, constants.MSG_LOBBY_STATUS, map[string]any{
			"players": statuses,
		})
	}
}

// SendGamesList sends every match that has not finished yet.
func (gm *Manager) SendGamesList(client *models.Client) {
	gm.Mutex.RLock()
	gamesList := make([]map[string]any, 0, len(gm.Games))
	for _, match := range gm.Games {
		match.Mutex.RLock()
		if match.Status != StatusFinished {
			gamesList = append(gamesList, match.info())
		}
		match.Mutex.RUnlock()
	}
	gm.Mutex.RUnlock()

	gm.sendMessage(client, constants.MSG_GAMES_LIST, map[string]any{
		"games": gamesList,
	})
}

func (gm *Manager) BroadcastGamesList() {
	for _, c := range gm.Lobby.Snapshot() {
		gm.SendGamesList(c)
	}
}

// returnToLobby puts a still connected client back in the lobby.
func (gm *Manager) returnToLobby(client *models.Client) {
	if client == nil || client.Closed() {
		return
	}
	if _, exists := gm.Lobby.Get(client.ID); !exists {
		gm.AddToLobby(client)
	}
}
