package game

import (
	"snake-duel/constants"
	"snake-duel/models"
)

// HandleMessage dispatches a decoded client message. WebSocket and data
// channel frames both end up here.
func (gm *Manager) HandleMessage(client *models.Client, msgType string, msg map[string]any) {
	gameID, _ := msg["game_id"].(string)

	switch msgType {
	case constants.MSG_JOIN_LOBBY:
		gm.AddToLobby(client)
	case constants.MSG_LEAVE_LOBBY:
		gm.RemoveFromLobby(client.ID)
	case constants.MSG_GAME_REQUEST:
		if targetID, ok := msg["target_id"].(string); ok {
			gm.SendGameRequest(client, targetID)
		}
	case constants.MSG_GAME_REQUEST_CANCEL:
		if targetID, ok := msg["target_id"].(string); ok {
			gm.CancelGameRequest(client, targetID)
		}
	case constants.MSG_GAME_ACCEPT:
		gm.AcceptGameRequest(client, gameID)
	case constants.MSG_GAME_REJECT:
		gm.RejectGameRequest(client, gameID)
	case constants.MSG_PLAYER_READY:
		gm.PlayerReady(client, gameID)
	case constants.MSG_PLAYER_MOVE:
		if direction, ok := msg["direction"].(string); ok {
			gm.HandlePlayerMove(client, gameID, direction)
		}
	case constants.MSG_LIST_GAMES:
		gm.SendGamesList(client)
	case constants.MSG_JOIN_SPECTATOR:
		gm.AddSpectator(client, gameID)
	case constants.MSG_REMATCH_REQUEST:
		gm.HandleRematchRequest(client, gameID)
	case constants.MSG_REMATCH_ACCEPT:
		gm.HandleRematchAccept(client, gameID)
	case constants.MSG_START_AI_MATCH:
		gm.StartAIMatch(client)
	case constants.MSG_FORFEIT:
		gm.Forfeit(client, gameID)
	case constants.MSG_LEAVE_GAME:
		gm.LeaveGame(client, gameID)
	default:
		gm.log.Debugf("unknown message type %q from %s", msgType, client.Username)
		gm.sendError(client, "UNKNOWN_MESSAGE", "Unknown message type "+msgType)
	}
}
