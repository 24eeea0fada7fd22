package game

import (
	"github.com/google/uuid"

	"snake-duel/models"
)

// StartAIMatch puts client against the AI opponent. There is no ready step;
// the countdown starts right away.
func (gm *Manager) StartAIMatch(client *models.Client) {
	if gm.playingIn(client.ID) != nil {
		gm.sendError(client, "ALREADY_IN_GAME", "Finish your current game first")
		return
	}

	gameID := uuid.New().String()
	match := newMatch(gameID, models.ModeAITraining, client, nil)
	match.accepted = true
	match.ready[client.ID] = true
	match.Status = StatusCountdown

	gm.Mutex.Lock()
	gm.Games[gameID] = match
	gm.Mutex.Unlock()

	gm.log.Infof("ai match %s requested by %s", gameID, client.Username)

	go gm.StartGame(match)
}

// playingIn returns the unfinished match clientID plays in, if any.
func (gm *Manager) playingIn(clientID string) *Match {
	gm.Mutex.RLock()
	defer gm.Mutex.RUnlock()
	for _, match := range gm.Games {
		match.Mutex.RLock()
		busy := match.isPlayer(clientID) && match.accepted && match.Status != StatusFinished
		match.Mutex.RUnlock()
		if busy {
			return match
		}
	}
	return nil
}
