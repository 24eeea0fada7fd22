package game

import (
	"context"
	"time"

	"snake-duel/constants"
	"snake-duel/engine"
	"snake-duel/models"
)

// PlayerReady marks client ready in an accepted match. The countdown starts
// once every player is ready.
func (gm *Manager) PlayerReady(client *models.Client, gameID string) {
	match, exists := gm.getMatch(gameID)
	if !exists {
		gm.sendError(client, "GAME_NOT_FOUND", "Game not found")
		return
	}

	match.Mutex.Lock()
	if !match.isPlayer(client.ID) {
		match.Mutex.Unlock()
		gm.sendError(client, "NOT_A_PLAYER", "Only players can get ready")
		return
	}
	if match.Status != StatusWaiting || !match.accepted {
		match.Mutex.Unlock()
		return
	}
	match.ready[client.ID] = true
	allReady := true
	for _, c := range match.players() {
		if !match.ready[c.ID] {
			allReady = false
		}
	}
	if allReady {
		match.Status = StatusCountdown
	}
	players := match.playerStatuses()
	match.Mutex.Unlock()

	gm.broadcastToPlayers(match, constants.MSG_PLAYER_READY, map[string]any{
		"game_id": gameID,
		"players": players,
	})

	if allReady {
		go gm.StartGame(match)
	}
}

// StartGame runs the pre-match countdown, then starts the tick loop.
func (gm *Manager) StartGame(match *Match) {
	if gm.countdown(match, gm.cfg.Countdown, constants.MSG_GAME_UPDATE) {
		gm.startMatch(match)
	}
}

// countdown announces from..1 one step apart. It stops early when the match
// leaves the countdown state.
func (gm *Manager) countdown(match *Match, from int, msgType string) bool {
	for i := from; i > 0; i-- {
		match.Mutex.Lock()
		if match.Status != StatusCountdown {
			match.Mutex.Unlock()
			return false
		}
		match.Countdown = i
		match.Mutex.Unlock()

		gm.broadcastToMatch(match, msgType, map[string]any{
			"game_id":   match.ID,
			"status":    string(StatusCountdown),
			"countdown": i,
		})

		select {
		case <-gm.ctx.Done():
			return false
		case <-time.After(gm.countdownStep):
		}
	}
	return true
}

func (gm *Manager) startMatch(match *Match) {
	match.Mutex.Lock()
	if match.Status != StatusCountdown {
		match.Mutex.Unlock()
		return
	}

	identities := []engine.Identity{{ID: match.Player1.ID, Name: match.Player1.Username}}
	if match.Player2 != nil {
		identities = append(identities, engine.Identity{ID: match.Player2.ID, Name: match.Player2.Username})
	}
	eng := engine.New(match.ID, engine.Options{
		Match:  gm.cfg,
		Clock:  gm.clock,
		Seed:   gm.seed(),
		Logger: gm.engineLog,
	})
	if err := eng.Initialize(match.Mode, identities...); err != nil {
		match.Mutex.Unlock()
		gm.log.Errorf("match %s: initialize: %v", match.ID, err)
		gm.endGame(match)
		return
	}

	ctx, cancel := context.WithCancel(gm.ctx)
	match.Engine = eng
	match.Status = StatusPlaying
	match.Countdown = 0
	match.IsActive = true
	match.cancel = cancel
	match.ready = make(map[string]bool)
	match.rematch = make(map[string]bool)
	players := match.players()
	match.Mutex.Unlock()

	snap, err := eng.Snapshot()
	if err != nil {
		gm.log.Errorf("match %s: snapshot: %v", match.ID, err)
	}
	match.setSnapshot(snap)

	for _, c := range players {
		gm.Lobby.Remove(c.ID)
	}

	gm.log.Infof("match %s started (%s)", match.ID, match.Mode)

	gm.broadcastToMatch(match, constants.MSG_GAME_START, map[string]any{
		"game_id": match.ID,
		"data":    snap,
	})
	gm.BroadcastLobbyStatus()
	gm.BroadcastGamesList()

	go gm.gameLoop(ctx, match, eng)
}

// HandlePlayerMove buffers a turn for a player of an active match.
func (gm *Manager) HandlePlayerMove(client *models.Client, gameID string, direction string) {
	match, exists := gm.getMatch(gameID)
	if !exists {
		gm.sendError(client, "GAME_NOT_FOUND", "Game not found")
		return
	}

	match.Mutex.RLock()
	isPlayer := match.isPlayer(client.ID)
	active := match.IsActive
	eng := match.Engine
	match.Mutex.RUnlock()

	if !isPlayer {
		gm.sendError(client, "NOT_A_PLAYER", "Spectators cannot move")
		return
	}
	if !active || eng == nil {
		return
	}

	d, ok := constants.ParseDirection(direction)
	if !ok {
		gm.sendError(client, "INVALID_DIRECTION", "Unknown direction "+direction)
		return
	}
	slot, ok := eng.SlotOf(client.ID)
	if !ok {
		return
	}
	if err := eng.SetDirection(slot, d); err != nil {
		gm.log.Debugf("match %s: move from %s: %v", gameID, client.Username, err)
	}
}

// gameLoop ticks eng at the configured rate and publishes every snapshot
// until the match is over or ctx is cancelled.
func (gm *Manager) gameLoop(ctx context.Context, match *Match, eng *engine.Engine) {
	ticker := time.NewTicker(gm.cfg.TickRate)
	defer ticker.Stop()

	defer func() {
		if r := recover(); r != nil {
			gm.log.Errorf("match %s: loop panic: %v", match.ID, r)
			eng.Abort(models.EndNoContest)
			gm.endGame(match)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := eng.Tick(); err != nil {
				gm.log.Errorf("match %s: tick: %v", match.ID, err)
				eng.Abort(models.EndNoContest)
			}

			snap, err := eng.Snapshot()
			if err != nil {
				gm.log.Errorf("match %s: snapshot: %v", match.ID, err)
				gm.endGame(match)
				return
			}
			match.setSnapshot(snap)

			if snap.IsGameOver {
				gm.endGame(match)
				return
			}

			gm.broadcastToMatch(match, constants.MSG_GAME_UPDATE, map[string]any{
				"game_id": match.ID,
				"data":    snap,
			})
		}
	}
}

// endGame publishes the result once and sends the players back to the
// lobby. The match stays listed for rematches until a player leaves.
func (gm *Manager) endGame(match *Match) {
	match.Mutex.Lock()
	if match.Status == StatusFinished {
		match.Mutex.Unlock()
		return
	}
	wasPlaying := match.Status == StatusPlaying
	match.Status = StatusFinished
	match.IsActive = false
	match.Countdown = 0
	cancel := match.cancel
	match.cancel = nil
	eng := match.Engine
	players := match.players()
	match.Mutex.Unlock()

	if cancel != nil {
		cancel()
	}

	data := map[string]any{"game_id": match.ID}
	if wasPlaying && eng != nil {
		if snap, err := eng.Snapshot(); err == nil {
			match.setSnapshot(snap)
			data["data"] = snap
			data["winner_id"] = snap.WinnerID
			data["reason"] = string(snap.EndReason)
			gm.log.Infof("match %s over after %d ticks: %s", match.ID, snap.Tick, snap.EndReason)
		}
	}
	gm.broadcastToMatch(match, constants.MSG_GAME_OVER, data)

	for _, c := range players {
		gm.returnToLobby(c)
	}
	gm.BroadcastGamesList()
}
