package game

import (
	"testing"
	"time"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snake-duel/config"
	"snake-duel/constants"
	"snake-duel/models"
	"snake-duel/wire"
)

func newTestManager(t *testing.T, mutate ...func(*config.Match)) *Manager {
	t.Helper()
	cfg := config.DefaultMatch()
	cfg.TickRate = 5 * time.Millisecond
	cfg.MatchDuration = 2 * time.Second
	cfg.Countdown = 1
	for _, m := range mutate {
		m(&cfg)
	}
	lf := logging.NewDefaultLoggerFactory()
	lf.DefaultLogLevel = logging.LogLevelDisabled
	gm := NewGameManager(cfg, lf, WithCountdownStep(0), WithSeed(func() int64 { return 1 }))
	t.Cleanup(gm.Shutdown)
	return gm
}

func newTestClient(id, name string) *models.Client {
	return models.NewClient(id, name, 4096)
}

// next reads frames queued for c until one of msgType arrives.
func next(t *testing.T, c *models.Client, msgType string) map[string]any {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case frame, ok := <-c.Send:
			require.True(t, ok, "send channel closed while waiting for %s", msgType)
			typ, msg, err := wire.Decode(constants.ENCODING_JSON, frame)
			require.NoError(t, err)
			if typ == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", msgType)
			return nil
		}
	}
}

func startPvP(t *testing.T, gm *Manager) (alice, bob *models.Client, gameID string) {
	t.Helper()
	alice = newTestClient("a", "alice")
	bob = newTestClient("b", "bob")
	gm.AddToLobby(alice)
	gm.AddToLobby(bob)

	gm.SendGameRequest(alice, bob.ID)
	found := next(t, bob, constants.MSG_MATCH_FOUND)
	gameID = found["game_id"].(string)
	next(t, alice, constants.MSG_GAME_REQUEST_SENT)

	gm.AcceptGameRequest(bob, gameID)
	next(t, alice, constants.MSG_GAME_ACCEPT)
	next(t, bob, constants.MSG_GAME_ACCEPT)

	gm.PlayerReady(alice, gameID)
	gm.PlayerReady(bob, gameID)
	next(t, alice, constants.MSG_GAME_START)
	next(t, bob, constants.MSG_GAME_START)
	return alice, bob, gameID
}

func TestLobbyBroadcastsStatus(t *testing.T) {
	gm := newTestManager(t)
	alice := newTestClient("a", "alice")
	bob := newTestClient("b", "bob")

	gm.AddToLobby(alice)
	status := next(t, alice, constants.MSG_LOBBY_STATUS)
	assert.Len(t, status["players"], 1)
	games := next(t, alice, constants.MSG_GAMES_LIST)
	assert.Empty(t, games["games"])

	gm.AddToLobby(bob)
	status = next(t, alice, constants.MSG_LOBBY_STATUS)
	assert.Len(t, status["players"], 2)

	gm.RemoveFromLobby(bob.ID)
	status = next(t, alice, constants.MSG_LOBBY_STATUS)
	assert.Len(t, status["players"], 1)
}

func TestRejectAndCancelRequest(t *testing.T) {
	gm := newTestManager(t)
	alice := newTestClient("a", "alice")
	bob := newTestClient("b", "bob")
	gm.AddToLobby(alice)
	gm.AddToLobby(bob)

	gm.SendGameRequest(alice, alice.ID)
	assert.Equal(t, "INVALID_TARGET", next(t, alice, constants.MSG_ERROR)["code"])

	gm.SendGameRequest(alice, bob.ID)
	gameID := next(t, bob, constants.MSG_MATCH_FOUND)["game_id"].(string)
	gm.SendGameRequest(alice, bob.ID)
	assert.Equal(t, "DUPLICATE_REQUEST", next(t, alice, constants.MSG_ERROR)["code"])

	gm.RejectGameRequest(bob, gameID)
	rejected := next(t, alice, constants.MSG_GAME_REJECT)
	assert.Equal(t, gameID, rejected["game_id"])
	assert.Empty(t, gm.Games)

	gm.SendGameRequest(alice, bob.ID)
	next(t, bob, constants.MSG_MATCH_FOUND)
	gm.CancelGameRequest(alice, bob.ID)
	next(t, bob, constants.MSG_GAME_REQUEST_CANCEL)
	assert.Empty(t, gm.Games)
	assert.Empty(t, gm.PendingRequests)
}

func TestReadyIgnoredBeforeAccept(t *testing.T) {
	gm := newTestManager(t)
	alice := newTestClient("a", "alice")
	bob := newTestClient("b", "bob")
	gm.AddToLobby(alice)
	gm.AddToLobby(bob)

	gm.SendGameRequest(alice, bob.ID)
	gameID := next(t, bob, constants.MSG_MATCH_FOUND)["game_id"].(string)

	gm.PlayerReady(alice, gameID)
	gm.PlayerReady(bob, gameID)

	match, ok := gm.getMatch(gameID)
	require.True(t, ok)
	match.Mutex.RLock()
	defer match.Mutex.RUnlock()
	assert.Equal(t, StatusWaiting, match.Status)
}

func TestPvPMatchForfeit(t *testing.T) {
	gm := newTestManager(t)
	alice, bob, gameID := startPvP(t, gm)

	update := next(t, bob, constants.MSG_GAME_UPDATE)
	data := update["data"].(map[string]any)
	assert.Equal(t, gameID, data["match_id"])
	assert.Equal(t, "pvp", data["mode"])

	_, inLobby := gm.Lobby.Get(alice.ID)
	assert.False(t, inLobby, "players leave the lobby while playing")

	gm.HandlePlayerMove(alice, gameID, "up")
	gm.HandlePlayerMove(alice, gameID, "sideways")
	assert.Equal(t, "INVALID_DIRECTION", next(t, alice, constants.MSG_ERROR)["code"])

	gm.Forfeit(alice, gameID)
	over := next(t, bob, constants.MSG_GAME_OVER)
	assert.Equal(t, "b", over["winner_id"])
	assert.Equal(t, "forfeit", over["reason"])
	next(t, alice, constants.MSG_GAME_OVER)

	_, inLobby = gm.Lobby.Get(alice.ID)
	assert.True(t, inLobby)
	_, inLobby = gm.Lobby.Get(bob.ID)
	assert.True(t, inLobby)

	snap, ok := gm.MatchSnapshot(gameID)
	require.True(t, ok)
	assert.True(t, snap.IsGameOver)
	assert.Equal(t, models.EndForfeit, snap.EndReason)
}

func TestSpectatorWatchesButCannotMove(t *testing.T) {
	gm := newTestManager(t)
	_, _, gameID := startPvP(t, gm)
	carol := newTestClient("c", "carol")
	gm.AddToLobby(carol)

	gm.AddSpectator(carol, gameID)
	joined := next(t, carol, constants.MSG_SPECTATOR_UPDATE)
	assert.Equal(t, "playing", joined["status"])
	next(t, carol, constants.MSG_GAME_UPDATE)

	assert.True(t, gm.AuthorizeGameAccess(carol.ID, gameID))
	assert.False(t, gm.AuthorizeGameAccess("stranger", gameID))

	gm.HandlePlayerMove(carol, gameID, "up")
	assert.Equal(t, "NOT_A_PLAYER", next(t, carol, constants.MSG_ERROR)["code"])

	gm.LeaveGame(carol, gameID)
	assert.False(t, gm.AuthorizeGameAccess(carol.ID, gameID))
}

func TestDisconnectAwardsOpponent(t *testing.T) {
	gm := newTestManager(t)
	alice, bob, gameID := startPvP(t, gm)

	bob.Close()
	gm.RemovePlayer(bob.ID)

	over := next(t, alice, constants.MSG_GAME_OVER)
	assert.Equal(t, "a", over["winner_id"])
	assert.Equal(t, "disconnect", over["reason"])
	left := next(t, alice, constants.MSG_PLAYER_DISCONNECTED)
	assert.Equal(t, "bob", left["player"])

	_, exists := gm.getMatch(gameID)
	assert.False(t, exists)
	_, inLobby := gm.Lobby.Get(alice.ID)
	assert.True(t, inLobby)
	assert.Nil(t, gm.FindClientByID(bob.ID))
}

func TestRematchAfterForfeit(t *testing.T) {
	gm := newTestManager(t)
	alice, bob, gameID := startPvP(t, gm)

	gm.Forfeit(bob, gameID)
	next(t, alice, constants.MSG_GAME_OVER)

	gm.HandleRematchRequest(alice, gameID)
	req := next(t, bob, constants.MSG_REMATCH_REQUEST)
	assert.Equal(t, "alice", req["requester_name"])

	gm.HandleRematchAccept(bob, gameID)
	next(t, alice, constants.MSG_REMATCH_ACCEPT)
	countdown := next(t, alice, constants.MSG_REMATCH_COUNTDOWN)
	assert.EqualValues(t, constants.REMATCH_COUNTDOWN, countdown["countdown"])

	start := next(t, alice, constants.MSG_GAME_START)
	data := start["data"].(map[string]any)
	assert.EqualValues(t, 0, data["tick"])
	assert.Equal(t, false, data["is_game_over"])

	match, ok := gm.getMatch(gameID)
	require.True(t, ok)
	match.Mutex.RLock()
	assert.Equal(t, StatusPlaying, match.Status)
	match.Mutex.RUnlock()
}

func TestRematchRejectedWhileRunning(t *testing.T) {
	gm := newTestManager(t)
	alice, _, gameID := startPvP(t, gm)

	gm.HandleRematchRequest(alice, gameID)
	assert.Equal(t, "GAME_NOT_FINISHED", next(t, alice, constants.MSG_ERROR)["code"])
}

func TestAIMatchStartAndLeave(t *testing.T) {
	gm := newTestManager(t)
	alice := newTestClient("a", "alice")
	gm.AddToLobby(alice)

	gm.HandleMessage(alice, constants.MSG_START_AI_MATCH, nil)
	countdown := next(t, alice, constants.MSG_GAME_UPDATE)
	assert.Equal(t, "countdown", countdown["status"])

	start := next(t, alice, constants.MSG_GAME_START)
	gameID := start["game_id"].(string)
	data := start["data"].(map[string]any)
	assert.Equal(t, "ai_training", data["mode"])
	ai := data["player2"].(map[string]any)
	assert.Equal(t, true, ai["is_ai"])
	assert.Equal(t, constants.AI_PLAYER_ID, ai["id"])

	gm.StartAIMatch(alice)
	assert.Equal(t, "ALREADY_IN_GAME", next(t, alice, constants.MSG_ERROR)["code"])

	gm.HandleMessage(alice, constants.MSG_LEAVE_GAME, map[string]any{"game_id": gameID})
	over := next(t, alice, constants.MSG_GAME_OVER)
	assert.Equal(t, constants.AI_PLAYER_ID, over["winner_id"])
	assert.Equal(t, "forfeit", over["reason"])

	_, exists := gm.getMatch(gameID)
	assert.False(t, exists)
	_, inLobby := gm.Lobby.Get(alice.ID)
	assert.True(t, inLobby)
}

func TestAIMatchRunsToTheEnd(t *testing.T) {
	gm := newTestManager(t, func(m *config.Match) {
		m.MatchDuration = 150 * time.Millisecond
	})
	alice := newTestClient("a", "alice")

	gm.StartAIMatch(alice)
	start := next(t, alice, constants.MSG_GAME_START)
	gameID := start["game_id"].(string)

	over := next(t, alice, constants.MSG_GAME_OVER)
	assert.NotEmpty(t, over["reason"])
	data := over["data"].(map[string]any)
	assert.Equal(t, true, data["is_game_over"])

	snap, ok := gm.MatchSnapshot(gameID)
	require.True(t, ok)
	assert.True(t, snap.IsGameOver)
	assert.Positive(t, snap.Tick)
}

func TestHandleMessageDispatch(t *testing.T) {
	gm := newTestManager(t)
	alice := newTestClient("a", "alice")

	gm.HandleMessage(alice, constants.MSG_JOIN_LOBBY, map[string]any{})
	next(t, alice, constants.MSG_LOBBY_STATUS)
	assert.True(t, gm.UsernameTaken("alice"))
	assert.Same(t, alice, gm.FindClientByID("a"))

	gm.HandleMessage(alice, constants.MSG_LIST_GAMES, map[string]any{})
	next(t, alice, constants.MSG_GAMES_LIST)

	gm.HandleMessage(alice, "dance", map[string]any{})
	assert.Equal(t, "UNKNOWN_MESSAGE", next(t, alice, constants.MSG_ERROR)["code"])

	gm.HandleMessage(alice, constants.MSG_PLAYER_READY, map[string]any{"game_id": "missing"})
	assert.Equal(t, "GAME_NOT_FOUND", next(t, alice, constants.MSG_ERROR)["code"])

	gm.HandleMessage(alice, constants.MSG_LEAVE_LOBBY, map[string]any{})
	assert.False(t, gm.UsernameTaken("alice"))
}

func TestSendMessageUsesClientEncoding(t *testing.T) {
	gm := newTestManager(t)
	alice := newTestClient("a", "alice")
	alice.Encoding = constants.ENCODING_MSGPACK

	gm.sendMessage(alice, constants.MSG_ERROR, map[string]any{"code": "X"})
	frame := <-alice.Send
	typ, msg, err := wire.Decode(constants.ENCODING_MSGPACK, frame)
	require.NoError(t, err)
	assert.Equal(t, constants.MSG_ERROR, typ)
	assert.Equal(t, "X", msg["code"])
}

func TestAddToLobbyRejectsTakenUsername(t *testing.T) {
	gm := newTestManager(t)
	require.True(t, gm.AddToLobby(newTestClient("a", "alice")))
	assert.False(t, gm.AddToLobby(newTestClient("b", "alice")))
	assert.True(t, gm.UsernameTaken("alice"))
	assert.Nil(t, gm.FindClientByID("b"))
}
