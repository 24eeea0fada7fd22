// Package game hosts matches for connected clients: the lobby, match
// requests, countdowns, the per-match tick loop and the fan-out of state to
// players and spectators.
package game

import (
	"context"
	"sync"
	"time"

	"github.com/pion/logging"

	"snake-duel/clock"
	"snake-duel/config"
	"snake-duel/constants"
	"snake-duel/lobby"
	"snake-duel/models"
	webrtcManager "snake-duel/webrtc"
	"snake-duel/wire"
)

type Manager struct {
	Lobby           *lobby.Service
	Games           map[string]*Match
	PendingRequests map[string]map[string]*Match
	Mutex           sync.RWMutex
	WebRTCManager   *webrtcManager.Manager

	cfg           config.Match
	clock         clock.Clock
	log           logging.LeveledLogger
	engineLog     logging.LeveledLogger
	countdownStep time.Duration
	seed          func() int64

	ctx      context.Context
	shutdown context.CancelFunc
}

type Option func(*Manager)

// WithClock sets the clock handed to every engine.
func WithClock(c clock.Clock) Option {
	return func(gm *Manager) { gm.clock = c }
}

// WithCountdownStep sets the pause between countdown announcements.
func WithCountdownStep(d time.Duration) Option {
	return func(gm *Manager) { gm.countdownStep = d }
}

// WithSeed sets the source of per-match rng seeds.
func WithSeed(seed func() int64) Option {
	return func(gm *Manager) { gm.seed = seed }
}

func (gm *Manager) SetWebRTCManager(webrtcMgr *webrtcManager.Manager) {
	gm.WebRTCManager = webrtcMgr
}

func NewGameManager(cfg config.Match, lf logging.LoggerFactory, opts ...Option) *Manager {
	if lf == nil {
		lf = logging.NewDefaultLoggerFactory()
	}
	ctx, cancel := context.WithCancel(context.Background())
	gm := &Manager{
		Lobby:           lobby.NewService(),
		Games:           make(map[string]*Match),
		PendingRequests: make(map[string]map[string]*Match),
		cfg:             cfg,
		clock:           clock.Real{},
		log:             lf.NewLogger("game"),
		engineLog:       lf.NewLogger("engine"),
		countdownStep:   time.Second,
		seed:            func() int64 { return time.Now().UnixNano() },
		ctx:             ctx,
		shutdown:        cancel,
	}
	for _, opt := range opts {
		opt(gm)
	}
	return gm
}

// Shutdown stops every running match loop.
func (gm *Manager) Shutdown() {
	gm.shutdown()
}

func (gm *Manager) sendMessage(client *models.Client, msgType string, data map[string]any) {
	if client == nil {
		return
	}
	frame, err := wire.Encode(client.Encoding, msgType, data)
	if err != nil {
		gm.log.Errorf("encode %s for %s: %v", msgType, client.Username, err)
		return
	}
	if msgType == constants.MSG_GAME_UPDATE && gm.WebRTCManager != nil {
		if err := gm.WebRTCManager.SendFrame(client.ID, frame, wire.IsBinary(client.Encoding)); err == nil {
			return
		}
	}
	if !client.Enqueue(frame) {
		gm.log.Debugf("dropped %s for %s (%s)", msgType, client.Username, client.ID)
	}
}

func (gm *Manager) sendError(client *models.Client, code, message string) {
	gm.sendMessage(client, constants.MSG_ERROR, map[string]any{
		"message": message,
		"code":    code,
	})
}

func (gm *Manager) broadcastToPlayers(match *Match, msgType string, data map[string]any) {
	match.Mutex.RLock()
	players := match.players()
	match.Mutex.RUnlock()
	for _, c := range players {
		gm.sendMessage(c, msgType, data)
	}
}

func (gm *Manager) broadcastToMatch(match *Match, msgType string, data map[string]any) {
	match.Mutex.RLock()
	recipients := match.recipients()
	match.Mutex.RUnlock()
	for _, c := range recipients {
		gm.sendMessage(c, msgType, data)
	}
}
