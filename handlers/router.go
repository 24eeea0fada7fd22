package handlers

import (
	"net/http"

	"github.com/pion/logging"

	"snake-duel/auth"
	"snake-duel/game"
	webrtcManager "snake-duel/webrtc"
)

// NewRouter mounts the websocket endpoint and the token protected HTTP
// endpoints.
func NewRouter(gm *game.Manager, rtc *webrtcManager.Manager, authenticator *auth.Authenticator, lf logging.LoggerFactory) http.Handler {
	protected := auth.AuthMiddleware(authenticator, gm, lf.NewLogger("auth"))
	gameAccess := auth.RequireGameAccess(gm)

	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(gm, authenticator, lf))
	mux.Handle("/webrtc/offer", protected(http.HandlerFunc(NewWebRTCHandler(gm, rtc, lf).HandleOffer)))
	mux.Handle("/game/snapshot", protected(gameAccess(http.HandlerFunc(NewGameHandler(gm).HandleSnapshot))))
	return CORS(mux)
}
