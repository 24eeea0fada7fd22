package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pion/logging"

	"snake-duel/auth"
	"snake-duel/game"
	webrtcManager "snake-duel/webrtc"
	"snake-duel/wire"
)

type WebRTCHandler struct {
	gameManager   *game.Manager
	webrtcManager *webrtcManager.Manager
	log           logging.LeveledLogger
}

func NewWebRTCHandler(gameManager *game.Manager, webrtcManager *webrtcManager.Manager, lf logging.LoggerFactory) *WebRTCHandler {
	return &WebRTCHandler{
		gameManager:   gameManager,
		webrtcManager: webrtcManager,
		log:           lf.NewLogger("webrtc-handler"),
	}
}

type offerRequest struct {
	Offer struct {
		Type string `json:"type"`
		SDP  string `json:"sdp"`
	} `json:"offer"`
}

// HandleOffer opens a data channel for an already connected client. Game
// updates then prefer the data channel; everything else stays on the
// websocket. Runs behind auth.AuthMiddleware.
func (h *WebRTCHandler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	client := h.gameManager.FindClientByID(r.Header.Get(auth.HeaderPlayerID))
	if client == nil {
		http.Error(w, "Player not connected", http.StatusNotFound)
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Offer.SDP == "" {
		http.Error(w, "Offer SDP is required", http.StatusBadRequest)
		return
	}

	peer, err := h.webrtcManager.CreatePeerConnection(client, func(frame []byte) {
		msgType, msg, err := wire.Decode(client.Encoding, frame)
		if err != nil {
			h.log.Debugf("bad data channel frame from %s: %v", client.Username, err)
			return
		}
		h.gameManager.HandleMessage(client, msgType, msg)
	})
	if err != nil {
		h.log.Errorf("peer for %s: %v", client.Username, err)
		http.Error(w, "Failed to create peer connection", http.StatusInternalServerError)
		return
	}

	answer, err := peer.Answer(req.Offer.SDP)
	if err != nil {
		h.webrtcManager.RemovePeer(client.ID)
		h.log.Warnf("answer for %s: %v", client.Username, err)
		http.Error(w, "Failed to negotiate: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"player_id": client.ID,
		"answer": map[string]string{
			"type": answer.Type.String(),
			"sdp":  answer.SDP,
		},
	})
}
