package handlers

import (
	"encoding/json"
	"net/http"

	"snake-duel/game"
)

type GameHandler struct {
	gameManager *game.Manager
}

func NewGameHandler(gameManager *game.Manager) *GameHandler {
	return &GameHandler{gameManager: gameManager}
}

// HandleSnapshot returns the last published snapshot of ?game_id. Runs
// behind auth.AuthMiddleware and auth.RequireGameAccess.
func (h *GameHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, ok := h.gameManager.MatchSnapshot(r.URL.Query().Get("game_id"))
	if !ok {
		http.Error(w, "Game not started", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
