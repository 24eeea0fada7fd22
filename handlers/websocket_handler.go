package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/logging"

	"snake-duel/auth"
	"snake-duel/constants"
	"snake-duel/game"
	"snake-duel/models"
	"snake-duel/wire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	gameManager   *game.Manager
	authenticator *auth.Authenticator
	log           logging.LeveledLogger
}

func NewWebSocketHandler(gameManager *game.Manager, authenticator *auth.Authenticator, lf logging.LoggerFactory) *WebSocketHandler {
	return &WebSocketHandler{
		gameManager:   gameManager,
		authenticator: authenticator,
		log:           lf.NewLogger("ws"),
	}
}

// ServeHTTP upgrades the connection, issues the client its token and puts
// it in the lobby. ?encoding=msgpack switches the client to binary frames.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		username = r.Header.Get(auth.HeaderUsername)
	}
	if username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}
	if h.gameManager.UsernameTaken(username) {
		http.Error(w, "Username is already taken", http.StatusConflict)
		return
	}
	encoding, err := wire.ParseEncoding(r.URL.Query().Get("encoding"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	client := models.NewClient(uuid.New().String(), username, constants.CLIENT_SEND_BUFFER_SIZE)
	client.Encoding = encoding

	token, err := h.authenticator.GenerateToken(client.ID, client.Username)
	if err != nil {
		h.log.Errorf("token for %s: %v", username, err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	connected, err := wire.Encode(encoding, constants.MSG_CONNECTED, map[string]any{
		"player": client.Status(),
		"token":  token,
	})
	if err == nil {
		client.Enqueue(connected)
	}

	// claims the username under the lobby lock
	if !h.gameManager.AddToLobby(client) {
		http.Error(w, "Username is already taken", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade: %v", err)
		client.Close()
		h.gameManager.RemovePlayer(client.ID)
		return
	}

	h.log.Infof("player %s (%s) connected, encoding %s", client.Username, client.ID, encoding)

	go h.writePump(client, conn)
	h.readPump(client, conn)
}

func (h *WebSocketHandler) readPump(client *models.Client, conn *websocket.Conn) {
	defer func() {
		client.Close()
		h.gameManager.RemovePlayer(client.ID)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warnf("websocket error for %s: %v", client.Username, err)
			}
			break
		}

		msgType, msg, err := wire.Decode(client.Encoding, message)
		if err != nil {
			h.log.Debugf("bad frame from %s: %v", client.Username, err)
			continue
		}

		h.gameManager.HandleMessage(client, msgType, msg)
	}
}

// writePump drains client.Send. JSON frames queued together go out as one
// newline separated text message; msgpack frames go out one per message.
func (h *WebSocketHandler) writePump(client *models.Client, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	binary := wire.IsBinary(client.Encoding)

	for {
		select {
		case message, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if binary {
				if err := conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
					return
				}
				continue
			}

			var buf bytes.Buffer
			buf.Write(message)
			n := len(client.Send)
			for i := 0; i < n; i++ {
				queued, ok := <-client.Send
				if !ok {
					break
				}
				buf.WriteByte('\n')
				buf.Write(queued)
			}
			if err := conn.WriteMessage(websocket.TextMessage, buf.Bytes()); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
