package auth

import (
	"net/http"

	"github.com/pion/logging"

	"snake-duel/models"
)

// ClientFinder resolves a token's player id to a live connection.
type ClientFinder interface {
	FindClientByID(id string) *models.Client
}

// GameAuthorizer reports whether a client plays or watches a match.
type GameAuthorizer interface {
	AuthorizeGameAccess(playerID, gameID string) bool
}

const (
	HeaderPlayerID = "X-Player-ID"
	HeaderUsername = "X-Username"
)

// AuthMiddleware validates the token and passes the caller's identity on in
// request headers
func AuthMiddleware(a *Authenticator, clients ClientFinder, log logging.LeveledLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.extractAndValidateToken(r)
			if err != nil {
				log.Debugf("rejected %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			client := clients.FindClientByID(claims.PlayerID)
			if client == nil || client.Closed() {
				http.Error(w, "Unauthorized: Player not found or inactive", http.StatusUnauthorized)
				return
			}
			if client.Username != claims.Username {
				http.Error(w, "Unauthorized: Username mismatch", http.StatusUnauthorized)
				return
			}

			r.Header.Set(HeaderPlayerID, claims.PlayerID)
			r.Header.Set(HeaderUsername, claims.Username)

			next.ServeHTTP(w, r)
		})
	}
}

// RequireGameAccess rejects callers that neither play nor watch the match
// named by the game_id query parameter. It must run after AuthMiddleware.
func RequireGameAccess(games GameAuthorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gameID := r.URL.Query().Get("game_id")
			if gameID == "" || !games.AuthorizeGameAccess(r.Header.Get(HeaderPlayerID), gameID) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractTokenFromRequest reads the Authorization header, falling back to
// the token query parameter used by browser websocket clients
func extractTokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return authHeader
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return "Bearer " + token
	}
	return ""
}

func (a *Authenticator) extractAndValidateToken(r *http.Request) (*Claims, error) {
	tokenString, err := ExtractTokenFromHeader(extractTokenFromRequest(r))
	if err != nil {
		return nil, err
	}
	return a.ValidateToken(tokenString)
}
