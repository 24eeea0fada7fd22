package constants

import "time"

const (
	// Match defaults
	MAP_SIZE                = 30
	TICK_RATE               = 100 * time.Millisecond
	MATCH_DURATION          = 120 * time.Second
	STARTING_LIVES          = 3
	RESPAWN_DELAY           = 3000 * time.Millisecond
	COLLECTIBLE_TARGET      = 5
	PLACEMENT_ATTEMPTS      = 100
	START_EDGE_OFFSET       = 5
	INITIAL_SNAKE_LENGTH    = 3
	MAGNET_RADIUS           = 2
	COUNTDOWN_SECONDS       = 3
	REMATCH_COUNTDOWN       = 5
	PATH_MAX_EXPANSIONS     = 100
	AI_BASE_SPEED_MS        = 100
	AI_SPEED_FACTOR         = 1.1
	AI_SPEED_INTERVAL       = 10 * time.Second
	AI_MAX_MULTIPLIER       = 1.76
	AI_MIN_SPEED_MS         = 57
	AI_PLAYER_ID            = "ai"
	AI_PLAYER_NAME          = "AI Opponent"
	CLIENT_SEND_BUFFER_SIZE = 256

	// Message types
	MSG_CONNECTED           = "connected"
	MSG_JOIN_LOBBY          = "join_lobby"
	MSG_LEAVE_LOBBY         = "leave_lobby"
	MSG_GAME_REQUEST        = "game_request"
	MSG_GAME_REQUEST_SENT   = "game_request_sent"
	MSG_GAME_ACCEPT         = "game_accept"
	MSG_GAME_REJECT         = "game_reject"
	MSG_PLAYER_READY        = "player_ready"
	MSG_GAME_START          = "game_start"
	MSG_GAME_UPDATE         = "game_update"
	MSG_PLAYER_MOVE         = "player_move"
	MSG_GAME_OVER           = "game_over"
	MSG_ERROR               = "error"
	MSG_LOBBY_STATUS        = "lobby_status"
	MSG_MATCH_FOUND         = "match_found"
	MSG_LIST_GAMES          = "list_games"
	MSG_GAMES_LIST          = "games_list"
	MSG_JOIN_SPECTATOR      = "join_spectator"
	MSG_SPECTATOR_UPDATE    = "spectator_update"
	MSG_REMATCH_REQUEST     = "rematch_request"
	MSG_REMATCH_ACCEPT      = "rematch_accept"
	MSG_REMATCH_COUNTDOWN   = "rematch_countdown"
	MSG_PLAYER_DISCONNECTED = "player_disconnected"
	MSG_GAME_REQUEST_CANCEL = "game_request_cancel"
	MSG_START_AI_MATCH      = "start_ai_match"
	MSG_FORFEIT             = "forfeit"
	MSG_LEAVE_GAME          = "leave_game"

	// Wire encodings
	ENCODING_JSON    = "json"
	ENCODING_MSGPACK = "msgpack"
)

type Direction int

const (
	UP Direction = iota
	DOWN
	LEFT
	RIGHT
)

// Directions lists every direction in neighbour expansion order.
var Directions = [4]Direction{UP, DOWN, LEFT, RIGHT}

// Opposite returns the 180° reversal of d.
func (d Direction) Opposite() Direction {
	switch d {
	case UP:
		return DOWN
	case DOWN:
		return UP
	case LEFT:
		return RIGHT
	default:
		return LEFT
	}
}

func (d Direction) String() string {
	switch d {
	case UP:
		return "up"
	case DOWN:
		return "down"
	case LEFT:
		return "left"
	case RIGHT:
		return "right"
	}
	return "unknown"
}

// ParseDirection maps a wire direction name to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return UP, true
	case "down":
		return DOWN, true
	case "left":
		return LEFT, true
	case "right":
		return RIGHT, true
	}
	return 0, false
}
