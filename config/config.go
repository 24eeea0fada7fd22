// Package config loads server and match settings from an optional YAML file
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"snake-duel/constants"
)

var (
	ErrInvalidMapSize  = errors.New("map size too small for start positions")
	ErrInvalidDuration = errors.New("durations must be positive")
	ErrInvalidCount    = errors.New("counts must be positive")
	ErrInvalidAISpeed  = errors.New("invalid ai speed settings")
)

// Match holds the tunables of a single duel. Zero values are never valid;
// start from DefaultMatch.
type Match struct {
	MapSize           int           `yaml:"map_size"`
	TickRate          time.Duration `yaml:"tick_rate"`
	MatchDuration     time.Duration `yaml:"match_duration"`
	StartingLives     int           `yaml:"starting_lives"`
	RespawnDelay      time.Duration `yaml:"respawn_delay"`
	CollectibleTarget int           `yaml:"collectible_target"`
	PlacementAttempts int           `yaml:"placement_attempts"`
	StartEdgeOffset   int           `yaml:"start_edge_offset"`
	MagnetRadius      int           `yaml:"magnet_radius"`
	PathMaxExpansions int           `yaml:"path_max_expansions"`
	AIBaseSpeedMs     int           `yaml:"ai_base_speed_ms"`
	AISpeedFactor     float64       `yaml:"ai_speed_factor"`
	AISpeedInterval   time.Duration `yaml:"ai_speed_interval"`
	AIMaxMultiplier   float64       `yaml:"ai_max_multiplier"`
	AIMinSpeedMs      int           `yaml:"ai_min_speed_ms"`
	Countdown         int           `yaml:"countdown_seconds"`
}

type Server struct {
	Port      string `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
	LogLevel  string `yaml:"log_level"`
	// ICEServers are STUN/TURN urls handed to the WebRTC peer connections.
	ICEServers []string `yaml:"ice_servers"`
}

type Config struct {
	Server Server `yaml:"server"`
	Match  Match  `yaml:"match"`
}

func DefaultMatch() Match {
	return Match{
		MapSize:           constants.MAP_SIZE,
		TickRate:          constants.TICK_RATE,
		MatchDuration:     constants.MATCH_DURATION,
		StartingLives:     constants.STARTING_LIVES,
		RespawnDelay:      constants.RESPAWN_DELAY,
		CollectibleTarget: constants.COLLECTIBLE_TARGET,
		PlacementAttempts: constants.PLACEMENT_ATTEMPTS,
		StartEdgeOffset:   constants.START_EDGE_OFFSET,
		MagnetRadius:      constants.MAGNET_RADIUS,
		PathMaxExpansions: constants.PATH_MAX_EXPANSIONS,
		AIBaseSpeedMs:     constants.AI_BASE_SPEED_MS,
		AISpeedFactor:     constants.AI_SPEED_FACTOR,
		AISpeedInterval:   constants.AI_SPEED_INTERVAL,
		AIMaxMultiplier:   constants.AI_MAX_MULTIPLIER,
		AIMinSpeedMs:      constants.AI_MIN_SPEED_MS,
		Countdown:         constants.COUNTDOWN_SECONDS,
	}
}

func Default() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			JWTSecret:  "snake-duel-dev-secret",
			LogLevel:   "info",
			ICEServers: []string{"stun:stun.l.google.com:19302"},
		},
		Match: DefaultMatch(),
	}
}

// Validate checks that the match can be laid out and simulated.
func (m Match) Validate() error {
	// both snakes need their full body plus one free column between them
	if m.StartEdgeOffset < constants.INITIAL_SNAKE_LENGTH-1 || m.MapSize < 2*(m.StartEdgeOffset+1)+1 {
		return fmt.Errorf("map_size=%d start_edge_offset=%d: %w", m.MapSize, m.StartEdgeOffset, ErrInvalidMapSize)
	}
	if m.TickRate <= 0 || m.MatchDuration <= 0 || m.RespawnDelay < 0 || m.AISpeedInterval <= 0 {
		return ErrInvalidDuration
	}
	if m.StartingLives <= 0 || m.CollectibleTarget < 0 || m.PlacementAttempts <= 0 || m.PathMaxExpansions <= 0 {
		return ErrInvalidCount
	}
	if m.AIBaseSpeedMs <= 0 || m.AIMinSpeedMs <= 0 || m.AISpeedFactor < 1 || m.AIMaxMultiplier < 1 {
		return ErrInvalidAISpeed
	}
	return nil
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Server.JWTSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Server.LogLevel = strings.ToLower(level)
	}

	if err := cfg.Match.Validate(); err != nil {
		return cfg, fmt.Errorf("match config: %w", err)
	}
	return cfg, nil
}
