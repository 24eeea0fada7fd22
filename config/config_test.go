package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchIsValid(t *testing.T) {
	m := DefaultMatch()
	require.NoError(t, m.Validate())
	assert.Equal(t, 30, m.MapSize)
	assert.Equal(t, 100*time.Millisecond, m.TickRate)
	assert.Equal(t, 5, m.CollectibleTarget)
}

func TestValidateRejectsTinyMap(t *testing.T) {
	m := DefaultMatch()
	m.MapSize = 8
	assert.ErrorIs(t, m.Validate(), ErrInvalidMapSize)
}

func TestValidateRejectsBadDurations(t *testing.T) {
	m := DefaultMatch()
	m.TickRate = 0
	assert.ErrorIs(t, m.Validate(), ErrInvalidDuration)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snake.yaml")
	data := []byte(`
server:
  port: "9000"
match:
  match_duration: 60s
  collectible_target: 8
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Match.MatchDuration)
	assert.Equal(t, 8, cfg.Match.CollectibleTarget)
	// untouched keys keep their defaults
	assert.Equal(t, 30, cfg.Match.MapSize)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logging.LogLevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, logging.LogLevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, logging.LogLevelInfo, ParseLogLevel("chatty"))

	lf := Server{LogLevel: "error"}.LoggerFactory()
	assert.Equal(t, logging.LogLevelError, lf.DefaultLogLevel)
}
