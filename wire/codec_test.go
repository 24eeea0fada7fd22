package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"snake-duel/constants"
	"snake-duel/models"
)

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, constants.ENCODING_JSON, enc)

	enc, err = ParseEncoding("msgpack")
	require.NoError(t, err)
	assert.Equal(t, constants.ENCODING_MSGPACK, enc)
	assert.True(t, IsBinary(enc))

	_, err = ParseEncoding("xml")
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestEncodeSnapshotUsesJSONNames(t *testing.T) {
	winner := "p1"
	snap := models.Snapshot{
		MatchID:          "m1",
		Tick:             7,
		RemainingSeconds: 42,
		WinnerID:         &winner,
		Player1: &models.PlayerSnapshot{
			ID:    "p1",
			Snake: models.SnakeSnapshot{Body: []models.Position{{X: 1, Y: 2}}, Direction: "up"},
		},
	}

	for _, encoding := range []string{constants.ENCODING_JSON, constants.ENCODING_MSGPACK} {
		t.Run(encoding, func(t *testing.T) {
			frame, err := Encode(encoding, constants.MSG_GAME_UPDATE, map[string]any{"data": snap})
			require.NoError(t, err)

			var generic map[string]any
			if encoding == constants.ENCODING_JSON {
				require.NoError(t, json.Unmarshal(frame, &generic))
			} else {
				require.NoError(t, msgpack.Unmarshal(frame, &generic))
			}

			assert.Equal(t, constants.MSG_GAME_UPDATE, generic["type"])
			data, ok := generic["data"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "m1", data["match_id"])
			assert.Equal(t, "p1", data["winner_id"])
			assert.Contains(t, data, "remaining_seconds")

			p1 := data["player1"].(map[string]any)
			snake := p1["snake"].(map[string]any)
			assert.Equal(t, "up", snake["direction"])
		})
	}
}

func TestDecode(t *testing.T) {
	for _, encoding := range []string{constants.ENCODING_JSON, constants.ENCODING_MSGPACK} {
		t.Run(encoding, func(t *testing.T) {
			frame, err := Encode(encoding, constants.MSG_PLAYER_MOVE, map[string]any{
				"game_id":   "g1",
				"direction": "left",
			})
			require.NoError(t, err)

			msgType, msg, err := Decode(encoding, frame)
			require.NoError(t, err)
			assert.Equal(t, constants.MSG_PLAYER_MOVE, msgType)
			assert.Equal(t, "g1", msg["game_id"])
			assert.Equal(t, "left", msg["direction"])
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode(constants.ENCODING_JSON, []byte(`{"game_id":"g1"}`))
	assert.ErrorIs(t, err, ErrMissingType)

	_, _, err = Decode(constants.ENCODING_JSON, []byte(`not json`))
	assert.Error(t, err)

	_, _, err = Decode("xml", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}
