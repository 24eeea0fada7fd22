// Package wire frames server messages as a flat envelope with a "type" key,
// encoded as JSON text or msgpack binary depending on the client.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"snake-duel/constants"
)

var (
	ErrUnknownEncoding = errors.New("unknown encoding")
	ErrMissingType     = errors.New("message has no type")
)

// ParseEncoding maps a requested encoding to a supported one. Empty means JSON.
func ParseEncoding(s string) (string, error) {
	switch s {
	case "", constants.ENCODING_JSON:
		return constants.ENCODING_JSON, nil
	case constants.ENCODING_MSGPACK:
		return constants.ENCODING_MSGPACK, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownEncoding)
}

// IsBinary reports whether frames of this encoding must go out as binary.
func IsBinary(encoding string) bool {
	return encoding == constants.ENCODING_MSGPACK
}

// Encode builds {"type": msgType, ...data} in the given encoding.
func Encode(encoding, msgType string, data map[string]any) ([]byte, error) {
	message := make(map[string]any, len(data)+1)
	for k, v := range data {
		message[k] = v
	}
	message["type"] = msgType

	switch encoding {
	case constants.ENCODING_JSON, "":
		return json.Marshal(message)
	case constants.ENCODING_MSGPACK:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		enc.UseCompactInts(true)
		if err := enc.Encode(message); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%q: %w", encoding, ErrUnknownEncoding)
}

// Decode parses an inbound frame into its type and fields.
func Decode(encoding string, frame []byte) (string, map[string]any, error) {
	var msg map[string]any

	switch encoding {
	case constants.ENCODING_JSON, "":
		if err := json.Unmarshal(frame, &msg); err != nil {
			return "", nil, err
		}
	case constants.ENCODING_MSGPACK:
		dec := msgpack.NewDecoder(bytes.NewReader(frame))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&msg); err != nil {
			return "", nil, err
		}
	default:
		return "", nil, fmt.Errorf("%q: %w", encoding, ErrUnknownEncoding)
	}

	msgType, ok := msg["type"].(string)
	if !ok || msgType == "" {
		return "", nil, ErrMissingType
	}
	return msgType, msg, nil
}
