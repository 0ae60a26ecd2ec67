package frame

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingType is returned for JSON objects without a usable "type" tag.
var ErrMissingType = errors.New("frame has no type")

// Decode parses a single channel message. The payload must be a JSON object
// with a non-empty string "type"; everything else is reported as an error so
// the caller can log and skip it.
func Decode(data []byte) (Frame, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Frame{}, fmt.Errorf("decoding frame: payload is not a JSON object")
	}

	var f Frame
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return Frame{}, fmt.Errorf("decoding frame: %w", err)
	}
	if f.Type == "" {
		return Frame{}, ErrMissingType
	}

	f.Raw = append(json.RawMessage(nil), trimmed...)
	return f, nil
}
