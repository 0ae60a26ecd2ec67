// Package frame models the JSON messages pushed by the assistant backend
// over the real-time channel.
package frame

import "encoding/json"

// Type is the discriminator carried in every frame's "type" field.
type Type string

const (
	TypeStatus       Type = "status"
	TypeLLMStart     Type = "llm_start"
	TypeLLMEnd       Type = "llm_end"
	TypeTaskProgress Type = "task_progress"
	TypeLog          Type = "log"
)

// Known reports whether t is one of the recognized tags. Unknown tags are
// still delivered to handlers.
func (t Type) Known() bool {
	switch t {
	case TypeStatus, TypeLLMStart, TypeLLMEnd, TypeTaskProgress, TypeLog:
		return true
	}
	return false
}

// StatusSkipped is the task_progress status for work that was not performed.
const StatusSkipped = "skipped"

// Frame is one decoded message. Only the fields relevant to Type are set.
type Frame struct {
	Type Type `json:"type"`

	// status
	Listening bool `json:"listening"`

	// llm_start, llm_end
	Model string   `json:"model"`
	Task  string   `json:"task"`
	Cost  *float64 `json:"cost"`

	// llm_start, task_progress
	Details Text `json:"details"`

	// task_progress
	File   string `json:"file"`
	Status string `json:"status"`

	// log
	Message string `json:"message"`

	// Raw holds the undecoded payload.
	Raw json.RawMessage `json:"-"`
}

// CostOrZero returns the reported cost, or 0 when the field was absent.
func (f Frame) CostOrZero() float64 {
	if f.Cost == nil {
		return 0
	}
	return *f.Cost
}

// Text is a string field that tolerates non-string JSON. Objects, arrays and
// numbers are kept as their compact JSON text.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	compact, err := json.Marshal(v)
	if err != nil {
		return err
	}
	*t = Text(compact)
	return nil
}

// String returns the text value.
func (t Text) String() string { return string(t) }
