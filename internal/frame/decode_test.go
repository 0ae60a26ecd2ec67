package frame

import (
	"errors"
	"testing"
)

func TestDecode_RecognizedTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, f Frame)
	}{
		{
			name:  "status",
			input: `{"type":"status","listening":true}`,
			check: func(t *testing.T, f Frame) {
				if f.Type != TypeStatus || !f.Listening {
					t.Errorf("unexpected status frame: %+v", f)
				}
			},
		},
		{
			name:  "llm_start",
			input: `{"type":"llm_start","model":"M1","task":"T1","details":"summarize inbox"}`,
			check: func(t *testing.T, f Frame) {
				if f.Model != "M1" || f.Task != "T1" || f.Details != "summarize inbox" {
					t.Errorf("unexpected llm_start frame: %+v", f)
				}
			},
		},
		{
			name:  "llm_end with cost",
			input: `{"type":"llm_end","model":"M1","cost":0.0023}`,
			check: func(t *testing.T, f Frame) {
				if f.Cost == nil || *f.Cost != 0.0023 {
					t.Errorf("expected cost 0.0023, got %v", f.Cost)
				}
			},
		},
		{
			name:  "llm_end without cost",
			input: `{"type":"llm_end","model":"M1"}`,
			check: func(t *testing.T, f Frame) {
				if f.Cost != nil {
					t.Errorf("expected nil cost, got %v", *f.Cost)
				}
				if f.CostOrZero() != 0 {
					t.Errorf("expected CostOrZero=0, got %f", f.CostOrZero())
				}
			},
		},
		{
			name:  "task_progress",
			input: `{"type":"task_progress","file":"a.txt","status":"skipped","details":"cached"}`,
			check: func(t *testing.T, f Frame) {
				if f.File != "a.txt" || f.Status != StatusSkipped || f.Details != "cached" {
					t.Errorf("unexpected task_progress frame: %+v", f)
				}
			},
		},
		{
			name:  "log",
			input: `{"type":"log","message":"indexing done"}`,
			check: func(t *testing.T, f Frame) {
				if f.Message != "indexing done" {
					t.Errorf("unexpected log frame: %+v", f)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !f.Type.Known() {
				t.Errorf("expected %q to be a known type", f.Type)
			}
			tt.check(t, f)
		})
	}
}

func TestDecode_UnknownTagPassesThrough(t *testing.T) {
	f, err := Decode([]byte(`{"type":"pong","extra":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Type != "pong" || f.Type.Known() {
		t.Errorf("expected unknown type pong, got %q", f.Type)
	}
	if string(f.Raw) != `{"type":"pong","extra":1}` {
		t.Errorf("raw payload not preserved: %s", f.Raw)
	}
}

func TestDecode_StructuredDetails(t *testing.T) {
	f, err := Decode([]byte(`{"type":"llm_start","model":"M","details":{"files": 3}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Details != `{"files":3}` {
		t.Errorf("expected compact JSON details, got %q", f.Details)
	}
}

func TestDecode_Malformed(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`[1,2,3]`,
		`{"type":`,
		`"status"`,
	}
	for _, in := range inputs {
		if _, err := Decode([]byte(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestDecode_MissingType(t *testing.T) {
	_, err := Decode([]byte(`{"listening":true}`))
	if !errors.Is(err, ErrMissingType) {
		t.Errorf("expected ErrMissingType, got %v", err)
	}
}
