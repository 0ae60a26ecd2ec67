package diagnose

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const connectivityTitle = "فشل الاتصال بالخادم"

func TestDiagnose_Rules(t *testing.T) {
	tests := []struct {
		name    string
		in      Input
		rule    string
		titleOf string
	}{
		{"close code 1006", Input{Message: "WebSocket closed with code 1006"}, "connectivity", connectivityTitle},
		{"refused", Input{Message: "dial tcp: Connection Refused"}, "connectivity", connectivityTitle},
		{"failed to connect", Input{Message: "Failed to connect to backend"}, "connectivity", connectivityTitle},
		{"fetch", Input{Message: "TypeError: Failed to fetch"}, "network", "خطأ في الشبكة"},
		{"network request", Input{Message: "Network request failed"}, "network", "خطأ في الشبكة"},
		{"500", Input{Message: "request returned 500"}, "server-fault", "خطأ داخلي في الخادم"},
		{"ise", Input{Message: "Internal Server Error"}, "server-fault", "خطأ داخلي في الخادم"},
		{"microphone", Input{Message: "Microphone not found"}, "microphone", "مشكلة في الميكروفون"},
		{"audio", Input{Message: "audio device busy"}, "microphone", "مشكلة في الميكروفون"},
		{"permission", Input{Message: "NotAllowedError: Permission denied"}, "microphone", "مشكلة في الميكروفون"},
		{"none", Input{Message: "something odd happened"}, FallbackName, "خطأ غير محدد"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diagnose(tt.in)
			assert.Equal(t, tt.rule, d.Rule)
			assert.Equal(t, tt.titleOf, d.Title)
			assert.NotEmpty(t, d.Explanation)
			assert.NotEmpty(t, d.Cause)
			assert.NotEmpty(t, d.Impact)
			assert.NotEmpty(t, d.Steps)
		})
	}
}

func TestDiagnose_ConnectionRefusedIgnoresDetails(t *testing.T) {
	details := []any{
		nil,
		"microphone unplugged",
		map[string]any{"status": 500, "error": "fetch failed"},
		[]string{"audio"},
	}
	for _, det := range details {
		d := Diagnose(Input{Message: "connection refused", Details: det})
		assert.Equal(t, connectivityTitle, d.Title, "details %v", det)
	}
}

func TestDiagnose_DetailsAreSearched(t *testing.T) {
	d := Diagnose(Input{
		Message: "request failed",
		Details: map[string]any{"Status": "Internal Server Error"},
	})
	assert.Equal(t, "server-fault", d.Rule)

	d = Diagnose(Input{Message: "boom", Details: map[string]int{"code": 1006}})
	assert.Equal(t, "connectivity", d.Rule)
}

func TestDiagnose_RuleOrderResolvesOverlap(t *testing.T) {
	// A server fault surfaced through a failed fetch hits the network rule.
	d := Diagnose(Input{Message: "fetch failed with status 500"})
	assert.Equal(t, "network", d.Rule)

	d = Diagnose(Input{Message: "audio upload got 500"})
	assert.Equal(t, "server-fault", d.Rule)
}

func TestDiagnose_NeverFails(t *testing.T) {
	unmarshalable := map[string]any{"fn": func() {}, "ch": make(chan int)}
	inputs := []Input{
		{},
		{Message: ""},
		{Details: unmarshalable},
		{Details: errors.New("opaque")},
		{Message: "\x00\xff", Details: []byte("raw bytes")},
	}
	for _, in := range inputs {
		d := Diagnose(in)
		require.NotEmpty(t, d.Title)
		require.NotEmpty(t, d.Steps)
	}
}

func TestDiagnose_ReturnsIndependentSteps(t *testing.T) {
	d := Diagnose(Input{Message: "connection refused"})
	d.Steps[0] = "mutated"

	again := Diagnose(Input{Message: "connection refused"})
	assert.NotEqual(t, "mutated", again.Steps[0])
}

func TestFallback(t *testing.T) {
	d := Fallback()
	assert.Equal(t, FallbackName, d.Rule)
	assert.Equal(t, "خطأ غير محدد", d.Title)
	assert.Len(t, d.Steps, 3)
}

func TestRules_Order(t *testing.T) {
	assert.Equal(t, []string{"connectivity", "network", "server-fault", "microphone"}, Rules())
}

func TestQualifies(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"ERROR", true},
		{"WARN", true},
		{"warn", true},
		{"INFO", false},
		{"DEBUG", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := Qualifies(tt.level); got != tt.want {
			t.Errorf("Qualifies(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
