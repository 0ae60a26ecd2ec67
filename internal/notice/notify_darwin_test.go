//go:build darwin

package notice

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestOSAScriptNotifier_Escaping(t *testing.T) {
	n := NewOSAScriptNotifier(false, zerolog.Nop())
	n.Notify(Notice{Title: "t", Message: `with "quotes"`})

	escaped := escapeAppleScript(`He said "hello" and \n stuff`)
	expected := `He said \"hello\" and \\n stuff`
	if escaped != expected {
		t.Errorf("escapeAppleScript: expected %q, got %q", expected, escaped)
	}
}
