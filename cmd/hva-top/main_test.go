package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/nixlim/hva-top/internal/activity"
	"github.com/nixlim/hva-top/internal/channel"
	"github.com/nixlim/hva-top/internal/diagnose"
	"github.com/nixlim/hva-top/internal/frame"
)

// runCLI runs the CLI against a config path that does not exist, so the
// user's own config never leaks into tests.
func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "missing.toml")
	var out, errb bytes.Buffer
	code = run(append([]string{"--config", cfgPath}, args...), &out, &errb)
	return code, out.String(), errb.String()
}

func TestAllRunnableCommandsHaveArgsValidator(t *testing.T) {
	var missing []string
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		if cmd.Runnable() && cmd.Args == nil {
			missing = append(missing, cmd.CommandPath())
		}
		for _, child := range cmd.Commands() {
			walk(child)
		}
	}
	walk(newRootCmd())

	if len(missing) > 0 {
		t.Errorf("runnable commands missing Args validator:\n  %s", strings.Join(missing, "\n  "))
	}
}

func TestDiagnose_Text(t *testing.T) {
	code, out, _ := runCLI(t, "diagnose", "WebSocket closed: 1006")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	want := diagnose.Diagnose(diagnose.Input{Message: "WebSocket closed: 1006"})
	if !strings.Contains(out, want.Title+" (connectivity)") {
		t.Errorf("expected connectivity title, got:\n%s", out)
	}
	if !strings.Contains(out, "  1. "+want.Steps[0]) {
		t.Errorf("expected numbered steps, got:\n%s", out)
	}
}

func TestDiagnose_DetailsAndJSON(t *testing.T) {
	code, out, _ := runCLI(t, "diagnose", "request failed", "--details", `{"status":500}`, "--json")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var d diagnose.Diagnosis
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if d.Rule != "server-fault" {
		t.Errorf("expected server-fault from details, got %q", d.Rule)
	}
}

func TestDiagnose_InvalidDetails(t *testing.T) {
	code, _, errOut := runCLI(t, "diagnose", "boom", "--details", "{not json")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "hva-top: --details must be valid JSON") {
		t.Errorf("unexpected stderr: %q", errOut)
	}
}

func TestDiagnose_RequiresMessage(t *testing.T) {
	if code, _, _ := runCLI(t, "diagnose"); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
}

func TestSetup_WritesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hva-top", "config.toml")
	var out, errb bytes.Buffer

	if code := run([]string{"--config", path, "setup"}, &out, &errb); code != 0 {
		t.Fatalf("expected exit 0, got %d (%s)", code, errb.String())
	}
	if !strings.Contains(out.String(), "Wrote default config") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	out.Reset()
	if code := run([]string{"--config", path, "setup"}, &out, &errb); code != 0 {
		t.Fatalf("expected exit 0 on rerun, got %d", code)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected already-exists message, got %q", out.String())
	}
}

func TestInvalidURLFlag(t *testing.T) {
	code, _, errOut := runCLI(t, "--url", "http://127.0.0.1:8765/ws", "logs")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "config validation error") {
		t.Errorf("expected validation error, got %q", errOut)
	}
}

func newBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestListenStart(t *testing.T) {
	var gotMethod, gotPath string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	code, out, _ := runCLI(t, "--api", srv.URL, "listen", "start")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if gotMethod != http.MethodPost || gotPath != "/voice/start" {
		t.Errorf("expected POST /voice/start, got %s %s", gotMethod, gotPath)
	}
	if !strings.Contains(out, "Listening started.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestListenStop_ServerErrorStillSucceeds(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	code, out, errOut := runCLI(t, "--api", srv.URL, "listen", "stop")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d (%s)", code, errOut)
	}
	if !strings.Contains(out, "Listening stopped.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestListenStart_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	code, _, errOut := runCLI(t, "--api", url, "listen", "start")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "hva-top: start listening") {
		t.Errorf("expected transport error, got %q", errOut)
	}
}

func TestListenStatus(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","service":"HVA API"}`))
	})

	code, out, _ := runCLI(t, "--api", srv.URL, "listen", "status")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "ok (HVA API)") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestLogs_PrintsTail(t *testing.T) {
	var gotLines string
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotLines = r.URL.Query().Get("lines")
		_, _ = w.Write([]byte(`{"logs":["first","second"]}`))
	})

	code, out, _ := runCLI(t, "--api", srv.URL, "logs", "-n", "2")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if gotLines != "2" {
		t.Errorf("expected lines=2, got %q", gotLines)
	}
	if out != "first\nsecond\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestLogs_RejectsNonPositiveLines(t *testing.T) {
	if code, _, _ := runCLI(t, "logs", "-n", "0"); code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPrinter(t *testing.T) {
	var out syncBuffer
	p := &printer{out: &out}

	p.entry(activity.Entry{Type: activity.EntrySuccess, Message: "done", Timestamp: time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC)})
	p.channelState(channel.Connected)
	p.onFrame(frame.Frame{Type: frame.TypeStatus, Listening: true})
	p.onFrame(frame.Frame{Type: frame.TypeLog, Message: "ignored"})
	p.onFrame(frame.Frame{Type: frame.TypeStatus})

	want := "09:05:07 [success] done\n-- channel connected\n-- listening\n-- idle\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestWatch_PrintsFramesUntilCancelled(t *testing.T) {
	srv := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		ctx := r.Context()
		_ = c.Write(ctx, websocket.MessageText, []byte(`{"type":"status","listening":true}`))
		_ = c.Write(ctx, websocket.MessageText, []byte(`{"type":"log","message":"hello from backend"}`))
		for {
			if _, _, err := c.Read(ctx); err != nil {
				return
			}
		}
	})
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	var out syncBuffer
	root := newRootCmd()
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "--url", wsURL, "--log-level", "error", "watch"})
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(out.String(), "hello from backend") {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for watch output, got:\n%s", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean exit, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	got := out.String()
	for _, want := range []string{"-- channel connecting", "-- channel connected", "-- listening", "[info] hello from backend"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
}
