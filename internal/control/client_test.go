package control

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestClient_StartStopListening(t *testing.T) {
	var calls []string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		if r.ContentLength > 0 {
			t.Errorf("expected no request body, got %d bytes", r.ContentLength)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, c.StartListening(context.Background()))
	require.NoError(t, c.StopListening(context.Background()))
	assert.Equal(t, []string{"POST /voice/start", "POST /voice/stop"}, calls)
}

func TestClient_StartListeningAcceptsEmptyBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.StartListening(context.Background()))
}

func TestClient_NonSuccessStatusIsDelivered(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"microphone unavailable"}`, http.StatusInternalServerError)
	})
	var buf bytes.Buffer
	c.log = zerolog.New(&buf)

	require.NoError(t, c.StartListening(context.Background()))
	require.NoError(t, c.StopListening(context.Background()))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, `"level":"warn"`))
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"action":"start listening"`)
	assert.Contains(t, out, "microphone unavailable")
}

func TestClient_GetUnexpectedStatus(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusInternalServerError)
	})

	_, err := c.TailLogs(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "backend exploded")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, WithTimeout(time.Second)).StopListening(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestClient_TailLogs(t *testing.T) {
	tests := []struct {
		name string
		body string
		n    int
		want []string
	}{
		{"bare array", `["a","b","c"]`, 5, []string{"a", "b", "c"}},
		{"wrapped", `{"logs":["x","y"]}`, 5, []string{"x", "y"}},
		{"truncated to last n", `["1","2","3","4"]`, 2, []string{"3", "4"}},
		{"null", `null`, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLines string
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/system/logs", r.URL.Path)
				gotLines = r.URL.Query().Get("lines")
				_, _ = w.Write([]byte(tt.body))
			})

			lines, err := c.TailLogs(context.Background(), tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
			assert.NotEmpty(t, gotLines)
		})
	}
}

func TestClient_TailLogsDefaultsLineCount(t *testing.T) {
	var got string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("lines")
		_, _ = w.Write([]byte(`[]`))
	})
	_, err := c.TailLogs(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "100", got)
}

func TestClient_TailLogsMalformed(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"logs": 5}`))
	})
	_, err := c.TailLogs(context.Background(), 10)
	require.Error(t, err)
}

func TestClient_UsageStats(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usage/stats", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`{"total_cost":1.25,"total_tokens":42000,
			"by_model":[{"model":"gpt-4o","tokens":40000,"cost":1.2},{"model":"local","tokens":2000,"cost":0.05}]}`))
	})

	u, err := c.UsageStats(context.Background(), 7)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, u.TotalCost, 1e-9)
	assert.Equal(t, int64(42000), u.TotalTokens)
	require.Len(t, u.ByModel, 2)
	assert.Equal(t, "gpt-4o", u.ByModel[0].Model)
}

func TestClient_Health(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","service":"HVA API"}`))
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "HVA API", h.Service)
}

func TestNew_Defaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)

	hc := &http.Client{}
	assert.Same(t, hc, New("http://x", WithHTTPClient(hc)).httpClient)
}
