package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covidpulse/internal/config"
	"covidpulse/internal/shared/testutil"
	"covidpulse/pkg/contracts/events"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Report.Source = filepath.Join("testdata", "owid_sample.csv")
	cfg.Report.OutputDir = t.TempDir()
	cfg.Report.CompareCountries = []string{"Egypt", "Italy", "India"}
	cfg.Logging.FilePath = filepath.Join(t.TempDir(), "covidpulse.log")
	cfg.Server.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	a, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	return a
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestApplicationRoutes(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	// before the first load
	resp, _ := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, srv, "/healthz/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp, body := get(t, srv, "/api/v1/locations")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "SERVICE_UNAVAILABLE")

	require.NoError(t, a.CovidService.Load(context.Background()))

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		contentType string
		check       func(t *testing.T, body []byte)
	}{
		{
			name: "ready", path: "/healthz/ready", wantStatus: http.StatusOK,
		},
		{
			name: "locations", path: "/api/v1/locations", wantStatus: http.StatusOK,
			contentType: "application/json",
			check: func(t *testing.T, body []byte) {
				var resp struct {
					Count int `json:"count"`
				}
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, 3, resp.Count)
			},
		},
		{
			name: "series", path: "/api/v1/countries/Egypt/series", wantStatus: http.StatusOK,
			contentType: "application/json",
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), `"total_cases":3100`)
			},
		},
		{
			name: "series csv", path: "/api/v1/countries/Egypt/series.csv", wantStatus: http.StatusOK,
			contentType: "text/csv; charset=utf-8",
		},
		{
			name: "cases chart", path: "/api/v1/countries/Egypt/charts/cases", wantStatus: http.StatusOK,
			contentType: "image/png",
			check: func(t *testing.T, body []byte) {
				assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
			},
		},
		{
			name: "deaths chart", path: "/api/v1/deaths/chart", wantStatus: http.StatusOK,
			contentType: "image/png",
		},
		{
			name: "unknown country", path: "/api/v1/countries/Atlantis/series", wantStatus: http.StatusNotFound,
			contentType: "application/json",
		},
		{
			name: "no vaccination data", path: "/api/v1/countries/Italy/charts/vaccination", wantStatus: http.StatusNotFound,
		},
		{
			name: "version", path: "/api/v1/version", wantStatus: http.StatusOK,
		},
		{
			name: "unknown route", path: "/nope", wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv, tt.path)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
			if tt.contentType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			}
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}

	resp, body = get(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestApplicationRequestIDPropagation(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/countries/Atlantis/series", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-123")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "req-123", problem["trace_id"])
}

func TestApplicationRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}
	a := newTestApp(t, cfg)
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	resp, _ := get(t, srv, "/api/v1/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, srv, "/api/v1/status")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Contains(t, string(body), "RATE_LIMIT_EXCEEDED")

	// health checks sit outside the limiter
	resp, _ = get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestApplicationServe(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	require.Eventually(t, a.CovidService.Ready, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestApplicationServeKeepsRunningWhenLoadFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Source = filepath.Join(t.TempDir(), "missing.csv")
	a := newTestApp(t, cfg)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz/ready")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusServiceUnavailable
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestApplicationWebSocketDatasetEvents(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	url := "ws://" + ln.Addr().String() + config.WebSocketEndpoint
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	defer conn.Close()

	// the loaded event arrives either as a broadcast or as the replay of
	// the last message, depending on which happens first
	seen := map[events.MessageType]bool{}
	for i := 0; i < 3 && !seen[events.MessageTypeDatasetLoaded]; i++ {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg struct {
			Type events.MessageType `json:"type"`
			Data json.RawMessage    `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&msg))
		seen[msg.Type] = true

		if msg.Type == events.MessageTypeDatasetLoaded {
			var st struct {
				Loaded bool `json:"loaded"`
				Rows   int  `json:"rows"`
			}
			require.NoError(t, json.Unmarshal(msg.Data, &st))
			assert.True(t, st.Loaded)
			assert.Equal(t, 6, st.Rows)
		}
	}
	assert.True(t, seen[events.MessageTypeConnect])
	assert.True(t, seen[events.MessageTypeDatasetLoaded])
}
