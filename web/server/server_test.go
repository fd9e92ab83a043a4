package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-collision-demos/pkg/config"
	"github.com/df07/go-collision-demos/pkg/log"
	"github.com/df07/go-collision-demos/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	cfg := config.Default()
	cfg.Server.MaxTicks = 50
	return NewServer(cfg, log.NewNop())
}

type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	require.NoError(t, scanner.Err())
	return events
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_Start(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 0
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(cfg, log.NewNop()).Start(ctx) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean stop")
	case <-time.After(10 * time.Second):
		t.Fatal("Start did not return after cancel")
	}

	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()
	cfg.Server.Port = busy.Addr().(*net.TCPAddr).Port
	err = NewServer(cfg, log.NewNop()).Start(context.Background())
	assert.ErrorContains(t, err, "serve")
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleDemos(t *testing.T) {
	rec := get(t, newTestServer(), "/api/demos")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Default string `json:"default"`
		Demos   []struct {
			Name       string            `json:"name"`
			IntervalMs int64             `json:"interval_ms"`
			Bindings   map[string]string `json:"bindings"`
		} `json:"demos"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, sim.NameBBox, resp.Default)
	require.Len(t, resp.Demos, len(sim.Names()))
	for _, d := range resp.Demos {
		assert.Positive(t, d.IntervalMs, d.Name)
		assert.Equal(t, string(sim.CmdReset), d.Bindings["r"], d.Name)
	}
}

func TestHandleSimulate(t *testing.T) {
	rec := get(t, newTestServer(), "/api/simulate?demo=spheresphere&ticks=3&interval=1")
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 5)
	for i, e := range events[:4] {
		require.Equal(t, "frame", e.name)
		var frame FrameUpdate
		require.NoError(t, json.Unmarshal([]byte(e.data), &frame))
		assert.Equal(t, uint64(i), frame.Tick)
		assert.Equal(t, sim.NameSphereSphere, frame.Demo)
		assert.Len(t, frame.Spheres, 4)
		assert.NotEmpty(t, frame.Digest)
	}
	assert.Equal(t, "complete", events[4].name)
}

func TestHandleSimulate_SameSeedSameFrames(t *testing.T) {
	s := newTestServer()
	digests := func() []string {
		rec := get(t, s, "/api/simulate?demo=bbox&count=10&seed=5&ticks=5&interval=1&check_spheres=true")
		var out []string
		for _, e := range parseSSE(t, rec.Body.String()) {
			if e.name != "frame" {
				continue
			}
			var frame FrameUpdate
			require.NoError(t, json.Unmarshal([]byte(e.data), &frame))
			out = append(out, frame.Digest)
		}
		return out
	}
	first := digests()
	assert.Len(t, first, 6)
	assert.Equal(t, first, digests())
}

func TestHandleSimulate_InvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		expect string
	}{
		{"ticks below range", "ticks=0", "ticks must be between"},
		{"ticks above limit", "ticks=51", "ticks must be between"},
		{"bad count", "count=abc", "invalid count"},
		{"unknown demo", "demo=teapot", "unknown demo"},
		{"bad collision mode", "collision_mode=sideways", "collision_mode"},
		{"bad flag", "check_spheres=maybe", "invalid check_spheres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(), "/api/simulate?"+tt.query)
			events := parseSSE(t, rec.Body.String())
			require.Len(t, events, 1)
			assert.Equal(t, "error", events[0].name)
			assert.Contains(t, events[0].data, tt.expect)
		})
	}
}

func TestParseDemoRequest(t *testing.T) {
	s := newTestServer()
	s.cfg.Demo.Count = 7

	req, err := s.parseDemoRequest(httptest.NewRequest(http.MethodGet, "/api/simulate", nil))
	require.NoError(t, err)
	assert.Equal(t, sim.NameBBox, req.Demo.Name)
	assert.Equal(t, 7, req.Demo.Count)
	assert.Equal(t, 50, req.Ticks, "default is capped at the server limit")

	req, err = s.parseDemoRequest(httptest.NewRequest(http.MethodGet, "/api/simulate?demo=raysphere&seed=9&paused=true", nil))
	require.NoError(t, err)
	assert.Equal(t, sim.NameRaySphere, req.Demo.Name)
	assert.Zero(t, req.Demo.Count, "switching demo drops the configured count")
	assert.Equal(t, int64(9), req.Demo.Seed)
	assert.True(t, req.Paused)
}

func TestPresets(t *testing.T) {
	dir := t.TempDir()
	preset := "# Preset: Tiny Box\n# Description: Three spheres\ndemo:\n  name: bbox\n  count: 3\n  seed: 12\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(preset), 0o644))

	saved := config.PresetDirs
	config.PresetDirs = []string{dir}
	t.Cleanup(func() { config.PresetDirs = saved })

	s := newTestServer()
	rec := get(t, s, "/api/presets")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Presets []config.PresetInfo `json:"presets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Presets, 1)
	assert.Equal(t, "tiny", resp.Presets[0].ID)
	assert.Equal(t, "Tiny Box", resp.Presets[0].Name)

	req, err := s.parseDemoRequest(httptest.NewRequest(http.MethodGet, "/api/simulate?preset=tiny&seed=5", nil))
	require.NoError(t, err)
	assert.Equal(t, 3, req.Demo.Count)
	assert.Equal(t, int64(5), req.Demo.Seed, "query overrides the preset")

	_, err = s.parseDemoRequest(httptest.NewRequest(http.MethodGet, "/api/simulate?preset=huge", nil))
	assert.ErrorIs(t, err, config.ErrUnknownPreset)
}
