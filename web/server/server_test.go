package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/df07/go-satellite-raytracer/internal/config"
	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/internal/observability"
	"github.com/df07/go-satellite-raytracer/pkg/recorder"
	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
	"github.com/df07/go-satellite-raytracer/pkg/session"
)

type testEnv struct {
	server  *Server
	session *session.Session
	metrics *observability.RenderCollector
	http    *httptest.Server
}

func newTestEnv(t *testing.T, modify func(*config.ServerConfig)) *testEnv {
	t.Helper()

	sc := scene.NewDefaultScene(1)
	rt := renderer.NewRaytracer(sc, renderer.Config{NumWorkers: 2})
	t.Cleanup(rt.Close)

	settings := renderer.DefaultSettings()
	settings.Width, settings.Height = 32, 24
	sess := session.New(rt, recorder.New(filepath.Join(t.TempDir(), "frames")), settings)

	metrics, err := observability.NewRenderCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewRenderCollector: %v", err)
	}

	cfg := config.Default().Server
	cfg.StaticDir = ""
	if modify != nil {
		modify(&cfg)
	}

	srv := NewServer(sess, sc, cfg, WithMetrics(metrics), WithLogger(logging.Noop()))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{server: srv, session: sess, metrics: metrics, http: ts}
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.http.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("Expected 200 ok, got %d %v", resp.StatusCode, body)
	}
}

func TestHandleState(t *testing.T) {
	env := newTestEnv(t, nil)
	env.session.Zoom(0.5)

	resp, err := http.Get(env.http.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()

	var state session.State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Camera.Distance != 3 {
		t.Errorf("Expected camera distance 3, got %f", state.Camera.Distance)
	}
	if state.Seed != 1 || state.Width != 32 {
		t.Errorf("Unexpected state %+v", state)
	}
}

func TestHandleScenes(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.http.URL + "/api/scenes")
	if err != nil {
		t.Fatalf("GET /api/scenes: %v", err)
	}
	defer resp.Body.Close()

	var scenes scene.ScenesResponse
	if err := json.NewDecoder(resp.Body).Decode(&scenes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(scenes.Groups) != 2 {
		t.Errorf("Expected 2 scene groups, got %d", len(scenes.Groups))
	}
}

func TestHandleFrame(t *testing.T) {
	env := newTestEnv(t, nil)
	before := env.session.Snapshot()

	resp, err := http.Get(env.http.URL + "/api/frame?width=40&height=30&fovDeg=45&steps=64")
	if err != nil {
		t.Fatalf("GET /api/frame: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("Expected 40x30 image, got %v", img.Bounds())
	}

	after := env.session.Snapshot()
	if after.Orbit.Angle != before.Orbit.Angle {
		t.Error("Still frames should not advance the orbit")
	}
}

func TestHandleFrame_BadParams(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name  string
		query string
	}{
		{"non-numeric width", "width=abc"},
		{"width too small", "width=2"},
		{"fov out of range", "fovDeg=179"},
		{"zero steps", "steps=0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(env.http.URL + "/api/frame?" + tt.query)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestHandleFrame_RateLimited(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.ServerConfig) {
		cfg.FrameRate = 0.001
		cfg.FrameBurst = 1
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Get(env.http.URL + "/api/frame?width=16&height=16")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected 200 then 429, got %v", codes)
	}
}

func TestHandleInspect(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := http.Get(env.http.URL + "/api/inspect?x=16&y=12")
	if err != nil {
		t.Fatalf("GET /api/inspect: %v", err)
	}
	defer resp.Body.Close()

	var body InspectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Hit || body.Body != "planet" {
		t.Errorf("Expected planet hit at view centre, got %+v", body)
	}
	if _, ok := body.Properties["altitude"]; !ok {
		t.Error("Expected altitude in planet properties")
	}
	if !strings.HasPrefix(body.Color, "#") || len(body.Color) != 7 {
		t.Errorf("Expected hex colour, got %q", body.Color)
	}

	resp, err = http.Get(env.http.URL + "/api/inspect?x=99&y=0")
	if err != nil {
		t.Fatalf("GET /api/inspect: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 outside image, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	if _, _, err := env.session.Step(context.Background(), time.Now()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	env.metrics.ObserveFrame(renderer.RenderStats{PlanetPixels: 1})

	resp, err := http.Get(env.http.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(body), "render_frames_total") {
		t.Error("Expected render metrics in /metrics output")
	}
}

func TestWebSocket_CommandsAndFrames(t *testing.T) {
	env := newTestEnv(t, nil)
	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// Greeting carries the current state
	greeting := readMessage(t, conn, "state")
	if greeting["state"] == nil {
		t.Fatal("Expected state in greeting")
	}
	if n := testClientCount(env); n != 1 {
		t.Errorf("Expected 1 viewer, got %d", n)
	}

	if err := conn.WriteJSON(Command{Type: "zoom", Factor: 0.5}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	readMessage(t, conn, "state")
	if d := env.session.Snapshot().Camera.Distance; d != 3 {
		t.Errorf("Expected zoom to distance 3, got %f", d)
	}

	seed := uint64(9)
	if err := conn.WriteJSON(Command{Type: "seed", Seed: &seed}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	readMessage(t, conn, "state")
	if got := env.session.Snapshot().Seed; got != 9 {
		t.Errorf("Expected seed 9, got %d", got)
	}

	if err := conn.WriteJSON(map[string]string{"type": "warp"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	errMsg := readMessage(t, conn, "error")
	if !strings.Contains(errMsg["message"].(string), "warp") {
		t.Errorf("Expected error naming the command, got %v", errMsg["message"])
	}

	if _, _, err := env.session.Step(context.Background(), time.Now()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	frame := readMessage(t, conn, "frame")
	data, err := base64.StdEncoding.DecodeString(frame["imageData"].(string))
	if err != nil {
		t.Fatalf("Frame image is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Frame image is not PNG: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Errorf("Expected 32x24 frame, got %v", img.Bounds())
	}
}

func TestWebSocket_OversizedCommandClosesConnection(t *testing.T) {
	env := newTestEnv(t, nil)
	wsURL := "ws" + strings.TrimPrefix(env.http.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	readMessage(t, conn, "state")

	payload := `{"type":"zoom","factor":0.5,"pad":"` + strings.Repeat("x", maxCommandSize) + `"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	// The server drops the connection; the close code may be lost to a reset
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
				t.Fatal("Expected the server to close the connection")
			}
			break
		}
	}

	if d := env.session.Snapshot().Camera.Distance; d != 6 {
		t.Errorf("Oversized command should not be applied, distance %f", d)
	}

	deadline := time.Now().Add(5 * time.Second)
	for testClientCount(env) != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := testClientCount(env); n != 0 {
		t.Errorf("Expected viewer removed, got %d", n)
	}
}

func TestCommand_Apply(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"orbit", Command{Type: "orbit", Yaw: 0.1}, false},
		{"pan", Command{Type: "pan", DX: 0.1, DY: 0.1}, false},
		{"lift", Command{Type: "lift", DZ: 0.2}, false},
		{"orbit params", Command{Type: "orbitParams", Radius: ptr(5.0), Speed: ptr(1.0)}, false},
		{"orbit params without values", Command{Type: "orbitParams"}, true},
		{"record on", Command{Type: "record", Active: true}, false},
		{"record off", Command{Type: "record", Active: false}, false},
		{"zero zoom", Command{Type: "zoom", Factor: 0}, true},
		{"seed without value", Command{Type: "seed"}, true},
		{"unknown", Command{Type: "teleport"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Apply(ctx, env.session)
			if (err != nil) != tt.wantErr {
				t.Errorf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	state := env.session.Snapshot()
	if state.Orbit.Radius != 5 || state.Orbit.Speed != 1 {
		t.Errorf("Expected orbit 5/1, got %f/%f", state.Orbit.Radius, state.Orbit.Speed)
	}
	if state.Recording {
		t.Error("Expected recording stopped")
	}
}

func TestCommand_OrbitParamsPartial(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.session.SetOrbit(5, 1)

	// Decoded from the wire so absent fields stay nil
	tests := []struct {
		name           string
		payload        string
		expectedRadius float64
		expectedSpeed  float64
	}{
		{"radius only", `{"type":"orbitParams","radius":7}`, 7, 1},
		{"speed only", `{"type":"orbitParams","speed":-0.5}`, 7, -0.5},
		{"zero speed is applied", `{"type":"orbitParams","speed":0}`, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cmd Command
			if err := json.Unmarshal([]byte(tt.payload), &cmd); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if err := cmd.Apply(ctx, env.session); err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			orbit := env.session.Snapshot().Orbit
			if orbit.Radius != tt.expectedRadius || orbit.Speed != tt.expectedSpeed {
				t.Errorf("Expected orbit %g/%g, got %g/%g", tt.expectedRadius, tt.expectedSpeed, orbit.Radius, orbit.Speed)
			}
		})
	}
}

func TestConsoleLogger_ForwardsToViewers(t *testing.T) {
	hub := NewHub(nil, nil)
	c := &client{id: "test", send: make(chan []byte, 4)}
	hub.clients[c] = struct{}{}

	logger := NewConsoleLogger(logging.Noop(), hub)
	logger.Debug(context.Background(), "hidden")
	logger.With(logging.String("k", "v")).Warn(context.Background(), "surface slow")

	select {
	case raw := <-c.send:
		var msg ConsoleMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type != "log" || msg.Message != "surface slow" || msg.Level != "warning" {
			t.Errorf("Unexpected console message %+v", msg)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	default:
		t.Fatal("Expected a console message")
	}

	select {
	case raw := <-c.send:
		t.Errorf("Debug messages should not be forwarded, got %s", raw)
	default:
	}
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(1, 2)

	a := httptest.NewRequest(http.MethodGet, "/api/frame", nil)
	a.RemoteAddr = "10.0.0.1:1234"
	b := httptest.NewRequest(http.MethodGet, "/api/frame", nil)
	b.RemoteAddr = "10.0.0.2:1234"

	if !l.Allow(a) || !l.Allow(a) {
		t.Error("Expected burst of 2 allowed")
	}
	if l.Allow(a) {
		t.Error("Expected third request rejected")
	}
	if !l.Allow(b) {
		t.Error("Expected a different address to have its own bucket")
	}
	if l.GetLimiter("10.0.0.1") != l.GetLimiter("10.0.0.1") {
		t.Error("Expected limiter reuse per address")
	}
}

// readMessage reads until a message of the wanted type arrives
func readMessage(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s message: %v", want, err)
		}
		if msg["type"] == want {
			return msg
		}
	}
}

func testClientCount(env *testEnv) int {
	return env.server.Hub().Count()
}

func ptr[T any](v T) *T {
	return &v
}
