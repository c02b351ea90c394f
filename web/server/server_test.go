package server

import (
	"bufio"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/df07/weekend-pathtracer/pkg/scene"
	"github.com/google/go-cmp/cmp"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewServer(0).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string, wantStatus int, into interface{}) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: expected status %d, got %d: %s", path, wantStatus, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("GET %s: decode failed: %v", path, err)
	}
}

// sseEvent is one parsed server-sent event
type sseEvent struct {
	Type string
	Data string
}

func readSSE(t *testing.T, ts *httptest.Server, path string) []sseEvent {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.Type = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.Data = strings.TrimPrefix(line, "data: ")
		case line == "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Reading stream failed: %v", err)
	}
	return events
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	getJSON(t, ts, "/api/health", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("Unexpected health response %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Scenes []scene.SceneInfo `json:"scenes"`
	}
	getJSON(t, ts, "/api/scenes", http.StatusOK, &body)
	if diff := cmp.Diff(scene.List(), body.Scenes); diff != "" {
		t.Errorf("Scene list mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleSceneConfig(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Scene    string             `json:"scene"`
		Defaults map[string]float64 `json:"defaults"`
	}
	getJSON(t, ts, "/api/scene-config?scene=random-spheres", http.StatusOK, &body)
	if body.Scene != "random-spheres" || body.Defaults["maxDepth"] != 50 || body.Defaults["focusDistance"] != 10 {
		t.Errorf("Unexpected scene config %+v", body)
	}

	var errBody map[string]string
	getJSON(t, ts, "/api/scene-config?scene=nope", http.StatusBadRequest, &errBody)
	if !strings.Contains(errBody["error"], "unknown scene") {
		t.Errorf("Expected unknown scene error, got %v", errBody)
	}
}

func TestHandleRender_StreamsPasses(t *testing.T) {
	ts := newTestServer(t)

	events := readSSE(t, ts, "/api/render?scene=single-sphere&width=32&height=16&maxSamples=2&maxPasses=2&maxDepth=5")
	if len(events) == 0 {
		t.Fatal("Expected events")
	}

	var passes []PassUpdate
	tiles := 0
	for _, ev := range events {
		switch ev.Type {
		case "passComplete":
			var update PassUpdate
			if err := json.Unmarshal([]byte(ev.Data), &update); err != nil {
				t.Fatalf("Bad pass update: %v", err)
			}
			passes = append(passes, update)
		case "tile":
			tiles++
		case "error":
			t.Fatalf("Unexpected error event: %s", ev.Data)
		}
	}

	if len(passes) != 2 {
		t.Fatalf("Expected 2 passes, got %d", len(passes))
	}
	last := passes[len(passes)-1]
	if !last.IsComplete || last.AverageSamples != 2 || last.TotalPixels != 32*16 || last.ImageData == "" {
		t.Errorf("Unexpected final pass %+v", last)
	}
	if tiles == 0 {
		t.Error("Expected tile updates")
	}
	// Console lines are forwarded independently, so only order the render events
	lastRenderEvent := ""
	for _, ev := range events {
		if ev.Type != "console" {
			lastRenderEvent = ev.Type
		}
	}
	if lastRenderEvent != "complete" {
		t.Errorf("Last render event should be complete, got %q", lastRenderEvent)
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	ts := newTestServer(t)

	tests := map[string]string{
		"width too small": "/api/render?width=2",
		"unknown scene":   "/api/render?scene=teapot&width=32&height=32&maxSamples=1",
		"bad samples":     "/api/render?maxSamples=abc",
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			events := readSSE(t, ts, path)
			if len(events) != 1 || events[0].Type != "error" {
				t.Errorf("Expected a single error event, got %+v", events)
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	ts := newTestServer(t)

	t.Run("center pixel hits the sphere", func(t *testing.T) {
		var body InspectResponse
		getJSON(t, ts, "/api/inspect?scene=single-sphere&width=32&height=16&x=16&y=8", http.StatusOK, &body)
		if !body.Hit || body.GeometryType != "sphere" || body.MaterialType != "lambertian" || !body.FrontFace {
			t.Errorf("Unexpected inspect response %+v", body)
		}
		if body.Distance < 0.45 || body.Distance > 0.6 {
			t.Errorf("Expected distance near 0.5, got %f", body.Distance)
		}
	})

	t.Run("corner pixel sees the sky", func(t *testing.T) {
		var body InspectResponse
		getJSON(t, ts, "/api/inspect?scene=single-sphere&width=32&height=16&x=0&y=0", http.StatusOK, &body)
		if body.Hit {
			t.Errorf("Corner pixel should miss, got %+v", body)
		}
		if math.Abs(body.Background[2]-1) > 1e-9 {
			t.Errorf("Sky should be fully blue, got %v", body.Background)
		}
	})

	t.Run("out of bounds", func(t *testing.T) {
		var body map[string]string
		getJSON(t, ts, "/api/inspect?scene=single-sphere&width=32&height=16&x=40&y=0", http.StatusBadRequest, &body)
	})
}

func TestParseParams(t *testing.T) {
	values := url.Values{"n": {"12"}, "bad": {"x"}, "f": {"0.25"}}

	if got, err := parseIntParam(values, "n", 1, 0, 100); err != nil || got != 12 {
		t.Errorf("parseIntParam = %d, %v", got, err)
	}
	if got, err := parseIntParam(values, "missing", 7, 0, 100); err != nil || got != 7 {
		t.Errorf("Expected default 7, got %d, %v", got, err)
	}
	if _, err := parseIntParam(values, "n", 1, 0, 10); err == nil {
		t.Error("Expected range error")
	}
	if _, err := parseIntParam(values, "bad", 1, 0, 10); err == nil {
		t.Error("Expected parse error")
	}
	if got, err := parseFloatParam(values, "f", 0, 0, 1); err != nil || got != 0.25 {
		t.Errorf("parseFloatParam = %f, %v", got, err)
	}
	if _, err := parseFloatParam(values, "f", 0, 0.5, 1); err == nil {
		t.Error("Expected float range error")
	}
}
