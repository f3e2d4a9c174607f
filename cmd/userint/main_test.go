package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/odvcencio/userint/pkg/config"
	apperrors "github.com/odvcencio/userint/pkg/errors"
	"github.com/odvcencio/userint/pkg/logging"
	"github.com/odvcencio/userint/pkg/telemetry"
)

const buttonScene = `
name: replay-test
widgets:
  - tag: btn
    kind: composite
    rect: [0, 0, 4, 1]
    frame: true
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), exitFailure},
		{"explicit", withExitCode(errors.New("x"), exitNoTerminal), exitNoTerminal},
		{"zero code", exitError{err: errors.New("x")}, exitFailure},
		{"config", apperrors.New(apperrors.ErrCodeConfigInvalid, "bad"), exitConfig},
		{"scene", apperrors.New(apperrors.ErrCodeSceneInvalid, "bad"), exitScene},
		{"wrapped explicit", apperrors.Wrap(withExitCode(errors.New("x"), 7), apperrors.ErrCodeInternal, "outer"), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeForError(tt.err); got != tt.want {
				t.Errorf("exitCodeForError() = %d, want %d", got, tt.want)
			}
		})
	}
	if withExitCode(nil, 3) != nil {
		t.Error("withExitCode(nil) should be nil")
	}
}

func TestDispatchSubcommand(t *testing.T) {
	if handled, _ := dispatchSubcommand(nil); handled {
		t.Error("empty args should fall through to run")
	}
	if handled, _ := dispatchSubcommand([]string{"--scene", "x.yaml"}); handled {
		t.Error("flags should fall through to run")
	}
	handled, code := dispatchSubcommand([]string{"bogus"})
	if !handled || code != exitConfig {
		t.Errorf("unknown command = (%v, %d), want (true, %d)", handled, code, exitConfig)
	}
	if handled, code := dispatchSubcommand([]string{"check"}); !handled || code != exitConfig {
		t.Errorf("check without args = (%v, %d), want usage exit", handled, code)
	}
}

func TestReplayCommand(t *testing.T) {
	scenePath := writeFile(t, "scene.yaml", buttonScene)
	samples := writeFile(t, "samples.yaml", `
samples:
  - {x: 1, y: 0}
  - {x: 1, y: 0, pressed: true}
  - {x: 1, y: 0, update: true}
  - {leave: true}
`)

	var out bytes.Buffer
	if err := runReplayCommand([]string{"--scene", scenePath, samples}, &out); err != nil {
		t.Fatalf("replay: %v", err)
	}

	var types []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var ev logging.Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %q is not JSON: %v", scanner.Text(), err)
		}
		if ev.SessionID != "replay" || ev.Scene != "replay-test" {
			t.Errorf("event %+v missing session or scene", ev)
		}
		types = append(types, ev.EventType)
	}

	if len(types) < 7 {
		t.Fatalf("types = %v, want the choice sequence and a summary", types)
	}
	if got := strings.Join(types[:6], ","); got != "pre_choose,enter,post_choose,pre_upkeep,grab,post_upkeep" {
		t.Errorf("first events = %s", got)
	}
	if types[len(types)-1] != "replay.done" {
		t.Errorf("last event = %s, want replay.done", types[len(types)-1])
	}
	for _, typ := range types {
		if typ == "state.propagate" || typ == "propagate" {
			t.Errorf("info level should omit tick summaries, got %s", typ)
		}
	}
}

func TestReplayCommandUsage(t *testing.T) {
	var out bytes.Buffer
	err := runReplayCommand(nil, &out)
	if err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("expected usage error, got %v", err)
	}
	if exitCodeForError(err) != exitConfig {
		t.Errorf("exit code = %d, want %d", exitCodeForError(err), exitConfig)
	}

	scenePath := writeFile(t, "scene.yaml", buttonScene)
	err = runReplayCommand([]string{"--scene", scenePath, "--level", "loud", "-"}, &out)
	if err == nil || exitCodeForError(err) != exitConfig {
		t.Errorf("bad level: err = %v", err)
	}
}

func TestReplayCommandRejectsUnknownFields(t *testing.T) {
	scenePath := writeFile(t, "scene.yaml", buttonScene)
	samples := writeFile(t, "samples.yaml", "samples:\n  - {x: 1, z: 2}\n")

	var out bytes.Buffer
	err := runReplayCommand([]string{"--scene", scenePath, samples}, &out)
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want INVALID_INPUT", err)
	}
}

func TestCheckCommand(t *testing.T) {
	good := writeFile(t, "good.yaml", buttonScene)
	bad := writeFile(t, "bad.yaml", "widgets: [{tag: a, kind: knob}]\n")

	var out bytes.Buffer
	if err := runCheckCommand([]string{good}, &out); err != nil {
		t.Fatalf("check good: %v", err)
	}
	if !strings.Contains(out.String(), "(1 widgets)") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	err := runCheckCommand([]string{good, bad}, &out)
	if exitCodeForError(err) != exitScene {
		t.Fatalf("err = %v, want scene exit code", err)
	}
	if !strings.Contains(out.String(), "FAIL "+bad) || !strings.Contains(out.String(), "ok   "+good) {
		t.Errorf("output = %q", out.String())
	}
}

func stubConfig(t *testing.T) {
	t.Helper()
	orig := runLoadConfigFn
	runLoadConfigFn = func() (*config.Config, error) { return config.DefaultConfig(), nil }
	t.Cleanup(func() { runLoadConfigFn = orig })
}

func TestRunLoadConfigFlags(t *testing.T) {
	stubConfig(t)

	cfg, err := runLoadConfig([]string{"--metrics", "127.0.0.1:9999", "--no-watch", "--trace", "scene.yaml"})
	if err != nil {
		t.Fatalf("runLoadConfig: %v", err)
	}
	if cfg.Scene.Path != "scene.yaml" {
		t.Errorf("scene path = %q", cfg.Scene.Path)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "127.0.0.1:9999" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
	if cfg.Scene.Watch {
		t.Error("--no-watch should disable watching")
	}
	if !cfg.Tracing.Enabled {
		t.Error("--trace should enable tracing")
	}

	_, err = runLoadConfig(nil)
	if err == nil || exitCodeForError(err) != exitConfig {
		t.Errorf("missing scene: err = %v", err)
	}

	_, err = runLoadConfig([]string{"--metrics", "nope", "scene.yaml"})
	if !apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid) {
		t.Errorf("bad metrics addr: err = %v", err)
	}
}

func TestRunRequiresTerminal(t *testing.T) {
	stubConfig(t)
	orig := isInteractiveTerminalFn
	isInteractiveTerminalFn = func() bool { return false }
	t.Cleanup(func() { isInteractiveTerminalFn = orig })

	err := runRunCommand([]string{"--scene", "scene.yaml"})
	if exitCodeForError(err) != exitNoTerminal {
		t.Fatalf("err = %v, want no-terminal exit code", err)
	}
}

func TestOpenTraceOutput(t *testing.T) {
	w, c, err := openTraceOutput("stderr")
	if err != nil || w != os.Stderr {
		t.Fatalf("stderr: %v %v", w, err)
	}
	_ = c.Close()

	path := filepath.Join(t.TempDir(), "spans.json")
	w, c, err = openTraceOutput(path)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if _, err := w.Write([]byte("{}\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = c.Close()
	if data, _ := os.ReadFile(path); string(data) != "{}\n" {
		t.Errorf("file contents = %q", data)
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(reg)
	metrics.AbortedTicks.Inc()

	srv := httptest.NewServer(newRouter(reg, telemetry.NewHub("s"), false))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	resp.Body.Close()
	if !strings.Contains(body.String(), "userint_state_aborted_ticks_total 1") {
		t.Errorf("metrics body missing aborted counter:\n%s", body.String())
	}

	resp, err = http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("events disabled: status = %d, want 404", resp.StatusCode)
	}
}

func TestRouterEventStream(t *testing.T) {
	hub := telemetry.NewHub("s1")
	srv := httptest.NewServer(newRouter(prometheus.NewRegistry(), hub, true))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	// The handler flushes headers after subscribing.
	deadline := time.Now().Add(time.Second)
	for hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.SceneReloaded("demo", 2)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "event: scene.reloaded\n" {
		t.Errorf("event line = %q", line)
	}
	line, err = reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read data: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") || !strings.Contains(line, `"scene":"demo"`) {
		t.Errorf("data line = %q", line)
	}

	hub.Close()
	if _, err := reader.ReadString('\n'); err == nil {
		// The blank separator line may still be buffered; the stream must end after it.
		if _, err := reader.ReadString('\n'); err == nil {
			t.Error("stream should end when the hub closes")
		}
	}
}
