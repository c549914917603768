package ws

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"tap_duel/internal/assets"
	"tap_duel/internal/config"
	"tap_duel/internal/match"
	"tap_duel/internal/store"
)

type fakeOutbox struct {
	ch     chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{ch: make(chan []byte, 8192), closed: make(chan struct{})}
}

func (o *fakeOutbox) Enqueue(msg []byte, droppable bool) bool {
	select {
	case o.ch <- msg:
		return true
	default:
		return false
	}
}

func (o *fakeOutbox) Close() { o.once.Do(func() { close(o.closed) }) }

// waitFor reads messages until one of type typ satisfies match.
func (o *fakeOutbox) waitFor(t *testing.T, typ string, match func(m map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case raw := <-o.ch:
			var m map[string]any
			if err := json.Unmarshal(raw, &m); err != nil {
				t.Fatalf("bad outbound json %s: %v", raw, err)
			}
			if m["type"] == typ && (match == nil || match(m)) {
				return m
			}
		case <-deadline:
			t.Fatalf("no %q message before timeout", typ)
			return nil
		}
	}
}

func stateIs(state string) func(map[string]any) bool {
	return func(m map[string]any) bool { return m["state"] == state }
}

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"images/player1.png":    {Data: []byte("p1")},
		"images/player2.png":    {Data: []byte("p2")},
		"images/background.png": {Data: []byte("bg")},
		"sounds/score.wav":      {Data: []byte("score")},
		"sounds/win.wav":        {Data: []byte("win")},
		"sounds/music.mp3":      {Data: []byte("music")},
	}
}

func testSessionConfig() SessionConfig {
	m := config.DefaultMatch()
	m.Settings.CountDown = 0
	m.Settings.WinBy = 1
	return SessionConfig{
		Match:     m,
		Store:     store.NewMemory(),
		Loader:    assets.NewLoader(testAssets(), 2),
		RefreshHz: 120,
	}
}

func startSession(t *testing.T, cfg SessionConfig) (*Session, *fakeOutbox) {
	t.Helper()
	return startSessionSized(t, cfg, 640, 480, 20)
}

func startSessionSized(t *testing.T, cfg SessionConfig, w, h, font float64) (*Session, *fakeOutbox) {
	t.Helper()
	out := newFakeOutbox()
	s := NewSession("1", "dev-1", out, cfg, w, h, font)
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(func() {
		cancel()
		select {
		case <-s.Done():
		case <-time.After(5 * time.Second):
			t.Error("session did not stop")
		}
	})
	return s, out
}

func TestSessionPlaysAMatch(t *testing.T) {
	s, out := startSession(t, testSessionConfig())

	ready := out.waitFor(t, MsgReady, nil)
	if ready["width"] != 640.0 || ready["height"] != 480.0 {
		t.Fatalf("ready = %v", ready)
	}
	a := out.waitFor(t, MsgAssets, nil)
	if sounds := a["sounds"].(map[string]any); sounds["score"] != "/assets/sounds/score.wav" {
		t.Fatalf("assets = %v", a)
	}
	out.waitFor(t, MsgState, stateIs("ready"))
	out.waitFor(t, MsgFrame, nil)

	s.HandleMessage([]byte(`{"type":"input","kind":"keyup","code":"Space"}`))
	out.waitFor(t, MsgState, stateIs("countdown"))
	out.waitFor(t, MsgState, stateIs("play"))

	s.HandleMessage([]byte(`{"type":"input","kind":"keyup","code":"ShiftLeft"}`))
	play := out.waitFor(t, MsgAudio, func(m map[string]any) bool {
		return m["op"] == "play" && m["sound"] == match.SoundScore
	})
	res := out.waitFor(t, MsgResult, nil)
	if r := res["result"].(map[string]any); r["winner"] != 1.0 || r["winnerName"] != "Left" {
		t.Fatalf("result = %v", res)
	}

	s.HandleMessage([]byte(`{"type":"audio_ended","id":` + jsonNumber(play["id"]) + `}`))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var playing int
	if err := s.Do(ctx, func(g *match.Game) { playing = g.Audio().Playing(match.SoundScore) }); err != nil {
		t.Fatal(err)
	}
	if playing != 0 {
		t.Fatalf("score sound still in playlist after audio_ended")
	}
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestSessionRejectsBadMessages(t *testing.T) {
	s, out := startSession(t, testSessionConfig())
	out.waitFor(t, MsgState, stateIs("ready"))

	tests := []struct {
		raw  string
		want string
	}{
		{`not json`, "invalid message"},
		{`{"type":"teleport"}`, "unknown message type: teleport"},
		{`{"type":"input","kind":"wave"}`, "unknown input kind"},
		{`{"type":"resize","width":0,"height":10}`, "invalid resize message"},
		{`{"type":"resize","width":1e9,"height":10}`, "invalid resize message"},
		{`{"type":"control"}`, "invalid control message"},
		{`{"type":"configure","config":{"settings":{"winBy":0}}}`, "invalid match config: winBy must be at least 1, got 0"},
	}
	for _, tt := range tests {
		s.HandleMessage([]byte(tt.raw))
		m := out.waitFor(t, MsgError, nil)
		if got := m["payload"].(map[string]any)["message"]; got != tt.want {
			t.Errorf("%s: error %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSessionResizeRequestsReload(t *testing.T) {
	s, out := startSession(t, testSessionConfig())
	out.waitFor(t, MsgState, stateIs("ready"))

	s.HandleMessage([]byte(`{"type":"resize","width":1024,"height":768,"fontSize":32}`))
	out.waitFor(t, MsgReload, nil)
	if w, h := s.surface.Size(); w != 1024 || h != 768 {
		t.Fatalf("surface = %v x %v", w, h)
	}
}

func TestSessionConfigureReloads(t *testing.T) {
	s, out := startSession(t, testSessionConfig())
	out.waitFor(t, MsgState, stateIs("ready"))

	s.HandleMessage([]byte(`{"type":"configure","config":{"settings":{"name":"Rematch","player1":"Blue"}}}`))
	out.waitFor(t, MsgAssets, nil)
	out.waitFor(t, MsgState, stateIs("loading"))
	out.waitFor(t, MsgState, stateIs("ready"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var name string
	if err := s.Do(ctx, func(g *match.Game) { name = g.Players()[0].Name }); err != nil {
		t.Fatal(err)
	}
	if name != "Blue" {
		t.Fatalf("player 1 = %q; want Blue", name)
	}
}

func TestSessionLoadFailureReported(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Loader = assets.NewLoader(fstest.MapFS{}, 1)
	_, out := startSession(t, cfg)

	m := out.waitFor(t, MsgError, nil)
	if msg, _ := m["payload"].(map[string]any)["message"].(string); msg == "" {
		t.Fatalf("error = %v", m)
	}
}

func TestSessionCloseClosesOutbox(t *testing.T) {
	s, out := startSession(t, testSessionConfig())
	out.waitFor(t, MsgReady, nil)
	s.Close()
	s.Close()
	select {
	case <-out.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("outbox not closed")
	}
}

func TestSessionIgnoresNonFiniteSize(t *testing.T) {
	s, out := startSessionSized(t, testSessionConfig(), math.NaN(), math.Inf(1), math.NaN())

	ready := out.waitFor(t, MsgReady, nil)
	if ready["width"] != DefaultWidth || ready["height"] != DefaultHeight {
		t.Fatalf("ready = %v; want the default size", ready)
	}
	out.waitFor(t, MsgFrame, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var font float64
	if err := s.Do(ctx, func(*match.Game) { font = s.overlay.FontSize() }); err != nil {
		t.Fatal(err)
	}
	if font != DefaultFontSize {
		t.Fatalf("font size = %v; want %v", font, DefaultFontSize)
	}
}
