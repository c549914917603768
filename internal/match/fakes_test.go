package match

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"tap_duel/internal/assets"
	"tap_duel/internal/config"
	"tap_duel/internal/logger"
	"tap_duel/internal/store"
)

// fakeRuntime is a manual clock. Timers fire only from Advance; posted
// functions run only from drainUntil.
type fakeRuntime struct {
	now    time.Time
	timers []*fakeTimer
	posted chan func()
}

type fakeTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		now:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		posted: make(chan func(), 256),
	}
}

func (r *fakeRuntime) Now() time.Time { return r.now }

func (r *fakeRuntime) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: r.now.Add(d), fn: fn}
	r.timers = append(r.timers, t)
	return t
}

func (r *fakeRuntime) Post(fn func()) { r.posted <- fn }

// Advance moves the clock and fires due timers in deadline order. The
// clock sits at each timer's deadline while it fires, so timers scheduled
// from a callback are anchored to that deadline.
func (r *fakeRuntime) Advance(d time.Duration) {
	target := r.now.Add(d)
	for {
		var due []*fakeTimer
		for _, t := range r.timers {
			if !t.stopped && !t.fired && !t.at.After(target) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			r.now = target
			return
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		next := due[0]
		if next.at.After(r.now) {
			r.now = next.at
		}
		next.fired = true
		next.fn()
	}
}

func (r *fakeRuntime) activeTimers() int {
	n := 0
	for _, t := range r.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (r *fakeRuntime) drainUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case fn := <-r.posted:
			fn()
		case <-deadline:
			t.Fatalf("condition not reached before timeout")
		}
	}
}

type fakeDisplay struct {
	next      FrameHandle
	pending   map[FrameHandle]func(time.Time)
	requests  int
	cancelled int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{pending: make(map[FrameHandle]func(time.Time))}
}

func (d *fakeDisplay) RequestFrame(fn func(time.Time)) FrameHandle {
	d.next++
	d.requests++
	d.pending[d.next] = fn
	return d.next
}

func (d *fakeDisplay) CancelFrame(h FrameHandle) {
	if _, ok := d.pending[h]; ok {
		d.cancelled++
		delete(d.pending, h)
	}
}

// fire runs every pending callback once, like one refresh tick.
func (d *fakeDisplay) fire(now time.Time) int {
	cbs := d.pending
	d.pending = make(map[FrameHandle]func(time.Time))
	for _, cb := range cbs {
		cb(now)
	}
	return len(cbs)
}

type fakeSurface struct {
	w, h   float64
	clears int
	texts  []string
	images []string
}

func (s *fakeSurface) Size() (float64, float64)                 { return s.w, s.h }
func (s *fakeSurface) Clear(string)                             { s.clears++ }
func (s *fakeSurface) FillRect(x, y, w, h float64, color string) {}
func (s *fakeSurface) DrawImage(name string, x, y, w, h float64) { s.images = append(s.images, name) }
func (s *fakeSurface) DrawText(text string, x, y, size float64, color string) {
	s.texts = append(s.texts, text)
}

type fakeOverlay struct {
	visible      map[string]bool
	banner       string
	button       string
	instructions Instructions
	countdowns   []string
	scores       [2]int
	muted        bool
	paused       bool
	progress     []int
	styles       Styles
	fontSize     float64
	bannerShows  int
}

func newFakeOverlay() *fakeOverlay {
	return &fakeOverlay{visible: make(map[string]bool), fontSize: 20}
}

func (o *fakeOverlay) Show(names ...string) {
	for _, n := range names {
		if n == OverlayBanner {
			o.bannerShows++
		}
		o.visible[n] = true
	}
}

func (o *fakeOverlay) Hide(names ...string) {
	for _, n := range names {
		o.visible[n] = false
	}
}

func (o *fakeOverlay) SetBanner(text string)           { o.banner = text }
func (o *fakeOverlay) SetButton(text string)           { o.button = text }
func (o *fakeOverlay) SetInstructions(in Instructions) { o.instructions = in }
func (o *fakeOverlay) SetScore1(_ string, score int)   { o.scores[0] = score }
func (o *fakeOverlay) SetScore2(_ string, score int)   { o.scores[1] = score }
func (o *fakeOverlay) SetMute(m bool)                  { o.muted = m }
func (o *fakeOverlay) SetPause(p bool)                 { o.paused = p }
func (o *fakeOverlay) SetCountDown(v string)           { o.countdowns = append(o.countdowns, v) }
func (o *fakeOverlay) SetProgress(p assets.Progress)   { o.progress = append(o.progress, p.Percent) }
func (o *fakeOverlay) SetStyles(s Styles)              { o.styles = s }
func (o *fakeOverlay) FontSize() float64               { return o.fontSize }

type fakePlayback struct {
	sound   assets.Resource
	opts    PlayOptions
	onEnded func()
	paused  bool
}

func (p *fakePlayback) Pause() { p.paused = true }

type fakeAudio struct {
	plays     []*fakePlayback
	suspended bool
	suspends  int
	resumes   int
}

func (a *fakeAudio) Play(sound assets.Resource, opts PlayOptions, onEnded func()) Playback {
	p := &fakePlayback{sound: sound, opts: opts, onEnded: onEnded}
	a.plays = append(a.plays, p)
	return p
}

func (a *fakeAudio) Suspend() { a.suspended = true; a.suspends++ }
func (a *fakeAudio) Resume()  { a.suspended = false; a.resumes++ }

func (a *fakeAudio) count(name string) int {
	n := 0
	for _, p := range a.plays {
		if p.sound.Name == name {
			n++
		}
	}
	return n
}

type fakeLoader struct {
	mu     sync.Mutex
	bundle assets.Bundle
	err    error
	calls  int
	descs  []assets.Descriptor
}

func (l *fakeLoader) Load(ctx context.Context, descs []assets.Descriptor, progress assets.ProgressFunc) (assets.Bundle, error) {
	l.mu.Lock()
	l.calls++
	l.descs = descs
	l.mu.Unlock()

	progress(assets.Progress{Percent: 50})
	if l.err != nil {
		return nil, l.err
	}
	progress(assets.Progress{Percent: 100})
	return l.bundle, nil
}

func testBundle() assets.Bundle {
	return assets.Bundle{
		assets.KindSound: {
			SoundScore: {Kind: assets.KindSound, Name: SoundScore, Locator: "sounds/score.wav"},
			SoundWin:   {Kind: assets.KindSound, Name: SoundWin, Locator: "sounds/win.wav"},
			SoundMusic: {Kind: assets.KindSound, Name: SoundMusic, Locator: "sounds/music.mp3"},
		},
		assets.KindImage: {
			ImageBackground: {Kind: assets.KindImage, Name: ImageBackground, Locator: "images/bg.png"},
		},
	}
}

type harness struct {
	t       *testing.T
	rt      *fakeRuntime
	display *fakeDisplay
	surface *fakeSurface
	overlay *fakeOverlay
	audio   *fakeAudio
	store   *store.Memory
	loader  *fakeLoader
	game    *Game
	wins    []Result
	states  []LifecycleState
}

func testConfig() config.MatchConfig {
	cfg := config.DefaultMatch()
	cfg.Settings.WinBy = 2
	cfg.Settings.CountDown = 3
	return cfg
}

func newHarness(t *testing.T, cfg config.MatchConfig) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		rt:      newFakeRuntime(),
		display: newFakeDisplay(),
		surface: &fakeSurface{w: 800, h: 600},
		overlay: newFakeOverlay(),
		audio:   &fakeAudio{},
		store:   store.NewMemory(),
		loader:  &fakeLoader{bundle: testBundle()},
	}
	h.game = New(cfg, Options{
		Runtime: h.rt,
		Display: h.display,
		Surface: h.surface,
		Overlay: h.overlay,
		Audio:   h.audio,
		Store:   h.store,
		Loader:  h.loader,
		Logger:  logger.Discard(),
		Hooks: Hooks{
			OnWin:        func(r Result) { h.wins = append(h.wins, r) },
			OnTransition: func(_, to LifecycleState) { h.states = append(h.states, to) },
		},
	})
	return h
}

// load runs Load and waits for the ready state.
func (h *harness) load() {
	h.t.Helper()
	h.game.Load()
	h.rt.drainUntil(h.t, func() bool { return h.game.State().Current == Ready })
}

// frame advances the clock by one 60 Hz frame and fires the display.
func (h *harness) frame() int {
	h.rt.Advance(16 * time.Millisecond)
	return h.display.fire(h.rt.Now())
}

func (h *harness) frames(n int) {
	for i := 0; i < n; i++ {
		h.frame()
	}
}

func (h *harness) keyUp(code string) {
	h.game.Dispatch(Event{Kind: InputKeyUp, Code: code})
}

func (h *harness) control(id string) {
	h.game.Dispatch(Event{Kind: InputControl, Control: id})
}

// toPlay drives a loaded match through the countdown.
func (h *harness) toPlay() {
	h.t.Helper()
	h.frames(2)
	h.keyUp(KeySpace)
	if got := h.game.State().Current; got != Countdown {
		h.t.Fatalf("after Space state = %v; want countdown", got)
	}
	for i := 0; i < 400 && h.game.State().Current != Play; i++ {
		h.frame()
	}
	if got := h.game.State().Current; got != Play {
		h.t.Fatalf("countdown never reached play, state = %v", got)
	}
	h.frame()
}
