// Package match runs one two-player tap match: lifecycle, frame loop, input,
// countdown, audio and scoring. A Game is not safe for concurrent use; the
// host calls it, and fires its callbacks, from a single goroutine.
package match

import (
	"context"
	"log/slog"
	"math"
	"time"

	"tap_duel/internal/assets"
	"tap_duel/internal/config"
	"tap_duel/internal/logger"
)

// RestartCooldown is how long a win banner stays before restart is accepted.
const RestartCooldown = 3000 * time.Millisecond

const bounceDivisor = 5.0

// Resource names the match looks up in the loaded bundle.
const (
	ImagePlayer1    = "player1"
	ImagePlayer2    = "player2"
	ImageBackground = "background"

	SoundScore = "score"
	SoundWin   = "win"
	SoundMusic = "music"
)

// Hooks are optional observers, called on the loop.
type Hooks struct {
	OnTransition func(from, to LifecycleState)
	OnLoaded     func(bundle assets.Bundle)
	OnLoadError  func(err error)
	OnScore      func(player, score int)
	OnWin        func(r Result)
	OnFrame      func(f FrameInfo)
}

// Result summarizes a finished match.
type Result struct {
	Match      string    `json:"match"`
	Player1    string    `json:"player1"`
	Player2    string    `json:"player2"`
	Score1     int       `json:"score1"`
	Score2     int       `json:"score2"`
	Winner     int       `json:"winner"`
	WinnerName string    `json:"winnerName"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (r Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Options wires a Game to its host.
type Options struct {
	Runtime Runtime
	Display Display
	Surface Surface
	Overlay Overlay
	Audio   AudioContext
	Store   Store
	Loader  Loader
	Hooks   Hooks
	Logger  *slog.Logger
}

type stateFunc func(g *Game, f FrameInfo)

var stateFuncs = map[LifecycleState]stateFunc{
	Ready:      (*Game).updateReady,
	Countdown:  (*Game).updateCountdown,
	Play:       (*Game).updatePlay,
	WinPlayer1: (*Game).updateWin,
	WinPlayer2: (*Game).updateWin,
}

type Game struct {
	cfg     config.MatchConfig
	rt      Runtime
	surface Surface
	overlay Overlay
	loader  Loader
	hooks   Hooks
	log     *slog.Logger

	state   MatchState
	entered bool // the current state's first frame has run
	sched   *scheduler
	audio   *AudioManager
	input   InputState

	countdown  *CountdownToken
	bundle     assets.Bundle
	players    [2]*Player
	actors     []Actor // draw order: background first
	effects    []*PointEffect
	frameCount int
	frame      FrameInfo

	playStarted time.Time
	winAt       time.Time

	loadSeq    uint64
	cancelLoad context.CancelFunc
}

// New builds a Game in the loading state. Call Load to start it.
func New(cfg config.MatchConfig, opts Options) *Game {
	log := opts.Logger
	if log == nil {
		log = logger.ForMatch(cfg.Settings.Name)
	}

	g := &Game{
		cfg:     cfg,
		rt:      opts.Runtime,
		surface: opts.Surface,
		overlay: opts.Overlay,
		loader:  opts.Loader,
		hooks:   opts.Hooks,
		log:     log,
		sched:   newScheduler(opts.Display),
	}
	g.audio = NewAudioManager(opts.Audio, opts.Store, cfg.Settings.Name, log)
	g.state = MatchState{Current: Loading, Previous: Loading, Muted: g.audio.Muted()}
	return g
}

func (g *Game) State() MatchState { return g.state }
func (g *Game) Config() config.MatchConfig { return g.cfg }
func (g *Game) Players() [2]*Player { return g.players }
func (g *Game) Actors() []Actor { return g.actors }
func (g *Game) Effects() []*PointEffect { return g.effects }
func (g *Game) Input() InputState { return g.input }
func (g *Game) Frame() FrameInfo { return g.frame }
func (g *Game) Audio() *AudioManager { return g.audio }

// Load (re)enters the loading state and starts loading every configured
// asset. The frame loop restarts once loading completes; a failed load
// leaves the match in loading.
func (g *Game) Load() {
	g.sched.reset()
	g.countdown.Cancel()
	g.countdown = nil
	g.audio.StopMusic()
	if g.state.Paused {
		g.state.Paused = false
		g.audio.SetPaused(false)
		g.overlay.SetPause(false)
	}
	if g.state.Current != Loading {
		g.setState(Loading)
	}
	g.effects = nil

	if g.cancelLoad != nil {
		g.cancelLoad()
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.cancelLoad = cancel
	g.loadSeq++
	seq := g.loadSeq

	g.overlay.SetStyles(Styles{Colors: g.cfg.Colors, FontFamily: g.cfg.Settings.FontFamily})
	g.overlay.Hide(OverlayBanner, OverlayButton, OverlayInstructions, OverlayCountdown)
	g.overlay.SetProgress(assets.Progress{Percent: 0})
	g.overlay.Show(OverlayLoading)

	descs := assets.Descriptors(g.cfg.Images, g.cfg.Sounds)
	rt, loader := g.rt, g.loader
	go func() {
		bundle, err := loader.Load(ctx, descs, func(p assets.Progress) {
			rt.Post(func() { g.onProgress(seq, p) })
		})
		rt.Post(func() { g.onLoaded(seq, bundle, err) })
	}()
}

// Reconfigure swaps the configuration and reloads from scratch.
func (g *Game) Reconfigure(cfg config.MatchConfig) {
	g.sched.cancel()
	g.cfg = cfg
	g.audio.Rebind(cfg.Settings.Name, g.rt.Post, func(muted bool) {
		g.state.Muted = muted
		g.overlay.SetMute(muted)
	})
	g.log.Info("match reconfigured", "name", cfg.Settings.Name)
	g.Load()
}

// Close stops frames, timers, loading and sound.
func (g *Game) Close() {
	g.sched.cancel()
	g.countdown.Cancel()
	if g.cancelLoad != nil {
		g.cancelLoad()
		g.cancelLoad = nil
	}
	g.loadSeq++
	g.audio.StopMusic()
	g.audio.StopAll()
}

func (g *Game) onProgress(seq uint64, p assets.Progress) {
	if seq != g.loadSeq {
		return
	}
	g.overlay.SetProgress(p)
}

func (g *Game) onLoaded(seq uint64, bundle assets.Bundle, err error) {
	if seq != g.loadSeq {
		return
	}
	if g.cancelLoad != nil {
		g.cancelLoad()
		g.cancelLoad = nil
	}
	if err != nil {
		g.log.Error("asset load failed", "error", err)
		if g.hooks.OnLoadError != nil {
			g.hooks.OnLoadError(err)
		}
		return
	}
	g.create(bundle)
}

// create lays out the actors for a fresh match and starts the frame loop.
func (g *Game) create(bundle assets.Bundle) {
	g.bundle = bundle
	if g.hooks.OnLoaded != nil {
		g.hooks.OnLoaded(bundle)
	}

	w, h := g.surface.Size()
	g.sched.layout(w, h)

	s := g.cfg.Settings
	size := s.PlayerSize * math.Min(w, h)
	y := (h - size) / 2
	g.players[0] = NewPlayer(s.Player1, g.imageName(ImagePlayer1), g.cfg.Colors["player1"], w*0.25-size/2, y, size, size)
	g.players[1] = NewPlayer(s.Player2, g.imageName(ImagePlayer2), g.cfg.Colors["player2"], w*0.75-size/2, y, size, size)
	bg := NewBackground(g.imageName(ImageBackground), g.cfg.Colors["background"], w, h)
	g.actors = []Actor{bg, g.players[0], g.players[1]}

	g.effects = nil
	g.frameCount = 0
	g.input = InputState{}
	g.winAt = time.Time{}

	g.overlay.Hide(OverlayLoading)
	g.overlay.SetScore1(s.Player1, 0)
	g.overlay.SetScore2(s.Player2, 0)
	g.overlay.SetMute(g.state.Muted)
	g.overlay.SetPause(false)
	if s.ShowTopbar {
		g.overlay.Show(OverlayTopbar)
	} else {
		g.overlay.Hide(OverlayTopbar)
	}

	g.transition(Ready)
	g.sched.request(g.onFrame, false)
}

func (g *Game) imageName(name string) string {
	if _, ok := g.bundle.Get(assets.KindImage, name); ok {
		return name
	}
	return ""
}

// onFrame is the per-frame body: state update, render, then the next request.
func (g *Game) onFrame(f FrameInfo) {
	g.frame = f
	g.frameCount++

	cur := g.state.Current
	if update, ok := stateFuncs[cur]; ok {
		update(g, f)
	}
	if g.state.Current == cur {
		g.entered = true
	}

	g.render(f)
	if g.hooks.OnFrame != nil {
		g.hooks.OnFrame(f)
	}

	if g.state.Current != Loading && !g.state.Paused && !g.sched.pending() {
		g.sched.request(g.onFrame, false)
	}
}

func (g *Game) updateReady(FrameInfo) {
	if g.entered || g.state.Previous != Loading {
		return
	}
	s := g.cfg.Settings
	g.overlay.SetBanner(s.StartText)
	g.overlay.SetButton(s.ButtonText)
	g.overlay.SetInstructions(Instructions{Desktop: s.InstructionsDesktop, Mobile: s.InstructionsMobile})
	g.overlay.Show(OverlayBanner, OverlayInstructions, OverlayButton)
}

func (g *Game) updateCountdown(f FrameInfo) {
	if !g.entered && g.state.Previous == Ready {
		g.overlay.Hide(OverlayBanner, OverlayInstructions, OverlayButton)
	}
	g.bounce(f)
}

func (g *Game) updatePlay(f FrameInfo) {
	if !g.audio.Muted() && !g.audio.MusicPlaying() {
		if music, ok := g.bundle.Get(assets.KindSound, SoundMusic); ok {
			g.audio.StartMusic(music)
		}
	}

	p1, p2 := g.players[0], g.players[1]
	if to, ok := winner(p1.Score(), p2.Score(), g.cfg.Settings.WinBy); ok {
		g.declareWinner(to)
		return
	}
	g.bounce(f)
}

func (g *Game) updateWin(FrameInfo) {
	if g.entered || g.state.Previous != Play {
		return
	}
	p := g.players[g.state.Current.Winner()-1]
	g.overlay.SetBanner(g.cfg.WinBanner(p.Name))
	g.overlay.SetButton(g.cfg.Settings.RestartText)
	g.overlay.Show(OverlayBanner, OverlayButton)
}

func (g *Game) bounce(f FrameInfo) {
	dy := math.Cos(float64(g.frameCount) / bounceDivisor)
	for _, a := range g.actors {
		a.Move(0, dy, f.MotionScale)
	}
}

// winner applies the win-by margin. Margins below 1 count as 1.
func winner(score1, score2, winBy int) (LifecycleState, bool) {
	if winBy < 1 {
		winBy = 1
	}
	switch {
	case score1 >= score2+winBy:
		return WinPlayer1, true
	case score2 >= score1+winBy:
		return WinPlayer2, true
	}
	return Play, false
}

func (g *Game) declareWinner(to LifecycleState) {
	if !g.transition(to) {
		return
	}
	g.winAt = g.rt.Now()
	if sound, ok := g.bundle.Get(assets.KindSound, SoundWin); ok {
		g.audio.Playback(SoundWin, sound, PlayOptions{Volume: 1})
	}
	if g.hooks.OnWin != nil {
		g.hooks.OnWin(g.result())
	}
}

func (g *Game) result() Result {
	p1, p2 := g.players[0], g.players[1]
	r := Result{
		Match:      g.cfg.Settings.Name,
		Player1:    p1.Name,
		Player2:    p2.Name,
		Score1:     p1.Score(),
		Score2:     p2.Score(),
		Winner:     g.state.Current.Winner(),
		StartedAt:  g.playStarted,
		FinishedAt: g.winAt,
	}
	if r.Winner > 0 {
		r.WinnerName = g.players[r.Winner-1].Name
	}
	return r
}

func (g *Game) render(f FrameInfo) {
	g.surface.Clear(g.cfg.Colors["background"])
	for _, a := range g.actors {
		a.Draw(g.surface)
	}

	color := g.cfg.Colors["pointText"]
	for _, e := range g.effects {
		e.Update(f.MotionScale)
		e.Draw(g.surface, color)
	}
	g.effects = pruneEffects(g.effects)
}

// PlayerScore gives player (0 or 1) a point, spawns its point effect and
// plays the score sound.
func (g *Game) PlayerScore(player int) {
	if player < 0 || player >= len(g.players) || g.players[player] == nil {
		return
	}
	p := g.players[player]
	p.ScorePoint(1)
	if player == 0 {
		g.overlay.SetScore1(p.Name, p.Score())
	} else {
		g.overlay.SetScore2(p.Name, p.Score())
	}

	g.effects = append(g.effects, &PointEffect{
		Position:  Point{X: p.X + p.W/2, Y: p.Y},
		Text:      "+1",
		Size:      g.overlay.FontSize() * 1.5,
		SpawnTime: g.rt.Now(),
	})

	if sound, ok := g.bundle.Get(assets.KindSound, SoundScore); ok {
		g.audio.Playback(SoundScore, sound, PlayOptions{Volume: 1})
	}
	if g.hooks.OnScore != nil {
		g.hooks.OnScore(player+1, p.Score())
	}
}

func (g *Game) setState(to LifecycleState) {
	from := g.state.Current
	g.state.set(to)
	g.entered = false
	g.log.Debug("state transition", "from", from.String(), "to", to.String())
	if g.hooks.OnTransition != nil {
		g.hooks.OnTransition(from, to)
	}
}

func (g *Game) transition(to LifecycleState) bool {
	if !canTransition(g.state.Current, to) {
		g.log.Debug("transition rejected", "from", g.state.Current.String(), "to", to.String())
		return false
	}
	g.setState(to)
	return true
}

func (g *Game) startCountdown() {
	if !g.transition(Countdown) {
		return
	}
	g.countdown.Cancel()
	s := g.cfg.Settings
	g.countdown = StartCountdown(g.rt, g.overlay, s.CountDown, s.GoText, g.onCountdownDone)
}

func (g *Game) onCountdownDone() {
	if g.transition(Play) {
		g.playStarted = g.rt.Now()
	}
}

// restart reloads a finished match once the cooldown has passed. The
// cooldown is checked against the clock on every attempt.
func (g *Game) restart() bool {
	if !g.state.Current.IsWin() {
		return false
	}
	if g.rt.Now().Sub(g.winAt) < RestartCooldown {
		g.log.Debug("restart ignored during cooldown")
		return false
	}
	g.Load()
	return true
}

func (g *Game) togglePause() {
	g.state.Paused = !g.state.Paused
	g.audio.SetPaused(g.state.Paused)
	g.overlay.SetPause(g.state.Paused)
	if g.state.Paused {
		g.sched.cancel()
		return
	}
	g.sched.request(g.onFrame, true)
}

func (g *Game) toggleMute() {
	g.state.Muted = g.audio.Mute()
	g.overlay.SetMute(g.state.Muted)
}
