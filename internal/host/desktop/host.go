// Package desktop runs a match in an ebiten window. The window's update
// cycle drives the match loop, so every engine callback runs on ebiten's
// game goroutine.
package desktop

import (
	"time"

	"tap_duel/internal/config"
	"tap_duel/internal/logger"
	"tap_duel/internal/loop"
	"tap_duel/internal/match"
	"tap_duel/internal/store"

	"github.com/hajimehoshi/ebiten/v2"
)

type Options struct {
	Loader     match.Loader
	Store      store.KV
	Width      int
	Height     int
	SampleRate int
}

// Host implements ebiten.Game.
type Host struct {
	loop    *loop.Loop
	game    *match.Game
	surface *Surface
	overlay *Overlay
	audio   *Audio

	w, h    int
	started bool
	touches []ebiten.TouchID
}

func New(cfg config.MatchConfig, opts Options) *Host {
	if opts.Store == nil {
		opts.Store = store.NewMemory()
	}
	h := &Host{
		loop:    loop.New(ebiten.DefaultTPS),
		surface: NewSurface(opts.Width, opts.Height),
		overlay: NewOverlay(),
		audio:   NewAudio(opts.SampleRate),
		w:       opts.Width,
		h:       opts.Height,
	}

	log := logger.ForMatch(cfg.Settings.Name)
	h.game = match.New(cfg, match.Options{
		Runtime: h.loop,
		Display: h.loop,
		Surface: h.surface,
		Overlay: h.overlay,
		Audio:   h.audio,
		Store:   opts.Store,
		Loader:  opts.Loader,
		Logger:  log,
		Hooks: match.Hooks{
			OnWin: func(r match.Result) {
				log.Info("match finished", "winner", r.WinnerName, "score1", r.Score1, "score2", r.Score2)
			},
			OnLoaded: h.surface.setImages,
			OnLoadError: func(err error) {
				h.overlay.setError(err.Error())
			},
		},
	})
	return h
}

func (h *Host) Update() error {
	if !h.started {
		h.started = true
		h.game.Load()
	}

	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		h.game.Close()
		h.game.Audio().Flush()
		return ebiten.Termination
	}

	var events []match.Event
	events, h.touches = pollInput(h.touches)
	for _, ev := range events {
		h.game.Dispatch(ev)
	}

	h.loop.Step(time.Now())
	h.audio.Poll()
	return nil
}

func (h *Host) Draw(screen *ebiten.Image) {
	h.surface.Present(screen)
	h.overlay.Draw(screen)
}

// Layout follows the window size. A change re-lays the match out from
// scratch, the way a browser resize does.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.w || outsideHeight != h.h {
		h.w, h.h = outsideWidth, outsideHeight
		h.surface.Resize(outsideWidth, outsideHeight)
		if h.started {
			h.loop.Post(func() { h.game.Reconfigure(h.game.Config()) })
		}
	}
	return outsideWidth, outsideHeight
}
