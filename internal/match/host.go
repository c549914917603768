package match

import (
	"context"
	"time"

	"tap_duel/internal/assets"
)

// The interfaces below are what a host must provide. Every callback a host
// invokes (frames, timers, posted functions, playback completion) must run
// on the single goroutine that owns the Game.

// Timer is a one-shot timer handle.
type Timer interface {
	Stop() bool
}

// TimerSource creates one-shot timers whose callbacks run on the loop.
type TimerSource interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Runtime is the host event loop.
type Runtime interface {
	TimerSource
	Now() time.Time
	// Post queues fn to run on the loop. Safe from any goroutine.
	Post(fn func())
}

// FrameHandle identifies one pending frame request. Zero means none.
type FrameHandle uint64

// Display fires a requested callback on the next refresh tick.
type Display interface {
	RequestFrame(fn func(now time.Time)) FrameHandle
	CancelFrame(h FrameHandle)
}

// Surface is the 2D drawing context handed to actors.
type Surface interface {
	Size() (w, h float64)
	Clear(color string)
	FillRect(x, y, w, h float64, color string)
	DrawImage(name string, x, y, w, h float64)
	DrawText(text string, x, y, size float64, color string)
}

// Overlay element names.
const (
	OverlayLoading      = "loading"
	OverlayBanner       = "banner"
	OverlayButton       = "button"
	OverlayInstructions = "instructions"
	OverlayCountdown    = "countdown"
	OverlayTopbar       = "topbar"
)

type Instructions struct {
	Desktop string `json:"desktop"`
	Mobile  string `json:"mobile"`
}

type Styles struct {
	Colors     map[string]string `json:"colors"`
	FontFamily string            `json:"fontFamily"`
}

// Overlay is the UI layer drawn above the surface.
type Overlay interface {
	Show(names ...string)
	Hide(names ...string)
	SetBanner(text string)
	SetButton(text string)
	SetInstructions(in Instructions)
	SetScore1(name string, score int)
	SetScore2(name string, score int)
	SetMute(muted bool)
	SetPause(paused bool)
	SetCountDown(value string)
	SetProgress(p assets.Progress)
	SetStyles(s Styles)
	// FontSize is the overlay's current rendered text size in surface units.
	FontSize() float64
}

type PlayOptions struct {
	Loop   bool
	Volume float64
}

// Playback controls one started sound.
type Playback interface {
	Pause()
}

// AudioContext is the shared audio output. onEnded must be invoked on the
// loop, never from inside Play.
type AudioContext interface {
	Play(sound assets.Resource, opts PlayOptions, onEnded func()) Playback
	Suspend()
	Resume()
}

// Store is the persistent key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Loader resolves asset descriptors. It runs off the loop; progress may be
// called from any goroutine.
type Loader interface {
	Load(ctx context.Context, descs []assets.Descriptor, progress assets.ProgressFunc) (assets.Bundle, error)
}
