package desktop

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"tap_duel/internal/assets"
	"tap_duel/internal/logger"
	"tap_duel/internal/match"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

const DefaultSampleRate = 44100

type voice struct {
	player  *audio.Player
	loop    bool
	onEnded func()
}

// Audio plays sounds through ebiten's audio context. Completion is found by
// polling, so onEnded always runs from Poll on the game goroutine.
type Audio struct {
	ctx       *audio.Context
	voices    map[*voice]struct{}
	ended     []func()
	suspended bool
}

// NewAudio creates the process audio context. Only one may exist.
func NewAudio(sampleRate int) *Audio {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Audio{ctx: audio.NewContext(sampleRate), voices: map[*voice]struct{}{}}
}

type desktopPlayback struct {
	a *Audio
	v *voice
}

func (p desktopPlayback) Pause() {
	if p.v == nil {
		return
	}
	if _, ok := p.a.voices[p.v]; !ok {
		return
	}
	delete(p.a.voices, p.v)
	p.v.player.Pause()
	_ = p.v.player.Close()
}

func (a *Audio) Play(sound assets.Resource, opts match.PlayOptions, onEnded func()) match.Playback {
	player, err := a.newPlayer(sound, opts.Loop)
	if err != nil {
		logger.Warn("play sound failed", "sound", sound.Name, "error", err)
		if onEnded != nil {
			a.ended = append(a.ended, onEnded)
		}
		return desktopPlayback{a: a}
	}
	player.SetVolume(opts.Volume)

	v := &voice{player: player, loop: opts.Loop, onEnded: onEnded}
	a.voices[v] = struct{}{}
	if !a.suspended {
		player.Play()
	}
	return desktopPlayback{a: a, v: v}
}

func (a *Audio) newPlayer(sound assets.Resource, loop bool) (*audio.Player, error) {
	if sound.Data == nil {
		return nil, fmt.Errorf("remote sound %q is not supported on desktop", sound.Locator)
	}

	var (
		stream interface {
			io.ReadSeeker
			Length() int64
		}
		err error
	)
	r := bytes.NewReader(sound.Data)
	switch strings.ToLower(path.Ext(sound.Locator)) {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(a.ctx.SampleRate(), r)
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(a.ctx.SampleRate(), r)
	default:
		return nil, fmt.Errorf("unsupported sound format %q", path.Ext(sound.Locator))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", sound.Name, err)
	}

	var src io.Reader = stream
	if loop {
		src = audio.NewInfiniteLoop(stream, stream.Length())
	}
	return a.ctx.NewPlayer(src)
}

func (a *Audio) Suspend() {
	a.suspended = true
	for v := range a.voices {
		v.player.Pause()
	}
}

func (a *Audio) Resume() {
	a.suspended = false
	for v := range a.voices {
		v.player.Play()
	}
}

// Poll reports finished one-shot sounds. Call once per Update.
func (a *Audio) Poll() {
	ended := a.ended
	a.ended = nil
	if !a.suspended {
		for v := range a.voices {
			if v.loop || v.player.IsPlaying() {
				continue
			}
			delete(a.voices, v)
			_ = v.player.Close()
			if v.onEnded != nil {
				ended = append(ended, v.onEnded)
			}
		}
	}
	for _, fn := range ended {
		fn()
	}
}
