package ws

import (
	"strings"

	"tap_duel/internal/assets"
	"tap_duel/internal/match"
)

const DefaultFontSize = 24.0

// emitFunc queues one outbound message. Called on the session loop.
type emitFunc func(v any)

// RemoteOverlay forwards overlay updates to the browser.
type RemoteOverlay struct {
	emit     emitFunc
	fontSize float64
}

func NewRemoteOverlay(emit emitFunc, fontSize float64) *RemoteOverlay {
	o := &RemoteOverlay{emit: emit}
	o.SetFontSize(fontSize)
	return o
}

// SetFontSize records the size the browser reports for overlay text.
func (o *RemoteOverlay) SetFontSize(size float64) {
	if size <= 0 {
		size = DefaultFontSize
	}
	o.fontSize = size
}

func (o *RemoteOverlay) FontSize() float64 { return o.fontSize }

func (o *RemoteOverlay) op(m OverlayMessage) {
	m.Type = MsgOverlay
	o.emit(m)
}

func (o *RemoteOverlay) Show(names ...string) {
	o.op(OverlayMessage{Op: "show", Names: names})
}

func (o *RemoteOverlay) Hide(names ...string) {
	o.op(OverlayMessage{Op: "hide", Names: names})
}

func (o *RemoteOverlay) SetBanner(text string) {
	o.op(OverlayMessage{Op: "banner", Text: text})
}

func (o *RemoteOverlay) SetButton(text string) {
	o.op(OverlayMessage{Op: "button", Text: text})
}

func (o *RemoteOverlay) SetInstructions(in match.Instructions) {
	o.op(OverlayMessage{Op: "instructions", Instructions: &in})
}

func (o *RemoteOverlay) SetScore1(name string, score int) {
	o.op(OverlayMessage{Op: "score", Player: 1, Name: name, Score: &score})
}

func (o *RemoteOverlay) SetScore2(name string, score int) {
	o.op(OverlayMessage{Op: "score", Player: 2, Name: name, Score: &score})
}

func (o *RemoteOverlay) SetMute(muted bool) {
	o.op(OverlayMessage{Op: "mute", On: &muted})
}

func (o *RemoteOverlay) SetPause(paused bool) {
	o.op(OverlayMessage{Op: "pause", On: &paused})
}

func (o *RemoteOverlay) SetCountDown(value string) {
	o.op(OverlayMessage{Op: "countdown", Text: value})
}

func (o *RemoteOverlay) SetProgress(p assets.Progress) {
	percent := p.Percent
	o.op(OverlayMessage{Op: "progress", Percent: &percent})
}

func (o *RemoteOverlay) SetStyles(s match.Styles) {
	o.op(OverlayMessage{Op: "styles", Styles: &s})
}

// RemoteAudio plays sounds in the browser. The browser reports completion
// with an audio_ended message carrying the play id.
type RemoteAudio struct {
	emit    emitFunc
	base    string
	nextID  uint64
	pending map[uint64]func()
}

func NewRemoteAudio(emit emitFunc, assetBase string) *RemoteAudio {
	return &RemoteAudio{emit: emit, base: assetBase, pending: make(map[uint64]func())}
}

type remotePlayback struct {
	a  *RemoteAudio
	id uint64
}

func (p remotePlayback) Pause() {
	if _, ok := p.a.pending[p.id]; !ok {
		return
	}
	delete(p.a.pending, p.id)
	p.a.emit(AudioMessage{Type: MsgAudio, Op: "pause", ID: p.id})
}

func (a *RemoteAudio) Play(sound assets.Resource, opts match.PlayOptions, onEnded func()) match.Playback {
	a.nextID++
	id := a.nextID
	a.pending[id] = onEnded
	a.emit(AudioMessage{
		Type:   MsgAudio,
		Op:     "play",
		ID:     id,
		Sound:  sound.Name,
		URL:    AssetURL(a.base, sound),
		Loop:   opts.Loop,
		Volume: opts.Volume,
	})
	return remotePlayback{a: a, id: id}
}

func (a *RemoteAudio) Suspend() { a.emit(AudioMessage{Type: MsgAudio, Op: "suspend"}) }
func (a *RemoteAudio) Resume()  { a.emit(AudioMessage{Type: MsgAudio, Op: "resume"}) }

// Ended runs the completion callback for id once. Unknown ids are ignored.
func (a *RemoteAudio) Ended(id uint64) bool {
	fn, ok := a.pending[id]
	if !ok {
		return false
	}
	delete(a.pending, id)
	if fn != nil {
		fn()
	}
	return true
}

// Pending reports how many plays have not ended or been paused.
func (a *RemoteAudio) Pending() int { return len(a.pending) }

// AssetURL is where the browser fetches r. Remote locators pass through.
func AssetURL(base string, r assets.Resource) string {
	if r.IsRemote() {
		return r.Locator
	}
	return strings.TrimSuffix(base, "/") + "/" + assets.FSPath(r.Locator)
}

// assetsMessage lists every configured resource as a URL.
func assetsMessage(base string, images, sounds map[string]string) AssetsMessage {
	m := AssetsMessage{Type: MsgAssets, Images: map[string]string{}, Sounds: map[string]string{}}
	for _, d := range assets.Descriptors(images, sounds) {
		url := AssetURL(base, assets.Resource{Kind: d.Kind, Name: d.Name, Locator: d.Locator})
		if d.Kind == assets.KindImage {
			m.Images[d.Name] = url
		} else {
			m.Sounds[d.Name] = url
		}
	}
	return m
}
