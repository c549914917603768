package desktop

import (
	"fmt"
	"strings"

	"tap_duel/internal/assets"
	"tap_duel/internal/match"
	"tap_duel/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const debugGlyphWidth = 6

// Overlay keeps the UI state the engine sets and draws it over the surface.
type Overlay struct {
	visible      map[string]bool
	banner       string
	button       string
	instructions match.Instructions
	names        [2]string
	scores       [2]int
	muted        bool
	paused       bool
	countdown    string
	progress     int
	styles       match.Styles
	errText      string
}

func NewOverlay() *Overlay {
	return &Overlay{visible: map[string]bool{}}
}

func (o *Overlay) Show(names ...string) {
	for _, n := range names {
		o.visible[n] = true
	}
}

func (o *Overlay) Hide(names ...string) {
	for _, n := range names {
		delete(o.visible, n)
	}
}

func (o *Overlay) SetBanner(text string)                 { o.banner = text }
func (o *Overlay) SetButton(text string)                 { o.button = text }
func (o *Overlay) SetInstructions(in match.Instructions) { o.instructions = in }
func (o *Overlay) SetMute(muted bool)                    { o.muted = muted }
func (o *Overlay) SetPause(paused bool)                  { o.paused = paused }
func (o *Overlay) SetCountDown(value string)             { o.countdown = value }
func (o *Overlay) SetStyles(s match.Styles)              { o.styles = s }

func (o *Overlay) SetProgress(p assets.Progress) {
	o.progress = p.Percent
	o.errText = ""
}

func (o *Overlay) SetScore1(name string, score int) { o.names[0], o.scores[0] = name, score }
func (o *Overlay) SetScore2(name string, score int) { o.names[1], o.scores[1] = name, score }

func (o *Overlay) FontSize() float64 { return debugGlyphHeight }

func (o *Overlay) setError(text string) { o.errText = text }

// Draw renders every visible element centered on screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()

	if o.visible[match.OverlayTopbar] {
		vector.DrawFilledRect(screen, 0, 0, float32(w), debugGlyphHeight+8, render.ParseColor(o.styles.Colors["banner"]), false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %d", o.names[0], o.scores[0]), 8, 4)
		right := fmt.Sprintf("%d %s", o.scores[1], o.names[1])
		ebitenutil.DebugPrintAt(screen, right, w-8-len(right)*debugGlyphWidth, 4)
		ebitenutil.DebugPrintAt(screen, o.status(), w/2-len(o.status())*debugGlyphWidth/2, 4)
	}

	var lines []string
	if o.visible[match.OverlayLoading] {
		lines = append(lines, fmt.Sprintf("Loading... %d%%", o.progress))
		if o.errText != "" {
			lines = append(lines, o.errText)
		}
	}
	if o.visible[match.OverlayBanner] && o.banner != "" {
		lines = append(lines, o.banner)
	}
	if o.visible[match.OverlayCountdown] && o.countdown != "" {
		lines = append(lines, o.countdown)
	}
	if o.visible[match.OverlayInstructions] && o.instructions.Desktop != "" {
		lines = append(lines, o.instructions.Desktop)
	}
	if o.visible[match.OverlayButton] && o.button != "" {
		lines = append(lines, "[Enter] "+o.button)
	}
	if o.paused {
		lines = append(lines, "Paused")
	}

	y := h/2 - len(lines)*debugGlyphHeight
	for _, line := range lines {
		for _, l := range strings.Split(line, "\n") {
			ebitenutil.DebugPrintAt(screen, l, w/2-len(l)*debugGlyphWidth/2, y)
			y += debugGlyphHeight * 2
		}
	}
}

func (o *Overlay) status() string {
	s := "[M] sound on"
	if o.muted {
		s = "[M] muted"
	}
	return s + "  [P] pause"
}
