package desktop

import (
	"bytes"
	_ "image/jpeg"
	_ "image/png"

	"tap_duel/internal/assets"
	"tap_duel/internal/logger"
	"tap_duel/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// debugGlyphHeight is the line height of ebitenutil's debug font.
const debugGlyphHeight = 16

// Surface draws onto an offscreen canvas during Update; Draw presents it.
type Surface struct {
	canvas *ebiten.Image
	w, h   float64

	sources map[string][]byte // image name -> encoded bytes of the current load
	images  map[string]*ebiten.Image
}

func NewSurface(w, h int) *Surface {
	s := &Surface{sources: map[string][]byte{}, images: map[string]*ebiten.Image{}}
	s.Resize(w, h)
	return s
}

func (s *Surface) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if s.canvas != nil {
		s.canvas.Deallocate()
	}
	s.canvas = ebiten.NewImage(w, h)
	s.w, s.h = float64(w), float64(h)
}

func (s *Surface) Size() (float64, float64) { return s.w, s.h }

func (s *Surface) Clear(c string) {
	s.canvas.Fill(render.ParseColor(c))
}

func (s *Surface) FillRect(x, y, w, h float64, c string) {
	vector.DrawFilledRect(s.canvas, float32(x), float32(y), float32(w), float32(h), render.ParseColor(c), false)
}

func (s *Surface) DrawImage(name string, x, y, w, h float64) {
	img := s.image(name)
	if img == nil {
		return
	}
	b := img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	s.canvas.DrawImage(img, op)
}

// DrawText uses the debug font, which has one size and color.
func (s *Surface) DrawText(text string, x, y, size float64, c string) {
	ebitenutil.DebugPrintAt(s.canvas, text, int(x), int(y-debugGlyphHeight/2))
}

// Present copies the last drawn frame onto screen.
func (s *Surface) Present(screen *ebiten.Image) {
	screen.DrawImage(s.canvas, nil)
}

// setImages replaces the image sources with those of the current load.
func (s *Surface) setImages(b assets.Bundle) {
	s.sources = map[string][]byte{}
	s.images = map[string]*ebiten.Image{}
	for name, r := range b[assets.KindImage] {
		if r.Data != nil {
			s.sources[name] = r.Data
		}
	}
}

// image decodes name on first use.
func (s *Surface) image(name string) *ebiten.Image {
	if img, ok := s.images[name]; ok {
		return img
	}
	data, ok := s.sources[name]
	if !ok {
		return nil
	}
	img, _, err := ebitenutil.NewImageFromReader(bytes.NewReader(data))
	if err != nil {
		logger.Warn("decode image failed", "image", name, "error", err)
		img = nil
	}
	s.images[name] = img
	return img
}
