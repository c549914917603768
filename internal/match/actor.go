package match

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Actor is anything drawn on the surface.
type Actor interface {
	Move(dx, dy, scale float64)
	Draw(s Surface)
	Tap(p Point) bool
	ScorePoint(n int)
}

var (
	_ Actor = (*Player)(nil)
	_ Actor = (*Background)(nil)
)

// Player is one side's paddle. X and Y are the top-left corner.
type Player struct {
	Name  string
	Image string // empty draws a filled rect
	Color string
	X, Y  float64
	W, H  float64
	score int
}

func NewPlayer(name, image, color string, x, y, w, h float64) *Player {
	return &Player{Name: name, Image: image, Color: color, X: x, Y: y, W: w, H: h}
}

func (p *Player) Score() int { return p.score }

func (p *Player) Position() Point { return Point{X: p.X, Y: p.Y} }

func (p *Player) Size() (w, h float64) { return p.W, p.H }

// Center is the middle of the hit region.
func (p *Player) Center() Point { return Point{X: p.X + p.W/2, Y: p.Y + p.H/2} }

func (p *Player) Move(dx, dy, scale float64) {
	p.X += dx * scale
	p.Y += dy * scale
}

func (p *Player) Draw(s Surface) {
	if p.Image != "" {
		s.DrawImage(p.Image, p.X, p.Y, p.W, p.H)
		return
	}
	s.FillRect(p.X, p.Y, p.W, p.H, p.Color)
}

func (p *Player) Tap(pt Point) bool {
	return pt.X >= p.X && pt.X <= p.X+p.W && pt.Y >= p.Y && pt.Y <= p.Y+p.H
}

func (p *Player) ScorePoint(n int) { p.score += n }

// Background fills the whole surface and ignores input.
type Background struct {
	Image string
	Color string
	W, H  float64
}

func NewBackground(image, color string, w, h float64) *Background {
	return &Background{Image: image, Color: color, W: w, H: h}
}

func (b *Background) Move(dx, dy, scale float64) {}

func (b *Background) Draw(s Surface) {
	if b.Image != "" {
		s.DrawImage(b.Image, 0, 0, b.W, b.H)
		return
	}
	s.FillRect(0, 0, b.W, b.H, b.Color)
}

func (b *Background) Tap(Point) bool { return false }

func (b *Background) ScorePoint(int) {}
