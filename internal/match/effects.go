package match

import "time"

// effectDrift is the upward speed of a point effect per unit of motion scale.
const effectDrift = 1.5

// PointEffect is the "+1" floating away from a player who scored.
type PointEffect struct {
	Position  Point
	Text      string
	Size      float64
	SpawnTime time.Time
}

// Update drifts the effect toward the top of the surface.
func (e *PointEffect) Update(scale float64) {
	e.Position.Y -= effectDrift * scale
}

// Alive reports whether the effect is still on the surface.
func (e *PointEffect) Alive() bool {
	return e.Position.Y > 0
}

func (e *PointEffect) Draw(s Surface, color string) {
	s.DrawText(e.Text, e.Position.X, e.Position.Y, e.Size, color)
}

// pruneEffects keeps live effects, reusing the backing array.
func pruneEffects(effects []*PointEffect) []*PointEffect {
	kept := effects[:0]
	for _, e := range effects {
		if e.Alive() {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(effects); i++ {
		effects[i] = nil
	}
	return kept
}
