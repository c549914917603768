package match

import "testing"

func TestPointEffectLifetime(t *testing.T) {
	e := &PointEffect{Position: Point{X: 10, Y: 3}, Text: "+1"}
	e.Update(1)
	if !e.Alive() {
		t.Fatalf("effect at y=%v should be alive", e.Position.Y)
	}
	e.Update(1)
	if e.Alive() {
		t.Fatalf("effect at y=%v should be gone", e.Position.Y)
	}
}

func TestPruneEffects(t *testing.T) {
	effects := []*PointEffect{
		{Position: Point{Y: 5}},
		{Position: Point{Y: 0}},
		{Position: Point{Y: 0.1}},
		{Position: Point{Y: -2}},
	}
	kept := pruneEffects(effects)
	if len(kept) != 2 || kept[0].Position.Y != 5 || kept[1].Position.Y != 0.1 {
		t.Fatalf("kept %d effects", len(kept))
	}
	if effects[2] != nil || effects[3] != nil {
		t.Fatal("pruned slots not cleared")
	}
}
