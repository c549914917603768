package desktop

import (
	"tap_duel/internal/match"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type keyBinding struct {
	key ebiten.Key
	id  string
}

// keyCodes maps ebiten keys to the DOM codes the dispatcher understands.
var keyCodes = []keyBinding{
	{ebiten.KeyShiftLeft, match.KeyShiftLeft},
	{ebiten.KeyShiftRight, match.KeyShiftRight},
	{ebiten.KeySpace, match.KeySpace},
	{ebiten.KeyArrowUp, match.KeyArrowUp},
	{ebiten.KeyArrowDown, match.KeyArrowDown},
	{ebiten.KeyArrowLeft, match.KeyArrowLeft},
	{ebiten.KeyArrowRight, match.KeyArrowRight},
	{ebiten.KeyW, "KeyW"},
	{ebiten.KeyA, "KeyA"},
	{ebiten.KeyS, "KeyS"},
	{ebiten.KeyD, "KeyD"},
}

// controlKeys stand in for the browser's on-screen controls.
var controlKeys = []keyBinding{
	{ebiten.KeyM, match.ControlMute},
	{ebiten.KeyP, match.ControlPause},
	{ebiten.KeyEnter, match.ControlButton},
}

// pollInput collects this tick's input events in a stable order.
func pollInput(touches []ebiten.TouchID) ([]match.Event, []ebiten.TouchID) {
	var events []match.Event

	for _, b := range keyCodes {
		if inpututil.IsKeyJustPressed(b.key) {
			events = append(events, match.Event{Kind: match.InputKeyDown, Code: b.id})
		}
	}
	for _, b := range keyCodes {
		if inpututil.IsKeyJustReleased(b.key) {
			events = append(events, match.Event{Kind: match.InputKeyUp, Code: b.id})
		}
	}
	for _, b := range controlKeys {
		if inpututil.IsKeyJustPressed(b.key) {
			events = append(events, match.Event{Kind: match.InputControl, Control: b.id})
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		events = append(events, match.Event{
			Kind:  match.InputPointer,
			Point: match.Point{X: float64(x), Y: float64(y)},
		})
	}

	touches = inpututil.AppendJustPressedTouchIDs(touches[:0])
	for _, id := range touches {
		x, y := ebiten.TouchPosition(id)
		events = append(events, match.Event{
			Kind:  match.InputTouch,
			Point: match.Point{X: float64(x), Y: float64(y)},
		})
	}
	return events, touches
}
