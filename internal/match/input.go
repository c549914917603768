package match

type InputKind int

const (
	InputKeyDown InputKind = iota
	InputKeyUp
	InputPointer
	InputTouch
	InputControl
)

type Device int

const (
	DeviceKeyboard Device = iota
	DevicePointer
)

// Key codes, following the DOM KeyboardEvent.code names.
const (
	KeyShiftLeft  = "ShiftLeft"
	KeyShiftRight = "ShiftRight"
	KeySpace      = "Space"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// Control-surface ids.
const (
	ControlMute    = "mute"
	ControlPause   = "pause"
	ControlButton  = "button"
	ControlStart   = "start"
	ControlRestart = "restart"
)

// Event is one raw input event.
type Event struct {
	Kind    InputKind
	Code    string // keyboard
	Point   Point  // pointer and touch
	Control string // control surface
}

type KeyFlags struct {
	Up, Down, Left, Right bool
}

func (k *KeyFlags) set(code string, down bool) {
	switch code {
	case KeyArrowUp, "KeyW":
		k.Up = down
	case KeyArrowDown, "KeyS":
		k.Down = down
	case KeyArrowLeft, "KeyA":
		k.Left = down
	case KeyArrowRight, "KeyD":
		k.Right = down
	}
}

type InputState struct {
	ActiveDevice Device
	Keys         KeyFlags
	LastTap      Point
}

type inputHandler func(g *Game, ev Event)

var inputHandlers = map[InputKind]inputHandler{
	InputKeyDown: handleKeyDown,
	InputKeyUp:   handleKeyUp,
	InputPointer: handleTap,
	InputTouch:   handleTap,
	InputControl: handleControl,
}

// Dispatch routes one input event to its handler.
func (g *Game) Dispatch(ev Event) {
	h, ok := inputHandlers[ev.Kind]
	if !ok {
		return
	}
	h(g, ev)
}

func handleKeyDown(g *Game, ev Event) {
	g.input.ActiveDevice = DeviceKeyboard
	g.input.Keys.set(ev.Code, true)
}

// Keyboard actions fire on key-up.
func handleKeyUp(g *Game, ev Event) {
	g.input.ActiveDevice = DeviceKeyboard
	g.input.Keys.set(ev.Code, false)

	switch ev.Code {
	case KeyShiftLeft:
		g.scoreFromInput(0)
	case KeyShiftRight:
		g.scoreFromInput(1)
	case KeySpace:
		switch {
		case g.state.Current == Ready:
			g.startCountdown()
		case g.state.Current.IsWin():
			g.restart()
		case g.state.Current == Play:
			g.togglePause()
		}
	}
}

func handleTap(g *Game, ev Event) {
	g.input.ActiveDevice = DevicePointer
	g.input.LastTap = ev.Point

	if !g.scorable() {
		return
	}
	for _, a := range g.actors {
		if a.Tap(ev.Point) {
			g.PlayerScore(g.playerIndex(a))
		}
	}
}

func handleControl(g *Game, ev Event) {
	if g.state.Current == Loading || g.state.Current == Countdown {
		return
	}

	switch ev.Control {
	case ControlMute:
		g.toggleMute()
	case ControlPause:
		if g.state.Current == Play {
			g.togglePause()
		}
	case ControlStart:
		if g.state.Current == Ready {
			g.startCountdown()
		}
	case ControlRestart:
		g.restart()
	case ControlButton:
		if g.state.Current == Ready {
			g.startCountdown()
		} else {
			g.restart()
		}
	}
}

// playerIndex returns a's side, or -1 when a is not a player.
func (g *Game) playerIndex(a Actor) int {
	for i, p := range g.players {
		if p != nil && Actor(p) == a {
			return i
		}
	}
	return -1
}

func (g *Game) scorable() bool {
	return g.state.Current == Play && !g.state.Paused
}

func (g *Game) scoreFromInput(player int) {
	if g.scorable() {
		g.PlayerScore(player)
	}
}
