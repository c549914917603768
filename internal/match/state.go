package match

// LifecycleState is the match lifecycle.
type LifecycleState int

const (
	Loading LifecycleState = iota
	Ready
	Countdown
	Play
	WinPlayer1
	WinPlayer2
)

var stateNames = [...]string{
	Loading:    "loading",
	Ready:      "ready",
	Countdown:  "countdown",
	Play:       "play",
	WinPlayer1: "win-player1",
	WinPlayer2: "win-player2",
}

func (s LifecycleState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s LifecycleState) IsWin() bool {
	return s == WinPlayer1 || s == WinPlayer2
}

// IsTerminal reports whether the match is over and only a restart leaves it.
func (s LifecycleState) IsTerminal() bool {
	return s.IsWin()
}

// Winner returns the 1-based winning player for a win state, 0 otherwise.
func (s LifecycleState) Winner() int {
	switch s {
	case WinPlayer1:
		return 1
	case WinPlayer2:
		return 2
	}
	return 0
}

// transitions lists the event-driven edges. Reloads bypass it.
var transitions = map[LifecycleState][]LifecycleState{
	Loading:    {Ready},
	Ready:      {Countdown},
	Countdown:  {Play},
	Play:       {WinPlayer1, WinPlayer2},
	WinPlayer1: {Loading},
	WinPlayer2: {Loading},
}

func canTransition(from, to LifecycleState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// MatchState is the lifecycle plus pause and mute flags.
type MatchState struct {
	Current  LifecycleState
	Previous LifecycleState
	Paused   bool
	Muted    bool
}

// set records Current into Previous and applies to.
func (m *MatchState) set(to LifecycleState) {
	m.Previous = m.Current
	m.Current = to
}
