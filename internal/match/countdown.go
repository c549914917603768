package match

import (
	"strconv"
	"time"
)

const countdownInterval = time.Second

// CountdownView is the part of the overlay a countdown drives.
type CountdownView interface {
	Show(names ...string)
	Hide(names ...string)
	SetCountDown(value string)
}

// CountdownToken is a running countdown. Cancel invalidates it; a tick that
// was already queued when Cancel ran is dropped.
type CountdownToken struct {
	timers    TimerSource
	view      CountdownView
	goText    string
	onDone    func()
	remaining int
	timer     Timer
	active    bool
}

// StartCountdown shows n, n-1, ... 1 then goText, one per second with the
// first one a second from now, then hides the display and calls onDone once.
func StartCountdown(timers TimerSource, view CountdownView, n int, goText string, onDone func()) *CountdownToken {
	t := &CountdownToken{
		timers:    timers,
		view:      view,
		goText:    goText,
		onDone:    onDone,
		remaining: n,
		active:    true,
	}
	view.Hide(OverlayCountdown)
	t.timer = timers.AfterFunc(countdownInterval, t.tick)
	return t
}

func (t *CountdownToken) tick() {
	if !t.active {
		return
	}

	if t.remaining >= 0 {
		text := strconv.Itoa(t.remaining)
		if t.remaining == 0 {
			text = t.goText
		}
		t.view.SetCountDown(text)
		t.view.Show(OverlayCountdown)
		t.remaining--
		t.timer = t.timers.AfterFunc(countdownInterval, t.tick)
		return
	}

	t.active = false
	t.view.Hide(OverlayCountdown)
	if t.onDone != nil {
		t.onDone()
	}
}

// Active reports whether the countdown still has ticks to run.
func (t *CountdownToken) Active() bool {
	return t != nil && t.active
}

// Cancel stops the countdown without calling onDone. Safe on a nil token.
func (t *CountdownToken) Cancel() {
	if !t.Active() {
		return
	}
	t.active = false
	if t.timer != nil {
		t.timer.Stop()
	}
	t.view.Hide(OverlayCountdown)
}
