package match

import (
	"reflect"
	"testing"
	"time"
)

func TestCountdownSequence(t *testing.T) {
	rt := newFakeRuntime()
	ov := newFakeOverlay()
	done := 0

	tok := StartCountdown(rt, ov, 3, "GO", func() { done++ })
	if ov.visible[OverlayCountdown] {
		t.Fatal("countdown visible before the first tick")
	}

	rt.Advance(999 * time.Millisecond)
	if len(ov.countdowns) != 0 {
		t.Fatalf("ticked early: %v", ov.countdowns)
	}

	for i := 0; i < 4; i++ {
		rt.Advance(time.Second)
		if !ov.visible[OverlayCountdown] {
			t.Fatalf("tick %d: countdown hidden", i)
		}
	}
	if want := []string{"3", "2", "1", "GO"}; !reflect.DeepEqual(ov.countdowns, want) {
		t.Fatalf("countdown values = %v; want %v", ov.countdowns, want)
	}
	if done != 0 {
		t.Fatal("done called before the final tick")
	}

	rt.Advance(time.Second)
	if done != 1 {
		t.Fatalf("done called %d times; want 1", done)
	}
	if ov.visible[OverlayCountdown] || tok.Active() {
		t.Fatal("countdown still showing after done")
	}

	rt.Advance(10 * time.Second)
	if done != 1 || len(ov.countdowns) != 4 || rt.activeTimers() != 0 {
		t.Fatalf("countdown kept ticking: done=%d values=%v timers=%d", done, ov.countdowns, rt.activeTimers())
	}
}

func TestCountdownZero(t *testing.T) {
	rt := newFakeRuntime()
	ov := newFakeOverlay()
	done := 0

	StartCountdown(rt, ov, 0, "GO", func() { done++ })
	rt.Advance(2 * time.Second)

	if want := []string{"GO"}; !reflect.DeepEqual(ov.countdowns, want) {
		t.Fatalf("countdown values = %v; want %v", ov.countdowns, want)
	}
	if done != 1 {
		t.Fatalf("done = %d; want 1", done)
	}
}

func TestCountdownCancel(t *testing.T) {
	rt := newFakeRuntime()
	ov := newFakeOverlay()
	done := 0

	tok := StartCountdown(rt, ov, 3, "GO", func() { done++ })
	rt.Advance(time.Second)
	tok.Cancel()
	rt.Advance(10 * time.Second)

	if done != 0 {
		t.Fatal("done called after cancel")
	}
	if len(ov.countdowns) != 1 || ov.visible[OverlayCountdown] {
		t.Fatalf("values=%v visible=%v after cancel", ov.countdowns, ov.visible[OverlayCountdown])
	}

	var nilTok *CountdownToken
	nilTok.Cancel()
	if nilTok.Active() {
		t.Fatal("nil token reports active")
	}
}

type timedView struct {
	*fakeOverlay
	rt    *fakeRuntime
	ticks []time.Duration
	start time.Time
}

func (v *timedView) SetCountDown(value string) {
	v.fakeOverlay.SetCountDown(value)
	v.ticks = append(v.ticks, v.rt.Now().Sub(v.start))
}

func TestCountdownTickSpacing(t *testing.T) {
	rt := newFakeRuntime()
	view := &timedView{fakeOverlay: newFakeOverlay(), rt: rt, start: rt.Now()}
	var doneAt time.Duration

	StartCountdown(rt, view, 3, "GO", func() { doneAt = rt.Now().Sub(view.start) })
	rt.Advance(10 * time.Second)

	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second}
	if !reflect.DeepEqual(view.ticks, want) {
		t.Fatalf("tick offsets = %v; want %v", view.ticks, want)
	}
	if doneAt != 5*time.Second {
		t.Fatalf("done at %v; want 5s", doneAt)
	}
	if got := rt.Now().Sub(view.start); got != 10*time.Second {
		t.Fatalf("clock = %v after advance; want 10s", got)
	}
}
