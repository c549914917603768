package match

import (
	"math"
	"time"
)

// referenceViewport is the shorter surface side at which the viewport scale is 1.
const referenceViewport = 50.0

// FrameInfo describes one scheduled frame.
type FrameInfo struct {
	Handle      FrameHandle
	Timestamp   time.Time
	Delta       time.Duration
	MotionScale float64
}

// DeltaMs is Delta in fractional milliseconds.
func (f FrameInfo) DeltaMs() float64 {
	return float64(f.Delta) / float64(time.Millisecond)
}

// ViewportScale derives the layout constant from the surface size.
func ViewportScale(w, h float64) float64 {
	return math.Min(w, h) / referenceViewport
}

// MotionScale normalizes a frame's positional updates against elapsed time.
func MotionScale(viewportScale float64, delta time.Duration) float64 {
	return viewportScale * (float64(delta) / float64(time.Millisecond)) * 0.01
}

// scheduler wraps a Display with frame timing. Only the most recent request
// can fire: each request or cancel bumps gen, and a stale callback is dropped
// even if the host fires it anyway.
type scheduler struct {
	display       Display
	viewportScale float64
	handle        FrameHandle
	gen           uint64
	last          time.Time
}

func newScheduler(d Display) *scheduler {
	return &scheduler{display: d, viewportScale: 1}
}

func (s *scheduler) layout(w, h float64) {
	s.viewportScale = ViewportScale(w, h)
}

// request registers cb for the next refresh. A resumed frame reports a zero
// delta so time spent paused does not turn into a motion spike.
func (s *scheduler) request(cb func(FrameInfo), resumed bool) FrameHandle {
	s.gen++
	gen := s.gen
	var h FrameHandle
	h = s.display.RequestFrame(func(now time.Time) {
		if gen != s.gen {
			return
		}
		s.handle = 0
		cb(s.next(h, now, resumed))
	})
	s.handle = h
	return h
}

func (s *scheduler) next(h FrameHandle, now time.Time, resumed bool) FrameInfo {
	var delta time.Duration
	if !resumed && !s.last.IsZero() {
		delta = now.Sub(s.last)
		if delta < 0 {
			delta = 0
		}
	}
	s.last = now
	return FrameInfo{
		Handle:      h,
		Timestamp:   now,
		Delta:       delta,
		MotionScale: MotionScale(s.viewportScale, delta),
	}
}

func (s *scheduler) cancel() {
	s.gen++
	if s.handle != 0 {
		s.display.CancelFrame(s.handle)
		s.handle = 0
	}
}

// reset cancels and forgets the previous frame time.
func (s *scheduler) reset() {
	s.cancel()
	s.last = time.Time{}
}

func (s *scheduler) pending() bool {
	return s.handle != 0
}
