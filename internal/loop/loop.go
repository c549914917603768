// Package loop is a single-goroutine event loop that hosts one match. It
// provides the timers, posted functions and refresh ticks a match.Game needs,
// all run on the goroutine that called Run.
package loop

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"tap_duel/internal/match"
)

const DefaultRefreshHz = 60

type Loop struct {
	refresh time.Duration

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	// touched only on the loop goroutine
	frames    map[match.FrameHandle]func(time.Time)
	nextFrame match.FrameHandle
}

func New(refreshHz int) *Loop {
	if refreshHz <= 0 {
		refreshHz = DefaultRefreshHz
	}
	return &Loop{
		refresh: time.Second / time.Duration(refreshHz),
		wake:    make(chan struct{}, 1),
		frames:  make(map[match.FrameHandle]func(time.Time)),
	}
}

func (l *Loop) Now() time.Time { return time.Now() }

// Post queues fn for the loop. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type timer struct {
	t       *time.Timer
	stopped atomic.Bool
}

func (t *timer) Stop() bool {
	was := !t.stopped.Swap(true)
	t.t.Stop()
	return was
}

// AfterFunc runs fn on the loop after d. A timer stopped after it expired but
// before its callback reached the loop does not run.
func (l *Loop) AfterFunc(d time.Duration, fn func()) match.Timer {
	t := &timer{}
	t.t = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return t
}

// RequestFrame registers fn for the next refresh tick. Call on the loop.
func (l *Loop) RequestFrame(fn func(now time.Time)) match.FrameHandle {
	l.nextFrame++
	l.frames[l.nextFrame] = fn
	return l.nextFrame
}

// CancelFrame drops a pending request. Call on the loop.
func (l *Loop) CancelFrame(h match.FrameHandle) {
	delete(l.frames, h)
}

// PendingFrames reports how many frame requests are waiting. Call on the loop.
func (l *Loop) PendingFrames() int {
	return len(l.frames)
}

// Run processes posted functions and refresh ticks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.drain()
		case now := <-ticker.C:
			l.drain()
			l.tick(now)
		}
	}
}

// Step runs queued functions and one refresh tick at now. It is for hosts
// that own the refresh cycle themselves and never call Run.
func (l *Loop) Step(now time.Time) {
	l.drain()
	l.tick(now)
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		q := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(q) == 0 {
			return
		}
		for _, fn := range q {
			fn()
		}
	}
}

func (l *Loop) tick(now time.Time) {
	if len(l.frames) == 0 {
		return
	}
	handles := make([]match.FrameHandle, 0, len(l.frames))
	for h := range l.frames {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	due := l.frames
	l.frames = make(map[match.FrameHandle]func(time.Time))
	for _, h := range handles {
		due[h](now)
	}
}
