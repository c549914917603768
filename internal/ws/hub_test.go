package ws

import (
	"context"
	"testing"
	"time"
)

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("session %s did not stop", s.ID)
	}
}

func TestHubReplacesDeviceSession(t *testing.T) {
	h := NewHub(testSessionConfig())
	defer h.Shutdown(context.Background())

	first := h.Open(newFakeOutbox(), "dev-1", 0, 0, 0)
	second := h.Open(newFakeOutbox(), "dev-1", 0, 0, 0)
	waitDone(t, first)

	if got := h.ForDevice("dev-1"); got != second {
		t.Fatalf("ForDevice = %v; want session %s", got, second.ID)
	}
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if h.Count() != 1 {
		t.Fatalf("Count = %d; want 1", h.Count())
	}
}

func TestHubCleanupIdle(t *testing.T) {
	h := NewHub(testSessionConfig())
	defer h.Shutdown(context.Background())

	s := h.Open(newFakeOutbox(), "dev-1", 0, 0, 0)
	if n := h.cleanupIdle(time.Now(), time.Hour); n != 0 {
		t.Fatalf("closed %d fresh sessions", n)
	}
	if n := h.cleanupIdle(time.Now().Add(2*time.Hour), time.Hour); n != 1 {
		t.Fatalf("closed %d idle sessions; want 1", n)
	}
	waitDone(t, s)
}

func TestHubShutdown(t *testing.T) {
	h := NewHub(testSessionConfig())
	a := h.Open(newFakeOutbox(), "dev-a", 0, 0, 0)
	b := h.Open(newFakeOutbox(), "dev-b", 0, 0, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	waitDone(t, a)
	waitDone(t, b)
	if h.Count() != 0 {
		t.Fatalf("Count after shutdown = %d", h.Count())
	}
}
