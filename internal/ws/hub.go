package ws

import (
	"context"
	"strconv"
	"sync"
	"time"

	"tap_duel/internal/logger"
)

// Hub tracks live sessions. A device has at most one session; opening a
// new one closes the old.
type Hub struct {
	cfg SessionConfig

	mu       sync.RWMutex
	sessions map[string]*Session
	byDevice map[string]string
	seq      int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub(cfg SessionConfig) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		byDevice: make(map[string]string),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Open creates and starts a session for deviceID writing to out.
func (h *Hub) Open(out Outbox, deviceID string, width, height, fontSize float64) *Session {
	h.mu.Lock()
	h.seq++
	id := strconv.FormatInt(h.seq, 10)
	var previous *Session
	if oldID, ok := h.byDevice[deviceID]; ok {
		previous = h.sessions[oldID]
	}
	s := NewSession(id, deviceID, out, h.cfg, width, height, fontSize)
	h.sessions[id] = s
	h.byDevice[deviceID] = id
	h.mu.Unlock()

	if previous != nil {
		logger.Info("replacing session for device", "device_id", deviceID, "old", previous.ID, "new", id)
		previous.Close()
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		s.Run(h.ctx)
		h.remove(s)
	}()
	return s
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.ID)
	if h.byDevice[s.DeviceID] == s.ID {
		delete(h.byDevice, s.DeviceID)
	}
}

func (h *Hub) Get(id string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

func (h *Hub) ForDevice(deviceID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[h.byDevice[deviceID]]
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// StartCleanup closes sessions whose client has been silent longer than idle.
func (h *Hub) StartCleanup(interval, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.ctx.Done():
				return
			case now := <-ticker.C:
				h.cleanupIdle(now, idle)
			}
		}
	}()
}

func (h *Hub) cleanupIdle(now time.Time, idle time.Duration) int {
	h.mu.RLock()
	var stale []*Session
	for _, s := range h.sessions {
		if s.Idle(now) > idle {
			stale = append(stale, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range stale {
		logger.Info("closing idle session", "session", s.ID, "device_id", s.DeviceID)
		s.Close()
	}
	return len(stale)
}

// Shutdown closes every session and waits for them to finish.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.cancel()
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
