package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"tap_duel/internal/domain"
	"tap_duel/internal/logger"
	"tap_duel/internal/match"
)

const (
	historyWriteTimeout = 5 * time.Second
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

var ErrHistoryDisabled = errors.New("match history is not configured")

// MatchStore is the persistence HistoryService writes through.
type MatchStore interface {
	Create(ctx context.Context, m *domain.MatchRecord) error
	Recent(ctx context.Context, deviceID string, limit int) ([]*domain.MatchRecord, error)
	Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error)
}

// HistoryService records finished matches off the caller's goroutine.
// A nil store disables it.
type HistoryService struct {
	store MatchStore
	wg    sync.WaitGroup
}

func NewHistoryService(store MatchStore) *HistoryService {
	return &HistoryService{store: store}
}

func (s *HistoryService) Enabled() bool {
	return s != nil && s.store != nil
}

// Record stores r for deviceID asynchronously. Failures are logged.
func (s *HistoryService) Record(deviceID string, r match.Result) {
	if !s.Enabled() || r.Winner == 0 {
		return
	}
	rec := NewMatchRecord(deviceID, r)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
		defer cancel()
		if err := s.store.Create(ctx, rec); err != nil {
			logger.Error("store match result failed", "device_id", deviceID, "error", err)
			return
		}
		logger.Debug("match result stored", "id", rec.ID, "device_id", deviceID)
	}()
}

// Wait blocks until pending writes have finished.
func (s *HistoryService) Wait() {
	if s != nil {
		s.wg.Wait()
	}
}

func (s *HistoryService) Recent(ctx context.Context, deviceID string, limit int) ([]*domain.MatchRecord, error) {
	if !s.Enabled() {
		return nil, ErrHistoryDisabled
	}
	return s.store.Recent(ctx, deviceID, clampLimit(limit))
}

func (s *HistoryService) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	if !s.Enabled() {
		return nil, ErrHistoryDisabled
	}
	return s.store.Leaderboard(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}

// NewMatchRecord converts a match result into its stored form.
func NewMatchRecord(deviceID string, r match.Result) *domain.MatchRecord {
	rec := &domain.MatchRecord{
		DeviceID:   deviceID,
		MatchName:  r.Match,
		Player1:    r.Player1,
		Player2:    r.Player2,
		Score1:     r.Score1,
		Score2:     r.Score2,
		Winner:     r.Winner,
		WinnerName: r.WinnerName,
		FinishedAt: r.FinishedAt,
	}
	if !r.StartedAt.IsZero() {
		started := r.StartedAt
		rec.StartedAt = &started
		rec.DurationMs = r.Duration().Milliseconds()
	}
	return rec
}
