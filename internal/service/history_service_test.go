package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tap_duel/internal/domain"
	"tap_duel/internal/match"
)

type fakeMatchStore struct {
	mu        sync.Mutex
	created   []*domain.MatchRecord
	lastLimit int
	err       error
}

func (f *fakeMatchStore) Create(_ context.Context, m *domain.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	m.ID = int64(len(f.created) + 1)
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMatchStore) Recent(_ context.Context, deviceID string, limit int) ([]*domain.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	var out []*domain.MatchRecord
	for _, m := range f.created {
		if deviceID == "" || m.DeviceID == deviceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchStore) Leaderboard(_ context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	return []*domain.LeaderboardEntry{{Player: "Left", Wins: 1, Matches: 1}}, nil
}

func sampleResult() match.Result {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return match.Result{
		Match: "Tap Duel", Player1: "Left", Player2: "Right",
		Score1: 10, Score2: 4, Winner: 1, WinnerName: "Left",
		StartedAt: start, FinishedAt: start.Add(42 * time.Second),
	}
}

func TestHistoryRecord(t *testing.T) {
	store := &fakeMatchStore{}
	s := NewHistoryService(store)

	s.Record("dev-1", sampleResult())
	s.Record("dev-1", match.Result{}) // no winner, skipped
	s.Wait()

	if len(store.created) != 1 {
		t.Fatalf("stored %d records; want 1", len(store.created))
	}
	rec := store.created[0]
	if rec.DeviceID != "dev-1" || rec.DurationMs != 42000 || rec.StartedAt == nil || rec.WinnerName != "Left" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestHistoryRecordFailureIsLogged(t *testing.T) {
	s := NewHistoryService(&fakeMatchStore{err: errors.New("db down")})
	s.Record("dev-1", sampleResult())
	s.Wait()
}

func TestHistoryLimits(t *testing.T) {
	store := &fakeMatchStore{}
	s := NewHistoryService(store)
	ctx := context.Background()

	tests := []struct{ in, want int }{{0, DefaultHistoryLimit}, {-4, DefaultHistoryLimit}, {5, 5}, {1000, MaxHistoryLimit}}
	for _, tt := range tests {
		if _, err := s.Recent(ctx, "", tt.in); err != nil {
			t.Fatal(err)
		}
		if store.lastLimit != tt.want {
			t.Errorf("Recent(limit=%d) passed %d; want %d", tt.in, store.lastLimit, tt.want)
		}
	}
	if _, err := s.Leaderboard(ctx, 3); err != nil || store.lastLimit != 3 {
		t.Fatalf("Leaderboard limit = %d, err = %v", store.lastLimit, err)
	}
}

func TestHistoryDisabled(t *testing.T) {
	s := NewHistoryService(nil)
	s.Record("dev", sampleResult())
	s.Wait()
	if _, err := s.Recent(context.Background(), "", 10); !errors.Is(err, ErrHistoryDisabled) {
		t.Fatalf("Recent err = %v", err)
	}
	var nilSvc *HistoryService
	if nilSvc.Enabled() {
		t.Fatal("nil service enabled")
	}
}
