package repository

import (
	"context"

	"tap_duel/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MatchRepository struct {
	db *pgxpool.Pool
}

func NewMatchRepository(db *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create stores a finished match and fills in its id and created_at.
func (r *MatchRepository) Create(ctx context.Context, m *domain.MatchRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO match_history
			(device_id, match_name, player1, player2, score1, score2, winner, winner_name, duration_ms, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		m.DeviceID,
		m.MatchName,
		m.Player1,
		m.Player2,
		m.Score1,
		m.Score2,
		m.Winner,
		m.WinnerName,
		m.DurationMs,
		m.StartedAt,
		m.FinishedAt,
	).Scan(&m.ID, &m.CreatedAt)
}

// Recent returns the newest matches, optionally for one device.
func (r *MatchRepository) Recent(ctx context.Context, deviceID string, limit int) ([]*domain.MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows pgx.Rows
		err  error
	)
	if deviceID == "" {
		rows, err = r.db.Query(ctx,
			`SELECT id, device_id, match_name, player1, player2, score1, score2,
					winner, winner_name, duration_ms, started_at, finished_at, created_at
			 FROM match_history
			 ORDER BY created_at DESC
			 LIMIT $1`,
			limit,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, device_id, match_name, player1, player2, score1, score2,
					winner, winner_name, duration_ms, started_at, finished_at, created_at
			 FROM match_history
			 WHERE device_id = $1
			 ORDER BY created_at DESC
			 LIMIT $2`,
			deviceID, limit,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.MatchRecord
	for rows.Next() {
		var m domain.MatchRecord
		if err := rows.Scan(
			&m.ID, &m.DeviceID, &m.MatchName, &m.Player1, &m.Player2, &m.Score1, &m.Score2,
			&m.Winner, &m.WinnerName, &m.DurationMs, &m.StartedAt, &m.FinishedAt, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}

// Leaderboard ranks player names by wins across every stored match.
func (r *MatchRepository) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT player,
				COUNT(*) FILTER (WHERE won) AS wins,
				COUNT(*) AS matches
		 FROM (
			SELECT player1 AS player, winner = 1 AS won FROM match_history
			UNION ALL
			SELECT player2 AS player, winner = 2 AS won FROM match_history
		 ) p
		 GROUP BY player
		 ORDER BY wins DESC, matches ASC, player ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Player, &e.Wins, &e.Matches); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}
