package domain

import "time"

// MatchRecord is one finished match as stored in match_history.
type MatchRecord struct {
	ID         int64      `db:"id" json:"id"`
	DeviceID   string     `db:"device_id" json:"device_id"`
	MatchName  string     `db:"match_name" json:"match_name"`
	Player1    string     `db:"player1" json:"player1"`
	Player2    string     `db:"player2" json:"player2"`
	Score1     int        `db:"score1" json:"score1"`
	Score2     int        `db:"score2" json:"score2"`
	Winner     int        `db:"winner" json:"winner"` // 1 or 2
	WinnerName string     `db:"winner_name" json:"winner_name"`
	DurationMs int64      `db:"duration_ms" json:"duration_ms"`
	StartedAt  *time.Time `db:"started_at" json:"started_at,omitempty"`
	FinishedAt time.Time  `db:"finished_at" json:"finished_at"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// LeaderboardEntry aggregates wins per player name.
type LeaderboardEntry struct {
	Player  string `json:"player"`
	Wins    int64  `json:"wins"`
	Matches int64  `json:"matches"`
}
