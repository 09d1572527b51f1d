package model

import "time"

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Points   int64  `json:"points"`
	Solved   int    `json:"solved"`
}

// RankUpdate is one row of a batched rank rewrite performed by the
// rank worker.
type RankUpdate struct {
	ProfileID string
	Rank      int
}

// SolveEvent is published on the feed channel and persisted implicitly
// through user_lab_progress.
type SolveEvent struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	LabID    string    `json:"lab_id"`
	LabTitle string    `json:"lab_title"`
	Points   int       `json:"points"`
	SolvedAt time.Time `json:"solved_at"`
}
