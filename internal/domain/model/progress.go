package model

import (
	"time"
)

// UserLabProgress marks a lab as solved by a user. One row per
// (user_id, lab_id) pair, enforced by a unique constraint; the scoring
// flow upserts against it and awards points only on first insert.
type UserLabProgress struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	LabID       string     `json:"lab_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Progress is the per-lab point ledger behind the dashboard.
type Progress struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ChallengeID *string   `json:"challenge_id,omitempty"`
	Progress    int       `json:"progress"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FlagSubmission is the audit log row written for every attempt,
// correct or not. It never feeds the completion state machine.
type FlagSubmission struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	LabID         string    `json:"lab_id"`
	SubmittedFlag string    `json:"submitted_flag"`
	Correct       bool      `json:"correct"`
	IPAddress     string    `json:"ip_address"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Username      *string   `json:"username,omitempty"`  // For admin display
	LabTitle      *string   `json:"lab_title,omitempty"` // For admin display
}

// AwardResult reports what a correct submission actually changed.
type AwardResult struct {
	Awarded   bool  `json:"awarded"`
	NewPoints int64 `json:"new_points"`
}
