package model

import (
	"time"
)

type LabDifficulty string

const (
	DifficultyEasy   LabDifficulty = "Easy"
	DifficultyMedium LabDifficulty = "Medium"
	DifficultyHard   LabDifficulty = "Hard"
)

// DefaultReward is the point reward assigned when an admin creates a lab
// without an explicit value.
func DefaultReward(d LabDifficulty) int {
	switch d {
	case DifficultyEasy:
		return 100
	case DifficultyMedium:
		return 200
	case DifficultyHard:
		return 500
	default:
		return 0
	}
}

func ValidDifficulty(d LabDifficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Lab struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Difficulty  LabDifficulty `json:"difficulty"`
	Category    string        `json:"category"`
	Points      int           `json:"points"`
	Content     *string       `json:"content,omitempty"`
	Hints       []string      `json:"hints,omitempty"`
	Solution    *string       `json:"solution,omitempty"` // Admin only view
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Completed   *bool         `json:"completed,omitempty"` // Per-caller marker
}
