package model

// Achievement is a catalog entry evaluated against a user's real
// history; the catalog itself is fixed in code.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int    `json:"progress,omitempty"`
	MaxProgress int    `json:"max_progress,omitempty"`
}

// PlayerStats is the snapshot achievements are derived from.
type PlayerStats struct {
	UserID           string         `json:"user_id"`
	Points           int64          `json:"points"`
	Rank             int            `json:"rank"`
	Solved           int            `json:"solved"`
	SolvedByCategory map[string]int `json:"solved_by_category"`
	NightSolves      int            `json:"night_solves"` // Solves between 00:00 and 06:00 local
	CategoryTotals   map[string]int `json:"category_totals"`
}
