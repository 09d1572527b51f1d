package model

import "time"

type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventLive     EventStatus = "live"
	EventEnded    EventStatus = "ended"
)

type EventDifficulty string

const (
	EventBeginner     EventDifficulty = "Beginner"
	EventIntermediate EventDifficulty = "Intermediate"
	EventAdvanced     EventDifficulty = "Advanced"
)

func ValidEventDifficulty(d EventDifficulty) bool {
	switch d {
	case EventBeginner, EventIntermediate, EventAdvanced:
		return true
	}
	return false
}

type Event struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Description     string          `json:"description"`
	StartsAt        time.Time       `json:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"`
	Participants    int             `json:"participants"`
	MaxParticipants *int            `json:"max_participants,omitempty"`
	Prize           string          `json:"prize"`
	Location        string          `json:"location"`
	Difficulty      EventDifficulty `json:"difficulty"`
	Tags            []string        `json:"tags,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Derived on read; never stored.
	Status         EventStatus `json:"status,omitempty"`
	SecondsToStart int64       `json:"seconds_to_start,omitempty"`
	SecondsToEnd   int64       `json:"seconds_to_end,omitempty"`
}
