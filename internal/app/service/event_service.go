package service

import (
	"context"
	"fmt"
	"time"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type EventService struct {
	eventRepo repository.EventRepository
	now       func() time.Time
}

func NewEventService(eventRepo repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo, now: time.Now}
}

// AnnotateEvent derives the live status and countdowns from the stored
// window. Status is never persisted; it is a pure function of the
// clock, so two readers at the same instant always agree.
func AnnotateEvent(e *model.Event, now time.Time) {
	switch {
	case now.Before(e.StartsAt):
		e.Status = model.EventUpcoming
		e.SecondsToStart = int64(e.StartsAt.Sub(now).Seconds())
		e.SecondsToEnd = int64(e.EndsAt.Sub(now).Seconds())
	case now.Before(e.EndsAt):
		e.Status = model.EventLive
		e.SecondsToStart = 0
		e.SecondsToEnd = int64(e.EndsAt.Sub(now).Seconds())
	default:
		e.Status = model.EventEnded
		e.SecondsToStart = 0
		e.SecondsToEnd = 0
	}
}

// List returns events annotated with status, optionally narrowed to a
// single status. An empty filter returns everything.
func (s *EventService) List(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	filtered := []model.Event{}
	for i := range events {
		AnnotateEvent(&events[i], now)
		if status != "" && events[i].Status != status {
			continue
		}
		filtered = append(filtered, events[i])
	}
	return filtered, nil
}

func (s *EventService) GetBySlug(ctx context.Context, eventSlug string) (*model.Event, error) {
	event, err := s.eventRepo.FindBySlug(ctx, eventSlug)
	if err != nil {
		return nil, err
	}
	AnnotateEvent(event, s.now())
	return event, nil
}

type CreateEventRequest struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	StartsAt        time.Time             `json:"starts_at"`
	EndsAt          time.Time             `json:"ends_at"`
	MaxParticipants *int                  `json:"max_participants,omitempty"`
	Prize           string                `json:"prize"`
	Location        string                `json:"location"`
	Difficulty      model.EventDifficulty `json:"difficulty"`
	Tags            []string              `json:"tags,omitempty"`
}

func (s *EventService) Create(ctx context.Context, req *CreateEventRequest) (*model.Event, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required: %w", common.ErrValidation)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return nil, fmt.Errorf("event must end after it starts: %w", common.ErrValidation)
	}
	if !model.ValidEventDifficulty(req.Difficulty) {
		return nil, fmt.Errorf("invalid difficulty %q: %w", req.Difficulty, common.ErrValidation)
	}

	event := &model.Event{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Slug:            slug.Make(req.Title),
		Description:     req.Description,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		MaxParticipants: req.MaxParticipants,
		Prize:           req.Prize,
		Location:        req.Location,
		Difficulty:      req.Difficulty,
		Tags:            req.Tags,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	AnnotateEvent(event, s.now())
	return event, nil
}

type UpdateEventRequest struct {
	Title           *string                `json:"title,omitempty"`
	Description     *string                `json:"description,omitempty"`
	StartsAt        *time.Time             `json:"starts_at,omitempty"`
	EndsAt          *time.Time             `json:"ends_at,omitempty"`
	Participants    *int                   `json:"participants,omitempty"`
	MaxParticipants *int                   `json:"max_participants,omitempty"`
	Prize           *string                `json:"prize,omitempty"`
	Location        *string                `json:"location,omitempty"`
	Difficulty      *model.EventDifficulty `json:"difficulty,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
}

func (s *EventService) Update(ctx context.Context, id string, req *UpdateEventRequest) (*model.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && *req.Title != event.Title {
		event.Title = *req.Title
		event.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if req.Participants != nil {
		event.Participants = *req.Participants
	}
	if req.MaxParticipants != nil {
		event.MaxParticipants = req.MaxParticipants
	}
	if req.Prize != nil {
		event.Prize = *req.Prize
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Difficulty != nil {
		if !model.ValidEventDifficulty(*req.Difficulty) {
			return nil, fmt.Errorf("invalid difficulty %q: %w", *req.Difficulty, common.ErrValidation)
		}
		event.Difficulty = *req.Difficulty
	}
	if req.Tags != nil {
		event.Tags = req.Tags
	}

	if !event.EndsAt.After(event.StartsAt) {
		return nil, fmt.Errorf("event must end after it starts: %w", common.ErrValidation)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	AnnotateEvent(event, s.now())
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.eventRepo.Delete(ctx, id)
}
