package service

import (
	"context"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"
)

type AdminService struct {
	userRepo     repository.UserRepository
	labRepo      repository.LabRepository
	eventRepo    repository.EventRepository
	progressRepo repository.ProgressRepository
	logRepo      repository.SubmissionLogRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	labRepo repository.LabRepository,
	eventRepo repository.EventRepository,
	progressRepo repository.ProgressRepository,
	logRepo repository.SubmissionLogRepository,
) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		labRepo:      labRepo,
		eventRepo:    eventRepo,
		progressRepo: progressRepo,
		logRepo:      logRepo,
	}
}

type PlatformStats struct {
	Users  int `json:"users"`
	Labs   int `json:"labs"`
	Events int `json:"events"`
	Solves int `json:"solves"`
}

// Stats aggregates the dashboard counters from live tables.
func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	labs, err := s.labRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	solves, err := s.progressRepo.CountSolves(ctx)
	if err != nil {
		return nil, err
	}
	return &PlatformStats{Users: users, Labs: labs, Events: events, Solves: solves}, nil
}

// FlagLogs exposes the submission audit trail with optional narrowing
// by user, lab and correctness.
func (s *AdminService) FlagLogs(ctx context.Context, filter repository.SubmissionLogFilter) ([]model.FlagSubmission, error) {
	return s.logRepo.List(ctx, filter)
}
