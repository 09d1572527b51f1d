package service

import (
	"context"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"
)

const feedDefaultLimit = 20

type ProgressService struct {
	progressRepo repository.ProgressRepository
}

func NewProgressService(progressRepo repository.ProgressRepository) *ProgressService {
	return &ProgressService{progressRepo: progressRepo}
}

// ListMine returns the caller's point ledger, newest first.
func (s *ProgressService) ListMine(ctx context.Context, userID string) ([]model.Progress, error) {
	return s.progressRepo.ListByUser(ctx, userID)
}

func (s *ProgressService) MyStats(ctx context.Context, userID string) (*model.PlayerStats, error) {
	return s.progressRepo.Stats(ctx, userID)
}

// RecentFeed returns the latest solves across all players, the initial
// snapshot a live feed subscriber sees before streamed events arrive.
func (s *ProgressService) RecentFeed(ctx context.Context, limit int) ([]model.SolveEvent, error) {
	if limit < 1 || limit > 100 {
		limit = feedDefaultLimit
	}
	return s.progressRepo.RecentSolves(ctx, limit)
}
