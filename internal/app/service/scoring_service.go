package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"
	"thundercipher/internal/platform/config"

	"github.com/google/uuid"
)

// RankSignaler asks the rank worker to refresh the denormalized rank
// column. Rank rewrites never run on the submission path itself.
type RankSignaler interface {
	Enqueue(ctx context.Context) error
}

// EventPublisher fans solve events out to live subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// CacheInvalidator drops stale leaderboard pages after a scoring event.
type CacheInvalidator interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type ScoringService struct {
	labRepo      repository.LabRepository
	progressRepo repository.ProgressRepository
	profileRepo  repository.ProfileRepository
	logRepo      repository.SubmissionLogRepository
	rankQueue    RankSignaler
	publisher    EventPublisher
	cache        CacheInvalidator
}

func NewScoringService(
	labRepo repository.LabRepository,
	progressRepo repository.ProgressRepository,
	profileRepo repository.ProfileRepository,
	logRepo repository.SubmissionLogRepository,
	rankQueue RankSignaler,
	publisher EventPublisher,
	cache CacheInvalidator,
) *ScoringService {
	return &ScoringService{
		labRepo:      labRepo,
		progressRepo: progressRepo,
		profileRepo:  profileRepo,
		logRepo:      logRepo,
		rankQueue:    rankQueue,
		publisher:    publisher,
		cache:        cache,
	}
}

type SubmitFlagRequest struct {
	Flag string `json:"flag"`
}

type SubmitFlagResult struct {
	Correct       bool  `json:"correct"`
	AlreadySolved bool  `json:"already_solved,omitempty"`
	PointsAwarded int   `json:"points_awarded,omitempty"`
	TotalPoints   int64 `json:"total_points,omitempty"`
}

// SubmitFlag compares a submitted flag against the stored solution and,
// on first correct submission, awards points in one transaction. The
// completion upsert and the point increment commit or roll back
// together, so displayed and persisted state cannot diverge.
func (s *ScoringService) SubmitFlag(ctx context.Context, userID, labSlug, flag, ipAddress string) (*SubmitFlagResult, error) {
	lab, err := s.labRepo.FindBySlug(ctx, labSlug)
	if err != nil {
		return nil, err
	}

	flag = strings.TrimSpace(flag)
	if flag == "" || len(flag) > config.AppConfig.FlagMaxSize {
		return nil, fmt.Errorf("flag is empty or too long: %w", common.ErrBadRequest)
	}

	correct := lab.Solution != nil && flag == *lab.Solution

	// Every attempt is audited, correct or not. A logging failure must
	// not block the submission itself.
	logEntry := &model.FlagSubmission{
		ID:            uuid.NewString(),
		UserID:        userID,
		LabID:         lab.ID,
		SubmittedFlag: flag,
		Correct:       correct,
		IPAddress:     ipAddress,
	}
	if err := s.logRepo.Record(ctx, logEntry); err != nil {
		log.Printf("ERROR: failed to record flag submission for user %s lab %s: %v", userID, lab.ID, err)
	}

	if !correct {
		return &SubmitFlagResult{Correct: false}, nil
	}

	award, err := s.progressRepo.AwardCompletion(ctx, userID, lab)
	if err != nil {
		return nil, fmt.Errorf("failed to award completion: %w", err)
	}
	if !award.Awarded {
		return &SubmitFlagResult{Correct: true, AlreadySolved: true}, nil
	}

	s.afterAward(ctx, userID, lab, award)

	return &SubmitFlagResult{
		Correct:       true,
		PointsAwarded: lab.Points,
		TotalPoints:   award.NewPoints,
	}, nil
}

// afterAward performs the best-effort fan-out once the award is
// durable: rank refresh signal, live feed, per-user progress channel,
// leaderboard cache drop. Failures are logged, never surfaced. The
// fan-out is detached from the request's cancelation so a client
// hanging up right after the commit cannot skip it.
func (s *ScoringService) afterAward(ctx context.Context, userID string, lab *model.Lab, award *model.AwardResult) {
	ctx = context.WithoutCancel(ctx)
	if err := s.rankQueue.Enqueue(ctx); err != nil {
		log.Printf("ERROR: failed to signal rank recompute: %v", err)
	}
	if err := s.cache.DeleteByPrefix(ctx, config.AppConfig.LeaderboardCachePrefix); err != nil {
		log.Printf("ERROR: failed to invalidate leaderboard cache: %v", err)
	}

	username := ""
	if profile, err := s.profileRepo.FindByID(ctx, userID); err != nil {
		log.Printf("ERROR: failed to load profile for solve event: %v", err)
	} else {
		username = profile.Username
	}

	event := model.SolveEvent{
		UserID:   userID,
		Username: username,
		LabID:    lab.ID,
		LabTitle: lab.Title,
		Points:   lab.Points,
		SolvedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: failed to marshal solve event: %v", err)
		return
	}
	if err := s.publisher.Publish(ctx, config.AppConfig.FeedChannel, payload); err != nil {
		log.Printf("ERROR: failed to publish solve event: %v", err)
	}
	if err := s.publisher.Publish(ctx, config.AppConfig.ProgressChannelPrefix+userID, payload); err != nil {
		log.Printf("ERROR: failed to publish progress event: %v", err)
	}
}
