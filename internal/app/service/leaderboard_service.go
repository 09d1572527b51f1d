package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"
	"thundercipher/internal/platform/config"
)

const (
	leaderboardDefaultPageSize = 25
	leaderboardMaxPageSize     = 100
)

// LeaderboardCache is the page cache in front of the ranked query.
// Entries are short-lived and invalidated by prefix on every award.
type LeaderboardCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type LeaderboardService struct {
	profileRepo repository.ProfileRepository
	cache       LeaderboardCache
}

func NewLeaderboardService(profileRepo repository.ProfileRepository, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{profileRepo: profileRepo, cache: cache}
}

type LeaderboardPage struct {
	Entries []model.LeaderboardEntry `json:"entries"`
	Total   int                      `json:"total"`
	Page    int                      `json:"page"`
	Size    int                      `json:"size"`
}

// List returns one page of standings, cache-aside. Rank comes from the
// window function at query time, never from the stored rank column.
func (s *LeaderboardService) List(ctx context.Context, page, size int) (*LeaderboardPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = leaderboardDefaultPageSize
	}
	if size > leaderboardMaxPageSize {
		size = leaderboardMaxPageSize
	}

	key := fmt.Sprintf("%sp%d:s%d", config.AppConfig.LeaderboardCachePrefix, page, size)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("WARN: leaderboard cache read failed: %v", err)
	} else if ok {
		cached := &LeaderboardPage{}
		if err := json.Unmarshal(data, cached); err == nil {
			return cached, nil
		}
		log.Printf("WARN: discarding malformed leaderboard cache entry %s", key)
	}

	entries, total, err := s.profileRepo.Leaderboard(ctx, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	result := &LeaderboardPage{Entries: entries, Total: total, Page: page, Size: size}

	if data, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, data, config.AppConfig.LeaderboardCacheTTL); err != nil {
			log.Printf("WARN: leaderboard cache write failed: %v", err)
		}
	}
	return result, nil
}

// MyStanding bypasses the cache so a player always sees their own
// up-to-date position after a solve.
func (s *LeaderboardService) MyStanding(ctx context.Context, userID string) (*model.LeaderboardEntry, error) {
	return s.profileRepo.MyStanding(ctx, userID)
}
