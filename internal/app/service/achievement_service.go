package service

import (
	"context"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"
)

type AchievementService struct {
	progressRepo repository.ProgressRepository
}

func NewAchievementService(progressRepo repository.ProgressRepository) *AchievementService {
	return &AchievementService{progressRepo: progressRepo}
}

// achievementRule derives one catalog entry from a stats snapshot.
type achievementRule struct {
	id          string
	title       string
	description string
	icon        string
	evaluate    func(s *model.PlayerStats) (unlocked bool, progress, max int)
}

func categoryRule(id, title, icon, category string) achievementRule {
	return achievementRule{
		id:          id,
		title:       title,
		description: "Solve every " + category + " lab",
		icon:        icon,
		evaluate: func(s *model.PlayerStats) (bool, int, int) {
			total := s.CategoryTotals[category]
			solved := s.SolvedByCategory[category]
			return total > 0 && solved >= total, solved, total
		},
	}
}

// The catalog is fixed; unlocking is always recomputed from real solve
// history rather than stored, so it can never drift out of sync.
var achievementCatalog = []achievementRule{
	{
		id:          "first-blood",
		title:       "First Blood",
		description: "Solve your first lab",
		icon:        "droplet",
		evaluate: func(s *model.PlayerStats) (bool, int, int) {
			return s.Solved >= 1, min(s.Solved, 1), 1
		},
	},
	{
		id:          "speed-demon",
		title:       "Speed Demon",
		description: "Solve 10 labs",
		icon:        "zap",
		evaluate: func(s *model.PlayerStats) (bool, int, int) {
			return s.Solved >= 10, min(s.Solved, 10), 10
		},
	},
	categoryRule("web-warrior", "Web Warrior", "globe", "Web"),
	categoryRule("crypto-master", "Crypto Master", "key", "Crypto"),
	{
		id:          "night-owl",
		title:       "Night Owl",
		description: "Solve 5 labs between midnight and 6 AM",
		icon:        "moon",
		evaluate: func(s *model.PlayerStats) (bool, int, int) {
			return s.NightSolves >= 5, min(s.NightSolves, 5), 5
		},
	},
	{
		id:          "champion",
		title:       "Champion",
		description: "Reach the top of the leaderboard",
		icon:        "trophy",
		evaluate: func(s *model.PlayerStats) (bool, int, int) {
			return s.Rank == 1, 0, 0
		},
	},
}

// EvaluateAchievements maps a stats snapshot onto the full catalog.
func EvaluateAchievements(stats *model.PlayerStats) []model.Achievement {
	achievements := make([]model.Achievement, 0, len(achievementCatalog))
	for _, rule := range achievementCatalog {
		unlocked, progress, max := rule.evaluate(stats)
		achievements = append(achievements, model.Achievement{
			ID:          rule.id,
			Title:       rule.title,
			Description: rule.description,
			Icon:        rule.icon,
			Unlocked:    unlocked,
			Progress:    progress,
			MaxProgress: max,
		})
	}
	return achievements
}

func (s *AchievementService) ListForUser(ctx context.Context, userID string) ([]model.Achievement, error) {
	stats, err := s.progressRepo.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return EvaluateAchievements(stats), nil
}
