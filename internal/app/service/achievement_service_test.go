package service

import (
	"testing"
	"thundercipher/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findAchievement(t *testing.T, list []model.Achievement, id string) model.Achievement {
	t.Helper()
	for _, a := range list {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("achievement %s not in catalog", id)
	return model.Achievement{}
}

func TestAchievementsFreshPlayer(t *testing.T) {
	got := EvaluateAchievements(&model.PlayerStats{
		SolvedByCategory: map[string]int{},
		CategoryTotals:   map[string]int{"Web": 5, "Crypto": 3},
	})
	require.Len(t, got, 6)
	for _, a := range got {
		assert.False(t, a.Unlocked, a.ID)
	}
}

func TestAchievementFirstBlood(t *testing.T) {
	got := EvaluateAchievements(&model.PlayerStats{Solved: 1})
	a := findAchievement(t, got, "first-blood")
	assert.True(t, a.Unlocked)
	assert.Equal(t, 1, a.Progress)
	assert.Equal(t, 1, a.MaxProgress)
}

func TestAchievementSpeedDemonProgress(t *testing.T) {
	got := EvaluateAchievements(&model.PlayerStats{Solved: 4})
	a := findAchievement(t, got, "speed-demon")
	assert.False(t, a.Unlocked)
	assert.Equal(t, 4, a.Progress)
	assert.Equal(t, 10, a.MaxProgress)

	got = EvaluateAchievements(&model.PlayerStats{Solved: 12})
	a = findAchievement(t, got, "speed-demon")
	assert.True(t, a.Unlocked)
	// Progress is clamped to the target.
	assert.Equal(t, 10, a.Progress)
}

func TestAchievementCategoryCompletion(t *testing.T) {
	stats := &model.PlayerStats{
		Solved:           5,
		SolvedByCategory: map[string]int{"Web": 5, "Crypto": 1},
		CategoryTotals:   map[string]int{"Web": 5, "Crypto": 3},
	}
	got := EvaluateAchievements(stats)

	web := findAchievement(t, got, "web-warrior")
	assert.True(t, web.Unlocked)
	assert.Equal(t, 5, web.Progress)

	crypto := findAchievement(t, got, "crypto-master")
	assert.False(t, crypto.Unlocked)
	assert.Equal(t, 1, crypto.Progress)
	assert.Equal(t, 3, crypto.MaxProgress)
}

func TestAchievementCategoryWithNoLabsStaysLocked(t *testing.T) {
	// An empty category cannot be "completed" trivially.
	got := EvaluateAchievements(&model.PlayerStats{
		SolvedByCategory: map[string]int{},
		CategoryTotals:   map[string]int{},
	})
	a := findAchievement(t, got, "web-warrior")
	assert.False(t, a.Unlocked)
}

func TestAchievementNightOwl(t *testing.T) {
	got := EvaluateAchievements(&model.PlayerStats{NightSolves: 5})
	a := findAchievement(t, got, "night-owl")
	assert.True(t, a.Unlocked)
}

func TestAchievementChampion(t *testing.T) {
	got := EvaluateAchievements(&model.PlayerStats{Rank: 1})
	assert.True(t, findAchievement(t, got, "champion").Unlocked)

	got = EvaluateAchievements(&model.PlayerStats{Rank: 2})
	assert.False(t, findAchievement(t, got, "champion").Unlocked)

	// Rank zero means unranked, not first place.
	got = EvaluateAchievements(&model.PlayerStats{Rank: 0})
	assert.False(t, findAchievement(t, got, "champion").Unlocked)
}
