package worker

import (
	"testing"
	"thundercipher/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRanksOrdersByPointsDesc(t *testing.T) {
	updates := ComputeRanks([]model.Profile{
		{ID: "low", Points: 100},
		{ID: "high", Points: 900},
		{ID: "mid", Points: 500},
	})

	require.Len(t, updates, 3)
	assert.Equal(t, model.RankUpdate{ProfileID: "high", Rank: 1}, updates[0])
	assert.Equal(t, model.RankUpdate{ProfileID: "mid", Rank: 2}, updates[1])
	assert.Equal(t, model.RankUpdate{ProfileID: "low", Rank: 3}, updates[2])
}

func TestComputeRanksTiesGetDistinctRanks(t *testing.T) {
	// Equal points still yield a contiguous 1..N permutation; the input
	// (created_at) order decides who ranks ahead, same as the
	// ORDER BY points DESC, created_at ASC read path.
	updates := ComputeRanks([]model.Profile{
		{ID: "a", Points: 500},
		{ID: "b", Points: 500},
		{ID: "c", Points: 100},
	})

	require.Len(t, updates, 3)
	assert.Equal(t, model.RankUpdate{ProfileID: "a", Rank: 1}, updates[0])
	assert.Equal(t, model.RankUpdate{ProfileID: "b", Rank: 2}, updates[1])
	assert.Equal(t, model.RankUpdate{ProfileID: "c", Rank: 3}, updates[2])
}

func TestComputeRanksTiesKeepInputOrder(t *testing.T) {
	// Callers pass profiles in account-creation order; the stable sort
	// must not reorder equals, so reruns produce identical output.
	updates := ComputeRanks([]model.Profile{
		{ID: "older", Points: 500},
		{ID: "newer", Points: 500},
	})

	require.Len(t, updates, 2)
	assert.Equal(t, "older", updates[0].ProfileID)
	assert.Equal(t, "newer", updates[1].ProfileID)
}

func TestComputeRanksDoesNotMutateInput(t *testing.T) {
	profiles := []model.Profile{
		{ID: "low", Points: 100},
		{ID: "high", Points: 900},
	}
	ComputeRanks(profiles)
	assert.Equal(t, "low", profiles[0].ID)
	assert.Equal(t, "high", profiles[1].ID)
}

func TestComputeRanksEmpty(t *testing.T) {
	assert.Empty(t, ComputeRanks(nil))
}
