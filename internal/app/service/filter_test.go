package service

import (
	"testing"
	"thundercipher/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() []model.Lab {
	return []model.Lab{
		{ID: "1", Title: "SQL Injection Basics", Description: "Classic login bypass", Category: "Web", Difficulty: model.DifficultyEasy},
		{ID: "2", Title: "RSA Padding Oracle", Description: "Break weak crypto padding", Category: "Crypto", Difficulty: model.DifficultyHard},
		{ID: "3", Title: "Stored XSS Hunt", Description: "Find the sink in a comment form", Category: "Web", Difficulty: model.DifficultyMedium},
	}
}

func TestFilterLabsSearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := FilterLabs(catalogFixture(), "sql", "", "")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	// Matches description text too.
	got = FilterLabs(catalogFixture(), "PADDING", "", "")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestFilterLabsWildcardMatchesEverything(t *testing.T) {
	for _, wildcard := range []string{"", "all", "All", "ALL"} {
		got := FilterLabs(catalogFixture(), "", wildcard, wildcard)
		assert.Len(t, got, 3, "wildcard %q", wildcard)
	}
}

func TestFilterLabsCategoryIsExactMatch(t *testing.T) {
	got := FilterLabs(catalogFixture(), "", "Web", "")
	require.Len(t, got, 2)

	// Category matching is case sensitive, unlike search.
	got = FilterLabs(catalogFixture(), "", "web", "")
	assert.Empty(t, got)
}

func TestFilterLabsDifficultySelectsSubset(t *testing.T) {
	items := []model.Lab{
		{ID: "a", Title: "Alpha", Difficulty: model.DifficultyEasy, Category: "Web"},
		{ID: "b", Title: "Beta", Difficulty: model.DifficultyHard, Category: "Web"},
	}

	got := FilterLabs(items, "", "", "Easy")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	got = FilterLabs(items, "", "", "Hard")
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestFilterLabsCombinesAllCriteria(t *testing.T) {
	got := FilterLabs(catalogFixture(), "xss", "Web", "Medium")
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	got = FilterLabs(catalogFixture(), "xss", "Crypto", "Medium")
	assert.Empty(t, got)
}

func TestFilterLabsPreservesInputOrder(t *testing.T) {
	got := FilterLabs(catalogFixture(), "", "Web", "")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestFilterLabsEmptyInput(t *testing.T) {
	assert.Empty(t, FilterLabs(nil, "anything", "", ""))
}
