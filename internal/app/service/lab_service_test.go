package service

import (
	"context"
	"testing"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLabFixture() (*LabService, *fakeLabRepo) {
	repo := newFakeLabRepo()
	repo.add(model.Lab{
		ID: "lab-1", Title: "SQL Injection Basics", Slug: "sql-injection-basics",
		Category: "Web", Difficulty: model.DifficultyEasy, Points: 100,
		Solution: strPtr("FLAG{union_select}"),
	})
	repo.add(model.Lab{
		ID: "lab-2", Title: "RSA Padding Oracle", Slug: "rsa-padding-oracle",
		Category: "Crypto", Difficulty: model.DifficultyHard, Points: 500,
		Solution: strPtr("FLAG{cbc}"),
	})
	return NewLabService(repo), repo
}

func TestCatalogHidesSolutions(t *testing.T) {
	svc, _ := newLabFixture()

	resp, err := svc.List(context.Background(), ListLabsRequest{Role: model.RoleUser})
	require.NoError(t, err)
	require.Len(t, resp.Labs, 2)
	for _, lab := range resp.Labs {
		assert.Nil(t, lab.Solution, lab.Slug)
	}

	adminResp, err := svc.List(context.Background(), ListLabsRequest{Role: model.RoleAdmin})
	require.NoError(t, err)
	for _, lab := range adminResp.Labs {
		assert.NotNil(t, lab.Solution, lab.Slug)
	}
}

func TestCatalogMarksCompletions(t *testing.T) {
	svc, repo := newLabFixture()
	repo.completed["user-1"] = map[string]bool{"lab-1": true}

	resp, err := svc.List(context.Background(), ListLabsRequest{UserID: "user-1"})
	require.NoError(t, err)
	for _, lab := range resp.Labs {
		require.NotNil(t, lab.Completed, lab.Slug)
		assert.Equal(t, lab.ID == "lab-1", *lab.Completed, lab.Slug)
	}
}

func TestCatalogAnonymousHasNoMarkers(t *testing.T) {
	svc, _ := newLabFixture()

	resp, err := svc.List(context.Background(), ListLabsRequest{})
	require.NoError(t, err)
	for _, lab := range resp.Labs {
		assert.Nil(t, lab.Completed, lab.Slug)
	}
}

func TestGetBySlugSanitizes(t *testing.T) {
	svc, _ := newLabFixture()

	lab, err := svc.GetBySlug(context.Background(), "sql-injection-basics", model.RoleUser)
	require.NoError(t, err)
	assert.Nil(t, lab.Solution)

	lab, err = svc.GetBySlug(context.Background(), "sql-injection-basics", model.RoleAdmin)
	require.NoError(t, err)
	assert.NotNil(t, lab.Solution)
}

func TestCreateLabDefaultsRewardByDifficulty(t *testing.T) {
	svc, _ := newLabFixture()

	lab, err := svc.Create(context.Background(), CreateLabRequest{
		Title: "Buffer Overflow 101", Category: "Pwn", Difficulty: "Hard",
	})
	require.NoError(t, err)
	assert.Equal(t, 500, lab.Points)
	assert.Equal(t, "buffer-overflow-101", lab.Slug)
}

func TestCreateLabValidation(t *testing.T) {
	svc, _ := newLabFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateLabRequest{Title: "", Category: "Web", Difficulty: "Easy"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Create(ctx, CreateLabRequest{Title: "X", Category: "Web", Difficulty: "Nightmare"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateLabReslugOnTitleChange(t *testing.T) {
	svc, _ := newLabFixture()

	lab, err := svc.Update(context.Background(), "lab-1", CreateLabRequest{Title: "SQLi Revisited"})
	require.NoError(t, err)
	assert.Equal(t, "sqli-revisited", lab.Slug)
	// Untouched fields survive a partial update.
	assert.Equal(t, "Web", lab.Category)
	assert.Equal(t, 100, lab.Points)
}

func TestDeleteMissingLab(t *testing.T) {
	svc, _ := newLabFixture()
	assert.ErrorIs(t, svc.Delete(context.Background(), "ghost"), common.ErrNotFound)
}
