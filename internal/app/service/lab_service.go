package service

import (
	"context"
	"fmt"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// catalogFetchCap bounds the wholesale catalog fetch. The catalog is
// filtered in memory, so the full set must fit comfortably.
const catalogFetchCap = 1000

type LabService struct {
	labRepo repository.LabRepository
}

func NewLabService(labRepo repository.LabRepository) *LabService {
	return &LabService{labRepo: labRepo}
}

type ListLabsRequest struct {
	SearchTerm string
	Category   string
	Difficulty string
	UserID     string // empty for anonymous callers
	Role       string
}

type CatalogResponse struct {
	Labs  []model.Lab `json:"labs"`
	Total int         `json:"total"`
}

func (s *LabService) List(ctx context.Context, req ListLabsRequest) (*CatalogResponse, error) {
	labs, _, err := s.labRepo.List(ctx, catalogFetchCap, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list labs: %w", err)
	}

	labs = FilterLabs(labs, req.SearchTerm, req.Category, req.Difficulty)

	var completed map[string]bool
	if req.UserID != "" {
		completed, err = s.labRepo.CompletedLabIDs(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load completions: %w", err)
		}
	}

	for i := range labs {
		sanitizeLab(&labs[i], req.Role)
		if completed != nil {
			done := completed[labs[i].ID]
			labs[i].Completed = &done
		}
	}
	return &CatalogResponse{Labs: labs, Total: len(labs)}, nil
}

func (s *LabService) GetBySlug(ctx context.Context, labSlug, role string) (*model.Lab, error) {
	lab, err := s.labRepo.FindBySlug(ctx, labSlug)
	if err != nil {
		return nil, err
	}
	sanitizeLab(lab, role)
	return lab, nil
}

type CreateLabRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Category    string   `json:"category"`
	Points      int      `json:"points"`
	Content     *string  `json:"content"`
	Hints       []string `json:"hints"`
	Solution    *string  `json:"solution"`
}

func (s *LabService) Create(ctx context.Context, req CreateLabRequest) (*model.Lab, error) {
	if req.Title == "" || req.Category == "" {
		return nil, fmt.Errorf("title and category are required: %w", common.ErrValidation)
	}
	difficulty := model.LabDifficulty(req.Difficulty)
	if !model.ValidDifficulty(difficulty) {
		return nil, fmt.Errorf("unknown difficulty %q: %w", req.Difficulty, common.ErrValidation)
	}
	points := req.Points
	if points <= 0 {
		points = model.DefaultReward(difficulty)
	}

	lab := &model.Lab{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Difficulty:  difficulty,
		Category:    req.Category,
		Points:      points,
		Content:     req.Content,
		Hints:       req.Hints,
		Solution:    req.Solution,
	}
	if err := s.labRepo.Create(ctx, lab); err != nil {
		return nil, fmt.Errorf("failed to create lab: %w", err)
	}
	return lab, nil
}

func (s *LabService) Update(ctx context.Context, id string, req CreateLabRequest) (*model.Lab, error) {
	lab, err := s.labRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		lab.Title = req.Title
		lab.Slug = slug.Make(req.Title)
	}
	if req.Description != "" {
		lab.Description = req.Description
	}
	if req.Difficulty != "" {
		difficulty := model.LabDifficulty(req.Difficulty)
		if !model.ValidDifficulty(difficulty) {
			return nil, fmt.Errorf("unknown difficulty %q: %w", req.Difficulty, common.ErrValidation)
		}
		lab.Difficulty = difficulty
	}
	if req.Category != "" {
		lab.Category = req.Category
	}
	if req.Points > 0 {
		lab.Points = req.Points
	}
	if req.Content != nil {
		lab.Content = req.Content
	}
	if req.Hints != nil {
		lab.Hints = req.Hints
	}
	if req.Solution != nil {
		lab.Solution = req.Solution
	}
	if err := s.labRepo.Update(ctx, lab); err != nil {
		return nil, fmt.Errorf("failed to update lab: %w", err)
	}
	return lab, nil
}

func (s *LabService) Delete(ctx context.Context, id string) error {
	return s.labRepo.Delete(ctx, id)
}

// Solutions never leave the server for non-admin callers.
func sanitizeLab(lab *model.Lab, role string) {
	if role != model.RoleAdmin {
		lab.Solution = nil
	}
}
