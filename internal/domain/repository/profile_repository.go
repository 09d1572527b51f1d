package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/model"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	// Leaderboard ranks on read with a window function; the stored rank
	// column is not consulted, so standings are always current.
	Leaderboard(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, int, error)
	MyStanding(ctx context.Context, userID string) (*model.LeaderboardEntry, error)
	// ListForRanking returns every profile in stable stored order
	// (created_at ascending) for the worker's batch rank rewrite.
	ListForRanking(ctx context.Context) ([]model.Profile, error)
	UpdateRanks(ctx context.Context, updates []model.RankUpdate) error
}

type pgProfileRepository struct {
	db *sql.DB
}

func NewPgProfileRepository(db *sql.DB) ProfileRepository {
	return &pgProfileRepository{db: db}
}

func (r *pgProfileRepository) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	query := `SELECT id, username, points, rank, created_at, updated_at FROM profiles WHERE id = $1`
	p := &model.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Username, &p.Points, &p.Rank, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProfileRepository.FindByID: %w", err)
	}
	return p, nil
}

const leaderboardQuery = `
    SELECT p.id, p.username, p.points,
           RANK() OVER (ORDER BY p.points DESC, p.created_at ASC) AS rank,
           COUNT(ulp.id) AS solved
    FROM profiles p
    LEFT JOIN user_lab_progress ulp ON ulp.user_id = p.id AND ulp.completed
    GROUP BY p.id, p.username, p.points, p.created_at
    ORDER BY rank ASC`

func (r *pgProfileRepository) Leaderboard(ctx context.Context, limit, offset int) ([]model.LeaderboardEntry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProfileRepository.Leaderboard count: %w", err)
	}

	query := leaderboardQuery + ` LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProfileRepository.Leaderboard query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Points, &e.Rank, &e.Solved); err != nil {
			return nil, 0, fmt.Errorf("pgProfileRepository.Leaderboard scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgProfileRepository.Leaderboard rows: %w", err)
	}
	return entries, total, nil
}

func (r *pgProfileRepository) MyStanding(ctx context.Context, userID string) (*model.LeaderboardEntry, error) {
	query := `SELECT id, username, points, rank, solved FROM (` + leaderboardQuery + `) ranked WHERE id = $1`
	e := &model.LeaderboardEntry{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&e.UserID, &e.Username, &e.Points, &e.Rank, &e.Solved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProfileRepository.MyStanding: %w", err)
	}
	return e, nil
}

func (r *pgProfileRepository) ListForRanking(ctx context.Context) ([]model.Profile, error) {
	query := `SELECT id, username, points, rank, created_at, updated_at FROM profiles ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProfileRepository.ListForRanking: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Points, &p.Rank, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgProfileRepository.ListForRanking scan: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProfileRepository.ListForRanking rows: %w", err)
	}
	return profiles, nil
}

func (r *pgProfileRepository) UpdateRanks(ctx context.Context, updates []model.RankUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgProfileRepository.UpdateRanks begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE profiles SET rank = $1 WHERE id = $2 AND rank <> $1`)
	if err != nil {
		return fmt.Errorf("pgProfileRepository.UpdateRanks prepare: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.Rank, u.ProfileID); err != nil {
			return fmt.Errorf("pgProfileRepository.UpdateRanks exec: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgProfileRepository.UpdateRanks commit: %w", err)
	}
	return nil
}
