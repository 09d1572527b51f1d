package repository

import (
	"context"
	"database/sql"
	"fmt"
	"thundercipher/internal/domain/model"

	"github.com/google/uuid"
)

type ProgressRepository interface {
	// AwardCompletion applies the durable side effects of a correct flag
	// in a single transaction: completion upsert, point increment,
	// ledger row. The unique (user_id, lab_id) constraint admits exactly
	// one winner, so concurrent submissions cannot double-award; if the
	// lab was already solved nothing else is written.
	AwardCompletion(ctx context.Context, userID string, lab *model.Lab) (*model.AwardResult, error)
	ListByUser(ctx context.Context, userID string) ([]model.Progress, error)
	RecentSolves(ctx context.Context, limit int) ([]model.SolveEvent, error)
	Stats(ctx context.Context, userID string) (*model.PlayerStats, error)
	CountSolves(ctx context.Context) (int, error)
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

func (r *pgProgressRepository) AwardCompletion(ctx context.Context, userID string, lab *model.Lab) (*model.AwardResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.AwardCompletion begin: %w", err)
	}
	defer tx.Rollback()

	upsert := `INSERT INTO user_lab_progress (id, user_id, lab_id, completed, completed_at)
	           VALUES ($1, $2, $3, TRUE, CURRENT_TIMESTAMP)
	           ON CONFLICT (user_id, lab_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, upsert, uuid.NewString(), userID, lab.ID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.AwardCompletion upsert: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.AwardCompletion rows: %w", err)
	}
	if inserted == 0 {
		// Already solved: no second award. Nothing was written.
		return &model.AwardResult{Awarded: false}, nil
	}

	var newPoints int64
	increment := `UPDATE profiles SET points = points + $1, updated_at = CURRENT_TIMESTAMP
	              WHERE id = $2 RETURNING points`
	if err := tx.QueryRowContext(ctx, increment, lab.Points, userID).Scan(&newPoints); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.AwardCompletion increment: %w", err)
	}

	ledger := `INSERT INTO progress (id, user_id, challenge_id, progress) VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, ledger, uuid.NewString(), userID, lab.ID, lab.Points); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.AwardCompletion ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.AwardCompletion commit: %w", err)
	}
	return &model.AwardResult{Awarded: true, NewPoints: newPoints}, nil
}

func (r *pgProgressRepository) ListByUser(ctx context.Context, userID string) ([]model.Progress, error) {
	query := `SELECT id, user_id, challenge_id, progress, updated_at
	          FROM progress WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	items := []model.Progress{}
	for rows.Next() {
		var p model.Progress
		if err := rows.Scan(&p.ID, &p.UserID, &p.ChallengeID, &p.Progress, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.ListByUser scan: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *pgProgressRepository) RecentSolves(ctx context.Context, limit int) ([]model.SolveEvent, error) {
	query := `SELECT ulp.user_id, p.username, ulp.lab_id, l.title, l.points, ulp.completed_at
	          FROM user_lab_progress ulp
	          JOIN profiles p ON p.id = ulp.user_id
	          JOIN labs l ON l.id = ulp.lab_id
	          WHERE ulp.completed
	          ORDER BY ulp.completed_at DESC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.RecentSolves: %w", err)
	}
	defer rows.Close()

	events := []model.SolveEvent{}
	for rows.Next() {
		var e model.SolveEvent
		if err := rows.Scan(&e.UserID, &e.Username, &e.LabID, &e.LabTitle, &e.Points, &e.SolvedAt); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.RecentSolves scan: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *pgProgressRepository) Stats(ctx context.Context, userID string) (*model.PlayerStats, error) {
	stats := &model.PlayerStats{
		UserID:           userID,
		SolvedByCategory: map[string]int{},
		CategoryTotals:   map[string]int{},
	}

	profileQuery := `SELECT points, rank FROM profiles WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, profileQuery, userID).Scan(&stats.Points, &stats.Rank); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.Stats profile: %w", err)
	}

	solvedQuery := `SELECT l.category, COUNT(*),
	                       COUNT(*) FILTER (WHERE EXTRACT(HOUR FROM ulp.completed_at) < 6)
	                FROM user_lab_progress ulp
	                JOIN labs l ON l.id = ulp.lab_id
	                WHERE ulp.user_id = $1 AND ulp.completed
	                GROUP BY l.category`
	rows, err := r.db.QueryContext(ctx, solvedQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.Stats solved: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count, night int
		if err := rows.Scan(&category, &count, &night); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.Stats scan: %w", err)
		}
		stats.SolvedByCategory[category] = count
		stats.Solved += count
		stats.NightSolves += night
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProgressRepository.Stats rows: %w", err)
	}

	totalsQuery := `SELECT category, COUNT(*) FROM labs GROUP BY category`
	totalRows, err := r.db.QueryContext(ctx, totalsQuery)
	if err != nil {
		return nil, fmt.Errorf("pgProgressRepository.Stats totals: %w", err)
	}
	defer totalRows.Close()
	for totalRows.Next() {
		var category string
		var count int
		if err := totalRows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("pgProgressRepository.Stats totals scan: %w", err)
		}
		stats.CategoryTotals[category] = count
	}
	return stats, totalRows.Err()
}

func (r *pgProgressRepository) CountSolves(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_lab_progress WHERE completed`).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgProgressRepository.CountSolves: %w", err)
	}
	return total, nil
}
