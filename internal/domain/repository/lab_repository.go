package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"thundercipher/internal/common"
	"thundercipher/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type LabRepository interface {
	Create(ctx context.Context, lab *model.Lab) error
	Update(ctx context.Context, lab *model.Lab) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Lab, error)
	FindBySlug(ctx context.Context, slug string) (*model.Lab, error)
	// List returns the catalog wholesale (newest first, capped). Search
	// and category/difficulty narrowing happen in memory in the service,
	// mirroring the catalog's fetch-then-filter contract.
	List(ctx context.Context, limit, offset int) ([]model.Lab, int, error)
	CompletedLabIDs(ctx context.Context, userID string) (map[string]bool, error)
	Count(ctx context.Context) (int, error)
}

type pgLabRepository struct {
	db *sql.DB
}

func NewPgLabRepository(db *sql.DB) LabRepository {
	return &pgLabRepository{db: db}
}

const labColumns = `id, title, slug, description, difficulty, category, points, content, hints, solution, created_at, updated_at`

// Hints are stored as a jsonb array so ordering survives round trips.
func marshalHints(hints []string) ([]byte, error) {
	if hints == nil {
		hints = []string{}
	}
	return json.Marshal(hints)
}

func scanLab(scan func(dest ...interface{}) error) (*model.Lab, error) {
	lab := &model.Lab{}
	var hintsRaw []byte
	err := scan(
		&lab.ID, &lab.Title, &lab.Slug, &lab.Description, &lab.Difficulty, &lab.Category,
		&lab.Points, &lab.Content, &hintsRaw, &lab.Solution, &lab.CreatedAt, &lab.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(hintsRaw) > 0 {
		if err := json.Unmarshal(hintsRaw, &lab.Hints); err != nil {
			return nil, fmt.Errorf("decode hints: %w", err)
		}
	}
	return lab, nil
}

func (r *pgLabRepository) Create(ctx context.Context, lab *model.Lab) error {
	hints, err := marshalHints(lab.Hints)
	if err != nil {
		return fmt.Errorf("pgLabRepository.Create hints: %w", err)
	}
	query := `INSERT INTO labs (id, title, slug, description, difficulty, category, points, content, hints, solution)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query, lab.ID, lab.Title, lab.Slug, lab.Description, lab.Difficulty,
		lab.Category, lab.Points, lab.Content, hints, lab.Solution)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("lab with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgLabRepository.Create: %w", err)
	}
	return nil
}

func (r *pgLabRepository) Update(ctx context.Context, lab *model.Lab) error {
	hints, err := marshalHints(lab.Hints)
	if err != nil {
		return fmt.Errorf("pgLabRepository.Update hints: %w", err)
	}
	query := `UPDATE labs SET
                title = $1, slug = $2, description = $3, difficulty = $4, category = $5,
                points = $6, content = $7, hints = $8, solution = $9, updated_at = CURRENT_TIMESTAMP
              WHERE id = $10`
	res, err := r.db.ExecContext(ctx, query, lab.Title, lab.Slug, lab.Description, lab.Difficulty,
		lab.Category, lab.Points, lab.Content, hints, lab.Solution, lab.ID)
	if err != nil {
		return fmt.Errorf("pgLabRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgLabRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM labs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgLabRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgLabRepository) FindByID(ctx context.Context, id string) (*model.Lab, error) {
	return r.findBy(ctx, "id", id)
}

func (r *pgLabRepository) FindBySlug(ctx context.Context, slug string) (*model.Lab, error) {
	return r.findBy(ctx, "slug", slug)
}

func (r *pgLabRepository) findBy(ctx context.Context, column, value string) (*model.Lab, error) {
	query := `SELECT ` + labColumns + ` FROM labs WHERE ` + column + ` = $1`
	row := r.db.QueryRowContext(ctx, query, value)
	lab, err := scanLab(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgLabRepository.findBy %s: %w", column, err)
	}
	return lab, nil
}

func (r *pgLabRepository) List(ctx context.Context, limit, offset int) ([]model.Lab, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgLabRepository.List count: %w", err)
	}

	listQuery := `SELECT ` + labColumns + ` FROM labs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, listQuery, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgLabRepository.List query: %w", err)
	}
	defer rows.Close()

	labs := []model.Lab{}
	for rows.Next() {
		lab, err := scanLab(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("pgLabRepository.List scan: %w", err)
		}
		labs = append(labs, *lab)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgLabRepository.List rows: %w", err)
	}
	return labs, total, nil
}

func (r *pgLabRepository) CompletedLabIDs(ctx context.Context, userID string) (map[string]bool, error) {
	query := `SELECT lab_id FROM user_lab_progress WHERE user_id = $1 AND completed`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgLabRepository.CompletedLabIDs: %w", err)
	}
	defer rows.Close()

	completed := map[string]bool{}
	for rows.Next() {
		var labID string
		if err := rows.Scan(&labID); err != nil {
			return nil, fmt.Errorf("pgLabRepository.CompletedLabIDs scan: %w", err)
		}
		completed[labID] = true
	}
	return completed, rows.Err()
}

func (r *pgLabRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgLabRepository.Count: %w", err)
	}
	return total, nil
}
