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

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Event, error)
	FindBySlug(ctx context.Context, slug string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Count(ctx context.Context) (int, error)
}

type pgEventRepository struct {
	db *sql.DB
}

func NewPgEventRepository(db *sql.DB) EventRepository {
	return &pgEventRepository{db: db}
}

const eventColumns = `id, title, slug, description, starts_at, ends_at, participants, max_participants, prize, location, difficulty, tags, created_at, updated_at`

func scanEvent(scan func(dest ...interface{}) error) (*model.Event, error) {
	e := &model.Event{}
	var tagsRaw []byte
	err := scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.StartsAt, &e.EndsAt, &e.Participants,
		&e.MaxParticipants, &e.Prize, &e.Location, &e.Difficulty, &tagsRaw, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &e.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return e, nil
}

func (r *pgEventRepository) Create(ctx context.Context, event *model.Event) error {
	tags, err := json.Marshal(event.Tags)
	if err != nil {
		return fmt.Errorf("pgEventRepository.Create tags: %w", err)
	}
	query := `INSERT INTO events (id, title, slug, description, starts_at, ends_at, participants, max_participants, prize, location, difficulty, tags)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.db.ExecContext(ctx, query, event.ID, event.Title, event.Slug, event.Description,
		event.StartsAt, event.EndsAt, event.Participants, event.MaxParticipants, event.Prize,
		event.Location, event.Difficulty, tags)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("event with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgEventRepository.Create: %w", err)
	}
	return nil
}

func (r *pgEventRepository) Update(ctx context.Context, event *model.Event) error {
	tags, err := json.Marshal(event.Tags)
	if err != nil {
		return fmt.Errorf("pgEventRepository.Update tags: %w", err)
	}
	query := `UPDATE events SET
                title = $1, slug = $2, description = $3, starts_at = $4, ends_at = $5,
                participants = $6, max_participants = $7, prize = $8, location = $9,
                difficulty = $10, tags = $11, updated_at = CURRENT_TIMESTAMP
              WHERE id = $12`
	res, err := r.db.ExecContext(ctx, query, event.Title, event.Slug, event.Description,
		event.StartsAt, event.EndsAt, event.Participants, event.MaxParticipants, event.Prize,
		event.Location, event.Difficulty, tags, event.ID)
	if err != nil {
		return fmt.Errorf("pgEventRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgEventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgEventRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	return r.findBy(ctx, "id", id)
}

func (r *pgEventRepository) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return r.findBy(ctx, "slug", slug)
}

func (r *pgEventRepository) findBy(ctx context.Context, column, value string) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE ` + column + ` = $1`
	row := r.db.QueryRowContext(ctx, query, value)
	event, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgEventRepository.findBy %s: %w", column, err)
	}
	return event, nil
}

func (r *pgEventRepository) List(ctx context.Context) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY starts_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgEventRepository.List: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		event, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgEventRepository.List scan: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *pgEventRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return 0, fmt.Errorf("pgEventRepository.Count: %w", err)
	}
	return total, nil
}
