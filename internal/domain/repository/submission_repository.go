package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"thundercipher/internal/domain/model"
)

// SubmissionLogFilter narrows the admin's view of the flag audit log.
type SubmissionLogFilter struct {
	UserID  string
	LabID   string
	Correct *bool
	Limit   int
	Offset  int
}

type SubmissionLogRepository interface {
	Record(ctx context.Context, sub *model.FlagSubmission) error
	List(ctx context.Context, filter SubmissionLogFilter) ([]model.FlagSubmission, error)
}

type pgSubmissionLogRepository struct {
	db *sql.DB
}

func NewPgSubmissionLogRepository(db *sql.DB) SubmissionLogRepository {
	return &pgSubmissionLogRepository{db: db}
}

func (r *pgSubmissionLogRepository) Record(ctx context.Context, sub *model.FlagSubmission) error {
	query := `INSERT INTO flag_submissions (id, user_id, lab_id, submitted_flag, correct, ip_address)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.LabID, sub.SubmittedFlag, sub.Correct, sub.IPAddress)
	if err != nil {
		return fmt.Errorf("pgSubmissionLogRepository.Record: %w", err)
	}
	return nil
}

func (r *pgSubmissionLogRepository) List(ctx context.Context, filter SubmissionLogFilter) ([]model.FlagSubmission, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("fs.user_id = $%d", argID))
		args = append(args, filter.UserID)
		argID++
	}
	if filter.LabID != "" {
		conditions = append(conditions, fmt.Sprintf("fs.lab_id = $%d", argID))
		args = append(args, filter.LabID)
		argID++
	}
	if filter.Correct != nil {
		conditions = append(conditions, fmt.Sprintf("fs.correct = $%d", argID))
		args = append(args, *filter.Correct)
		argID++
	}

	query := `SELECT fs.id, fs.user_id, fs.lab_id, fs.submitted_flag, fs.correct, fs.ip_address, fs.submitted_at,
	                 u.username, l.title
	          FROM flag_submissions fs
	          LEFT JOIN users u ON u.id = fs.user_id
	          LEFT JOIN labs l ON l.id = fs.lab_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY fs.submitted_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionLogRepository.List: %w", err)
	}
	defer rows.Close()

	subs := []model.FlagSubmission{}
	for rows.Next() {
		var s model.FlagSubmission
		if err := rows.Scan(&s.ID, &s.UserID, &s.LabID, &s.SubmittedFlag, &s.Correct, &s.IPAddress, &s.SubmittedAt,
			&s.Username, &s.LabTitle); err != nil {
			return nil, fmt.Errorf("pgSubmissionLogRepository.List scan: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
