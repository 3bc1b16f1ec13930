package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"exercise_tracker/internal/domain/model"
)

// DefaultLogCap bounds the number of log entries returned when the caller
// supplies no valid limit.
const DefaultLogCap = 500

// LogFilter narrows an exercise log query. UserID is required; From and To
// are inclusive calendar-date bounds; Limit caps the result count, with
// DefaultLogCap applied when it is not positive.
type LogFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *model.Exercise) error
	ListByUser(ctx context.Context, filter LogFilter) ([]model.Exercise, error)
}

type pgExerciseRepository struct {
	db *sql.DB
}

func NewPgExerciseRepository(db *sql.DB) ExerciseRepository {
	return &pgExerciseRepository{db: db}
}

func (r *pgExerciseRepository) Create(ctx context.Context, e *model.Exercise) error {
	query := `INSERT INTO exercises (id, user_id, description, duration, date, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, e.Description, e.Duration, e.Date, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgExerciseRepository.Create: %w", err)
	}
	return nil
}

func (r *pgExerciseRepository) ListByUser(ctx context.Context, filter LogFilter) ([]model.Exercise, error) {
	query, args := buildLogQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgExerciseRepository.ListByUser: %w", err)
	}
	defer rows.Close()

	exercises := []model.Exercise{}
	for rows.Next() {
		var e model.Exercise
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Duration, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgExerciseRepository.ListByUser scan: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgExerciseRepository.ListByUser rows.Err: %w", err)
	}
	return exercises, nil
}

// buildLogQuery assembles the filtered log query. Ordering is ascending by
// date with created_at as tiebreak so the log is chronological and
// deterministic.
func buildLogQuery(filter LogFilter) (string, []interface{}) {
	var query strings.Builder
	query.WriteString(`SELECT id, user_id, description, duration, date, created_at FROM exercises WHERE user_id = $1`)

	args := []interface{}{filter.UserID}
	argID := 2

	if filter.From != nil {
		query.WriteString(fmt.Sprintf(" AND date >= $%d", argID))
		args = append(args, *filter.From)
		argID++
	}
	if filter.To != nil {
		query.WriteString(fmt.Sprintf(" AND date <= $%d", argID))
		args = append(args, *filter.To)
		argID++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLogCap
	}
	query.WriteString(fmt.Sprintf(" ORDER BY date ASC, created_at ASC LIMIT $%d", argID))
	args = append(args, limit)

	return query.String(), args
}
