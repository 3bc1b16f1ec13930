package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"exercise_tracker/internal/common"
	"exercise_tracker/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)

	// DeleteByUsername removes the users matching the exact username together
	// with their exercises. Maintenance only.
	DeleteByUsername(ctx context.Context, username string) (int64, error)
	// DeleteByUsernamePrefix removes every user whose username starts with
	// prefix, together with their exercises. Maintenance only.
	DeleteByUsernamePrefix(ctx context.Context, prefix string) (int64, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, created_at)
	          VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, username, created_at FROM users WHERE id = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT id, username, created_at FROM users WHERE username = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT id, username, created_at FROM users ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	return r.deleteWhere(ctx, "username = $1", username)
}

func (r *pgUserRepository) DeleteByUsernamePrefix(ctx context.Context, prefix string) (int64, error) {
	return r.deleteWhere(ctx, "username LIKE $1 || '%'", prefix)
}

// deleteWhere removes users matching the predicate and their exercises in one
// transaction, so a partial sweep never leaves orphaned exercises behind.
func (r *pgUserRepository) deleteWhere(ctx context.Context, predicate string, arg interface{}) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("pgUserRepository.deleteWhere begin: %w", err)
	}
	defer tx.Rollback()

	exerciseQuery := `DELETE FROM exercises WHERE user_id IN (SELECT id FROM users WHERE ` + predicate + `)`
	if _, err := tx.ExecContext(ctx, exerciseQuery, arg); err != nil {
		return 0, fmt.Errorf("pgUserRepository.deleteWhere exercises: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE `+predicate, arg)
	if err != nil {
		return 0, fmt.Errorf("pgUserRepository.deleteWhere users: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgUserRepository.deleteWhere rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("pgUserRepository.deleteWhere commit: %w", err)
	}
	return deleted, nil
}
