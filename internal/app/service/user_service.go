package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"exercise_tracker/internal/app/worker"
	"exercise_tracker/internal/common"
	"exercise_tracker/internal/domain/model"
	"exercise_tracker/internal/domain/repository"
	"exercise_tracker/internal/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo repository.UserRepository
	cleanup  *worker.CleanupQueue
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, cleanup *worker.CleanupQueue, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, cleanup: cleanup, logger: logger}
}

// UserView is the wire representation of a user. The "_id" field name
// matches the original external contract.
type UserView struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}

// CreateUser applies the find-or-create policy: an existing user with the
// same username is returned unmodified, otherwise a new one is inserted.
func (s *UserService) CreateUser(ctx context.Context, username string) (*UserView, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", common.ErrValidation)
	}

	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		s.cleanup.EnqueueIfTransient(username)
		return &UserView{ID: existing.ID, Username: existing.Username}, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a concurrent insert race on the unique username index;
		// the winner's row is the find-or-create result.
		if errors.Is(err, common.ErrConflict) {
			winner, findErr := s.userRepo.FindByUsername(ctx, username)
			if findErr != nil {
				return nil, fmt.Errorf("failed to re-read user after conflict: %w", findErr)
			}
			s.cleanup.EnqueueIfTransient(username)
			return &UserView{ID: winner.ID, Username: winner.Username}, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	observability.RecordUserCreated()
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("username", user.Username))
	s.cleanup.EnqueueIfTransient(username)
	return &UserView{ID: user.ID, Username: user.Username}, nil
}

// ListUsers returns all users projected to their wire representation.
func (s *UserService) ListUsers(ctx context.Context) ([]UserView, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{ID: u.ID, Username: u.Username})
	}
	return views, nil
}
