package handler

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"testing"

	"exercise_tracker/internal/app/service"
	"exercise_tracker/internal/common"
	"exercise_tracker/internal/domain/model"
	"exercise_tracker/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// newTestRouter wires real services over in-memory repositories, mirroring
// the production route layout.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	userRepo := &memUserRepo{users: map[string]model.User{}}
	exerciseRepo := &memExerciseRepo{}
	logger := zap.NewNop()

	userService := service.NewUserService(userRepo, nil, logger)
	exerciseService := service.NewExerciseService(userRepo, exerciseRepo, nil, logger)

	r := chi.NewRouter()
	r.Route("/api/users", func(users chi.Router) {
		NewUserHandler(userService).RegisterRoutes(users)
		NewExerciseHandler(exerciseService).RegisterRoutes(users)
	})
	return r
}

type memUserRepo struct {
	users map[string]model.User
}

func (m *memUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return common.ErrConflict
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (m *memUserRepo) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	var deleted int64
	for id, user := range m.users {
		if user.Username == username {
			delete(m.users, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memUserRepo) DeleteByUsernamePrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	for id, user := range m.users {
		if strings.HasPrefix(user.Username, prefix) {
			delete(m.users, id)
			deleted++
		}
	}
	return deleted, nil
}

type memExerciseRepo struct {
	exercises []model.Exercise
}

func (m *memExerciseRepo) Create(ctx context.Context, exercise *model.Exercise) error {
	m.exercises = append(m.exercises, *exercise)
	return nil
}

func (m *memExerciseRepo) ListByUser(ctx context.Context, filter repository.LogFilter) ([]model.Exercise, error) {
	matched := []model.Exercise{}
	for _, e := range m.exercises {
		if e.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultLogCap
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
