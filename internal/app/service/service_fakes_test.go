package service

import (
	"context"
	"sort"
	"strings"

	"exercise_tracker/internal/common"
	"exercise_tracker/internal/domain/model"
	"exercise_tracker/internal/domain/repository"
)

type fakeUserRepo struct {
	users   map[string]model.User // keyed by id
	failAll bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.failAll {
		return common.ErrInternalServer
	}
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return common.ErrConflict
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if f.failAll {
		return nil, common.ErrInternalServer
	}
	user, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if f.failAll {
		return nil, common.ErrInternalServer
	}
	for _, user := range f.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]model.User, error) {
	if f.failAll {
		return nil, common.ErrInternalServer
	}
	users := make([]model.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (f *fakeUserRepo) DeleteByUsername(ctx context.Context, username string) (int64, error) {
	var deleted int64
	for id, user := range f.users {
		if user.Username == username {
			delete(f.users, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeUserRepo) DeleteByUsernamePrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	for id, user := range f.users {
		if strings.HasPrefix(user.Username, prefix) {
			delete(f.users, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeExerciseRepo mirrors the SQL filter semantics in memory: inclusive
// date bounds, ascending date order with created_at tiebreak, capped count.
type fakeExerciseRepo struct {
	exercises []model.Exercise
}

func (f *fakeExerciseRepo) Create(ctx context.Context, exercise *model.Exercise) error {
	f.exercises = append(f.exercises, *exercise)
	return nil
}

func (f *fakeExerciseRepo) ListByUser(ctx context.Context, filter repository.LogFilter) ([]model.Exercise, error) {
	matched := []model.Exercise{}
	for _, e := range f.exercises {
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
