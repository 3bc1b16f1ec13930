package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exercise_tracker/internal/app/worker"
	"exercise_tracker/internal/common"
	"exercise_tracker/internal/domain/model"
	"exercise_tracker/internal/domain/repository"
	"exercise_tracker/internal/observability"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExerciseService struct {
	userRepo     repository.UserRepository
	exerciseRepo repository.ExerciseRepository
	cleanup      *worker.CleanupQueue
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewExerciseService(userRepo repository.UserRepository, exerciseRepo repository.ExerciseRepository, cleanup *worker.CleanupQueue, logger *zap.Logger) *ExerciseService {
	return &ExerciseService{
		userRepo:     userRepo,
		exerciseRepo: exerciseRepo,
		cleanup:      cleanup,
		validate:     validator.New(),
		logger:       logger,
	}
}

type LogExerciseRequest struct {
	Description string `json:"description" validate:"required"`
	Duration    int    `json:"duration" validate:"required,gt=0"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// ExerciseView is the wire representation of a logged exercise. The "_id"
// field carries the owning user's id, matching the original contract.
type ExerciseView struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogQuery narrows a log fetch. Bounds are inclusive; Limit caps the entry
// count when positive.
type LogQuery struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// LogEntry is one exercise in a user's log.
type LogEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogView is the full log response. Count reflects the entries actually
// returned after filtering and capping.
type LogView struct {
	Username string     `json:"username"`
	ID       string     `json:"_id"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}

// LogExercise validates and persists one exercise against an existing user.
// The date defaults to the current calendar date when omitted.
func (s *ExerciseService) LogExercise(ctx context.Context, userID string, req LogExerciseRequest) (*ExerciseView, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("description is required: %w", common.ErrValidation)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("duration must be a positive number of minutes: %w", common.ErrValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid exercise payload: %w", common.ErrValidation)
	}

	user, err := s.resolveOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse(model.DateLayout, req.Date)
		if err != nil {
			return nil, fmt.Errorf("date must be formatted as YYYY-MM-DD: %w", common.ErrValidation)
		}
		date = parsed
	}

	exercise := &model.Exercise{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Description: req.Description,
		Duration:    req.Duration,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, fmt.Errorf("failed to log exercise: %w", err)
	}

	observability.RecordExerciseLogged()
	s.logger.Info("exercise logged",
		zap.String("user_id", user.ID),
		zap.String("exercise_id", exercise.ID),
		zap.Int("duration", exercise.Duration))
	s.cleanup.EnqueueIfTransient(user.Username)

	return &ExerciseView{
		ID:          user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.DisplayDate(),
	}, nil
}

// resolveOwner ensures the exercise owner exists before any write.
func (s *ExerciseService) resolveOwner(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("unknown user %q: %w", userID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}

// GetLog fetches a user's exercises filtered by the query, in ascending
// date order.
func (s *ExerciseService) GetLog(ctx context.Context, userID string, query LogQuery) (*LogView, error) {
	user, err := s.resolveOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exerciseRepo.ListByUser(ctx, repository.LogFilter{
		UserID: user.ID,
		From:   query.From,
		To:     query.To,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch log: %w", err)
	}

	entries := make([]LogEntry, 0, len(exercises))
	for i := range exercises {
		entries = append(entries, LogEntry{
			Description: exercises[i].Description,
			Duration:    exercises[i].Duration,
			Date:        exercises[i].DisplayDate(),
		})
	}

	return &LogView{
		Username: user.Username,
		ID:       user.ID,
		Count:    len(entries),
		Log:      entries,
	}, nil
}
