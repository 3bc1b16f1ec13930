package worker

import (
	"context"
	"errors"
	"time"

	"exercise_tracker/internal/domain/repository"
	"exercise_tracker/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CleanupWorker consumes the cleanup queue and removes transient test users
// together with their exercises. It is fire-and-forget: failures are logged
// and never surfaced to any client.
type CleanupWorker struct {
	rdb       *redis.Client
	userRepo  repository.UserRepository
	queueName string
	prefix    string
	delay     time.Duration
	logger    *zap.Logger
}

func NewCleanupWorker(rdb *redis.Client, userRepo repository.UserRepository, queueName, prefix string, delay time.Duration, logger *zap.Logger) *CleanupWorker {
	return &CleanupWorker{
		rdb:       rdb,
		userRepo:  userRepo,
		queueName: queueName,
		prefix:    prefix,
		delay:     delay,
		logger:    logger,
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	w.logger.Info("cleanup worker started", zap.String("queue", w.queueName))

	// Catch-up sweep: clear transient users left behind by a previous run.
	w.sweepPrefix(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup worker stopping")
			return
		default:
			// Bounded BRPop so context cancellation is noticed between pops.
			result, err := w.rdb.BRPop(ctx, 5*time.Second, w.queueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue // timeout, nothing queued
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				w.logger.Error("failed to pop from cleanup queue",
					zap.String("queue", w.queueName), zap.Error(err))
				time.Sleep(5 * time.Second)
				continue
			}

			// result is [queueName, value]
			if len(result) < 2 || result[1] == "" {
				continue
			}
			w.removeAfterDelay(ctx, result[1])
		}
	}
}

// removeAfterDelay waits out the grace period, then deletes the user and its
// exercises. The delay gives the triggering response time to be read before
// the account disappears.
func (w *CleanupWorker) removeAfterDelay(ctx context.Context, username string) {
	if w.delay > 0 {
		timer := time.NewTimer(w.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			// Shutdown: re-queue so the next run picks it up.
			w.requeue(username)
			return
		case <-timer.C:
		}
	}
	w.remove(ctx, username)
}

// remove deletes one transient user by exact username. Usernames without the
// reserved prefix are refused; the queue is not a general-purpose delete path.
func (w *CleanupWorker) remove(ctx context.Context, username string) {
	if w.prefix == "" || !w.transient(username) {
		w.logger.Warn("refusing to clean up non-transient username", zap.String("username", username))
		return
	}

	deleted, err := w.userRepo.DeleteByUsername(ctx, username)
	if err != nil {
		w.logger.Error("cleanup delete failed", zap.String("username", username), zap.Error(err))
		return
	}
	observability.RecordCleanupDeleted(deleted)
	w.logger.Info("transient user removed",
		zap.String("username", username), zap.Int64("deleted", deleted))
}

// sweepPrefix removes every user carrying the reserved prefix in one pass.
func (w *CleanupWorker) sweepPrefix(ctx context.Context) {
	if w.prefix == "" {
		return
	}
	deleted, err := w.userRepo.DeleteByUsernamePrefix(ctx, w.prefix)
	if err != nil {
		w.logger.Error("catch-up sweep failed", zap.String("prefix", w.prefix), zap.Error(err))
		return
	}
	observability.RecordCleanupDeleted(deleted)
	if deleted > 0 {
		w.logger.Info("catch-up sweep removed transient users",
			zap.String("prefix", w.prefix), zap.Int64("deleted", deleted))
	}
}

func (w *CleanupWorker) transient(username string) bool {
	return len(username) >= len(w.prefix) && username[:len(w.prefix)] == w.prefix
}

func (w *CleanupWorker) requeue(username string) {
	if w.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.rdb.LPush(ctx, w.queueName, username).Err(); err != nil {
		w.logger.Warn("failed to re-queue username during shutdown",
			zap.String("username", username), zap.Error(err))
	}
}
