package worker

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CleanupQueue enqueues transient usernames for the background sweep.
// Enqueueing is best-effort and never blocks or fails the request that
// triggered it.
type CleanupQueue struct {
	rdb       *redis.Client
	queueName string
	prefix    string
	logger    *zap.Logger
}

func NewCleanupQueue(rdb *redis.Client, queueName, prefix string, logger *zap.Logger) *CleanupQueue {
	return &CleanupQueue{
		rdb:       rdb,
		queueName: queueName,
		prefix:    prefix,
		logger:    logger,
	}
}

// Transient reports whether the username carries the reserved test prefix.
func (q *CleanupQueue) Transient(username string) bool {
	if q == nil || q.prefix == "" {
		return false
	}
	return strings.HasPrefix(username, q.prefix)
}

// EnqueueIfTransient pushes the username onto the cleanup queue when it is
// transient. Runs asynchronously; failures are logged and dropped.
func (q *CleanupQueue) EnqueueIfTransient(username string) {
	if !q.Transient(username) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := q.rdb.LPush(ctx, q.queueName, username).Err(); err != nil {
			q.logger.Warn("failed to enqueue transient user for cleanup",
				zap.String("username", username), zap.Error(err))
		}
	}()
}
