package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exercise_tracker/internal/api"
	"exercise_tracker/internal/app/service"
	"exercise_tracker/internal/app/worker"
	"exercise_tracker/internal/domain/repository"
	"exercise_tracker/internal/platform/config"
	"exercise_tracker/internal/platform/database"
	"exercise_tracker/internal/platform/queue"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 1. Load Configuration
	cfg := config.Load()
	logger.Info("configuration loaded")

	// 2. Initialize Database
	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	logger.Info("database connected")

	// 3. Initialize Redis
	rdb, err := queue.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()
	logger.Info("redis connected")

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	exerciseRepo := repository.NewPgExerciseRepository(db)

	// 5. Initialize Services
	cleanupQueue := worker.NewCleanupQueue(rdb, cfg.CleanupQueueName, cfg.CleanupPrefix, logger)
	userService := service.NewUserService(userRepo, cleanupQueue, logger)
	exerciseService := service.NewExerciseService(userRepo, exerciseRepo, cleanupQueue, logger)

	// 6. Initialize Cleanup Worker (as a goroutine)
	cleanupWorker := worker.NewCleanupWorker(rdb, userRepo, cfg.CleanupQueueName, cfg.CleanupPrefix, cfg.CleanupDelay, logger)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go cleanupWorker.Start(workerCtx)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(userService, exerciseService, logger)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("shutting down server")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server and worker stopped gracefully")
}
