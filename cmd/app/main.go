package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/config"
	"github.com/BuzzLyutic/kanban-board/internal/handler"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
	"github.com/BuzzLyutic/kanban-board/internal/service"
	"github.com/BuzzLyutic/kanban-board/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Подключаем логгер
	logger := newLogger(cfg.Debug)
	defer logger.Sync()

	store, keys, closeStores, err := openStores(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err)) // дальнейшая работа теряет смысл
	}
	defer closeStores()

	// В Redis ключи истекают сами, остальным хранилищам нужен sweeper
	if purger, ok := keys.(repo.KeyPurger); ok {
		sweeper := worker.NewSweeper(purger, logger, cfg.IdempotencyTTL, cfg.SweepInterval)
		sweeper.Start(context.Background())
		defer sweeper.Stop()
	}

	taskService := service.NewTaskService(store, service.WithIdempotency(keys))
	taskHandler := handler.NewTaskHandler(taskService, logger)

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(taskHandler, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully!")
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStores выбирает хранилище задач и ключей идемпотентности по конфигу
func openStores(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.TaskStore, repo.IdempotencyStore, func(), error) {
	var (
		store   repo.TaskStore
		keys    repo.IdempotencyStore
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Store {
	case config.StoreMemory:
		store = repo.NewMemoryStore()
		keys = repo.NewMemoryIdempotency()
		logger.Warn("Using in-memory store, data is lost on restart")
	default:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL) // Создаем новое соединение к БД
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, pool.Close)

		if err := pool.Ping(ctx); err != nil { // Пытаемся пингануть БД
			closeAll()
			return nil, nil, nil, err
		}
		logger.Info("Successfully connected to the Database!")

		taskRepo := repo.NewTaskRepo(pool)
		store, keys = taskRepo, taskRepo
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		rc := redis.NewClient(opts)
		closers = append(closers, func() { _ = rc.Close() })

		if err := rc.Ping(ctx).Err(); err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		keys = repo.NewRedisIdempotency(rc, cfg.IdempotencyTTL)
		logger.Info("Idempotency keys stored in Redis", zap.Duration("ttl", cfg.IdempotencyTTL))
	}

	return store, keys, closeAll, nil
}
