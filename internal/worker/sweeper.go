package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

// Sweeper периодически удаляет просроченные ключи идемпотентности.
// Задачи он не трогает.
type Sweeper struct {
	purger   repo.KeyPurger
	logger   *zap.Logger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	wg       sync.WaitGroup
	stop     chan struct{}
	once     sync.Once
}

func NewSweeper(purger repo.KeyPurger, logger *zap.Logger, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{
		purger:   purger,
		logger:   logger,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting idempotency sweeper", zap.Duration("ttl", s.ttl), zap.Duration("interval", s.interval))

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop ждёт завершения текущего прохода; повторный вызов безопасен
func (s *Sweeper) Stop() {
	s.once.Do(func() {
		s.logger.Info("Stopping idempotency sweeper...")
		close(s.stop)
	})
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) (int64, error) {
	n, err := s.purger.PurgeIdempotencyKeys(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("Purged idempotency keys", zap.Int64("count", n))
	}
	return n, nil
}
