package repo

import (
	"context"
	"errors"
	"time"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

// TaskStore владеет авторитетной копией задач.
// Find returns tasks in creation order; callers must not re-sort.
type TaskStore interface {
	Find(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	FindByID(ctx context.Context, id model.TaskID) (model.Task, error)
	Insert(ctx context.Context, t model.Task) (model.Task, error)
	// Replace overwrites the stored task and bumps its version. When
	// expectedVersion is non-zero the write only happens if it matches.
	Replace(ctx context.Context, id model.TaskID, t model.Task, expectedVersion int) (model.Task, error)
	Remove(ctx context.Context, id model.TaskID) (bool, error)
}

// IdempotencyStore maps Idempotency-Key headers to created task ids.
type IdempotencyStore interface {
	GetIdempotencyKey(ctx context.Context, key string) (model.TaskID, error)
	SaveIdempotencyKey(ctx context.Context, key string, id model.TaskID) error
}

// KeyPurger drops idempotency keys that outlived their retention. Stores with
// native expiry (Redis) do not need it.
type KeyPurger interface {
	PurgeIdempotencyKeys(ctx context.Context, before time.Time) (int64, error)
}
