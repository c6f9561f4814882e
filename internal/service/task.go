package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/policy"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrTransitionRejected = errors.New("transition rejected")
)

// ValidationError указывает поле, которое не прошло проверку
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type TransitionError struct {
	From model.Status
	To   model.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %s -> %s is not allowed", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrTransitionRejected }

type TaskService struct {
	store  repo.TaskStore
	keys   repo.IdempotencyStore
	policy policy.Policy
	now    func() time.Time
}

type Option func(*TaskService)

// WithIdempotency включает обработку Idempotency-Key при создании
func WithIdempotency(keys repo.IdempotencyStore) Option {
	return func(s *TaskService) { s.keys = keys }
}

func WithPolicy(p policy.Policy) Option {
	return func(s *TaskService) { s.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func NewTaskService(store repo.TaskStore, opts ...Option) *TaskService {
	s := &TaskService{
		store:  store,
		policy: policy.AllowAll{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns tasks in store order.
func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return s.store.Find(ctx, filter)
}

// ListGroupedByStatus always returns all four columns, empty ones included.
func (s *TaskService) ListGroupedByStatus(ctx context.Context, filter model.TaskFilter) (model.Board, error) {
	tasks, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return model.GroupByStatus(tasks), nil
}

func (s *TaskService) Get(ctx context.Context, id model.TaskID) (model.Task, error) {
	return s.store.FindByID(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	now := s.now()

	t, err := s.newTask(in, now) // Валидация входных данных
	if err != nil {
		return model.Task{}, err
	}

	if idempKey != "" && s.keys != nil { // Повторный ключ возвращает уже созданную задачу
		existingID, err := s.keys.GetIdempotencyKey(ctx, idempKey)
		switch {
		case err == nil:
			return s.store.FindByID(ctx, existingID)
		case !errors.Is(err, repo.ErrorNotFound):
			return model.Task{}, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	created, err := s.store.Insert(ctx, t)
	if err != nil {
		return model.Task{}, err
	}

	if idempKey != "" && s.keys != nil {
		if err := s.keys.SaveIdempotencyKey(ctx, idempKey, created.ID); err != nil {
			// Без ключа повтор создал бы дубликат
			if _, rmErr := s.store.Remove(ctx, created.ID); rmErr != nil {
				return model.Task{}, fmt.Errorf("save idempotency key: %w (discard task: %v)", err, rmErr)
			}
			return model.Task{}, fmt.Errorf("save idempotency key: %w", err)
		}
		// Ключ сохраняет первый записавший; проигравший гонку убирает свою копию
		if winner, err := s.keys.GetIdempotencyKey(ctx, idempKey); err == nil && winner != created.ID {
			if _, err := s.store.Remove(ctx, created.ID); err != nil {
				return model.Task{}, fmt.Errorf("discard duplicate task: %w", err)
			}
			return s.store.FindByID(ctx, winner)
		}
	}

	return created, nil
}

// Update applies changes atomically from the caller's point of view: the first
// failing check aborts the whole update.
func (s *TaskService) Update(ctx context.Context, id model.TaskID, changes model.TaskChanges) (model.Task, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Task{}, err
	}

	now := s.now()
	next := current.Clone()

	if changes.Status != nil {
		requested := *changes.Status
		if !requested.Valid() {
			return model.Task{}, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", requested)}
		}
		if !s.policy.IsAllowed(current.Status, requested) {
			return model.Task{}, &TransitionError{From: current.Status, To: requested}
		}
		next.Status = requested
	}

	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title == "" {
			return model.Task{}, &ValidationError{Field: "title", Message: "must not be empty"}
		}
		next.Title = title
	}

	if changes.Description != nil {
		next.Description = strings.TrimSpace(*changes.Description)
	}

	if changes.Priority != nil {
		if !changes.Priority.Valid() {
			return model.Task{}, &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", *changes.Priority)}
		}
		next.Priority = *changes.Priority
	}

	switch {
	case changes.ClearOwner:
		next.OwnerID = nil
	case changes.OwnerID != nil:
		if err := validateOwner(*changes.OwnerID); err != nil {
			return model.Task{}, err
		}
		owner := *changes.OwnerID
		next.OwnerID = &owner
	}

	switch {
	case changes.ClearDeadline:
		next.Deadline = nil
	case changes.Deadline != nil:
		d, err := validateDeadline(*changes.Deadline, now)
		if err != nil {
			return model.Task{}, err
		}
		next.Deadline = &d
	}

	expected := 0
	if changes.Version != nil {
		if *changes.Version <= 0 {
			return model.Task{}, &ValidationError{Field: "version", Message: "must be positive"}
		}
		expected = *changes.Version
	}

	next.UpdatedAt = now
	return s.store.Replace(ctx, id, next, expected)
}

func (s *TaskService) Delete(ctx context.Context, id model.TaskID) error {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return repo.ErrorNotFound
	}
	return nil
}

func (s *TaskService) newTask(in model.TaskInput, now time.Time) (model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Task{}, &ValidationError{Field: "title", Message: "must not be empty"}
	}

	status := in.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !status.Valid() {
		return model.Task{}, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return model.Task{}, &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", priority)}
	}

	t := model.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if in.OwnerID != nil {
		if err := validateOwner(*in.OwnerID); err != nil {
			return model.Task{}, err
		}
		owner := *in.OwnerID
		t.OwnerID = &owner
	}

	if in.Deadline != nil {
		d, err := validateDeadline(*in.Deadline, now)
		if err != nil {
			return model.Task{}, err
		}
		t.Deadline = &d
	}

	return t, nil
}

func validateOwner(id int64) error {
	if id <= 0 {
		return &ValidationError{Field: "owner_id", Message: "must be a positive id"}
	}
	return nil
}

// validateDeadline сравнивает по календарным дням: сегодня ещё допустимо
func validateDeadline(d, now time.Time) (time.Time, error) {
	day := model.DateOf(d)
	if day.Before(model.DateOf(now)) {
		return time.Time{}, &ValidationError{Field: "deadline", Message: "must not be in the past"}
	}
	return day, nil
}
