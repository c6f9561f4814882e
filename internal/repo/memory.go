package repo

import (
	"context"
	"sync"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// MemoryStore - хранилище в памяти, порядок вставки сохраняется
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  []model.Task
	index  map[model.TaskID]int
	nextID model.TaskID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index:  make(map[model.TaskID]int),
		nextID: 1,
	}
}

func (s *MemoryStore) Find(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Task{}, ErrorNotFound
	}
	return s.tasks[i].Clone(), nil
}

func (s *MemoryStore) Insert(ctx context.Context, t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = t.Clone()
	t.ID = s.nextID
	t.Version = 1
	s.nextID++

	s.index[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	return t.Clone(), nil
}

func (s *MemoryStore) Replace(ctx context.Context, id model.TaskID, t model.Task, expectedVersion int) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Task{}, ErrorNotFound
	}
	stored := s.tasks[i]
	if expectedVersion != 0 && stored.Version != expectedVersion {
		return model.Task{}, ErrorConflict
	}

	t = t.Clone()
	t.ID = stored.ID
	t.CreatedAt = stored.CreatedAt
	t.Version = stored.Version + 1
	s.tasks[i] = t
	return t.Clone(), nil
}

func (s *MemoryStore) Remove(ctx context.Context, id model.TaskID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false, nil
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.tasks); j++ {
		s.index[s.tasks[j].ID] = j
	}
	return true, nil
}
