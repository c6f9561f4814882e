package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/kanban-board/internal/filter"
	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
)

func seed(t *testing.T, svc *TaskService, statuses ...model.Status) []model.Task {
	t.Helper()
	out := make([]model.Task, 0, len(statuses))
	for i, s := range statuses {
		task, err := svc.Create(context.Background(), model.TaskInput{Title: fmt.Sprintf("Task %d", i+1), Status: s}, "")
		require.NoError(t, err)
		out = append(out, task)
	}
	return out
}

func TestListIdentityFilterReturnsEverythingInOrder(t *testing.T) {
	svc := NewTaskService(repo.NewMemoryStore(), WithClock(fixedClock))
	created := seed(t, svc, model.StatusDone, model.StatusTodo, model.StatusReview, model.StatusTodo)

	got, err := svc.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestScenario_StatusFilterExcludesDone(t *testing.T) {
	svc := NewTaskService(repo.NewMemoryStore(), WithClock(fixedClock))
	seed(t, svc, model.StatusTodo, model.StatusInProgress, model.StatusDone, model.StatusTodo, model.StatusInProgress)

	f, err := filter.Compile(map[string]string{"status": "todo,in_progress"})
	require.NoError(t, err)

	got, err := svc.List(context.Background(), f)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	for _, task := range got {
		assert.NotEqual(t, model.StatusDone, task.Status)
	}
}

func TestScenario_InvertedDateRangeIsEmptyNotError(t *testing.T) {
	svc := NewTaskService(repo.NewMemoryStore(), WithClock(fixedClock))
	seed(t, svc, model.StatusTodo, model.StatusDone)

	f, err := filter.Compile(map[string]string{"dateFrom": "2026-10-20", "dateTo": "2026-10-18"})
	require.NoError(t, err)

	got, err := svc.List(context.Background(), f)
	require.NoError(t, err)
	assert.Empty(t, got)

	// диапазон, включающий сегодня, находит всё
	f, err = filter.Compile(map[string]string{"dateFrom": "2026-10-19", "dateTo": "2026-10-19"})
	require.NoError(t, err)
	got, _ = svc.List(context.Background(), f)
	assert.Len(t, got, 2)
}

func TestListGroupedByStatus_Partition(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		svc := NewTaskService(repo.NewMemoryStore(), WithClock(fixedClock))
		n := r.Intn(30)
		statuses := make([]model.Status, n)
		for i := range statuses {
			statuses[i] = model.Statuses[r.Intn(len(model.Statuses))]
		}
		seed(t, svc, statuses...)

		f := model.TaskFilter{}
		if round%2 == 1 {
			f.Statuses = []model.Status{model.StatusTodo, model.StatusReview}
		}

		filtered, err := svc.List(context.Background(), f)
		require.NoError(t, err)
		board, err := svc.ListGroupedByStatus(context.Background(), f)
		require.NoError(t, err)

		require.Len(t, board, 4)
		seen := make(map[model.TaskID]int)
		for _, s := range model.Statuses {
			col, ok := board[s]
			require.True(t, ok, "column %s missing", s)
			for _, task := range col {
				assert.Equal(t, s, task.Status)
				seen[task.ID]++
			}
		}
		assert.Equal(t, len(filtered), board.Len())
		for _, task := range filtered {
			assert.Equal(t, 1, seen[task.ID], "task %d must appear exactly once", task.ID)
		}
	}
}

func TestUpdate_AllTransitionsAllowedByDefault(t *testing.T) {
	svc := NewTaskService(repo.NewMemoryStore(), WithClock(fixedClock))
	task := seed(t, svc, model.StatusDone)[0]

	for _, to := range []model.Status{model.StatusTodo, model.StatusTodo, model.StatusReview, model.StatusInProgress, model.StatusDone} {
		updated, err := svc.Update(context.Background(), task.ID, model.TaskChanges{Status: ptr(to)})
		require.NoError(t, err)
		assert.Equal(t, to, updated.Status)
	}
}
