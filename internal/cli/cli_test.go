package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/board"
	"github.com/BuzzLyutic/kanban-board/internal/handler"
	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
	"github.com/BuzzLyutic/kanban-board/internal/service"
)

type testAPI struct {
	server *httptest.Server
	svc    *service.TaskService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	t.Setenv("BOARD_API_URL", "")
	t.Setenv("BOARD_TIMEOUT", "")

	svc := service.NewTaskService(repo.NewMemoryStore(), service.WithIdempotency(repo.NewMemoryIdempotency()))
	server := httptest.NewServer(handler.NewRouter(handler.NewTaskHandler(svc, zap.NewNop()), time.Second))
	t.Cleanup(server.Close)
	return &testAPI{server: server, svc: svc}
}

func (a *testAPI) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--api-url", a.server.URL}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (a *testAPI) seed(t *testing.T, title string, status model.Status) model.Task {
	t.Helper()
	task, err := a.svc.Create(context.Background(), model.TaskInput{Title: title, Status: status}, "")
	require.NoError(t, err)
	return task
}

func TestShow(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, "Write docs", model.StatusTodo)
	api.seed(t, "Fix login", model.StatusReview)

	t.Run("all columns", func(t *testing.T) {
		out, _, err := api.run(t, "show")
		require.NoError(t, err)

		assert.Contains(t, out, "TODO (1)")
		assert.Contains(t, out, "IN PROGRESS (0)")
		assert.Contains(t, out, "REVIEW (1)")
		assert.Contains(t, out, "DONE (0)")
		assert.Contains(t, out, "Write docs")
		assert.Contains(t, out, "Total: 2 tasks")
	})

	t.Run("filtered", func(t *testing.T) {
		out, _, err := api.run(t, "show", "--status", "review")
		require.NoError(t, err)

		assert.Contains(t, out, "Fix login")
		assert.NotContains(t, out, "Write docs")
		assert.Contains(t, out, "Total: 1 tasks")
	})

	t.Run("bad filter is rejected locally", func(t *testing.T) {
		_, _, err := api.run(t, "show", "--priority", "urgent")
		assert.Error(t, err)
	})
}

func TestMove(t *testing.T) {
	api := newTestAPI(t)
	task := api.seed(t, "Ship it", model.StatusReview)

	t.Run("confirmed", func(t *testing.T) {
		out, _, err := api.run(t, "move", itoa(task.ID), "done")
		require.NoError(t, err)
		assert.Contains(t, out, `moved "Ship it" to done`)

		stored, err := api.svc.Get(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusDone, stored.Status)
	})

	t.Run("missing task", func(t *testing.T) {
		_, _, err := api.run(t, "move", "999", "done")
		assert.Error(t, err)
	})

	t.Run("deleted on the server", func(t *testing.T) {
		gone := api.seed(t, "Gone", model.StatusTodo)
		require.NoError(t, api.svc.Delete(context.Background(), gone.ID))

		_, _, err := api.run(t, "move", itoa(gone.ID), "done")
		assert.ErrorIs(t, err, board.ErrUnknownTask)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, _, err := api.run(t, "move", "abc", "done")
		assert.Error(t, err)
	})
}

func TestAdd(t *testing.T) {
	api := newTestAPI(t)

	out, _, err := api.run(t, "add", "Plan", "sprint", "-p", "high", "--owner", "3", "--idempotency-key", "k-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"Plan sprint" in todo`)

	// тот же ключ не создаёт вторую задачу
	_, _, err = api.run(t, "add", "Plan", "sprint", "--idempotency-key", "k-1")
	require.NoError(t, err)

	tasks, err := api.svc.List(context.Background(), model.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.PriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].OwnerID)
	assert.Equal(t, int64(3), *tasks[0].OwnerID)

	t.Run("invalid deadline", func(t *testing.T) {
		_, _, err := api.run(t, "add", "x", "--deadline", "tomorrow")
		assert.Error(t, err)
	})

	t.Run("server validation", func(t *testing.T) {
		_, _, err := api.run(t, "add", "x", "--priority", "p0")
		assert.ErrorContains(t, err, "400")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "задач...", truncate("задачадлинная", 8))
}

func itoa(id model.TaskID) string {
	return strconv.FormatInt(int64(id), 10)
}
