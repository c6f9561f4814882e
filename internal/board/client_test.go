package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/handler"
	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/repo"
	"github.com/BuzzLyutic/kanban-board/internal/service"
)

func newAPI(t *testing.T) *HTTPTransport {
	t.Helper()
	svc := service.NewTaskService(repo.NewMemoryStore(), service.WithIdempotency(repo.NewMemoryIdempotency()))
	srv := httptest.NewServer(handler.NewRouter(handler.NewTaskHandler(svc, zap.NewNop()), time.Second))
	t.Cleanup(srv.Close)
	return NewHTTPTransport(srv.URL+"/", time.Second)
}

func TestHTTPTransport_RoundTrip(t *testing.T) {
	tr := newAPI(t)
	ctx := context.Background()

	created, err := tr.CreateTask(ctx, model.TaskInput{Title: "Card", Priority: model.PriorityLow}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, created.Status)

	again, err := tr.CreateTask(ctx, model.TaskInput{Title: "Card"}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	status := model.StatusReview
	updated, err := tr.UpdateRemote(ctx, created.ID, model.TaskChanges{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReview, updated.Status)

	b, err := tr.FetchBoard(ctx, model.TaskFilter{Statuses: []model.Status{model.StatusReview}})
	require.NoError(t, err)
	require.Len(t, b[model.StatusReview], 1)
	assert.Empty(t, b[model.StatusTodo])
}

func TestHTTPTransport_Errors(t *testing.T) {
	tr := newAPI(t)
	ctx := context.Background()

	status := model.StatusDone
	_, err := tr.UpdateRemote(ctx, 42, model.TaskChanges{Status: &status})

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
	assert.Equal(t, "not found", remoteErr.Message)

	_, err = tr.CreateTask(ctx, model.TaskInput{Title: " "}, "")
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Error(), "title")
}

func TestHTTPTransport_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(srv.URL, time.Second).FetchBoard(context.Background(), model.TaskFilter{})

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)
	assert.Equal(t, "server returned 502", remoteErr.Error())
}
