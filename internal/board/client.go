package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BuzzLyutic/kanban-board/internal/filter"
	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// RemoteError is a non-2xx answer from the API.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// HTTPTransport implements Transport against the JSON API.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport builds a transport; timeout bounds every request.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HTTPTransport) UpdateRemote(ctx context.Context, id model.TaskID, changes model.TaskChanges) (model.Task, error) {
	var t model.Task
	err := h.do(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", id), changes, nil, &t)
	return t, err
}

func (h *HTTPTransport) FetchBoard(ctx context.Context, f model.TaskFilter) (model.Board, error) {
	path := "/api/board"
	if q := filter.Encode(f); len(q) > 0 {
		path += "?" + q.Encode()
	}
	var b model.Board
	if err := h.do(ctx, http.MethodGet, path, nil, nil, &b); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateTask posts a new task; a non-empty idempKey is sent as Idempotency-Key.
func (h *HTTPTransport) CreateTask(ctx context.Context, in model.TaskInput, idempKey string) (model.Task, error) {
	var headers map[string]string
	if idempKey != "" {
		headers = map[string]string{"Idempotency-Key": idempKey}
	}
	var t model.Task
	err := h.do(ctx, http.MethodPost, "/api/tasks", in, headers, &t)
	return t, err
}

func (h *HTTPTransport) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &RemoteError{StatusCode: resp.StatusCode, Message: payload.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
