// Package board holds the client-side shadow of the Kanban board and applies
// status changes optimistically: a card moves locally before the server
// confirms, and snaps back to its original column if the server refuses.
//
// The shadow view is provisional. The server remains the source of truth and
// Refresh replaces the whole view with whatever it returns.
package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

var (
	ErrUnknownTask      = errors.New("task is not on the board")
	ErrMutationInFlight = errors.New("task is already being moved")
)

// Transport talks to the task service. UpdateRemote is issued exactly once per move.
type Transport interface {
	UpdateRemote(ctx context.Context, id model.TaskID, changes model.TaskChanges) (model.Task, error)
	FetchBoard(ctx context.Context, filter model.TaskFilter) (model.Board, error)
}

// Callbacks receive user-facing messages. Either may be nil.
type Callbacks struct {
	OnError   func(message string)
	OnSuccess func(message string)
}

// State of a single card.
type State int

const (
	Idle State = iota
	Mutating
)

func (s State) String() string {
	if s == Mutating {
		return "mutating"
	}
	return "idle"
}

// Snapshot is the card as it was right before a local move. Ahead lists the
// cards that preceded it in Column; rollback restores the card's rank from it,
// so concurrent moves out of the same column cannot reorder it.
type Snapshot struct {
	Task   model.Task
	Column model.Status
	Index  int
	Ahead  []model.TaskID
}

type Controller struct {
	transport Transport
	callbacks Callbacks
	logger    *zap.Logger
	filter    model.TaskFilter

	mu       sync.Mutex
	columns  model.Board
	inflight map[model.TaskID]Snapshot
}

func NewController(transport Transport, callbacks Callbacks, logger *zap.Logger) *Controller {
	return &Controller{
		transport: transport,
		callbacks: callbacks,
		logger:    logger,
		columns:   model.NewBoard(),
		inflight:  make(map[model.TaskID]Snapshot),
	}
}

// SetFilter sets the filter used by Refresh.
func (c *Controller) SetFilter(f model.TaskFilter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

// Load replaces the shadow view without contacting the server.
func (c *Controller) Load(b model.Board) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.columns = normalize(b)
}

// Refresh reloads the whole view. If a move resolves after the refresh lands,
// the move's outcome is applied on top of it.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	f := c.filter
	c.mu.Unlock()

	b, err := c.transport.FetchBoard(ctx, f)
	if err != nil {
		c.notifyError(fmt.Sprintf("could not load board: %v", err))
		return err
	}

	c.mu.Lock()
	c.columns = normalize(b)
	c.mu.Unlock()
	return nil
}

// View returns a deep copy of the current shadow view.
func (c *Controller) View() model.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.columns.Clone()
}

// State reports whether a move of id is awaiting the server.
func (c *Controller) State(id model.TaskID) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[id]; ok {
		return Mutating
	}
	return Idle
}

// Pending returns the snapshot held for an in-flight move of id.
func (c *Controller) Pending(id model.TaskID) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.inflight[id]
	return s, ok
}

// Move handles a card dropped on the column to. The card moves locally at
// once, then the call blocks until the server answers. Moves of different
// cards may run concurrently; a second move of a card that is still mutating
// is refused with ErrMutationInFlight.
func (c *Controller) Move(ctx context.Context, id model.TaskID, to model.Status) error {
	snap, moved, err := c.apply(id, to)
	if err != nil || !moved {
		return err
	}

	confirmed, err := c.transport.UpdateRemote(ctx, id, model.TaskChanges{Status: &to})
	if err != nil {
		c.rollback(snap)
		c.logger.Warn("move rolled back",
			zap.Int64("task_id", int64(id)),
			zap.String("from", string(snap.Column)),
			zap.String("to", string(to)),
			zap.Error(err),
		)
		c.notifyError(fmt.Sprintf("could not move %q to %s: %v", snap.Task.Title, to, err))
		return err
	}

	c.commit(confirmed)
	c.logger.Debug("move confirmed", zap.Int64("task_id", int64(id)), zap.String("status", string(confirmed.Status)))
	c.notifySuccess(fmt.Sprintf("moved %q to %s", confirmed.Title, confirmed.Status))
	return nil
}

// apply performs the local half of a move and records the snapshot.
func (c *Controller) apply(id model.TaskID, to model.Status) (Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.inflight[id]; busy {
		return Snapshot{}, false, ErrMutationInFlight
	}
	col, idx, ok := c.locate(id)
	if !ok {
		return Snapshot{}, false, ErrUnknownTask
	}
	if col == to {
		return Snapshot{}, false, nil
	}
	if !to.Valid() {
		return Snapshot{}, false, fmt.Errorf("unknown status %q", to)
	}

	task := c.columns[col][idx]
	ahead := make([]model.TaskID, idx)
	for i, t := range c.columns[col][:idx] {
		ahead[i] = t.ID
	}
	snap := Snapshot{Task: task.Clone(), Column: col, Index: idx, Ahead: ahead}

	c.remove(col, idx)
	task.Status = to
	c.columns[to] = append(c.columns[to], task)
	c.inflight[id] = snap
	return snap, true, nil
}

// rollback puts the card back where the snapshot says it was.
func (c *Controller) rollback(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inflight, snap.Task.ID)
	if col, idx, ok := c.locate(snap.Task.ID); ok {
		c.remove(col, idx)
	}
	c.insert(snap.Column, c.rank(snap.Column, snap.Ahead), snap.Task.Clone())
}

// commit merges the server's record into the view.
func (c *Controller) commit(confirmed model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inflight, confirmed.ID)
	col, idx, ok := c.locate(confirmed.ID)
	switch {
	case ok && col == confirmed.Status:
		c.columns[col][idx] = confirmed.Clone()
	case ok:
		c.remove(col, idx)
		c.columns[confirmed.Status] = append(c.columns[confirmed.Status], confirmed.Clone())
	default:
		// карточку убрал Refresh, но ответ сервера пришёл позже
		c.columns[confirmed.Status] = append(c.columns[confirmed.Status], confirmed.Clone())
	}
}

func (c *Controller) locate(id model.TaskID) (model.Status, int, bool) {
	for _, s := range model.Statuses {
		for i, t := range c.columns[s] {
			if t.ID == id {
				return s, i, true
			}
		}
	}
	return "", 0, false
}

// rank returns the position right after the last card of ahead still in col.
func (c *Controller) rank(col model.Status, ahead []model.TaskID) int {
	tasks := c.columns[col]
	for i := len(ahead) - 1; i >= 0; i-- {
		for j, t := range tasks {
			if t.ID == ahead[i] {
				return j + 1
			}
		}
	}
	return 0
}

func (c *Controller) remove(col model.Status, idx int) {
	tasks := c.columns[col]
	c.columns[col] = append(tasks[:idx:idx], tasks[idx+1:]...)
}

func (c *Controller) insert(col model.Status, idx int, t model.Task) {
	tasks := c.columns[col]
	if idx > len(tasks) {
		idx = len(tasks)
	}
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, tasks[:idx]...)
	out = append(out, t)
	out = append(out, tasks[idx:]...)
	c.columns[col] = out
}

func (c *Controller) notifyError(msg string) {
	if c.callbacks.OnError != nil {
		c.callbacks.OnError(msg)
	}
}

func (c *Controller) notifySuccess(msg string) {
	if c.callbacks.OnSuccess != nil {
		c.callbacks.OnSuccess(msg)
	}
}

// normalize copies the known columns of b; unknown keys are dropped.
func normalize(b model.Board) model.Board {
	out := model.NewBoard()
	for _, s := range model.Statuses {
		col := b[s]
		cp := make([]model.Task, len(col))
		for i, t := range col {
			cp[i] = t.Clone()
		}
		out[s] = cp
	}
	return out
}
