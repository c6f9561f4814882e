package model

import "time"

type TaskID int64

// Status - колонка доски
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses перечисляет колонки в порядке отображения на доске
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          TaskID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	c := t
	if t.OwnerID != nil {
		owner := *t.OwnerID
		c.OwnerID = &owner
	}
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	return c
}

// TaskInput - тело запроса на создание
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// TaskChanges is a partial update. Nil fields are left untouched.
// Version, when set, makes the update conditional on the stored version.
type TaskChanges struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *Status    `json:"status,omitempty"`
	Priority      *Priority  `json:"priority,omitempty"`
	OwnerID       *int64     `json:"owner_id,omitempty"`
	ClearOwner    bool       `json:"clear_owner,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ClearDeadline bool       `json:"clear_deadline,omitempty"`
	Version       *int       `json:"version,omitempty"`
}

// Board - задачи, разложенные по колонкам
type Board map[Status][]Task

// NewBoard returns a board with an empty column for every status.
func NewBoard() Board {
	b := make(Board, len(Statuses))
	for _, s := range Statuses {
		b[s] = []Task{}
	}
	return b
}

// GroupByStatus partitions tasks into columns, keeping their relative order.
func GroupByStatus(tasks []Task) Board {
	b := NewBoard()
	for _, t := range tasks {
		b[t.Status] = append(b[t.Status], t)
	}
	return b
}

// Len counts the tasks across all columns.
func (b Board) Len() int {
	n := 0
	for _, col := range b {
		n += len(col)
	}
	return n
}

// Clone deep-copies the board.
func (b Board) Clone() Board {
	c := make(Board, len(b))
	for s, col := range b {
		cp := make([]Task, len(col))
		for i, t := range col {
			cp[i] = t.Clone()
		}
		c[s] = cp
	}
	return c
}
