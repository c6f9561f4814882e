// Package policy decides which status transitions a task may take.
package policy

import "github.com/BuzzLyutic/kanban-board/internal/model"

// Policy is the seam for workflow rules. Implementations must be pure and total.
type Policy interface {
	IsAllowed(current, requested model.Status) bool
}

// AllowAll permits every transition, including no-op and backward moves.
// The board lets cards be dragged freely between any two columns.
type AllowAll struct{}

func (AllowAll) IsAllowed(current, requested model.Status) bool {
	return true
}

// Func adapts a plain function to Policy.
type Func func(current, requested model.Status) bool

func (f Func) IsAllowed(current, requested model.Status) bool {
	return f(current, requested)
}
