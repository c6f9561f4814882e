package model

import (
	"strings"
	"time"
)

// DateRange is an inclusive calendar-date range. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// Contains reports whether t falls on a day within the range.
func (r DateRange) Contains(t time.Time) bool {
	day := DateOf(t)
	if r.From != nil && day.Before(DateOf(*r.From)) {
		return false
	}
	if r.To != nil && day.After(DateOf(*r.To)) {
		return false
	}
	return true
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TaskFilter - набор независимых предикатов, объединённых через AND.
// Пустое поле означает "без ограничения".
type TaskFilter struct {
	Statuses   []Status
	Priorities []Priority
	Title      string
	OwnerID    *int64
	Created    DateRange
	Deadline   DateRange
}

// IsIdentity reports whether the filter matches every task.
func (f TaskFilter) IsIdentity() bool {
	return len(f.Statuses) == 0 && len(f.Priorities) == 0 && f.Title == "" &&
		f.OwnerID == nil && f.Created.IsZero() && f.Deadline.IsZero()
}

// Match evaluates all predicates against t.
func (f TaskFilter) Match(t Task) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.OwnerID != nil && (t.OwnerID == nil || *t.OwnerID != *f.OwnerID) {
		return false
	}
	if !f.Created.IsZero() && !f.Created.Contains(t.CreatedAt) {
		return false
	}
	if !f.Deadline.IsZero() && (t.Deadline == nil || !f.Deadline.Contains(*t.Deadline)) {
		return false
	}
	return true
}

func containsStatus(set []Status, s Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []Priority, p Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}
