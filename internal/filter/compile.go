// Package filter compiles loosely-typed query parameters into a model.TaskFilter.
//
// Recognised keys are status, priority, title, userId, dateFrom, dateTo,
// deadlineFrom and deadlineTo. Every key is optional and unknown keys are
// ignored. Compile is pure and safe for concurrent use.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

const (
	KeyStatus       = "status"
	KeyPriority     = "priority"
	KeyTitle        = "title"
	KeyUserID       = "userId"
	KeyDateFrom     = "dateFrom"
	KeyDateTo       = "dateTo"
	KeyDeadlineFrom = "deadlineFrom"
	KeyDeadlineTo   = "deadlineTo"
)

// DateLayout is the calendar-date format accepted for range keys.
const DateLayout = "2006-01-02"

var ErrParse = errors.New("parse error")

// ParseError names the query key and the offending token.
type ParseError struct {
	Key    string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Key, e.Token, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// FromQuery compiles URL query values. Repeated status and priority keys are
// joined into one list; any other key repeated with different values is an error.
func FromQuery(q url.Values) (model.TaskFilter, error) {
	raw := make(map[string]string, len(q))
	for k, v := range q {
		if len(v) == 0 {
			continue
		}
		switch k {
		case KeyStatus, KeyPriority:
			raw[k] = strings.Join(v, ",")
		default:
			for _, other := range v[1:] {
				if other != v[0] {
					return model.TaskFilter{}, &ParseError{Key: k, Token: strings.Join(v, ","), Reason: "repeated with different values"}
				}
			}
			raw[k] = v[0]
		}
	}
	return Compile(raw)
}

// Compile parses raw parameters into a filter. An empty map yields the identity filter.
// A dateFrom later than dateTo is accepted and simply matches nothing.
func Compile(raw map[string]string) (model.TaskFilter, error) {
	var f model.TaskFilter

	if v, ok := present(raw, KeyStatus); ok {
		statuses, err := parseList(KeyStatus, v, func(tok string) (model.Status, bool) {
			s := model.Status(tok)
			return s, s.Valid()
		})
		if err != nil {
			return model.TaskFilter{}, err
		}
		f.Statuses = statuses
	}

	if v, ok := present(raw, KeyPriority); ok {
		priorities, err := parseList(KeyPriority, v, func(tok string) (model.Priority, bool) {
			p := model.Priority(tok)
			return p, p.Valid()
		})
		if err != nil {
			return model.TaskFilter{}, err
		}
		f.Priorities = priorities
	}

	// title берём как есть, это литерал, а не шаблон
	if v, ok := raw[KeyTitle]; ok {
		f.Title = v
	}

	if v, ok := present(raw, KeyUserID); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return model.TaskFilter{}, &ParseError{Key: KeyUserID, Token: v, Reason: "not an integer"}
		}
		if id <= 0 {
			return model.TaskFilter{}, &ParseError{Key: KeyUserID, Token: v, Reason: "must be positive"}
		}
		f.OwnerID = &id
	}

	var err error
	if f.Created, err = parseRange(raw, KeyDateFrom, KeyDateTo); err != nil {
		return model.TaskFilter{}, err
	}
	if f.Deadline, err = parseRange(raw, KeyDeadlineFrom, KeyDeadlineTo); err != nil {
		return model.TaskFilter{}, err
	}

	return f, nil
}

func present(raw map[string]string, key string) (string, bool) {
	v, ok := raw[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// parseList splits a comma-separated enumeration, dropping duplicates and
// keeping first-seen order.
func parseList[T comparable](key, v string, lookup func(string) (T, bool)) ([]T, error) {
	parts := strings.Split(v, ",")
	out := make([]T, 0, len(parts))
	seen := make(map[T]struct{}, len(parts))
	for _, p := range parts {
		tok := strings.TrimSpace(p)
		val, ok := lookup(tok)
		if !ok {
			return nil, &ParseError{Key: key, Token: tok, Reason: "unknown value"}
		}
		if _, dup := seen[val]; dup {
			continue
		}
		seen[val] = struct{}{}
		out = append(out, val)
	}
	return out, nil
}

func parseRange(raw map[string]string, fromKey, toKey string) (model.DateRange, error) {
	var r model.DateRange
	if v, ok := present(raw, fromKey); ok {
		d, err := parseDate(fromKey, v)
		if err != nil {
			return r, err
		}
		r.From = &d
	}
	if v, ok := present(raw, toKey); ok {
		d, err := parseDate(toKey, v)
		if err != nil {
			return r, err
		}
		r.To = &d
	}
	return r, nil
}

func parseDate(key, v string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, &ParseError{Key: key, Token: v, Reason: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// Encode renders f back into query parameters that Compile accepts.
func Encode(f model.TaskFilter) url.Values {
	q := url.Values{}
	if len(f.Statuses) > 0 {
		toks := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			toks[i] = string(s)
		}
		q.Set(KeyStatus, strings.Join(toks, ","))
	}
	if len(f.Priorities) > 0 {
		toks := make([]string, len(f.Priorities))
		for i, p := range f.Priorities {
			toks[i] = string(p)
		}
		q.Set(KeyPriority, strings.Join(toks, ","))
	}
	if f.Title != "" {
		q.Set(KeyTitle, f.Title)
	}
	if f.OwnerID != nil {
		q.Set(KeyUserID, strconv.FormatInt(*f.OwnerID, 10))
	}
	setDate(q, KeyDateFrom, f.Created.From)
	setDate(q, KeyDateTo, f.Created.To)
	setDate(q, KeyDeadlineFrom, f.Deadline.From)
	setDate(q, KeyDeadlineTo, f.Deadline.To)
	return q
}

func setDate(q url.Values, key string, t *time.Time) {
	if t != nil {
		q.Set(key, t.Format(DateLayout))
	}
}
