package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

const taskColumns = `id, title, description, status, priority, owner_id, deadline, version, created_at, updated_at`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Find(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) FindByID(ctx context.Context, id model.TaskID) (model.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) Insert(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, priority, owner_id, deadline, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+taskColumns,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.OwnerID, t.Deadline, t.CreatedAt, t.UpdatedAt,
	)
	created, err := scanTask(row)
	return created, r.mapError(err)
}

func (r *TaskRepo) Replace(ctx context.Context, id model.TaskID, t model.Task, expectedVersion int) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, priority = $5, owner_id = $6, deadline = $7,
		    updated_at = $8, version = version + 1
		WHERE id = $1 AND ($9 = 0 OR version = $9)
		RETURNING `+taskColumns,
		int64(id), t.Title, t.Description, string(t.Status), string(t.Priority), t.OwnerID, t.Deadline, t.UpdatedAt, expectedVersion,
	)
	updated, err := scanTask(row)
	if !errors.Is(err, pgx.ErrNoRows) {
		return updated, r.mapError(err)
	}

	// строки нет: либо задача удалена, либо версия не совпала
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return model.Task{}, findErr
	}
	return model.Task{}, ErrorConflict
}

func (r *TaskRepo) Remove(ctx context.Context, id model.TaskID) (bool, error) {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", int64(id))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *TaskRepo) SaveIdempotencyKey(ctx context.Context, key string, id model.TaskID) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, resource_id) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, int64(id))
	return err
}

func (r *TaskRepo) GetIdempotencyKey(ctx context.Context, key string) (model.TaskID, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		SELECT resource_id FROM idempotency_keys WHERE key = $1
	`, key).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrorNotFound
	}
	return model.TaskID(id), err
}

func (r *TaskRepo) PurgeIdempotencyKeys(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM idempotency_keys WHERE created_at < $1", before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrorConflict
		}
	}
	return err
}

func scanTask(row pgx.Row) (model.Task, error) {
	var (
		t        model.Task
		id       int64
		status   string
		priority string
	)
	err := row.Scan(&id, &t.Title, &t.Description, &status, &priority, &t.OwnerID, &t.Deadline,
		&t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Task{}, err
	}
	t.ID = model.TaskID(id)
	t.Status = model.Status(status)
	t.Priority = model.Priority(priority)
	if t.Deadline != nil {
		d := model.DateOf(*t.Deadline)
		t.Deadline = &d
	}
	return t, nil
}

// buildWhere переводит фильтр в WHERE с позиционными параметрами
func buildWhere(f model.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Statuses) > 0 {
		vals := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			vals[i] = string(s)
		}
		conds = append(conds, "status = ANY("+arg(vals)+")")
	}
	if len(f.Priorities) > 0 {
		vals := make([]string, len(f.Priorities))
		for i, p := range f.Priorities {
			vals[i] = string(p)
		}
		conds = append(conds, "priority = ANY("+arg(vals)+")")
	}
	if f.Title != "" {
		conds = append(conds, `title ILIKE '%' || `+arg(escapeLike(f.Title))+` || '%' ESCAPE '\'`)
	}
	if f.OwnerID != nil {
		conds = append(conds, "owner_id = "+arg(*f.OwnerID))
	}
	if f.Created.From != nil {
		conds = append(conds, "created_at >= "+arg(model.DateOf(*f.Created.From)))
	}
	if f.Created.To != nil {
		conds = append(conds, "created_at < "+arg(model.DateOf(*f.Created.To).Add(24*time.Hour)))
	}
	if f.Deadline.From != nil {
		conds = append(conds, "deadline >= "+arg(model.DateOf(*f.Deadline.From))+"::date")
	}
	if f.Deadline.To != nil {
		conds = append(conds, "deadline <= "+arg(model.DateOf(*f.Deadline.To))+"::date")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
