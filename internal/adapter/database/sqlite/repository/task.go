package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tasklist/internal/adapter/database/sqlite"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	tel "tasklist/internal/core/telemetry"
)

const taskEntity = "task"

type TaskRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *sqlite.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{
		db:        db,
		telemetry: telemetry,
	}
}

// ListByOwner returns the owner's tasks newest first. A positive limit reads
// one extra row to tell whether another page exists.
func (tr *TaskRepository) ListByOwner(ctx context.Context, ownerID int, limit int, after *domain.TaskCursor) (tasks []domain.Task, hasNext bool, err error) {
	ctx, finish := tr.track(ctx, "ListByOwner", map[string]interface{}{
		"db.operation":     "SELECT",
		"user.id":          ownerID,
		"pagination.limit": limit,
	})
	defer func() { finish(err) }()

	query := tr.db.QueryBuilder.Select(sqlite.TaskColumns...).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC")

	if after != nil {
		query = query.Where(sq.Or{
			sq.Lt{"created_at": after.CreatedAt.UTC()},
			sq.And{
				sq.Eq{"created_at": after.CreatedAt.UTC()},
				sq.Lt{"id": after.ID},
			},
		})
	}

	if limit > 0 {
		query = query.Limit(uint64(limit + 1))
	}

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, false, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "ListByOwner", taskEntity, stmt, args)

	rows, err := tr.db.QueryContext(ctx, stmt, args...)

	if err != nil {
		return nil, false, err
	}

	defer rows.Close()

	tasks = []domain.Task{}

	for rows.Next() {
		task, err := sqlite.ScanTask(rows)

		if err != nil {
			return nil, false, err
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
		hasNext = true
	}

	return tasks, hasNext, nil
}

func (tr *TaskRepository) GetByID(ctx context.Context, id int, ownerID int) (task domain.Task, err error) {
	ctx, finish := tr.track(ctx, "GetByID", map[string]interface{}{
		"db.operation": "SELECT",
		"task.id":      id,
		"user.id":      ownerID,
	})
	defer func() { finish(err) }()

	stmt, args, err := tr.db.QueryBuilder.Select(sqlite.TaskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	task, err = sqlite.ScanTask(tr.db.QueryRowContext(ctx, stmt, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	return task, err
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (saved domain.Task, err error) {
	ctx, finish := tr.track(ctx, "Create", map[string]interface{}{
		"db.operation": "INSERT",
		"user.id":      task.OwnerID,
	})
	defer func() { finish(err) }()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	stmt, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("owner_id", "name", "completed", "created_at").
		Values(task.OwnerID, task.Name, task.Completed, task.CreatedAt.UTC()).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", taskEntity, stmt, args)

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return domain.Task{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.Task{}, err
	}

	return tr.GetByID(ctx, int(id), task.OwnerID)
}

// Update writes the mutable columns. owner_id and created_at never change.
func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) (updated domain.Task, err error) {
	ctx, finish := tr.track(ctx, "Update", map[string]interface{}{
		"db.operation": "UPDATE",
		"task.id":      task.ID,
		"user.id":      task.OwnerID,
	})
	defer func() { finish(err) }()

	stmt, args, err := tr.db.QueryBuilder.Update("tasks").
		Set("name", task.Name).
		Set("completed", task.Completed).
		Where(sq.Eq{"id": task.ID, "owner_id": task.OwnerID}).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Update", taskEntity, stmt, args)

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return domain.Task{}, err
	}

	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected == 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	return tr.GetByID(ctx, task.ID, task.OwnerID)
}

func (tr *TaskRepository) Delete(ctx context.Context, id int, ownerID int) (err error) {
	ctx, finish := tr.track(ctx, "Delete", map[string]interface{}{
		"db.operation": "DELETE",
		"task.id":      id,
		"user.id":      ownerID,
	})
	defer func() { finish(err) }()

	stmt, args, err := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

func (tr *TaskRepository) track(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, func(error)) {
	return track(ctx, tr.telemetry, operation, taskEntity, "tasks", attrs)
}
