package repository

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tasklist/internal/adapter/database/postgres"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	tel "tasklist/internal/core/telemetry"
)

const taskEntity = "task"

var taskReturning = "RETURNING " + strings.Join(postgres.TaskColumns, ", ")

type TaskRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
}

func NewTaskRepository(db *postgres.DB, telemetry port.Telemetry) port.TaskRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TaskRepository{db: db, telemetry: telemetry}
}

func (tr *TaskRepository) ListByOwner(ctx context.Context, ownerID int, limit int, after *domain.TaskCursor) (tasks []domain.Task, hasNext bool, err error) {
	ctx, finish := track(ctx, tr.telemetry, "ListByOwner", taskEntity, "tasks", map[string]interface{}{
		"db.operation":     "SELECT",
		"user.id":          ownerID,
		"pagination.limit": limit,
	})
	defer func() { finish(err) }()

	query := tr.db.QueryBuilder.Select(postgres.TaskColumns...).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC")

	if after != nil {
		query = query.Where(sq.Or{
			sq.Lt{"created_at": after.CreatedAt},
			sq.And{
				sq.Eq{"created_at": after.CreatedAt},
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

	rows, err := tr.db.Query(ctx, stmt, args...)

	if err != nil {
		return nil, false, err
	}

	defer rows.Close()

	tasks = []domain.Task{}

	for rows.Next() {
		task, err := postgres.ScanTask(rows)

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
	ctx, finish := track(ctx, tr.telemetry, "GetByID", taskEntity, "tasks", map[string]interface{}{
		"db.operation": "SELECT",
		"task.id":      id,
		"user.id":      ownerID,
	})
	defer func() { finish(err) }()

	stmt, args, err := tr.db.QueryBuilder.Select(postgres.TaskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	task, err = postgres.ScanTask(tr.db.QueryRow(ctx, stmt, args...))

	return task, postgres.NotFound(err, domain.ErrTaskNotFound)
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (saved domain.Task, err error) {
	ctx, finish := track(ctx, tr.telemetry, "Create", taskEntity, "tasks", map[string]interface{}{
		"db.operation": "INSERT",
		"user.id":      task.OwnerID,
	})
	defer func() { finish(err) }()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	stmt, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("owner_id", "name", "completed", "created_at").
		Values(task.OwnerID, task.Name, task.Completed, task.CreatedAt).
		Suffix(taskReturning).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Create", taskEntity, stmt, args)

	return postgres.ScanTask(tr.db.QueryRow(ctx, stmt, args...))
}

func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) (updated domain.Task, err error) {
	ctx, finish := track(ctx, tr.telemetry, "Update", taskEntity, "tasks", map[string]interface{}{
		"db.operation": "UPDATE",
		"task.id":      task.ID,
		"user.id":      task.OwnerID,
	})
	defer func() { finish(err) }()

	stmt, args, err := tr.db.QueryBuilder.Update("tasks").
		Set("name", task.Name).
		Set("completed", task.Completed).
		Where(sq.Eq{"id": task.ID, "owner_id": task.OwnerID}).
		Suffix(taskReturning).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Update", taskEntity, stmt, args)

	updated, err = postgres.ScanTask(tr.db.QueryRow(ctx, stmt, args...))

	return updated, postgres.NotFound(err, domain.ErrTaskNotFound)
}

func (tr *TaskRepository) Delete(ctx context.Context, id int, ownerID int) (err error) {
	ctx, finish := track(ctx, tr.telemetry, "Delete", taskEntity, "tasks", map[string]interface{}{
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

	tag, err := tr.db.Exec(ctx, stmt, args...)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}
