package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	"tasklist/internal/core/telemetry"
	"tasklist/internal/core/util"
)

const taskServiceName = "task"

type TaskService struct {
	repo      port.TaskRepository
	validator port.Validator
	cursor    *util.CursorCodec
	telemetry port.Telemetry
	cache     port.CacheRepository
	cacheTTL  time.Duration
	metrics   *telemetry.AppMetrics
	logger    *zap.Logger
}

type cachedTaskPage struct {
	Tasks      []domain.Task `json:"tasks"`
	NextCursor string        `json:"next_cursor"`
}

func NewTaskService(repo port.TaskRepository, validator port.Validator, cursor *util.CursorCodec, probe port.Telemetry) *TaskService {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	return &TaskService{
		repo:      repo,
		validator: validator,
		cursor:    cursor,
		telemetry: probe,
		logger:    zap.NewNop(),
	}
}

// WithCache enables the owner-keyed list cache. A nil cache or a zero ttl
// leaves caching off.
func (ts *TaskService) WithCache(cache port.CacheRepository, ttl time.Duration) *TaskService {
	ts.cache = cache
	ts.cacheTTL = ttl
	return ts
}

func (ts *TaskService) WithMetrics(metrics *telemetry.AppMetrics) *TaskService {
	ts.metrics = metrics
	return ts
}

func (ts *TaskService) WithLogger(logger *zap.Logger) *TaskService {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

func (ts *TaskService) List(ctx context.Context, ownerID int, limit int, cursor string) (page *port.TaskPage, err error) {
	ctx, done := ts.observe(ctx, "List", ownerID)
	defer func() { done(err) }()

	if limit < 0 {
		limit = 0
	}

	// A write between the read below and storePage bumps the generation, so
	// a stale page lands under a key no later List will ask for.
	gen, cacheable := ts.generation(ctx, ownerID)
	key := taskListCacheKey(ownerID, gen, limit, cursor)

	if cacheable {
		if cached, ok := ts.loadPage(ctx, key); ok {
			return cached, nil
		}
	}

	var after *domain.TaskCursor

	if cursor != "" {
		createdAt, id, err := ts.cursor.Decode(ownerID, cursor)

		if err != nil {
			return nil, err
		}

		after = &domain.TaskCursor{CreatedAt: createdAt, ID: id}
	}

	tasks, hasNext, err := ts.repo.ListByOwner(ctx, ownerID, limit, after)

	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	page = &port.TaskPage{Tasks: tasks}

	if hasNext && len(tasks) > 0 {
		last := tasks[len(tasks)-1]
		page.NextCursor = ts.cursor.Encode(ownerID, last.CreatedAt, last.ID)
	}

	if cacheable {
		ts.storePage(ctx, key, page)
	}

	return page, nil
}

func (ts *TaskService) Get(ctx context.Context, id int, ownerID int) (task domain.Task, err error) {
	ctx, done := ts.observe(ctx, "Get", ownerID)
	defer func() { done(err) }()

	return ts.repo.GetByID(ctx, id, ownerID)
}

func (ts *TaskService) Create(ctx context.Context, ownerID int, name string, completed bool) (task domain.Task, err error) {
	ctx, done := ts.observe(ctx, "Create", ownerID)
	defer func() { done(err) }()

	newTask := domain.Task{
		Name:      strings.TrimSpace(name),
		Completed: completed,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := ts.validator.ValidateStruct(newTask); err != nil {
		return domain.Task{}, err
	}

	saved, err := ts.repo.Create(ctx, newTask)

	if err != nil {
		ts.logger.Error("Repository create failed", zap.Error(err), zap.Int("owner_id", ownerID))
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}

	ts.invalidate(ctx, ownerID)

	ts.telemetry.RecordBusinessEvent(ctx, "created", "task", strconv.Itoa(saved.ID), ownerID, map[string]interface{}{
		"completed": saved.Completed,
	})

	return saved, nil
}

func (ts *TaskService) Update(ctx context.Context, id int, ownerID int, patch domain.TaskPatch) (task domain.Task, err error) {
	ctx, done := ts.observe(ctx, "Update", ownerID)
	defer func() { done(err) }()

	current, err := ts.repo.GetByID(ctx, id, ownerID)

	if err != nil {
		return domain.Task{}, err
	}

	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}

	current.Apply(patch)

	if err := ts.validator.ValidateStruct(current); err != nil {
		return domain.Task{}, err
	}

	updated, err := ts.repo.Update(ctx, current)

	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.Task{}, err
		}

		return domain.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}

	ts.invalidate(ctx, ownerID)

	ts.telemetry.RecordBusinessEvent(ctx, "updated", "task", strconv.Itoa(updated.ID), ownerID, map[string]interface{}{
		"name_changed":      patch.Name != nil,
		"completed_changed": patch.Completed != nil,
	})

	return updated, nil
}

func (ts *TaskService) Delete(ctx context.Context, id int, ownerID int) (err error) {
	ctx, done := ts.observe(ctx, "Delete", ownerID)
	defer func() { done(err) }()

	if err := ts.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	ts.invalidate(ctx, ownerID)

	ts.telemetry.RecordBusinessEvent(ctx, "deleted", "task", strconv.Itoa(id), ownerID, nil)

	return nil
}

func (ts *TaskService) observe(ctx context.Context, operation string, ownerID int) (context.Context, func(error)) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, taskServiceName, operation, ownerID, nil)
	start := time.Now()

	return ctx, func(err error) {
		ts.telemetry.RecordServiceOperation(ctx, taskServiceName, operation, ownerID, time.Since(start), err)

		if ts.metrics != nil {
			ts.metrics.RecordTaskOperation(ctx, strings.ToLower(operation), err)
		}

		span.End()
	}
}

func (ts *TaskService) generation(ctx context.Context, ownerID int) (int64, bool) {
	if ts.cache == nil || ts.cacheTTL <= 0 {
		return 0, false
	}

	gen, err := ts.cache.IncrBy(ctx, taskGenerationKey(ownerID), 0)

	if err != nil {
		ts.logger.Warn("Task cache generation read failed", zap.Int("owner_id", ownerID), zap.Error(err))
		return 0, false
	}

	return gen, true
}

func (ts *TaskService) loadPage(ctx context.Context, key string) (*port.TaskPage, bool) {
	if ts.cache == nil || ts.cacheTTL <= 0 {
		return nil, false
	}

	data, err := ts.cache.Get(ctx, key)

	if err != nil || data == nil {
		if err != nil {
			ts.logger.Warn("Task cache read failed", zap.String("key", key), zap.Error(err))
		}

		if ts.metrics != nil {
			ts.metrics.RecordCacheMiss(ctx, "task")
		}

		return nil, false
	}

	var cached cachedTaskPage

	if err := json.Unmarshal(data, &cached); err != nil {
		_ = ts.cache.Delete(ctx, key)
		return nil, false
	}

	if ts.metrics != nil {
		ts.metrics.RecordCacheHit(ctx, "task")
	}

	return &port.TaskPage{Tasks: cached.Tasks, NextCursor: cached.NextCursor}, true
}

func (ts *TaskService) storePage(ctx context.Context, key string, page *port.TaskPage) {
	if ts.cache == nil || ts.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(cachedTaskPage{Tasks: page.Tasks, NextCursor: page.NextCursor})

	if err != nil {
		return
	}

	if err := ts.cache.Set(ctx, key, data, ts.cacheTTL); err != nil {
		ts.logger.Warn("Task cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (ts *TaskService) invalidate(ctx context.Context, ownerID int) {
	invalidateTaskCache(ctx, ts.cache, ts.logger, ownerID)
}

func invalidateTaskCache(ctx context.Context, cache port.CacheRepository, logger *zap.Logger, ownerID int) {
	if cache == nil {
		return
	}

	if _, err := cache.IncrBy(ctx, taskGenerationKey(ownerID), 1); err != nil {
		logger.Warn("Task cache generation bump failed", zap.Int("owner_id", ownerID), zap.Error(err))
	}

	if err := cache.DeleteByPrefix(ctx, taskCachePrefix(ownerID)); err != nil {
		logger.Warn("Task cache invalidation failed", zap.Int("owner_id", ownerID), zap.Error(err))
	}
}

func taskCachePrefix(ownerID int) string {
	return fmt.Sprintf("tasks:%d:", ownerID)
}

func taskGenerationKey(ownerID int) string {
	return fmt.Sprintf("taskgen:%d", ownerID)
}

func taskListCacheKey(ownerID int, gen int64, limit int, cursor string) string {
	return fmt.Sprintf("%s%d:%d:%s", taskCachePrefix(ownerID), gen, limit, cursor)
}
