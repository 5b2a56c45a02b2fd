package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/taskmaster/planner/internal/application/query"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

// TaskService handles task-related operations. Every read recomputes from the
// persisted collection.
type TaskService struct {
	repo     ports.TaskCollection
	clock    clock.Clock
	validate *validator.Validate
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(repo ports.TaskCollection, clk clock.Clock, validate *validator.Validate, log *logger.Logger) *TaskService {
	return &TaskService{
		repo:     repo,
		clock:    clk,
		validate: validate,
		logger:   log.WithComponent("task_service"),
	}
}

func (s *TaskService) today() entities.Date {
	return clock.Today(s.clock)
}

// CreateTask validates the request and appends a new open task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	priority, err := entities.ParsePriority(req.Priority)
	if err != nil {
		return nil, fmt.Errorf("%w: priority %q", entities.ErrInvalidInput, req.Priority)
	}
	date, err := entities.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	task := entities.Task{
		ID:          uuid.NewString(),
		Text:        strings.TrimSpace(req.Text),
		Description: strings.TrimSpace(req.Description),
		Priority:    priority,
		Date:        date,
		CreatedAt:   s.today(),
	}

	err = s.repo.UpdateTasks(ctx, func(tasks []entities.Task) ([]entities.Task, bool, error) {
		return append(tasks, task), true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.LogMutation("tasks", "create", task.ID, map[string]interface{}{
		"priority": task.Priority,
		"date":     task.Date,
	})

	return &task, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id string) (*entities.Task, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, entities.ErrTaskNotFound
}

// ListTasks returns the collection in stored order
func (s *TaskService) ListTasks(ctx context.Context) ([]entities.Task, error) {
	return s.repo.LoadTasks(ctx)
}

// UpdateTask edits text, description, priority and date. Identity, creation
// date and completion state are left alone.
func (s *TaskService) UpdateTask(ctx context.Context, id string, req ports.UpdateTaskRequest) (*entities.Task, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	var priority entities.Priority
	if req.Priority != nil {
		p, err := entities.ParsePriority(*req.Priority)
		if err != nil {
			return nil, fmt.Errorf("%w: priority %q", entities.ErrInvalidInput, *req.Priority)
		}
		priority = p
	}
	var date entities.Date
	if req.Date != nil {
		d, err := entities.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		date = d
	}

	var updated entities.Task
	err := s.repo.UpdateTasks(ctx, func(tasks []entities.Task) ([]entities.Task, bool, error) {
		i := indexOfTask(tasks, id)
		if i < 0 {
			return nil, false, entities.ErrTaskNotFound
		}
		t := &tasks[i]
		if req.Text != nil {
			t.Text = strings.TrimSpace(*req.Text)
		}
		if req.Description != nil {
			t.Description = strings.TrimSpace(*req.Description)
		}
		if req.Priority != nil {
			t.Priority = priority
		}
		if req.Date != nil {
			t.Date = date
		}
		updated = *t
		return tasks, true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogMutation("tasks", "update", id, nil)
	return &updated, nil
}

// ToggleTask flips completion and keeps completedAt in step. An unknown id
// returns ErrTaskNotFound and writes nothing.
func (s *TaskService) ToggleTask(ctx context.Context, id string) (*entities.Task, error) {
	today := s.today()

	var toggled entities.Task
	err := s.repo.UpdateTasks(ctx, func(tasks []entities.Task) ([]entities.Task, bool, error) {
		i := indexOfTask(tasks, id)
		if i < 0 {
			return nil, false, entities.ErrTaskNotFound
		}
		tasks[i].SetCompleted(!tasks[i].Completed, today)
		toggled = tasks[i]
		return tasks, true, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogMutation("tasks", "toggle", id, map[string]interface{}{
		"completed": toggled.Completed,
	})
	return &toggled, nil
}

// DeleteTask removes a task. Deleting an unknown id is a silent no-op.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	removed := false
	err := s.repo.UpdateTasks(ctx, func(tasks []entities.Task) ([]entities.Task, bool, error) {
		i := indexOfTask(tasks, id)
		if i < 0 {
			return tasks, false, nil
		}
		removed = true
		return append(tasks[:i], tasks[i+1:]...), true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if removed {
		s.logger.LogMutation("tasks", "delete", id, nil)
	}
	return nil
}

// ClearTasks removes every task
func (s *TaskService) ClearTasks(ctx context.Context) error {
	if err := s.repo.SaveTasks(ctx, []entities.Task{}); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	s.logger.LogMutation("tasks", "clear", "", nil)
	return nil
}

// GetFilteredTasks filters by status and priority and orders dated tasks
// first, ascending, with undated tasks after them in stored order.
func (s *TaskService) GetFilteredTasks(ctx context.Context, status entities.TaskStatusFilter, priority string) ([]entities.Task, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	filtered := query.FilterTasks(tasks, query.TaskStatus(status), query.TaskPriority(priority))
	return query.OrderTasksByDueDate(filtered), nil
}

// QueryTasks applies status, priority and text filters, then orders the result
// by q.Sort or, when it is empty, by due date.
func (s *TaskService) QueryTasks(ctx context.Context, q ports.TaskQuery) ([]entities.Task, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	filtered := query.FilterTasks(tasks,
		query.TaskStatus(entities.ParseStatusFilter(q.Status)),
		query.TaskPriority(q.Priority),
		query.TaskText(q.Text),
	)
	if q.Sort == "" {
		return query.OrderTasksByDueDate(filtered), nil
	}
	return query.SortTasks(filtered, q.Sort), nil
}

// GetTaskStats aggregates the current collection
func (s *TaskService) GetTaskStats(ctx context.Context) (entities.TaskStats, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return entities.TaskStats{}, err
	}
	return ComputeTaskStats(tasks), nil
}

// ComputeTaskStats is the pure part of GetTaskStats.
func ComputeTaskStats(tasks []entities.Task) entities.TaskStats {
	stats := entities.TaskStats{Total: len(tasks)}
	for i := range tasks {
		if tasks[i].Completed {
			stats.Completed++
		}
	}
	stats.Active = stats.Total - stats.Completed
	stats.CompletionRate = entities.Percent(stats.Completed, stats.Total)
	return stats
}

// SearchTasks matches text or description, ignoring case. A blank query
// returns every task in stored order.
func (s *TaskService) SearchTasks(ctx context.Context, q string) ([]entities.Task, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterTasks(tasks, query.TaskText(q)), nil
}

// GetOverdueTasks returns open tasks due before today
func (s *TaskService) GetOverdueTasks(ctx context.Context) ([]entities.Task, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterTasks(tasks, query.TaskOverdue(s.today())), nil
}

// GetTasksByPriority returns tasks with exactly the given priority
func (s *TaskService) GetTasksByPriority(ctx context.Context, priority entities.Priority) ([]entities.Task, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterTasks(tasks, query.TaskPriority(string(priority))), nil
}

// GetTasksByDate returns tasks due on the given day
func (s *TaskService) GetTasksByDate(ctx context.Context, date entities.Date) ([]entities.Task, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	return query.FilterTasks(tasks, query.TaskDueOn(date)), nil
}

// BackfillTimestamps repairs legacy records: a missing createdAt becomes the
// due date or today, a completed task without completedAt is stamped today and
// an open task loses a stray completedAt. It returns the number of tasks
// touched and writes only when that is non-zero.
func (s *TaskService) BackfillTimestamps(ctx context.Context) (int, error) {
	today := s.today()
	touched := 0

	err := s.repo.UpdateTasks(ctx, func(tasks []entities.Task) ([]entities.Task, bool, error) {
		for i := range tasks {
			if backfillTask(&tasks[i], today) {
				touched++
			}
		}
		return tasks, touched > 0, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to backfill tasks: %w", err)
	}

	if touched > 0 {
		s.logger.Infow("Backfilled task timestamps", "tasks", touched)
	}
	return touched, nil
}

func backfillTask(t *entities.Task, today entities.Date) bool {
	changed := false
	if t.CreatedAt.IsZero() {
		if t.HasDueDate() {
			t.CreatedAt = t.Date.Day()
		} else {
			t.CreatedAt = today
		}
		changed = true
	}
	switch {
	case t.Completed && t.CompletedAt == nil:
		t.CompletedAt = today.Ptr()
		changed = true
	case !t.Completed && t.CompletedAt != nil:
		t.CompletedAt = nil
		changed = true
	}
	return changed
}

// ExportTasks returns the collection as indented JSON
func (s *TaskService) ExportTasks(ctx context.Context) ([]byte, error) {
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(tasks, "", "  ")
}

// ImportTasks replaces the collection with a JSON array of tasks. Records
// missing an id get one and legacy timestamps are repaired on the way in.
func (s *TaskService) ImportTasks(ctx context.Context, data []byte) (int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return 0, fmt.Errorf("%w: expected a JSON array of tasks", entities.ErrInvalidInput)
	}

	var tasks []entities.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return 0, fmt.Errorf("%w: %v", entities.ErrInvalidInput, err)
	}

	today := s.today()
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
		}
		if !tasks[i].Priority.Valid() {
			tasks[i].Priority = entities.PriorityMedium
		}
		backfillTask(&tasks[i], today)
	}

	if err := s.repo.SaveTasks(ctx, tasks); err != nil {
		return 0, fmt.Errorf("failed to import tasks: %w", err)
	}

	s.logger.LogMutation("tasks", "import", "", map[string]interface{}{"count": len(tasks)})
	return len(tasks), nil
}

func indexOfTask(tasks []entities.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
