package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// TaskService coordinates staff task management and the portal task view.
type TaskService struct {
	tasks      repository.TaskRepository
	dispatcher events.Dispatcher
}

// NewTaskService constructs the service.
func NewTaskService(tasks repository.TaskRepository, dispatcher events.Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, dispatcher: dispatcher}
}

// TaskInput describes task create/update payloads.
type TaskInput struct {
	Title          string
	Description    string
	Status         domain.TaskStatus
	DueDate        *time.Time
	AccountID      *string
	ContactID      *string
	AssignedUserID *string
}

// CreateTask creates a task.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*domain.Task, error) {
	if input.Title == "" {
		return nil, apperrors.NewValidationError("task title required", nil)
	}
	status := input.Status
	if status == "" {
		status = domain.TaskStatusOpen
	}
	if !domain.ValidTaskStatus(status) {
		return nil, apperrors.NewValidationError("unknown task status", map[string]any{"status": status})
	}

	task := &domain.Task{
		Title:          input.Title,
		Description:    input.Description,
		Status:         status,
		DueDate:        input.DueDate,
		AccountID:      input.AccountID,
		ContactID:      input.ContactID,
		AssignedUserID: input.AssignedUserID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask replaces task fields.
func (s *TaskService) UpdateTask(ctx context.Context, id string, input TaskInput) (*domain.Task, error) {
	if input.Title == "" {
		return nil, apperrors.NewValidationError("task title required", nil)
	}
	if !domain.ValidTaskStatus(input.Status) {
		return nil, apperrors.NewValidationError("unknown task status", map[string]any{"status": input.Status})
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": id})
		}
		return nil, err
	}

	oldStatus := task.Status
	task.Title = input.Title
	task.Description = input.Description
	task.Status = input.Status
	task.DueDate = input.DueDate
	task.AccountID = input.AccountID
	task.ContactID = input.ContactID
	task.AssignedUserID = input.AssignedUserID
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if oldStatus != task.Status {
		s.publishStatusChange(ctx, task, oldStatus)
	}
	return task, nil
}

// ListTasks lists tasks for staff with optional filters.
func (s *TaskService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return s.tasks.List(ctx, filter)
}

// ListContactTasks lists tasks visible to a portal contact.
func (s *TaskService) ListContactTasks(ctx context.Context, contactID string, limit, offset int) ([]domain.Task, error) {
	return s.tasks.List(ctx, repository.TaskFilter{
		ContactID: &contactID,
		Limit:     limit,
		Offset:    offset,
	})
}

// UpdateContactTaskStatus lets a portal contact move one of their own tasks
// to a new status. Tasks of other contacts read as not found.
func (s *TaskService) UpdateContactTaskStatus(ctx context.Context, contactID, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	if !domain.ValidTaskStatus(status) {
		return nil, apperrors.NewValidationError("unknown task status", map[string]any{"status": status})
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return nil, err
	}
	if task.ContactID == nil || *task.ContactID != contactID {
		return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
	}

	oldStatus := task.Status
	task.Status = status
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if oldStatus != task.Status {
		s.publishStatusChange(ctx, task, oldStatus)
	}
	return task, nil
}

func (s *TaskService) publishStatusChange(ctx context.Context, task *domain.Task, oldStatus domain.TaskStatus) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTaskStatusChanged,
		Timestamp: time.Now(),
		Payload: events.TaskStatusChangedPayload{
			TaskID:    task.ID,
			OldStatus: oldStatus,
			NewStatus: task.Status,
		},
	})
}
