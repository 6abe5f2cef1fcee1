package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

func TestCreateTaskDefaultsToOpen(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo(), nil)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{Title: "Call back customer"})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusOpen, task.Status)
	assert.NotEmpty(t, task.ID)

	_, err = svc.CreateTask(ctx, TaskInput{Title: ""})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.CreateTask(ctx, TaskInput{Title: "x", Status: "ARCHIVED"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestUpdateTask(t *testing.T) {
	tasks := newFakeTaskRepo()
	svc := NewTaskService(tasks, nil)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, TaskInput{Title: "Prepare quote"})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(ctx, task.ID, TaskInput{Title: "Prepare quote", Status: domain.TaskStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)

	_, err = svc.UpdateTask(ctx, "missing", TaskInput{Title: "x", Status: domain.TaskStatusOpen})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestListContactTasksScopesToContact(t *testing.T) {
	tasks := newFakeTaskRepo()
	svc := NewTaskService(tasks, nil)
	ctx := context.Background()

	mine := "contact-1"
	other := "contact-2"
	_, err := svc.CreateTask(ctx, TaskInput{Title: "Mine", ContactID: &mine})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, TaskInput{Title: "Theirs", ContactID: &other})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, TaskInput{Title: "Unlinked"})
	require.NoError(t, err)

	visible, err := svc.ListContactTasks(ctx, mine, 50, 0)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Mine", visible[0].Title)
}

func TestUpdateContactTaskStatus(t *testing.T) {
	tasks := newFakeTaskRepo()
	svc := NewTaskService(tasks, nil)
	ctx := context.Background()

	mine := "contact-1"
	task, err := svc.CreateTask(ctx, TaskInput{Title: "Upload documents", ContactID: &mine})
	require.NoError(t, err)

	updated, err := svc.UpdateContactTaskStatus(ctx, mine, task.ID, domain.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)

	// Another contact's task reads as not found, never forbidden.
	_, err = svc.UpdateContactTaskStatus(ctx, "contact-2", task.ID, domain.TaskStatusOpen)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.UpdateContactTaskStatus(ctx, mine, task.ID, "ARCHIVED")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestListTasksFilters(t *testing.T) {
	tasks := newFakeTaskRepo()
	svc := NewTaskService(tasks, nil)
	ctx := context.Background()

	account := "account-1"
	_, err := svc.CreateTask(ctx, TaskInput{Title: "A", AccountID: &account})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, TaskInput{Title: "B", Status: domain.TaskStatusInProgress})
	require.NoError(t, err)

	byAccount, err := svc.ListTasks(ctx, repository.TaskFilter{AccountID: &account})
	require.NoError(t, err)
	require.Len(t, byAccount, 1)
	assert.Equal(t, "A", byAccount[0].Title)

	status := domain.TaskStatusInProgress
	byStatus, err := svc.ListTasks(ctx, repository.TaskFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "B", byStatus[0].Title)
}
