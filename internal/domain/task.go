package domain

import "time"

// TaskStatus represents lifecycle states for a task.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// ValidTaskStatus reports whether s is a known status value.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// Task is a unit of work tracked against an account, optionally visible to
// the account's portal contact.
type Task struct {
	ID             string
	Title          string
	Description    string
	Status         TaskStatus
	DueDate        *time.Time
	AccountID      *string
	ContactID      *string
	AssignedUserID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
