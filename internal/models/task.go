package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *string    `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CreateTaskRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *string    `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskRequest carries only the fields being changed (drag across board columns sends status only)
type UpdateTaskRequest struct {
	Name        *string     `json:"name" validate:"omitempty,min=1"`
	Description *string     `json:"description"`
	Status      *TaskStatus `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	DueDate     *string     `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *UpdateTaskRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Status == nil && r.DueDate == nil
}
