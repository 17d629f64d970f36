package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
	ProjectOnHold    ProjectStatus = "on_hold"
)

type Project struct {
	ID          uuid.UUID     `json:"id"`
	ClientID    uuid.UUID     `json:"client_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	DueDate     *string       `json:"due_date"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ProjectWithClient is the list projection shown on the projects page
type ProjectWithClient struct {
	Project
	ClientName string `json:"client_name"`
}

type CreateProjectRequest struct {
	Name        string        `json:"name" validate:"required"`
	ClientID    uuid.UUID     `json:"client_id" validate:"required"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status" validate:"omitempty,oneof=active completed archived on_hold"`
	DueDate     *string       `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateProjectRequest carries only the fields being changed
type UpdateProjectRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=1"`
	ClientID    *uuid.UUID     `json:"client_id"`
	Description *string        `json:"description"`
	Status      *ProjectStatus `json:"status" validate:"omitempty,oneof=active completed archived on_hold"`
	DueDate     *string        `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *UpdateProjectRequest) Empty() bool {
	return r.Name == nil && r.ClientID == nil && r.Description == nil && r.Status == nil && r.DueDate == nil
}
