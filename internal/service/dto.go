package service

import (
	"time"

	"usertask-manager/internal/domain"
)

// UserDTO is the API view of a user with task aggregates.
type UserDTO struct {
	UserID           int64      `json:"userId"`
	FullName         string     `json:"fullName"`
	EmailAddress     string     `json:"emailAddress"`
	RegistrationDate time.Time  `json:"registrationDate"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
	TotalTasks       int        `json:"totalTasks"`
	CompletedTasks   int        `json:"completedTasks"`
}

// TaskDTO is the API view of a task with its owner's name.
type TaskDTO struct {
	TaskID          int64      `json:"taskId"`
	TaskDescription string     `json:"taskDescription"`
	IsCompleted     bool       `json:"isCompleted"`
	CreationDate    time.Time  `json:"creationDate"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
	CompletionDate  *time.Time `json:"completionDate"`
	UserID          int64      `json:"userId"`
	UserFullName    string     `json:"userFullName"`
}

// PagedResult is one page of a listing plus navigation metadata.
type PagedResult[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

func newPagedResult[T any](items []T, q domain.PageQuery, total int) PagedResult[T] {
	totalPages := 0
	if q.PageSize > 0 {
		totalPages = (total + q.PageSize - 1) / q.PageSize
	}
	if items == nil {
		items = []T{}
	}
	return PagedResult[T]{
		Items:       items,
		Page:        q.Page,
		PageSize:    q.PageSize,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasPrevious: q.Page > 1,
		HasNext:     q.Page < totalPages,
	}
}

// Optional carries a value together with whether the caller provided it.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a provided Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// CreateUserInput holds the fields needed to register a user.
type CreateUserInput struct {
	FullName     string
	EmailAddress string
}

// UserPatch lists the user fields to change. Unset or blank fields are kept.
type UserPatch struct {
	FullName     Optional[string]
	EmailAddress Optional[string]
}

// CreateTaskInput holds the fields needed to create a task.
type CreateTaskInput struct {
	TaskDescription string
}

// TaskPatch lists the task fields to change. An unset or blank description
// is kept; a set IsCompleted always re-stamps the completion date.
type TaskPatch struct {
	TaskDescription Optional[string]
	IsCompleted     Optional[bool]
}

func toUserDTO(user *domain.User) *UserDTO {
	return &UserDTO{
		UserID:           user.ID,
		FullName:         user.FullName,
		EmailAddress:     user.Email,
		RegistrationDate: user.RegistrationDate,
		UpdatedAt:        user.UpdatedAt,
		TotalTasks:       user.Tasks.Total,
		CompletedTasks:   user.Tasks.Completed,
	}
}

func toTaskDTO(task *domain.Task) *TaskDTO {
	return &TaskDTO{
		TaskID:          task.ID,
		TaskDescription: task.Description,
		IsCompleted:     task.IsCompleted,
		CreationDate:    task.CreationDate,
		UpdatedAt:       task.UpdatedAt,
		CompletionDate:  task.CompletionDate,
		UserID:          task.UserID,
		UserFullName:    task.UserFullName,
	}
}
