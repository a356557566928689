// ABOUTME: Data models for the task board
// ABOUTME: Defines Task and Tag plus their create/patch inputs
package models

import (
	"time"
)

type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status"`
	Priority       Priority   `json:"priority"`
	AssigneeID     *string    `json:"assigneeId,omitempty"`
	OrganizationID string     `json:"organizationId"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	t.AssigneeID = clonePtr(t.AssigneeID)
	t.CompletedAt = clonePtr(t.CompletedAt)
	return t
}

type Tag struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color"`
	OrganizationID string    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type TaskWithTags struct {
	Task
	Tags []Tag `json:"tags"`
}

type CreateTaskInput struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         TaskStatus `json:"status,omitempty"`
	Priority       Priority   `json:"priority,omitempty"`
	AssigneeID     *string    `json:"assigneeId,omitempty"`
	OrganizationID string     `json:"organizationId"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// TaskPatch mirrors ContactPatch: nil fields are untouched, an empty
// AssigneeID unassigns and a zero CompletedAt clears completion.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	AssigneeID  *string     `json:"assigneeId,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}

// Apply merges the patch over t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		if *p.AssigneeID == "" {
			t.AssigneeID = nil
		} else {
			id := *p.AssigneeID
			t.AssigneeID = &id
		}
	}
	if p.CompletedAt != nil {
		if p.CompletedAt.IsZero() {
			t.CompletedAt = nil
		} else {
			c := *p.CompletedAt
			t.CompletedAt = &c
		}
	}
}

type CreateTagInput struct {
	Name           string `json:"name"`
	Color          string `json:"color"`
	OrganizationID string `json:"organizationId"`
}

// DefaultTagColor is used when a tag is created without a color.
const DefaultTagColor = "#9d5bd2"
