// ABOUTME: Output shapes returned by the MCP tools and resources
// ABOUTME: Converts store records into snake_case JSON with RFC3339 timestamps
package handlers

import (
	"strings"
	"time"

	"github.com/harperreed/grimoire/contacts"
	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/models"
)

type CompanyOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type InteractionOutput struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	ContactID   string `json:"contact_id"`
	UserID      string `json:"user_id"`
	CreatedAt   string `json:"created_at"`
}

type ContactOutput struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Phone        string              `json:"phone,omitempty"`
	Stage        string              `json:"stage"`
	Notes        string              `json:"notes,omitempty"`
	CompanyID    *string             `json:"company_id,omitempty"`
	Company      *CompanyOutput      `json:"company,omitempty"`
	ConvertedAt  *string             `json:"converted_at,omitempty"`
	LastActivity string              `json:"last_activity"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
	Interactions []InteractionOutput `json:"interactions"`
}

type TagOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TaskOutput struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status"`
	Priority    string      `json:"priority"`
	AssigneeID  *string     `json:"assignee_id,omitempty"`
	CompletedAt *string     `json:"completed_at,omitempty"`
	CreatedAt   string      `json:"created_at"`
	UpdatedAt   string      `json:"updated_at"`
	Tags        []TagOutput `json:"tags"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func companyToOutput(c models.Company) CompanyOutput {
	return CompanyOutput{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

func interactionToOutput(i models.Interaction) InteractionOutput {
	return InteractionOutput{
		ID:          i.ID,
		Type:        string(i.Type),
		Description: i.Description,
		ContactID:   i.ContactID,
		UserID:      i.UserID,
		CreatedAt:   formatTime(i.CreatedAt),
	}
}

func contactToOutput(c models.ContactWithRelations) ContactOutput {
	out := ContactOutput{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Stage:        string(c.Stage),
		Notes:        c.Notes,
		CompanyID:    c.CompanyID,
		ConvertedAt:  formatTimePtr(c.ConvertedAt),
		LastActivity: formatTime(contacts.LastActivity(c)),
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
		Interactions: make([]InteractionOutput, 0, len(c.Interactions)),
	}
	if c.Company != nil {
		company := companyToOutput(*c.Company)
		out.Company = &company
	}
	for _, i := range c.Interactions {
		out.Interactions = append(out.Interactions, interactionToOutput(i))
	}
	return out
}

func contactsToOutput(list []models.ContactWithRelations) []ContactOutput {
	out := make([]ContactOutput, 0, len(list))
	for _, c := range list {
		out = append(out, contactToOutput(c))
	}
	return out
}

func tagToOutput(g models.Tag) TagOutput {
	return TagOutput{ID: g.ID, Name: g.Name, Color: g.Color}
}

func taskToOutput(t models.TaskWithTags) TaskOutput {
	out := TaskOutput{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		AssigneeID:  t.AssigneeID,
		CompletedAt: formatTimePtr(t.CompletedAt),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
		Tags:        make([]TagOutput, 0, len(t.Tags)),
	}
	for _, g := range t.Tags {
		out.Tags = append(out.Tags, tagToOutput(g))
	}
	return out
}

func tasksToOutput(list []models.TaskWithTags) []TaskOutput {
	out := make([]TaskOutput, 0, len(list))
	for _, t := range list {
		out = append(out, taskToOutput(t))
	}
	return out
}

// parseOrder turns the tool-level sort arguments into a store ordering.
// An empty field sorts by fallback.
func parseOrder(field string, ascending bool, fallback db.OrderField) (db.OrderBy, error) {
	if strings.TrimSpace(field) == "" {
		return db.OrderBy{Field: fallback, Ascending: ascending}, nil
	}
	f, err := db.ParseOrderField(field)
	if err != nil {
		return db.OrderBy{}, err
	}
	return db.OrderBy{Field: f, Ascending: ascending}, nil
}
