// ABOUTME: Repository interfaces and query types for the pipeline and board stores
// ABOUTME: Holds the validation, search and ordering rules every backend shares
package db

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/grimoire/models"
)

// ContactRepository is the query/command surface of the contact pipeline.
type ContactRepository interface {
	List(ctx context.Context, filter ContactFilter) ([]models.ContactWithRelations, error)
	Get(ctx context.Context, id string) (*models.ContactWithRelations, error)
	Create(ctx context.Context, input models.CreateContactInput) (*models.ContactWithRelations, error)
	Update(ctx context.Context, id string, patch models.ContactPatch) (*models.ContactWithRelations, error)
	Delete(ctx context.Context, id string) (*models.Contact, error)
	AddInteraction(ctx context.Context, input models.CreateInteractionInput) (*models.Interaction, error)
	CreateCompany(ctx context.Context, input models.CreateCompanyInput) (*models.Company, error)
	ListCompanies(ctx context.Context, organizationID string) ([]models.Company, error)
}

// TaskRepository is the query/command surface of the task board.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]models.TaskWithTags, error)
	Get(ctx context.Context, id string) (*models.TaskWithTags, error)
	Create(ctx context.Context, input models.CreateTaskInput) (*models.TaskWithTags, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.TaskWithTags, error)
	Delete(ctx context.Context, id string) (*models.Task, error)
	CreateTag(ctx context.Context, input models.CreateTagInput) (*models.Tag, error)
	ListTags(ctx context.Context, organizationID string) ([]models.Tag, error)
	TagTask(ctx context.Context, taskID, tagID string) (*models.TaskWithTags, error)
	UntagTask(ctx context.Context, taskID, tagID string) (*models.TaskWithTags, error)
}

// OrderField names a sortable column.
type OrderField string

const (
	OrderUpdatedAt OrderField = "updatedAt"
	OrderCreatedAt OrderField = "createdAt"
	// OrderName sorts contacts by name and tasks by title.
	OrderName OrderField = "name"
)

// OrderBy overrides the default newest-first ordering. The zero value keeps
// the domain default.
type OrderBy struct {
	Field     OrderField
	Ascending bool
}

// ParseOrderField accepts the camelCase names plus "title" as an alias of name.
func ParseOrderField(s string) (OrderField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "updatedat", "updated_at", "updated":
		return OrderUpdatedAt, nil
	case "createdat", "created_at", "created":
		return OrderCreatedAt, nil
	case "name", "title":
		return OrderName, nil
	}
	return "", invalid("orderBy", s)
}

type ContactFilter struct {
	OrganizationID string
	Stage          models.Stage
	Search         string
	CompanyID      string
	// InteractionLimit caps joined interactions; zero or less means DefaultInteractionLimit.
	InteractionLimit int
	OrderBy          OrderBy
}

type TaskFilter struct {
	OrganizationID string
	Status         models.TaskStatus
	Priority       models.Priority
	Search         string
	TagID          string
	OrderBy        OrderBy
}

func (f ContactFilter) validate() error {
	if strings.TrimSpace(f.OrganizationID) == "" {
		return required("organizationId")
	}
	if f.Stage != "" && !f.Stage.Valid() {
		return invalid("stage", f.Stage)
	}
	return f.OrderBy.validate()
}

func (f ContactFilter) interactionLimit() int {
	if f.InteractionLimit <= 0 {
		return DefaultInteractionLimit
	}
	return f.InteractionLimit
}

func (f ContactFilter) order() OrderBy {
	if f.OrderBy.Field == "" {
		return OrderBy{Field: OrderUpdatedAt}
	}
	return f.OrderBy
}

func (f TaskFilter) validate() error {
	if strings.TrimSpace(f.OrganizationID) == "" {
		return required("organizationId")
	}
	if f.Status != "" && !f.Status.Valid() {
		return invalid("status", f.Status)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return invalid("priority", f.Priority)
	}
	return f.OrderBy.validate()
}

func (f TaskFilter) order() OrderBy {
	if f.OrderBy.Field == "" {
		return OrderBy{Field: OrderCreatedAt}
	}
	return f.OrderBy
}

func (o OrderBy) validate() error {
	switch o.Field {
	case "", OrderUpdatedAt, OrderCreatedAt, OrderName:
		return nil
	}
	return invalid("orderBy", o.Field)
}

// searchTerm normalizes a free-text query; "" means no filtering.
func searchTerm(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func matchesContact(c models.Contact, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), term) ||
		strings.Contains(strings.ToLower(c.Email), term)
}

func matchesTask(t models.Task, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), term)
}

// sortRows orders rows stably by the requested field, descending unless
// order.Ascending is set. Equal keys keep their input order.
func sortRows[T any](rows []T, order OrderBy, created, updated func(T) time.Time, name func(T) string) {
	less := func(a, b T) bool {
		switch order.Field {
		case OrderCreatedAt:
			return created(a).Before(created(b))
		case OrderName:
			return strings.ToLower(name(a)) < strings.ToLower(name(b))
		default:
			return updated(a).Before(updated(b))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if order.Ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

func validateContactInput(in models.CreateContactInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return required("name")
	}
	if strings.TrimSpace(in.Email) == "" {
		return required("email")
	}
	if strings.TrimSpace(in.OrganizationID) == "" {
		return required("organizationId")
	}
	if in.Stage != "" && !in.Stage.Valid() {
		return invalid("stage", in.Stage)
	}
	return nil
}

func validateContactPatch(p models.ContactPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return required("name")
	}
	if p.Email != nil && strings.TrimSpace(*p.Email) == "" {
		return required("email")
	}
	if p.Stage != nil && !p.Stage.Valid() {
		return invalid("stage", *p.Stage)
	}
	return nil
}

func validateInteractionInput(in models.CreateInteractionInput) error {
	if in.Type == "" {
		return required("type")
	}
	if !in.Type.Valid() {
		return invalid("type", in.Type)
	}
	if strings.TrimSpace(in.Description) == "" {
		return required("description")
	}
	if strings.TrimSpace(in.ContactID) == "" {
		return required("contactId")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return required("userId")
	}
	return nil
}

func validateCompanyInput(in models.CreateCompanyInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return required("name")
	}
	if strings.TrimSpace(in.OrganizationID) == "" {
		return required("organizationId")
	}
	return nil
}

func validateTaskInput(in models.CreateTaskInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return required("title")
	}
	if strings.TrimSpace(in.OrganizationID) == "" {
		return required("organizationId")
	}
	if in.Status != "" && !in.Status.Valid() {
		return invalid("status", in.Status)
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return invalid("priority", in.Priority)
	}
	return nil
}

func validateTaskPatch(p models.TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return required("title")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("status", *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("priority", *p.Priority)
	}
	return nil
}

func validateTagInput(in models.CreateTagInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return required("name")
	}
	if strings.TrimSpace(in.OrganizationID) == "" {
		return required("organizationId")
	}
	return nil
}

// newContact builds the record a valid create input describes.
func newContact(in models.CreateContactInput, now time.Time) models.Contact {
	stage := in.Stage
	if stage == "" {
		stage = models.StageFamiliar
	}
	c := models.Contact{
		ID:             NewID(PrefixContact),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		Phone:          in.Phone,
		Stage:          stage,
		Notes:          in.Notes,
		OrganizationID: in.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.CompanyID != nil && *in.CompanyID != "" {
		id := *in.CompanyID
		c.CompanyID = &id
	}
	if in.ConvertedAt != nil {
		at := *in.ConvertedAt
		c.ConvertedAt = &at
	}
	return c
}

func newTask(in models.CreateTaskInput, now time.Time) models.Task {
	status := in.Status
	if status == "" {
		status = models.StatusSummoned
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	t := models.Task{
		ID:             NewID(PrefixTask),
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Status:         status,
		Priority:       priority,
		OrganizationID: in.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.AssigneeID != nil && *in.AssigneeID != "" {
		id := *in.AssigneeID
		t.AssigneeID = &id
	}
	if in.CompletedAt != nil {
		at := *in.CompletedAt
		t.CompletedAt = &at
	}
	return t
}

func newTag(in models.CreateTagInput, now time.Time) models.Tag {
	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = models.DefaultTagColor
	}
	return models.Tag{
		ID:             NewID(PrefixTag),
		Name:           strings.TrimSpace(in.Name),
		Color:          color,
		OrganizationID: in.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
