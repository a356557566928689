// ABOUTME: Organization-scoped views over the contact and task repositories
// ABOUTME: Records owned by other organizations are reported as not found
package db

import (
	"context"
	"errors"
	"strings"

	"github.com/harperreed/grimoire/models"
)

// ScopedContacts pins every call to one organization. Filters and inputs
// have their organization overwritten, and reads or writes addressed to a
// record of another organization fail with ErrNotFound.
type ScopedContacts struct {
	repo ContactRepository
	org  string
}

var _ ContactRepository = (*ScopedContacts)(nil)

func ScopeContacts(repo ContactRepository, organizationID string) *ScopedContacts {
	return &ScopedContacts{repo: repo, org: organizationID}
}

func (s *ScopedContacts) OrganizationID() string {
	return s.org
}

func (s *ScopedContacts) List(ctx context.Context, filter ContactFilter) ([]models.ContactWithRelations, error) {
	filter.OrganizationID = s.org
	return s.repo.List(ctx, filter)
}

func (s *ScopedContacts) Get(ctx context.Context, id string) (*models.ContactWithRelations, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OrganizationID != s.org {
		return nil, notFound("contact", id)
	}
	return c, nil
}

func (s *ScopedContacts) Create(ctx context.Context, input models.CreateContactInput) (*models.ContactWithRelations, error) {
	input.OrganizationID = s.org
	if input.CompanyID != nil && *input.CompanyID != "" {
		if err := s.checkCompany(ctx, *input.CompanyID); err != nil {
			return nil, err
		}
	}
	return s.repo.Create(ctx, input)
}

func (s *ScopedContacts) Update(ctx context.Context, id string, patch models.ContactPatch) (*models.ContactWithRelations, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if patch.CompanyID != nil && *patch.CompanyID != "" {
		if err := s.checkCompany(ctx, *patch.CompanyID); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *ScopedContacts) Delete(ctx context.Context, id string) (*models.Contact, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ScopedContacts) AddInteraction(ctx context.Context, input models.CreateInteractionInput) (*models.Interaction, error) {
	if _, err := s.Get(ctx, input.ContactID); err != nil {
		return nil, err
	}
	return s.repo.AddInteraction(ctx, input)
}

func (s *ScopedContacts) CreateCompany(ctx context.Context, input models.CreateCompanyInput) (*models.Company, error) {
	input.OrganizationID = s.org
	return s.repo.CreateCompany(ctx, input)
}

func (s *ScopedContacts) ListCompanies(ctx context.Context, _ string) ([]models.Company, error) {
	return s.repo.ListCompanies(ctx, s.org)
}

// FindOrCreateCompany returns the organization's company called name,
// compared case-insensitively, creating it when none exists.
func (s *ScopedContacts) FindOrCreateCompany(ctx context.Context, name string) (*models.Company, error) {
	name = strings.TrimSpace(name)
	companies, err := s.repo.ListCompanies(ctx, s.org)
	if err != nil {
		return nil, err
	}
	for _, c := range companies {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return s.CreateCompany(ctx, models.CreateCompanyInput{Name: name})
}

func (s *ScopedContacts) checkCompany(ctx context.Context, companyID string) error {
	companies, err := s.repo.ListCompanies(ctx, s.org)
	if err != nil {
		return err
	}
	for _, c := range companies {
		if c.ID == companyID {
			return nil
		}
	}
	return notFound("company", companyID)
}

// ScopedTasks is the task board counterpart of ScopedContacts.
type ScopedTasks struct {
	repo TaskRepository
	org  string
}

var _ TaskRepository = (*ScopedTasks)(nil)

func ScopeTasks(repo TaskRepository, organizationID string) *ScopedTasks {
	return &ScopedTasks{repo: repo, org: organizationID}
}

func (s *ScopedTasks) OrganizationID() string {
	return s.org
}

func (s *ScopedTasks) List(ctx context.Context, filter TaskFilter) ([]models.TaskWithTags, error) {
	filter.OrganizationID = s.org
	return s.repo.List(ctx, filter)
}

func (s *ScopedTasks) Get(ctx context.Context, id string) (*models.TaskWithTags, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OrganizationID != s.org {
		return nil, notFound("task", id)
	}
	return t, nil
}

func (s *ScopedTasks) Create(ctx context.Context, input models.CreateTaskInput) (*models.TaskWithTags, error) {
	input.OrganizationID = s.org
	return s.repo.Create(ctx, input)
}

// CreateWithTags creates a task and links tagIDs to it. Every tag must
// exist in the organization before anything is written, and the task is
// removed again if linking fails.
func (s *ScopedTasks) CreateWithTags(ctx context.Context, input models.CreateTaskInput, tagIDs []string) (*models.TaskWithTags, error) {
	if len(tagIDs) > 0 {
		tags, err := s.ListTags(ctx, s.org)
		if err != nil {
			return nil, err
		}
		known := make(map[string]bool, len(tags))
		for _, g := range tags {
			known[g.ID] = true
		}
		for _, id := range tagIDs {
			if !known[id] {
				return nil, notFound("tag", id)
			}
		}
	}

	t, err := s.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	id := t.ID
	for _, tagID := range tagIDs {
		if t, err = s.repo.TagTask(ctx, id, tagID); err != nil {
			if _, derr := s.repo.Delete(ctx, id); derr != nil {
				return nil, errors.Join(err, derr)
			}
			return nil, err
		}
	}
	return t, nil
}

func (s *ScopedTasks) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.TaskWithTags, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *ScopedTasks) Delete(ctx context.Context, id string) (*models.Task, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ScopedTasks) CreateTag(ctx context.Context, input models.CreateTagInput) (*models.Tag, error) {
	input.OrganizationID = s.org
	return s.repo.CreateTag(ctx, input)
}

func (s *ScopedTasks) ListTags(ctx context.Context, _ string) ([]models.Tag, error) {
	return s.repo.ListTags(ctx, s.org)
}

// TagTask relies on the underlying store rejecting tags of another
// organization once the task itself is known to be in scope.
func (s *ScopedTasks) TagTask(ctx context.Context, taskID, tagID string) (*models.TaskWithTags, error) {
	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.TagTask(ctx, taskID, tagID)
}

func (s *ScopedTasks) UntagTask(ctx context.Context, taskID, tagID string) (*models.TaskWithTags, error) {
	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.UntagTask(ctx, taskID, tagID)
}
