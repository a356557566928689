// ABOUTME: In-memory contact pipeline store built on the generic Table
// ABOUTME: Handles contact CRUD, company joins and interaction logging
package db

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/grimoire/models"
)

var _ ContactRepository = (*ContactStore)(nil)

// ContactSeed is the initial state handed to a ContactStore.
type ContactSeed struct {
	Companies    []models.Company
	Contacts     []models.Contact
	Interactions []models.Interaction
}

// ContactStore keeps companies, contacts and interactions in memory. Its
// lifetime and initial state are owned by the caller.
type ContactStore struct {
	companies    *Table[models.Company]
	contacts     *Table[models.Contact]
	interactions *Table[models.Interaction]
	opts         options
}

// NewContactStore creates a store holding a copy of seed.
func NewContactStore(seed ContactSeed, opts ...Option) *ContactStore {
	return &ContactStore{
		companies:    NewTable("companies", func(c models.Company) string { return c.ID }, seed.Companies),
		contacts:     NewTable("contacts", func(c models.Contact) string { return c.ID }, seed.Contacts),
		interactions: NewTable("interactions", func(i models.Interaction) string { return i.ID }, seed.Interactions),
		opts:         newOptions(opts),
	}
}

// Persist attaches p to every table of the store.
func (s *ContactStore) Persist(p Persister) error {
	if err := s.companies.Attach(p); err != nil {
		return err
	}
	if err := s.contacts.Attach(p); err != nil {
		return err
	}
	return s.interactions.Attach(p)
}

func (s *ContactStore) List(_ context.Context, filter ContactFilter) ([]models.ContactWithRelations, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	term := searchTerm(filter.Search)
	rows := s.contacts.Select(func(c models.Contact) bool {
		if c.OrganizationID != filter.OrganizationID {
			return false
		}
		if filter.Stage != "" && c.Stage != filter.Stage {
			return false
		}
		if filter.CompanyID != "" && (c.CompanyID == nil || *c.CompanyID != filter.CompanyID) {
			return false
		}
		return matchesContact(c, term)
	})

	sortRows(rows, filter.order(),
		func(c models.Contact) time.Time { return c.CreatedAt },
		func(c models.Contact) time.Time { return c.UpdatedAt },
		func(c models.Contact) string { return c.Name },
	)

	out := make([]models.ContactWithRelations, len(rows))
	for i, c := range rows {
		out[i] = s.join(c, filter.interactionLimit())
	}
	return out, nil
}

func (s *ContactStore) Get(_ context.Context, id string) (*models.ContactWithRelations, error) {
	c, ok := s.contacts.Get(id)
	if !ok {
		return nil, notFound("contact", id)
	}
	joined := s.join(c, -1)
	return &joined, nil
}

func (s *ContactStore) Create(_ context.Context, input models.CreateContactInput) (*models.ContactWithRelations, error) {
	if err := validateContactInput(input); err != nil {
		return nil, err
	}

	c := newContact(input, s.opts.now())
	if err := s.contacts.Insert(c); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("contact_id", c.ID).Str("org", c.OrganizationID).Msg("contact created")

	joined := s.join(c, -1)
	return &joined, nil
}

func (s *ContactStore) Update(_ context.Context, id string, patch models.ContactPatch) (*models.ContactWithRelations, error) {
	if err := validateContactPatch(patch); err != nil {
		return nil, err
	}

	now := s.opts.now()
	c, ok, err := s.contacts.Update(id, func(c *models.Contact) {
		patch.Apply(c)
		c.UpdatedAt = now
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("contact", id)
	}
	s.opts.log.Debug().Str("contact_id", id).Str("stage", string(c.Stage)).Msg("contact updated")

	joined := s.join(c, -1)
	return &joined, nil
}

// Delete removes the contact and its interactions.
func (s *ContactStore) Delete(_ context.Context, id string) (*models.Contact, error) {
	c, ok, err := s.contacts.Delete(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("contact", id)
	}

	removed, err := s.interactions.DeleteWhere(func(i models.Interaction) bool { return i.ContactID == id })
	if err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("contact_id", id).Int("interactions", len(removed)).Msg("contact deleted")
	return &c, nil
}

// AddInteraction logs an interaction and bumps the contact's updatedAt to
// the interaction time.
func (s *ContactStore) AddInteraction(_ context.Context, input models.CreateInteractionInput) (*models.Interaction, error) {
	if err := validateInteractionInput(input); err != nil {
		return nil, err
	}

	now := s.opts.now()
	_, ok, err := s.contacts.Update(input.ContactID, func(c *models.Contact) {
		c.UpdatedAt = now
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("contact", input.ContactID)
	}

	interaction := models.Interaction{
		ID:          NewID(PrefixInteraction),
		Type:        input.Type,
		Description: strings.TrimSpace(input.Description),
		ContactID:   input.ContactID,
		UserID:      input.UserID,
		CreatedAt:   now,
	}
	if err := s.interactions.Insert(interaction); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("contact_id", input.ContactID).Str("type", string(input.Type)).Msg("interaction logged")
	return &interaction, nil
}

func (s *ContactStore) CreateCompany(_ context.Context, input models.CreateCompanyInput) (*models.Company, error) {
	if err := validateCompanyInput(input); err != nil {
		return nil, err
	}

	now := s.opts.now()
	company := models.Company{
		ID:             NewID(PrefixCompany),
		Name:           strings.TrimSpace(input.Name),
		OrganizationID: input.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.companies.Insert(company); err != nil {
		return nil, err
	}
	return &company, nil
}

// ListCompanies returns the organization's companies sorted by name.
func (s *ContactStore) ListCompanies(_ context.Context, organizationID string) ([]models.Company, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, required("organizationId")
	}
	rows := s.companies.Select(func(c models.Company) bool { return c.OrganizationID == organizationID })
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	return rows, nil
}

// join attaches the company and the newest interactions. A negative limit
// returns every interaction.
func (s *ContactStore) join(c models.Contact, limit int) models.ContactWithRelations {
	out := models.ContactWithRelations{Contact: c, Interactions: []models.Interaction{}}

	if c.CompanyID != nil {
		if company, ok := s.companies.Get(*c.CompanyID); ok && company.OrganizationID == c.OrganizationID {
			out.Company = &company
		}
	}

	interactions := s.interactions.Select(func(i models.Interaction) bool { return i.ContactID == c.ID })
	sort.SliceStable(interactions, func(i, j int) bool {
		return interactions[i].CreatedAt.After(interactions[j].CreatedAt)
	})
	if limit >= 0 && len(interactions) > limit {
		interactions = interactions[:limit]
	}
	out.Interactions = append(out.Interactions, interactions...)
	return out
}
