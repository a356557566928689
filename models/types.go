// ABOUTME: Data models for the contact pipeline
// ABOUTME: Defines Contact, Company, Interaction and their create/patch inputs
package models

import (
	"time"
)

type Contact struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Stage          Stage      `json:"stage"`
	Notes          string     `json:"notes,omitempty"`
	CompanyID      *string    `json:"companyId,omitempty"`
	OrganizationID string     `json:"organizationId"`
	ConvertedAt    *time.Time `json:"convertedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Clone returns a copy that shares no pointers with c.
func (c Contact) Clone() Contact {
	c.CompanyID = clonePtr(c.CompanyID)
	c.ConvertedAt = clonePtr(c.ConvertedAt)
	return c
}

type Company struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OrganizationID string    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Interaction is an append-only log entry owned by a contact.
type Interaction struct {
	ID          string          `json:"id"`
	Type        InteractionType `json:"type"`
	Description string          `json:"description"`
	ContactID   string          `json:"contactId"`
	UserID      string          `json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ContactWithRelations is a contact joined with its company and interactions,
// newest interaction first.
type ContactWithRelations struct {
	Contact
	Company      *Company      `json:"company"`
	Interactions []Interaction `json:"interactions"`
}

type CreateContactInput struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Stage          Stage      `json:"stage,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CompanyID      *string    `json:"companyId,omitempty"`
	OrganizationID string     `json:"organizationId"`
	ConvertedAt    *time.Time `json:"convertedAt,omitempty"`
}

// ContactPatch holds the fields to merge over an existing contact. Nil fields
// are left untouched. An empty CompanyID detaches the company and a zero
// ConvertedAt clears the conversion time.
type ContactPatch struct {
	Name        *string    `json:"name,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Stage       *Stage     `json:"stage,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CompanyID   *string    `json:"companyId,omitempty"`
	ConvertedAt *time.Time `json:"convertedAt,omitempty"`
}

// Apply merges the patch over c. UpdatedAt is the caller's concern.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Stage != nil {
		c.Stage = *p.Stage
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.CompanyID != nil {
		if *p.CompanyID == "" {
			c.CompanyID = nil
		} else {
			id := *p.CompanyID
			c.CompanyID = &id
		}
	}
	if p.ConvertedAt != nil {
		if p.ConvertedAt.IsZero() {
			c.ConvertedAt = nil
		} else {
			t := *p.ConvertedAt
			c.ConvertedAt = &t
		}
	}
}

type CreateCompanyInput struct {
	Name           string `json:"name"`
	OrganizationID string `json:"organizationId"`
}

type CreateInteractionInput struct {
	Type        InteractionType `json:"type"`
	Description string          `json:"description"`
	ContactID   string          `json:"contactId"`
	UserID      string          `json:"userId"`
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// StringPtr returns a pointer to s, handy for building patches.
func StringPtr(s string) *string {
	return &s
}
