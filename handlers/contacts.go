// ABOUTME: Contact and company MCP tool handlers
// ABOUTME: Implements list/get/add/update/delete contact, log_interaction and company tools
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/grimoire/contacts"
	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ContactHandlers struct {
	repo *db.ScopedContacts
	cfg  Config
}

func NewContactHandlers(repo *db.ScopedContacts, cfg Config) *ContactHandlers {
	return &ContactHandlers{repo: repo, cfg: cfg.withDefaults()}
}

type ListContactsInput struct {
	Stage            string `json:"stage,omitempty" jsonschema:"Filter by stage: FAMILIAR, ENCHANTING, BEWITCHED or VANISHED"`
	Search           string `json:"search,omitempty" jsonschema:"Case-insensitive text matched against name and email"`
	CompanyID        string `json:"company_id,omitempty" jsonschema:"Filter by company ID"`
	OrderBy          string `json:"order_by,omitempty" jsonschema:"Sort field: updatedAt (default), createdAt or name"`
	Ascending        bool   `json:"ascending,omitempty" jsonschema:"Sort oldest or alphabetically first"`
	InteractionLimit int    `json:"interaction_limit,omitempty" jsonschema:"Recent interactions to include per contact"`
}

type ListContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
	Count    int             `json:"count"`
}

func (h *ContactHandlers) ListContacts(ctx context.Context, _ *mcp.CallToolRequest, input ListContactsInput) (*mcp.CallToolResult, ListContactsOutput, error) {
	filter, err := h.filter(input)
	if err != nil {
		return nil, ListContactsOutput{}, err
	}
	list, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, ListContactsOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}
	return nil, ListContactsOutput{Contacts: contactsToOutput(list), Count: len(list)}, nil
}

func (h *ContactHandlers) filter(input ListContactsInput) (db.ContactFilter, error) {
	filter := db.ContactFilter{
		Search:           input.Search,
		CompanyID:        input.CompanyID,
		InteractionLimit: input.InteractionLimit,
	}
	if filter.InteractionLimit <= 0 {
		filter.InteractionLimit = h.cfg.InteractionLimit
	}
	if input.Stage != "" {
		stage, err := models.ParseStage(input.Stage)
		if err != nil {
			return filter, err
		}
		filter.Stage = stage
	}
	order, err := parseOrder(input.OrderBy, input.Ascending, db.OrderUpdatedAt)
	if err != nil {
		return filter, err
	}
	filter.OrderBy = order
	return filter, nil
}

type ContactIDInput struct {
	ID string `json:"id" jsonschema:"Contact ID"`
}

func (h *ContactHandlers) GetContact(ctx context.Context, _ *mcp.CallToolRequest, input ContactIDInput) (*mcp.CallToolResult, ContactOutput, error) {
	c, err := h.repo.Get(ctx, input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}
	return nil, contactToOutput(*c), nil
}

type AddContactInput struct {
	Name        string `json:"name" jsonschema:"Contact name"`
	Email       string `json:"email" jsonschema:"Contact email address"`
	Phone       string `json:"phone,omitempty" jsonschema:"Contact phone number"`
	Stage       string `json:"stage,omitempty" jsonschema:"Pipeline stage (default FAMILIAR)"`
	Notes       string `json:"notes,omitempty" jsonschema:"Free-form notes"`
	CompanyID   string `json:"company_id,omitempty" jsonschema:"Existing company ID"`
	CompanyName string `json:"company_name,omitempty" jsonschema:"Company name, looked up or created when company_id is empty"`
}

func (h *ContactHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	create := models.CreateContactInput{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
		Notes: input.Notes,
	}
	if input.Stage != "" {
		stage, err := models.ParseStage(input.Stage)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		create.Stage = stage
	}

	switch {
	case input.CompanyID != "":
		create.CompanyID = models.StringPtr(input.CompanyID)
	case strings.TrimSpace(input.CompanyName) != "":
		company, err := h.repo.FindOrCreateCompany(ctx, input.CompanyName)
		if err != nil {
			return nil, ContactOutput{}, fmt.Errorf("failed to resolve company: %w", err)
		}
		create.CompanyID = &company.ID
	}

	// A contact created straight into BEWITCHED counts as converted now.
	if create.Stage == models.StageBewitched {
		converted := h.cfg.Now()
		create.ConvertedAt = &converted
	}

	c, err := h.repo.Create(ctx, create)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to create contact: %w", err)
	}

	h.cfg.Log.Info().Str("contact_id", c.ID).Str("stage", string(c.Stage)).Msg("contact added")
	return nil, contactToOutput(*c), nil
}

type UpdateContactInput struct {
	ID        string  `json:"id" jsonschema:"Contact ID"`
	Name      *string `json:"name,omitempty" jsonschema:"New name"`
	Email     *string `json:"email,omitempty" jsonschema:"New email address"`
	Phone     *string `json:"phone,omitempty" jsonschema:"New phone number"`
	Stage     *string `json:"stage,omitempty" jsonschema:"New pipeline stage"`
	Notes     *string `json:"notes,omitempty" jsonschema:"Replacement notes"`
	CompanyID *string `json:"company_id,omitempty" jsonschema:"New company ID, empty string detaches the company"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, _ *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	current, err := h.repo.Get(ctx, input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}

	var patch models.ContactPatch
	if input.Stage != nil {
		stage, err := models.ParseStage(*input.Stage)
		if err != nil {
			return nil, ContactOutput{}, err
		}
		patch = contacts.StageChange(current.Contact, stage, h.cfg.Now())
	}
	patch.Name = input.Name
	patch.Email = input.Email
	patch.Phone = input.Phone
	patch.Notes = input.Notes
	patch.CompanyID = input.CompanyID

	c, err := h.repo.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}
	h.cfg.Log.Info().Str("contact_id", c.ID).Msg("contact updated")
	return nil, contactToOutput(*c), nil
}

func (h *ContactHandlers) DeleteContact(ctx context.Context, _ *mcp.CallToolRequest, input ContactIDInput) (*mcp.CallToolResult, ContactOutput, error) {
	c, err := h.repo.Delete(ctx, input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to delete contact: %w", err)
	}
	h.cfg.Log.Info().Str("contact_id", c.ID).Msg("contact deleted")
	return nil, contactToOutput(models.ContactWithRelations{Contact: *c}), nil
}

type LogInteractionInput struct {
	ContactID   string `json:"contact_id" jsonschema:"Contact ID"`
	Type        string `json:"type" jsonschema:"EMAIL, CALL, MEETING or NOTE"`
	Description string `json:"description" jsonschema:"What happened"`
}

func (h *ContactHandlers) LogInteraction(ctx context.Context, _ *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, InteractionOutput, error) {
	kind, err := models.ParseInteractionType(input.Type)
	if err != nil {
		return nil, InteractionOutput{}, err
	}
	i, err := h.repo.AddInteraction(ctx, models.CreateInteractionInput{
		Type:        kind,
		Description: input.Description,
		ContactID:   input.ContactID,
		UserID:      h.cfg.UserID,
	})
	if err != nil {
		return nil, InteractionOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}
	h.cfg.Log.Info().Str("contact_id", i.ContactID).Str("type", string(i.Type)).Msg("interaction logged")
	return nil, interactionToOutput(*i), nil
}

type ListCompaniesInput struct{}

type ListCompaniesOutput struct {
	Companies []CompanyOutput `json:"companies"`
}

func (h *ContactHandlers) ListCompanies(ctx context.Context, _ *mcp.CallToolRequest, _ ListCompaniesInput) (*mcp.CallToolResult, ListCompaniesOutput, error) {
	list, err := h.repo.ListCompanies(ctx, h.repo.OrganizationID())
	if err != nil {
		return nil, ListCompaniesOutput{}, fmt.Errorf("failed to list companies: %w", err)
	}
	out := ListCompaniesOutput{Companies: make([]CompanyOutput, 0, len(list))}
	for _, c := range list {
		out.Companies = append(out.Companies, companyToOutput(c))
	}
	return nil, out, nil
}

type AddCompanyInput struct {
	Name string `json:"name" jsonschema:"Company name"`
}

func (h *ContactHandlers) AddCompany(ctx context.Context, _ *mcp.CallToolRequest, input AddCompanyInput) (*mcp.CallToolResult, CompanyOutput, error) {
	c, err := h.repo.CreateCompany(ctx, models.CreateCompanyInput{Name: input.Name})
	if err != nil {
		return nil, CompanyOutput{}, fmt.Errorf("failed to create company: %w", err)
	}
	return nil, companyToOutput(*c), nil
}

type PipelineSummaryInput struct {
	Recent int `json:"recent,omitempty" jsonschema:"How many recently active contacts to include (default 5)"`
}

type PipelineSummaryOutput struct {
	Total  int             `json:"total"`
	Stages map[string]int  `json:"stages"`
	Recent []ContactOutput `json:"recent"`
}

func (h *ContactHandlers) PipelineSummary(ctx context.Context, _ *mcp.CallToolRequest, input PipelineSummaryInput) (*mcp.CallToolResult, PipelineSummaryOutput, error) {
	out, err := h.pipeline(ctx, input.Recent)
	if err != nil {
		return nil, PipelineSummaryOutput{}, err
	}
	return nil, out, nil
}

func (h *ContactHandlers) pipeline(ctx context.Context, recent int) (PipelineSummaryOutput, error) {
	if recent <= 0 {
		recent = 5
	}
	list, err := h.repo.List(ctx, db.ContactFilter{InteractionLimit: h.cfg.InteractionLimit})
	if err != nil {
		return PipelineSummaryOutput{}, fmt.Errorf("failed to list contacts: %w", err)
	}

	out := PipelineSummaryOutput{Total: len(list), Stages: map[string]int{}}
	for stage, n := range contacts.CountsByStage(list) {
		out.Stages[string(stage)] = n
	}
	sorted := contacts.SortByRecentActivity(list)
	if len(sorted) > recent {
		sorted = sorted[:recent]
	}
	out.Recent = contactsToOutput(sorted)
	return out, nil
}
