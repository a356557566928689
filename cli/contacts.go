// ABOUTME: Contact and company CLI commands
// ABOUTME: Human-friendly commands for managing the pipeline
package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/grimoire/contacts"
	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/models"
)

type ContactsCmd struct {
	Add    ContactsAddCmd    `cmd:"" help:"Add a contact."`
	List   ContactsListCmd   `cmd:"" help:"List contacts."`
	Show   ContactsShowCmd   `cmd:"" help:"Show one contact with its interactions."`
	Update ContactsUpdateCmd `cmd:"" help:"Update a contact."`
	Delete ContactsDeleteCmd `cmd:"" help:"Delete a contact and its interactions."`
	Log    ContactsLogCmd    `cmd:"" help:"Log an interaction with a contact."`
}

type ContactsAddCmd struct {
	Name    string `arg:"" help:"Contact name."`
	Email   string `required:"" help:"Email address."`
	Phone   string `help:"Phone number."`
	Stage   string `help:"Pipeline stage (default FAMILIAR)."`
	Notes   string `help:"Notes about the contact."`
	Company string `help:"Company name, created when missing."`
}

func (c *ContactsAddCmd) Run(ctx context.Context, app *App) error {
	input := models.CreateContactInput{Name: c.Name, Email: c.Email, Phone: c.Phone, Notes: c.Notes}
	if c.Stage != "" {
		stage, err := models.ParseStage(c.Stage)
		if err != nil {
			return err
		}
		input.Stage = stage
	}
	if strings.TrimSpace(c.Company) != "" {
		company, err := app.Contacts.FindOrCreateCompany(ctx, c.Company)
		if err != nil {
			return fmt.Errorf("failed to resolve company: %w", err)
		}
		input.CompanyID = &company.ID
	}

	if input.Stage == models.StageBewitched {
		now := app.Now()
		input.ConvertedAt = &now
	}

	contact, err := app.Contacts.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Contact created: %s (ID: %s)\n", contact.Name, contact.ID)
	fmt.Fprintf(app.Out, "  Email: %s\n", contact.Email)
	if contact.Company != nil {
		fmt.Fprintf(app.Out, "  Company: %s\n", contact.Company.Name)
	}
	return nil
}

type ContactsListCmd struct {
	Stage     string `help:"Filter by stage."`
	Query     string `short:"q" help:"Search by name or email."`
	Company   string `help:"Filter by company ID."`
	Sort      string `help:"Sort by updatedAt, createdAt or name." default:"updatedAt"`
	Ascending bool   `help:"Reverse the default newest-first order."`
	Recent    bool   `help:"Order by latest interaction instead."`
}

func (c *ContactsListCmd) Run(ctx context.Context, app *App) error {
	filter := db.ContactFilter{Search: c.Query, CompanyID: c.Company, InteractionLimit: app.Config.InteractionLimit}
	if c.Stage != "" {
		stage, err := models.ParseStage(c.Stage)
		if err != nil {
			return err
		}
		filter.Stage = stage
	}
	field, err := db.ParseOrderField(c.Sort)
	if err != nil {
		return err
	}
	filter.OrderBy = db.OrderBy{Field: field, Ascending: c.Ascending}

	list, err := app.Contacts.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}
	if c.Recent {
		list = contacts.SortByRecentActivity(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(app.Out, "No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tSTAGE\tCOMPANY\tLAST ACTIVITY\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t-------\t-------------\t--")
	for _, contact := range list {
		company := "-"
		if contact.Company != nil {
			company = contact.Company.Name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			contact.Name, contact.Email, contact.Stage, company,
			contacts.LastActivity(contact).Format(time.DateOnly), contact.ID)
	}
	return w.Flush()
}

type ContactsShowCmd struct {
	ID string `arg:"" help:"Contact ID."`
}

func (c *ContactsShowCmd) Run(ctx context.Context, app *App) error {
	contact, err := app.Contacts.Get(ctx, c.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "%s (%s)\n", contact.Name, contact.ID)
	fmt.Fprintf(app.Out, "  Email: %s\n", contact.Email)
	if contact.Phone != "" {
		fmt.Fprintf(app.Out, "  Phone: %s\n", contact.Phone)
	}
	fmt.Fprintf(app.Out, "  Stage: %s\n", contact.Stage)
	if contact.Company != nil {
		fmt.Fprintf(app.Out, "  Company: %s\n", contact.Company.Name)
	}
	if contact.ConvertedAt != nil {
		fmt.Fprintf(app.Out, "  Converted: %s\n", contact.ConvertedAt.Format(time.DateOnly))
	}
	if contact.Notes != "" {
		fmt.Fprintf(app.Out, "  Notes: %s\n", contact.Notes)
	}
	if len(contact.Interactions) == 0 {
		fmt.Fprintln(app.Out, "\nNo interactions yet")
		return nil
	}
	fmt.Fprintln(app.Out, "\nInteractions:")
	for _, i := range contact.Interactions {
		fmt.Fprintf(app.Out, "  %s  %-8s %s\n", i.CreatedAt.Format(time.DateOnly), i.Type, i.Description)
	}
	return nil
}

type ContactsUpdateCmd struct {
	ID      string  `arg:"" help:"Contact ID."`
	Name    *string `help:"New name."`
	Email   *string `help:"New email address."`
	Phone   *string `help:"New phone number."`
	Stage   *string `help:"New pipeline stage."`
	Notes   *string `help:"Replacement notes."`
	Company *string `help:"New company ID; empty detaches."`
}

func (c *ContactsUpdateCmd) Run(ctx context.Context, app *App) error {
	current, err := app.Contacts.Get(ctx, c.ID)
	if err != nil {
		return err
	}

	var patch models.ContactPatch
	if c.Stage != nil {
		stage, err := models.ParseStage(*c.Stage)
		if err != nil {
			return err
		}
		patch = contacts.StageChange(current.Contact, stage, app.Now())
	}
	patch.Name = c.Name
	patch.Email = c.Email
	patch.Phone = c.Phone
	patch.Notes = c.Notes
	patch.CompanyID = c.Company

	updated, err := app.Contacts.Update(ctx, c.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Contact updated: %s (%s)\n", updated.Name, updated.Stage)
	return nil
}

type ContactsDeleteCmd struct {
	ID string `arg:"" help:"Contact ID."`
}

func (c *ContactsDeleteCmd) Run(ctx context.Context, app *App) error {
	deleted, err := app.Contacts.Delete(ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "✓ Contact deleted: %s\n", deleted.Name)
	return nil
}

type ContactsLogCmd struct {
	ID          string `arg:"" help:"Contact ID."`
	Type        string `short:"t" help:"EMAIL, CALL, MEETING or NOTE." default:"NOTE"`
	Description string `arg:"" help:"What happened."`
}

func (c *ContactsLogCmd) Run(ctx context.Context, app *App) error {
	kind, err := models.ParseInteractionType(c.Type)
	if err != nil {
		return err
	}
	interaction, err := app.Contacts.AddInteraction(ctx, models.CreateInteractionInput{
		Type:        kind,
		Description: c.Description,
		ContactID:   c.ID,
		UserID:      app.Config.UserID,
	})
	if err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Logged %s for %s (ID: %s)\n", interaction.Type, c.ID, interaction.ID)
	return nil
}

type CompaniesCmd struct {
	Add  CompaniesAddCmd  `cmd:"" help:"Add a company."`
	List CompaniesListCmd `cmd:"" help:"List companies."`
}

type CompaniesAddCmd struct {
	Name string `arg:"" help:"Company name."`
}

func (c *CompaniesAddCmd) Run(ctx context.Context, app *App) error {
	company, err := app.Contacts.CreateCompany(ctx, models.CreateCompanyInput{Name: c.Name})
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Company created: %s (ID: %s)\n", company.Name, company.ID)
	return nil
}

type CompaniesListCmd struct{}

func (c *CompaniesListCmd) Run(ctx context.Context, app *App) error {
	companies, err := app.Contacts.ListCompanies(ctx, app.Contacts.OrganizationID())
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}
	if len(companies) == 0 {
		fmt.Fprintln(app.Out, "No companies found")
		return nil
	}
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tID")
	_, _ = fmt.Fprintln(w, "----\t--")
	for _, company := range companies {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", company.Name, company.ID)
	}
	return w.Flush()
}
