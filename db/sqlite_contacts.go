// ABOUTME: SQLite implementation of the contact pipeline repository
// ABOUTME: Mirrors ContactStore semantics with SQL filtering, ordering and joins
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/grimoire/models"
)

var _ ContactRepository = (*SQLiteContactStore)(nil)

type SQLiteContactStore struct {
	db   *sql.DB
	opts options
}

func NewSQLiteContactStore(db *sql.DB, opts ...Option) *SQLiteContactStore {
	return &SQLiteContactStore{db: db, opts: newOptions(opts)}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const contactColumns = `id, name, email, phone, stage, notes, company_id, organization_id, converted_at, created_at, updated_at`

func scanContact(row scanner) (models.Contact, error) {
	var c models.Contact
	var companyID sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Stage, &c.Notes, &companyID,
		&c.OrganizationID, &c.ConvertedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if companyID.Valid {
		id := companyID.String
		c.CompanyID = &id
	}
	return c, nil
}

// orderClause renders o against whitelisted columns. rowid keeps ties in
// insertion order.
func orderClause(o OrderBy, nameColumn string) string {
	col := "updated_at"
	switch o.Field {
	case OrderCreatedAt:
		col = "created_at"
	case OrderName:
		col = "go_lower(" + nameColumn + ")"
	}
	dir := "DESC"
	if o.Ascending {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, rowid ASC", col, dir)
}

func (s *SQLiteContactStore) List(ctx context.Context, filter ContactFilter) ([]models.ContactWithRelations, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	where := []string{"organization_id = ?"}
	args := []any{filter.OrganizationID}
	if filter.Stage != "" {
		where = append(where, "stage = ?")
		args = append(args, filter.Stage)
	}
	if filter.CompanyID != "" {
		where = append(where, "company_id = ?")
		args = append(args, filter.CompanyID)
	}
	if term := searchTerm(filter.Search); term != "" {
		where = append(where, "(instr(go_lower(name), ?) > 0 OR instr(go_lower(email), ?) > 0)")
		args = append(args, term, term)
	}

	query := "SELECT " + contactColumns + " FROM contacts WHERE " + strings.Join(where, " AND ") +
		" " + orderClause(filter.order(), "name")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	var contacts []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	out := make([]models.ContactWithRelations, 0, len(contacts))
	for _, c := range contacts {
		joined, err := s.join(ctx, s.db, c, filter.interactionLimit())
		if err != nil {
			return nil, err
		}
		out = append(out, joined)
	}
	return out, nil
}

func (s *SQLiteContactStore) Get(ctx context.Context, id string) (*models.ContactWithRelations, error) {
	c, err := s.getContact(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	joined, err := s.join(ctx, s.db, c, -1)
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

func (s *SQLiteContactStore) Create(ctx context.Context, input models.CreateContactInput) (*models.ContactWithRelations, error) {
	if err := validateContactInput(input); err != nil {
		return nil, err
	}

	c := newContact(input, s.opts.now())
	if err := insertContact(ctx, s.db, c); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("contact_id", c.ID).Str("org", c.OrganizationID).Msg("contact created")

	joined, err := s.join(ctx, s.db, c, -1)
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

func (s *SQLiteContactStore) Update(ctx context.Context, id string, patch models.ContactPatch) (*models.ContactWithRelations, error) {
	if err := validateContactPatch(patch); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	c, err := s.getContact(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(&c)
	c.UpdatedAt = s.opts.now()

	_, err = tx.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, email = ?, phone = ?, stage = ?, notes = ?, company_id = ?, converted_at = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Email, c.Phone, c.Stage, c.Notes, c.CompanyID, c.ConvertedAt, c.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	joined, err := s.join(ctx, tx, c, -1)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("contact_id", id).Str("stage", string(c.Stage)).Msg("contact updated")
	return &joined, nil
}

// Delete removes the contact and its interactions in one transaction.
func (s *SQLiteContactStore) Delete(ctx context.Context, id string) (*models.Contact, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	c, err := s.getContact(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE contact_id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete interactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete contact: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("contact_id", id).Msg("contact deleted")
	return &c, nil
}

func (s *SQLiteContactStore) AddInteraction(ctx context.Context, input models.CreateInteractionInput) (*models.Interaction, error) {
	if err := validateInteractionInput(input); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := s.opts.now()
	res, err := tx.ExecContext(ctx, `UPDATE contacts SET updated_at = ? WHERE id = ?`, now, input.ContactID)
	if err != nil {
		return nil, fmt.Errorf("failed to touch contact: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
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
	if err := insertInteraction(ctx, tx, interaction); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("contact_id", input.ContactID).Str("type", string(input.Type)).Msg("interaction logged")
	return &interaction, nil
}

func (s *SQLiteContactStore) CreateCompany(ctx context.Context, input models.CreateCompanyInput) (*models.Company, error) {
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
	if err := insertCompany(ctx, s.db, company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *SQLiteContactStore) ListCompanies(ctx context.Context, organizationID string) ([]models.Company, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, required("organizationId")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, organization_id, created_at, updated_at
		FROM companies WHERE organization_id = ?
		ORDER BY go_lower(name), rowid
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.OrganizationID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *SQLiteContactStore) getContact(ctx context.Context, q queryer, id string) (models.Contact, error) {
	row := q.QueryRowContext(ctx, "SELECT "+contactColumns+" FROM contacts WHERE id = ?", id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return c, notFound("contact", id)
	}
	if err != nil {
		return c, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// join attaches the same-organization company and the newest interactions.
// A negative limit returns every interaction.
func (s *SQLiteContactStore) join(ctx context.Context, q queryer, c models.Contact, limit int) (models.ContactWithRelations, error) {
	out := models.ContactWithRelations{Contact: c, Interactions: []models.Interaction{}}

	if c.CompanyID != nil {
		var company models.Company
		err := q.QueryRowContext(ctx, `
			SELECT id, name, organization_id, created_at, updated_at
			FROM companies WHERE id = ? AND organization_id = ?
		`, *c.CompanyID, c.OrganizationID).Scan(&company.ID, &company.Name, &company.OrganizationID, &company.CreatedAt, &company.UpdatedAt)
		switch {
		case err == nil:
			out.Company = &company
		case !errors.Is(err, sql.ErrNoRows):
			return out, fmt.Errorf("failed to load company: %w", err)
		}
	}

	// LIMIT -1 is unbounded in SQLite.
	rows, err := q.QueryContext(ctx, `
		SELECT id, type, description, contact_id, user_id, created_at
		FROM interactions WHERE contact_id = ?
		ORDER BY created_at DESC, rowid ASC
		LIMIT ?
	`, c.ID, limit)
	if err != nil {
		return out, fmt.Errorf("failed to load interactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var i models.Interaction
		if err := rows.Scan(&i.ID, &i.Type, &i.Description, &i.ContactID, &i.UserID, &i.CreatedAt); err != nil {
			return out, err
		}
		out.Interactions = append(out.Interactions, i)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertCompany(ctx context.Context, e execer, c models.Company) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO companies (id, name, organization_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.OrganizationID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func insertContact(ctx context.Context, e execer, c models.Contact) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Email, c.Phone, c.Stage, c.Notes, c.CompanyID, c.OrganizationID, c.ConvertedAt, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func insertInteraction(ctx context.Context, e execer, i models.Interaction) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO interactions (id, type, description, contact_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, i.ID, i.Type, i.Description, i.ContactID, i.UserID, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil
}
