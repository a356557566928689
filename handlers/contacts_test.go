package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/models"
)

func TestListContacts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, out, err := f.contacts.ListContacts(ctx, nil, ListContactsInput{})
	require.NoError(t, err)
	assert.Equal(t, 6, out.Count)
	assert.Equal(t, []string{"contact_2", "contact_1", "contact_3", "contact_4", "contact_5", "contact_6"}, contactIDs(out.Contacts))

	first := out.Contacts[0]
	require.NotNil(t, first.Company)
	assert.Equal(t, "Enchanted Solutions", first.Company.Name)
	require.Len(t, first.Interactions, 2)
	assert.Equal(t, "int_3", first.Interactions[0].ID)
}

func TestListContactsFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input ListContactsInput
		want  []string
	}{
		{"stage any case", ListContactsInput{Stage: "bewitched"}, []string{"contact_4", "contact_5"}},
		{"search email", ListContactsInput{Search: "MYSTIC"}, []string{"contact_1", "contact_4"}},
		{"company", ListContactsInput{CompanyID: "company_2"}, []string{"contact_2", "contact_5"}},
		{"by name ascending", ListContactsInput{OrderBy: "name", Ascending: true, Stage: "ENCHANTING"}, []string{"contact_3", "contact_2"}},
		{"oldest first", ListContactsInput{Ascending: true, Stage: "BEWITCHED"}, []string{"contact_5", "contact_4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := f.contacts.ListContacts(ctx, nil, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, contactIDs(out.Contacts))
		})
	}

	_, _, err := f.contacts.ListContacts(ctx, nil, ListContactsInput{Stage: "LOST"})
	assert.ErrorContains(t, err, "invalid stage")

	_, _, err = f.contacts.ListContacts(ctx, nil, ListContactsInput{OrderBy: "email"})
	assert.ErrorIs(t, err, db.ErrValidation)
}

func TestListContactsInteractionLimit(t *testing.T) {
	f := setup(t)

	_, out, err := f.contacts.ListContacts(context.Background(), nil, ListContactsInput{CompanyID: "company_2", InteractionLimit: 1})
	require.NoError(t, err)
	require.NotEmpty(t, out.Contacts)
	assert.Len(t, out.Contacts[0].Interactions, 1)
}

func TestGetContactHidesOtherOrganizations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	foreign, err := f.stores.Contacts.Create(ctx, models.CreateContactInput{
		Name: "Baba Yaga", Email: "baba@hut.example", OrganizationID: "org_2",
	})
	require.NoError(t, err)

	_, _, err = f.contacts.GetContact(ctx, nil, ContactIDInput{ID: foreign.ID})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, out, err := f.contacts.GetContact(ctx, nil, ContactIDInput{ID: "contact_4"})
	require.NoError(t, err)
	assert.Equal(t, "Gandalf the Grey", out.Name)
	require.NotNil(t, out.ConvertedAt)
}

func TestAddContact(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, out, err := f.contacts.AddContact(ctx, nil, AddContactInput{
		Name: "Glinda", Email: "glinda@oz.example", CompanyName: "mystic enterprises",
	})
	require.NoError(t, err)
	assert.Equal(t, "FAMILIAR", out.Stage)
	require.NotNil(t, out.CompanyID)
	assert.Equal(t, "company_1", *out.CompanyID, "existing company matched case-insensitively")
	assert.Nil(t, out.ConvertedAt)
	assert.Empty(t, out.Interactions)

	_, out, err = f.contacts.AddContact(ctx, nil, AddContactInput{
		Name: "Elphaba", Email: "elphaba@oz.example", Stage: "bewitched", CompanyName: "Emerald City Works",
	})
	require.NoError(t, err)
	assert.Equal(t, "BEWITCHED", out.Stage)
	require.NotNil(t, out.ConvertedAt)
	assert.Equal(t, formatTime(testNow), *out.ConvertedAt)
	require.NotNil(t, out.Company)
	assert.Equal(t, "Emerald City Works", out.Company.Name)

	_, companies, err := f.contacts.ListCompanies(ctx, nil, ListCompaniesInput{})
	require.NoError(t, err)
	assert.Len(t, companies.Companies, 4)
}

func TestAddContactValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, _, err := f.contacts.AddContact(ctx, nil, AddContactInput{Name: "No Email"})
	assert.ErrorIs(t, err, db.ErrValidation)

	_, _, err = f.contacts.AddContact(ctx, nil, AddContactInput{Name: "x", Email: "x@y.z", Stage: "ghost"})
	assert.ErrorContains(t, err, "invalid stage")

	_, _, err = f.contacts.AddContact(ctx, nil, AddContactInput{Name: "x", Email: "x@y.z", CompanyID: "company_missing"})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUpdateContactStageStampsConversion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, out, err := f.contacts.UpdateContact(ctx, nil, UpdateContactInput{
		ID: "contact_1", Stage: models.StringPtr("Bewitched"), Notes: models.StringPtr("Signed."),
	})
	require.NoError(t, err)
	assert.Equal(t, "BEWITCHED", out.Stage)
	assert.Equal(t, "Signed.", out.Notes)
	require.NotNil(t, out.ConvertedAt)
	assert.Equal(t, formatTime(testNow), *out.ConvertedAt)

	_, before, err := f.contacts.GetContact(ctx, nil, ContactIDInput{ID: "contact_4"})
	require.NoError(t, err)
	_, out, err = f.contacts.UpdateContact(ctx, nil, UpdateContactInput{ID: "contact_4", Stage: models.StringPtr("BEWITCHED")})
	require.NoError(t, err)
	assert.Equal(t, before.ConvertedAt, out.ConvertedAt, "already converted contacts keep their date")
}

func TestUpdateContactDetachCompany(t *testing.T) {
	f := setup(t)

	_, out, err := f.contacts.UpdateContact(context.Background(), nil, UpdateContactInput{ID: "contact_1", CompanyID: models.StringPtr("")})
	require.NoError(t, err)
	assert.Nil(t, out.CompanyID)
	assert.Nil(t, out.Company)
}

func TestUpdateContactMissing(t *testing.T) {
	f := setup(t)

	_, _, err := f.contacts.UpdateContact(context.Background(), nil, UpdateContactInput{ID: "contact_nope", Name: models.StringPtr("x")})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDeleteContact(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, out, err := f.contacts.DeleteContact(ctx, nil, ContactIDInput{ID: "contact_2"})
	require.NoError(t, err)
	assert.Equal(t, "Merlin Ambrosius", out.Name)

	_, _, err = f.contacts.GetContact(ctx, nil, ContactIDInput{ID: "contact_2"})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, _, err = f.contacts.DeleteContact(ctx, nil, ContactIDInput{ID: "contact_2"})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestLogInteraction(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, out, err := f.contacts.LogInteraction(ctx, nil, LogInteractionInput{
		ContactID: "contact_6", Type: "call", Description: "Tried once more",
	})
	require.NoError(t, err)
	assert.Equal(t, "CALL", out.Type)
	assert.Equal(t, db.DemoUserID, out.UserID)
	assert.Equal(t, formatTime(testNow), out.CreatedAt)

	_, contact, err := f.contacts.GetContact(ctx, nil, ContactIDInput{ID: "contact_6"})
	require.NoError(t, err)
	require.Len(t, contact.Interactions, 1)
	assert.Equal(t, out.ID, contact.Interactions[0].ID)
	assert.Equal(t, formatTime(testNow), contact.LastActivity)

	_, _, err = f.contacts.LogInteraction(ctx, nil, LogInteractionInput{ContactID: "contact_6", Type: "SMOKE", Description: "x"})
	assert.ErrorContains(t, err, "invalid interaction type")

	_, _, err = f.contacts.LogInteraction(ctx, nil, LogInteractionInput{ContactID: "contact_404", Type: "NOTE", Description: "x"})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestAddCompany(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, out, err := f.contacts.AddCompany(ctx, nil, AddCompanyInput{Name: "Arcane Labs"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)

	_, _, err = f.contacts.AddCompany(ctx, nil, AddCompanyInput{Name: "  "})
	assert.ErrorIs(t, err, db.ErrValidation)
}

func TestPipelineSummary(t *testing.T) {
	f := setup(t)

	_, out, err := f.contacts.PipelineSummary(context.Background(), nil, PipelineSummaryInput{Recent: 3})
	require.NoError(t, err)
	assert.Equal(t, 6, out.Total)
	assert.Equal(t, map[string]int{"FAMILIAR": 1, "ENCHANTING": 2, "BEWITCHED": 2, "VANISHED": 1}, out.Stages)
	assert.Equal(t, []string{"contact_2", "contact_1", "contact_3"}, contactIDs(out.Recent))
}
