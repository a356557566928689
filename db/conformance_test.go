// ABOUTME: Behavioral tests shared by the memory, badger and sqlite backends
// ABOUTME: Every backend must answer the same queries the same way
package db

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/grimoire/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)

// testClock hands out a fixed time that tests advance explicitly.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: baseTime}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type backend struct {
	name string
	open func(t *testing.T, contacts ContactSeed, tasks TaskSeed, clock *testClock) (ContactRepository, TaskRepository)
}

func backends() []backend {
	return []backend{
		{
			name: "memory",
			open: func(t *testing.T, contacts ContactSeed, tasks TaskSeed, clock *testClock) (ContactRepository, TaskRepository) {
				return NewContactStore(contacts, WithClock(clock.Now)), NewTaskStore(tasks, WithClock(clock.Now))
			},
		},
		{
			name: "badger",
			open: func(t *testing.T, contacts ContactSeed, tasks TaskSeed, clock *testClock) (ContactRepository, TaskRepository) {
				p, err := OpenBadger(filepath.Join(t.TempDir(), "badger"))
				require.NoError(t, err)
				t.Cleanup(func() { _ = p.Close() })

				cs := NewContactStore(contacts, WithClock(clock.Now))
				ts := NewTaskStore(tasks, WithClock(clock.Now))
				require.NoError(t, cs.Persist(p))
				require.NoError(t, ts.Persist(p))
				return cs, ts
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T, contacts ContactSeed, tasks TaskSeed, clock *testClock) (ContactRepository, TaskRepository) {
				sqlDB, err := OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
				require.NoError(t, err)
				t.Cleanup(func() { _ = sqlDB.Close() })

				require.NoError(t, SeedSQLite(context.Background(), sqlDB, contacts, tasks))
				return NewSQLiteContactStore(sqlDB, WithClock(clock.Now)), NewSQLiteTaskStore(sqlDB, WithClock(clock.Now))
			},
		},
	}
}

func names(rows []models.ContactWithRelations) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func titles(rows []models.TaskWithTags) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

func TestContactRepositoryList(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			clock := newTestClock()
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, clock)
			ctx := context.Background()

			all, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			assert.Equal(t, []string{
				"Merlin Ambrosius", "Morgana Le Fay", "Circe of Aeaea",
				"Gandalf the Grey", "Hermione Granger", "Voldemort",
			}, names(all))

			vanished, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, Stage: models.StageVanished})
			require.NoError(t, err)
			require.Len(t, vanished, 1)
			assert.Equal(t, "Voldemort", vanished[0].Name)
			assert.Nil(t, vanished[0].Company)

			found, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, Search: "  MYSTIC-ent "})
			require.NoError(t, err)
			assert.Equal(t, []string{"Morgana Le Fay", "Gandalf the Grey"}, names(found))

			blank, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, Search: "   "})
			require.NoError(t, err)
			assert.Len(t, blank, 6)

			atCompany, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, CompanyID: "company_2"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Merlin Ambrosius", "Hermione Granger"}, names(atCompany))

			byName, err := repo.List(ctx, ContactFilter{
				OrganizationID: DemoOrganizationID,
				OrderBy:        OrderBy{Field: OrderName, Ascending: true},
			})
			require.NoError(t, err)
			assert.Equal(t, "Circe of Aeaea", byName[0].Name)
			assert.Equal(t, "Voldemort", byName[5].Name)

			other, err := repo.List(ctx, ContactFilter{OrganizationID: "org_2"})
			require.NoError(t, err)
			assert.Empty(t, other)
		})
	}
}

func TestContactRepositoryListSearchIsLiteral(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, newTestClock())

			rows, err := repo.List(context.Background(), ContactFilter{OrganizationID: DemoOrganizationID, Search: "%"})
			require.NoError(t, err)
			assert.Empty(t, rows)

			rows, err = repo.List(context.Background(), ContactFilter{OrganizationID: DemoOrganizationID, Search: "_"})
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestContactRepositoryListSearchFoldsUnicode(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, newTestClock())
			ctx := context.Background()

			_, err := repo.Create(ctx, models.CreateContactInput{
				Name:           "Éloïse Ärger",
				Email:          "ELOISE@ÖRTLICH.de",
				OrganizationID: DemoOrganizationID,
			})
			require.NoError(t, err)

			rows, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, Search: "éloïse ärger"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Éloïse Ärger"}, names(rows))

			rows, err = repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, Search: "ÉLOÏSE"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Éloïse Ärger"}, names(rows))

			rows, err = repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, Search: "örtlich"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Éloïse Ärger"}, names(rows), "email is searched too")
		})
	}
}

func TestContactRepositoryListRequiresOrganization(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, ContactSeed{}, TaskSeed{}, newTestClock())

			_, err := repo.List(context.Background(), ContactFilter{})
			assert.ErrorIs(t, err, ErrValidation)

			_, err = repo.List(context.Background(), ContactFilter{OrganizationID: "org_1", Stage: "ASLEEP"})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestContactRepositoryInteractionJoin(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			clock := newTestClock()
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, clock)
			ctx := context.Background()

			for i := 0; i < 7; i++ {
				clock.Advance(time.Minute)
				_, err := repo.AddInteraction(ctx, models.CreateInteractionInput{
					Type:        models.InteractionNote,
					Description: "note",
					ContactID:   "contact_2",
					UserID:      DemoUserID,
				})
				require.NoError(t, err)
			}

			rows, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, Search: "merlin"})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Len(t, rows[0].Interactions, DefaultInteractionLimit)

			rows, err = repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID, Search: "merlin", InteractionLimit: 2})
			require.NoError(t, err)
			assert.Len(t, rows[0].Interactions, 2)

			full, err := repo.Get(ctx, "contact_2")
			require.NoError(t, err)
			require.Len(t, full.Interactions, 9)
			for i := 1; i < len(full.Interactions); i++ {
				assert.False(t, full.Interactions[i].CreatedAt.After(full.Interactions[i-1].CreatedAt),
					"interactions must be newest first")
			}
			assert.Equal(t, "int_2", full.Interactions[8].ID)
			require.NotNil(t, full.Company)
			assert.Equal(t, "Enchanted Solutions", full.Company.Name)
		})
	}
}

func TestContactRepositoryGetNotFound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, newTestClock())

			_, err := repo.Get(context.Background(), "contact_missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.EqualError(t, err, "contact not found: contact_missing")
		})
	}
}

func TestContactRepositoryCreate(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			clock := newTestClock()
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, clock)
			ctx := context.Background()

			clock.Advance(time.Hour)
			created, err := repo.Create(ctx, models.CreateContactInput{
				Name:           " Baba Yaga ",
				Email:          "baba@hut.io",
				CompanyID:      models.StringPtr("company_3"),
				OrganizationID: DemoOrganizationID,
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.Equal(t, "Baba Yaga", created.Name)
			assert.Equal(t, models.StageFamiliar, created.Stage)
			assert.True(t, created.CreatedAt.Equal(clock.Now()))
			assert.True(t, created.UpdatedAt.Equal(clock.Now()))
			assert.Empty(t, created.Interactions)
			require.NotNil(t, created.Company)
			assert.Equal(t, "Spellbound Inc", created.Company.Name)

			second, err := repo.Create(ctx, models.CreateContactInput{Name: "Baba Yaga", Email: "baba@hut.io", OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			assert.NotEqual(t, created.ID, second.ID)

			got, err := repo.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Email, got.Email)

			rows, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			assert.Equal(t, created.ID, rows[0].ID, "newest contact lists first")
		})
	}
}

func TestContactRepositoryCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input models.CreateContactInput
		field string
	}{
		{"missing name", models.CreateContactInput{Email: "a@b.c", OrganizationID: "org_1"}, "name"},
		{"blank name", models.CreateContactInput{Name: "  ", Email: "a@b.c", OrganizationID: "org_1"}, "name"},
		{"missing email", models.CreateContactInput{Name: "A", OrganizationID: "org_1"}, "email"},
		{"missing org", models.CreateContactInput{Name: "A", Email: "a@b.c"}, "organizationId"},
		{"bad stage", models.CreateContactInput{Name: "A", Email: "a@b.c", OrganizationID: "org_1", Stage: "DORMANT"}, "stage"},
	}

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, ContactSeed{}, TaskSeed{}, newTestClock())
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					_, err := repo.Create(context.Background(), tt.input)
					require.ErrorIs(t, err, ErrValidation)
					var verr *ValidationError
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, tt.field, verr.Field)
				})
			}

			rows, err := repo.List(context.Background(), ContactFilter{OrganizationID: "org_1"})
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestContactRepositoryUpdate(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			clock := newTestClock()
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, clock)
			ctx := context.Background()

			clock.Advance(time.Hour)
			stage := models.StageBewitched
			converted := clock.Now()
			updated, err := repo.Update(ctx, "contact_1", models.ContactPatch{
				Stage:       &stage,
				ConvertedAt: &converted,
				CompanyID:   models.StringPtr(""),
			})
			require.NoError(t, err)
			assert.Equal(t, models.StageBewitched, updated.Stage)
			assert.Equal(t, "Morgana Le Fay", updated.Name, "untouched fields are kept")
			assert.Equal(t, "morgana@mystic-ent.com", updated.Email)
			require.NotNil(t, updated.ConvertedAt)
			assert.True(t, updated.ConvertedAt.Equal(converted))
			assert.Nil(t, updated.CompanyID)
			assert.Nil(t, updated.Company)
			assert.True(t, updated.UpdatedAt.Equal(clock.Now()))
			assert.Len(t, updated.Interactions, 1)

			got, err := repo.Get(ctx, "contact_1")
			require.NoError(t, err)
			assert.Equal(t, models.StageBewitched, got.Stage)
			assert.Nil(t, got.CompanyID)
		})
	}
}

func TestContactRepositoryUpdateNotFound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, newTestClock())

			stage := models.StageBewitched
			_, err := repo.Update(context.Background(), "contact_nope", models.ContactPatch{Stage: &stage})
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repo.Update(context.Background(), "contact_1", models.ContactPatch{Name: models.StringPtr(" ")})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestContactRepositoryDelete(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, newTestClock())
			ctx := context.Background()

			removed, err := repo.Delete(ctx, "contact_2")
			require.NoError(t, err)
			assert.Equal(t, "Merlin Ambrosius", removed.Name)

			_, err = repo.Get(ctx, "contact_2")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repo.Delete(ctx, "contact_2")
			assert.ErrorIs(t, err, ErrNotFound)

			// Interactions of the removed contact are gone with it.
			_, err = repo.AddInteraction(ctx, models.CreateInteractionInput{
				Type: models.InteractionCall, Description: "ghost call", ContactID: "contact_2", UserID: DemoUserID,
			})
			assert.ErrorIs(t, err, ErrNotFound)

			rows, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			assert.Len(t, rows, 5)
		})
	}
}

func TestContactRepositoryAddInteraction(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			clock := newTestClock()
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, clock)
			ctx := context.Background()

			clock.Advance(30 * time.Minute)
			interaction, err := repo.AddInteraction(ctx, models.CreateInteractionInput{
				Type:        models.InteractionMeeting,
				Description: "Tea at the tower",
				ContactID:   "contact_6",
				UserID:      DemoUserID,
			})
			require.NoError(t, err)
			assert.NotEmpty(t, interaction.ID)
			assert.True(t, interaction.CreatedAt.Equal(clock.Now()))

			contact, err := repo.Get(ctx, "contact_6")
			require.NoError(t, err)
			assert.False(t, contact.UpdatedAt.Before(interaction.CreatedAt))
			require.Len(t, contact.Interactions, 1)
			assert.Equal(t, interaction.ID, contact.Interactions[0].ID)

			rows, err := repo.List(ctx, ContactFilter{OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			assert.Equal(t, "Voldemort", rows[0].Name, "touched contact moves to the top")
		})
	}
}

func TestContactRepositoryAddInteractionFailures(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, newTestClock())
			ctx := context.Background()

			_, err := repo.AddInteraction(ctx, models.CreateInteractionInput{
				Type: models.InteractionEmail, Description: "hello", ContactID: "contact_missing", UserID: DemoUserID,
			})
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repo.AddInteraction(ctx, models.CreateInteractionInput{
				Type: models.InteractionEmail, ContactID: "contact_1", UserID: DemoUserID,
			})
			assert.ErrorIs(t, err, ErrValidation)

			_, err = repo.AddInteraction(ctx, models.CreateInteractionInput{
				Type: "SMOKE_SIGNAL", Description: "puff", ContactID: "contact_1", UserID: DemoUserID,
			})
			assert.ErrorIs(t, err, ErrValidation)

			contact, err := repo.Get(ctx, "contact_1")
			require.NoError(t, err)
			assert.Len(t, contact.Interactions, 1)
		})
	}
}

func TestContactRepositoryCompanies(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo, _ := b.open(t, DemoContacts(baseTime), TaskSeed{}, newTestClock())
			ctx := context.Background()

			company, err := repo.CreateCompany(ctx, models.CreateCompanyInput{Name: "Athame Labs", OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			assert.NotEmpty(t, company.ID)

			_, err = repo.CreateCompany(ctx, models.CreateCompanyInput{Name: "Elsewhere", OrganizationID: "org_2"})
			require.NoError(t, err)

			companies, err := repo.ListCompanies(ctx, DemoOrganizationID)
			require.NoError(t, err)
			var got []string
			for _, c := range companies {
				got = append(got, c.Name)
			}
			assert.Equal(t, []string{"Athame Labs", "Enchanted Solutions", "Mystic Enterprises", "Spellbound Inc"}, got)

			_, err = repo.CreateCompany(ctx, models.CreateCompanyInput{OrganizationID: DemoOrganizationID})
			assert.ErrorIs(t, err, ErrValidation)
			_, err = repo.ListCompanies(ctx, "")
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTaskRepositoryList(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := openTasks(t, b)
			ctx := context.Background()

			all, err := repo.List(ctx, TaskFilter{OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			assert.Equal(t, []string{
				"Repair the broken broomstick", "Brew the midnight potion", "Summon the ancient spirits",
				"Clean the haunted attic", "Organize the spell book collection", "Read the forbidden tome",
			}, titles(all))

			inRitual, err := repo.List(ctx, TaskFilter{OrganizationID: DemoOrganizationID, Status: models.StatusInRitual})
			require.NoError(t, err)
			assert.Equal(t, []string{"Brew the midnight potion", "Clean the haunted attic"}, titles(inRitual))

			low, err := repo.List(ctx, TaskFilter{OrganizationID: DemoOrganizationID, Priority: models.PriorityLow})
			require.NoError(t, err)
			assert.Len(t, low, 2)

			search, err := repo.List(ctx, TaskFilter{OrganizationID: DemoOrganizationID, Search: " POTION "})
			require.NoError(t, err)
			assert.Equal(t, []string{"Brew the midnight potion"}, titles(search))

			magic, err := repo.List(ctx, TaskFilter{OrganizationID: DemoOrganizationID, TagID: "tag_2"})
			require.NoError(t, err)
			assert.Equal(t, []string{"Brew the midnight potion", "Summon the ancient spirits"}, titles(magic))

			byUpdated, err := repo.List(ctx, TaskFilter{OrganizationID: DemoOrganizationID, OrderBy: OrderBy{Field: OrderUpdatedAt}})
			require.NoError(t, err)
			assert.Equal(t, "Brew the midnight potion", byUpdated[0].Title)
			assert.Equal(t, "Repair the broken broomstick", byUpdated[1].Title, "equal keys keep insertion order")

			_, err = repo.Create(ctx, models.CreateTaskInput{Title: "ÜBERRITUAL", OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			folded, err := repo.List(ctx, TaskFilter{OrganizationID: DemoOrganizationID, Search: "überritual"})
			require.NoError(t, err)
			assert.Equal(t, []string{"ÜBERRITUAL"}, titles(folded))

			_, err = repo.List(ctx, TaskFilter{})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestTaskRepositoryTagsAreJoined(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := openTasks(t, b)
			ctx := context.Background()

			task, err := repo.Get(ctx, "task_3")
			require.NoError(t, err)
			require.Len(t, task.Tags, 1)
			assert.Equal(t, "urgent", task.Tags[0].Name)

			tagged, err := repo.TagTask(ctx, "task_3", "tag_2")
			require.NoError(t, err)
			require.Len(t, tagged.Tags, 2)
			assert.Equal(t, "magic", tagged.Tags[0].Name, "tags are sorted by name")

			again, err := repo.TagTask(ctx, "task_3", "tag_2")
			require.NoError(t, err)
			assert.Len(t, again.Tags, 2, "tagging twice is a no-op")

			untagged, err := repo.UntagTask(ctx, "task_3", "tag_1")
			require.NoError(t, err)
			require.Len(t, untagged.Tags, 1)
			assert.Equal(t, "magic", untagged.Tags[0].Name)

			_, err = repo.TagTask(ctx, "task_3", "tag_missing")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = repo.TagTask(ctx, "task_missing", "tag_1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestTaskRepositoryTagAcrossOrganizations(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			repo := openTasks(t, b)
			ctx := context.Background()

			foreign, err := repo.CreateTag(ctx, models.CreateTagInput{Name: "foreign", OrganizationID: "org_2"})
			require.NoError(t, err)
			assert.Equal(t, models.DefaultTagColor, foreign.Color)

			_, err = repo.TagTask(ctx, "task_0", foreign.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			tags, err := repo.ListTags(ctx, DemoOrganizationID)
			require.NoError(t, err)
			require.Len(t, tags, 2)
			assert.Equal(t, "magic", tags[0].Name)
			assert.Equal(t, "urgent", tags[1].Name)
		})
	}
}

func TestTaskRepositoryCreateUpdateDelete(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			clock := newTestClock()
			_, repo := b.open(t, ContactSeed{}, DemoTasks(baseTime), clock)
			ctx := context.Background()

			clock.Advance(time.Minute)
			created, err := repo.Create(ctx, models.CreateTaskInput{Title: "Sweep the crypt", OrganizationID: DemoOrganizationID})
			require.NoError(t, err)
			assert.Equal(t, models.StatusSummoned, created.Status)
			assert.Equal(t, models.PriorityMedium, created.Priority)
			assert.Empty(t, created.Tags)
			assert.True(t, created.CreatedAt.Equal(clock.Now()))

			_, err = repo.Create(ctx, models.CreateTaskInput{OrganizationID: DemoOrganizationID})
			assert.ErrorIs(t, err, ErrValidation)
			_, err = repo.Create(ctx, models.CreateTaskInput{Title: "x", OrganizationID: DemoOrganizationID, Priority: "URGENT"})
			assert.ErrorIs(t, err, ErrValidation)

			clock.Advance(time.Minute)
			status := models.StatusBanished
			done := clock.Now()
			updated, err := repo.Update(ctx, created.ID, models.TaskPatch{Status: &status, CompletedAt: &done, AssigneeID: models.StringPtr("user_2")})
			require.NoError(t, err)
			assert.Equal(t, models.StatusBanished, updated.Status)
			assert.Equal(t, "Sweep the crypt", updated.Title)
			require.NotNil(t, updated.AssigneeID)
			assert.Equal(t, "user_2", *updated.AssigneeID)
			require.NotNil(t, updated.CompletedAt)
			assert.True(t, updated.UpdatedAt.Equal(clock.Now()))

			status = models.StatusBanished
			_, err = repo.Update(ctx, "task_missing", models.TaskPatch{Status: &status})
			assert.ErrorIs(t, err, ErrNotFound)

			removed, err := repo.Delete(ctx, "task_3")
			require.NoError(t, err)
			assert.Equal(t, "Repair the broken broomstick", removed.Title)
			_, err = repo.Delete(ctx, "task_3")
			assert.ErrorIs(t, err, ErrNotFound)

			urgent, err := repo.List(ctx, TaskFilter{OrganizationID: DemoOrganizationID, TagID: "tag_1"})
			require.NoError(t, err)
			assert.Empty(t, urgent, "deleted task leaves no tag links behind")

			tags, err := repo.ListTags(ctx, DemoOrganizationID)
			require.NoError(t, err)
			assert.Len(t, tags, 2, "tags survive task deletion")
		})
	}
}

func openTasks(t *testing.T, b backend) TaskRepository {
	t.Helper()
	_, repo := b.open(t, ContactSeed{}, DemoTasks(baseTime), newTestClock())
	return repo
}
