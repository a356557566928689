// ABOUTME: Demo fixtures for the contact pipeline and task board
// ABOUTME: Timestamps are relative to a supplied now so the demo always looks fresh
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/grimoire/models"
)

// Demo tenant identifiers.
const (
	DemoOrganizationID = "org_1"
	DemoUserID         = "user_1"
)

func daysAgo(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour).UTC()
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// DemoContacts returns the pipeline fixtures.
func DemoContacts(now time.Time) ContactSeed {
	now = now.UTC()
	org := DemoOrganizationID

	company := func(id, name string) models.Company {
		return models.Company{ID: id, Name: name, OrganizationID: org, CreatedAt: now, UpdatedAt: now}
	}

	return ContactSeed{
		Companies: []models.Company{
			company("company_1", "Mystic Enterprises"),
			company("company_2", "Enchanted Solutions"),
			company("company_3", "Spellbound Inc"),
		},
		Contacts: []models.Contact{
			{
				ID: "contact_1", Name: "Morgana Le Fay", Email: "morgana@mystic-ent.com", Phone: "+1 (555) 123-4567",
				Stage: models.StageFamiliar, Notes: "Interested in our enchantment services. Follow up next week.",
				CompanyID: models.StringPtr("company_1"), OrganizationID: org,
				CreatedAt: daysAgo(now, 5), UpdatedAt: daysAgo(now, 2),
			},
			{
				ID: "contact_2", Name: "Merlin Ambrosius", Email: "merlin@enchanted-sol.com", Phone: "+1 (555) 234-5678",
				Stage: models.StageEnchanting, Notes: "Currently evaluating our spell-casting platform. Very interested.",
				CompanyID: models.StringPtr("company_2"), OrganizationID: org,
				CreatedAt: daysAgo(now, 10), UpdatedAt: daysAgo(now, 1),
			},
			{
				ID: "contact_3", Name: "Circe of Aeaea", Email: "circe@spellbound.io", Phone: "+1 (555) 345-6789",
				Stage: models.StageEnchanting, Notes: "Needs custom potion formulas. Scheduled demo for next Tuesday.",
				CompanyID: models.StringPtr("company_3"), OrganizationID: org,
				CreatedAt: daysAgo(now, 8), UpdatedAt: daysAgo(now, 3),
			},
			{
				ID: "contact_4", Name: "Gandalf the Grey", Email: "gandalf@mystic-ent.com",
				Stage: models.StageBewitched, Notes: "Signed contract! Onboarding starts next month.",
				CompanyID: models.StringPtr("company_1"), OrganizationID: org,
				CreatedAt: daysAgo(now, 15), UpdatedAt: daysAgo(now, 5), ConvertedAt: timePtr(daysAgo(now, 5)),
			},
			{
				ID: "contact_5", Name: "Hermione Granger", Email: "hermione@enchanted-sol.com", Phone: "+1 (555) 456-7890",
				Stage: models.StageBewitched, Notes: "Converted last week. Very happy with the service.",
				CompanyID: models.StringPtr("company_2"), OrganizationID: org,
				CreatedAt: daysAgo(now, 20), UpdatedAt: daysAgo(now, 7), ConvertedAt: timePtr(daysAgo(now, 7)),
			},
			{
				ID: "contact_6", Name: "Voldemort", Email: "tom@dark-arts.com",
				Stage: models.StageVanished, Notes: "Went with a competitor. Not interested in further contact.",
				OrganizationID: org, CreatedAt: daysAgo(now, 30), UpdatedAt: daysAgo(now, 10),
			},
		},
		Interactions: []models.Interaction{
			{ID: "int_1", Type: models.InteractionEmail, Description: "Sent initial introduction email with product overview",
				ContactID: "contact_1", UserID: DemoUserID, CreatedAt: daysAgo(now, 3)},
			{ID: "int_2", Type: models.InteractionCall, Description: "Discovery call - discussed their needs and pain points",
				ContactID: "contact_2", UserID: DemoUserID, CreatedAt: daysAgo(now, 5)},
			{ID: "int_3", Type: models.InteractionMeeting, Description: "Product demo - showed key features, very positive response",
				ContactID: "contact_2", UserID: DemoUserID, CreatedAt: daysAgo(now, 2)},
			{ID: "int_4", Type: models.InteractionEmail, Description: "Sent proposal and pricing information",
				ContactID: "contact_3", UserID: DemoUserID, CreatedAt: daysAgo(now, 4)},
			{ID: "int_5", Type: models.InteractionNote, Description: "Contract signed! Celebrating with the team",
				ContactID: "contact_4", UserID: DemoUserID, CreatedAt: daysAgo(now, 5)},
		},
	}
}

// DemoTasks returns the board fixtures.
func DemoTasks(now time.Time) TaskSeed {
	now = now.UTC()
	org := DemoOrganizationID

	task := func(id, title, desc string, status models.TaskStatus, priority models.Priority, created, updated int) models.Task {
		return models.Task{
			ID: id, Title: title, Description: desc, Status: status, Priority: priority,
			OrganizationID: org, CreatedAt: daysAgo(now, created), UpdatedAt: daysAgo(now, updated),
		}
	}

	tasks := []models.Task{
		task("task_0", "Summon the ancient spirits",
			"Prepare the ritual circle and gather the necessary ingredients for the summoning ceremony.",
			models.StatusSummoned, models.PriorityHigh, 3, 3),
		task("task_1", "Brew the midnight potion",
			"Mix eye of newt, wing of bat, and a dash of moonlight. Stir counterclockwise.",
			models.StatusInRitual, models.PriorityMedium, 2, 1),
		task("task_2", "Clean the haunted attic",
			"Remove cobwebs and organize the cursed artifacts. Watch out for the ghost cat.",
			models.StatusInRitual, models.PriorityLow, 5, 2),
		task("task_3", "Repair the broken broomstick",
			"The bristles are falling off. Need to enchant new ones before the full moon.",
			models.StatusSummoned, models.PriorityCritical, 1, 1),
		task("task_4", "Read the forbidden tome",
			"Study chapter 13 about shadow manipulation. Completed last week.",
			models.StatusBanished, models.PriorityMedium, 14, 7),
		task("task_5", "Organize the spell book collection",
			"Sort by dark magic level and publication date. Successfully completed.",
			models.StatusBanished, models.PriorityLow, 10, 3),
	}
	tasks[4].CompletedAt = timePtr(daysAgo(now, 7))
	tasks[5].CompletedAt = timePtr(daysAgo(now, 3))

	return TaskSeed{
		Tasks: tasks,
		Tags: []models.Tag{
			{ID: "tag_1", Name: "urgent", Color: "#ef4444", OrganizationID: org, CreatedAt: now, UpdatedAt: now},
			{ID: "tag_2", Name: "magic", Color: models.DefaultTagColor, OrganizationID: org, CreatedAt: now, UpdatedAt: now},
		},
		Links: []TaskTag{
			{TaskID: "task_3", TagID: "tag_1"},
			{TaskID: "task_0", TagID: "tag_2"},
			{TaskID: "task_1", TagID: "tag_2"},
		},
	}
}

// SeedSQLite loads fixtures into an empty database. A database that already
// holds contacts or tasks is left untouched.
func SeedSQLite(ctx context.Context, db *sql.DB, contacts ContactSeed, tasks TaskSeed) error {
	var existing int
	if err := db.QueryRowContext(ctx, `SELECT (SELECT COUNT(*) FROM contacts) + (SELECT COUNT(*) FROM tasks)`).Scan(&existing); err != nil {
		return fmt.Errorf("failed to inspect database: %w", err)
	}
	if existing > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range contacts.Companies {
		if err := insertCompany(ctx, tx, c); err != nil {
			return err
		}
	}
	for _, c := range contacts.Contacts {
		if err := insertContact(ctx, tx, c); err != nil {
			return err
		}
	}
	for _, i := range contacts.Interactions {
		if err := insertInteraction(ctx, tx, i); err != nil {
			return err
		}
	}
	for _, t := range tasks.Tasks {
		if err := insertTask(ctx, tx, t); err != nil {
			return err
		}
	}
	for _, g := range tasks.Tags {
		if err := insertTag(ctx, tx, g); err != nil {
			return err
		}
	}
	for _, l := range tasks.Links {
		if err := insertTaskTag(ctx, tx, l); err != nil {
			return err
		}
	}
	return tx.Commit()
}
