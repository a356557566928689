// ABOUTME: Pure filter, search, grouping and ordering helpers for fetched contacts
// ABOUTME: Never mutates its input; every function returns a fresh slice or map
package contacts

import (
	"slices"
	"strings"
	"time"

	"github.com/harperreed/grimoire/models"
)

type Contact = models.ContactWithRelations

func filter(list []Contact, keep func(Contact) bool) []Contact {
	out := make([]Contact, 0, len(list))
	for _, c := range list {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// FilterByStage keeps contacts in stage, preserving order.
func FilterByStage(list []Contact, stage models.Stage) []Contact {
	return filter(list, func(c Contact) bool { return c.Stage == stage })
}

// FilterByCompany keeps contacts attached to companyID. Contacts without a
// company never match.
func FilterByCompany(list []Contact, companyID string) []Contact {
	return filter(list, func(c Contact) bool {
		return c.CompanyID != nil && *c.CompanyID == companyID
	})
}

// Search matches query against name or email, ignoring case and surrounding
// whitespace. A blank query returns every contact.
func Search(list []Contact, query string) []Contact {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(list)
	}
	return filter(list, func(c Contact) bool {
		return strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Email), q)
	})
}

// CountsByStage always has a key for every stage.
func CountsByStage(list []Contact) map[models.Stage]int {
	counts := make(map[models.Stage]int, len(models.AllStages()))
	for _, s := range models.AllStages() {
		counts[s] = 0
	}
	for _, c := range list {
		if _, ok := counts[c.Stage]; ok {
			counts[c.Stage]++
		}
	}
	return counts
}

// GroupByStage splits list into pipeline columns. Every stage has a
// (possibly empty) column and contacts keep their relative order.
func GroupByStage(list []Contact) map[models.Stage][]Contact {
	columns := make(map[models.Stage][]Contact, len(models.AllStages()))
	for _, s := range models.AllStages() {
		columns[s] = FilterByStage(list, s)
	}
	return columns
}

// LastActivity is the newest interaction time, or UpdatedAt for a contact
// without interactions.
func LastActivity(c Contact) time.Time {
	if len(c.Interactions) == 0 {
		return c.UpdatedAt
	}
	latest := c.Interactions[0].CreatedAt
	for _, i := range c.Interactions[1:] {
		if i.CreatedAt.After(latest) {
			latest = i.CreatedAt
		}
	}
	return latest
}

// SortByRecentActivity orders contacts most recently active first. Ties keep
// their input order.
func SortByRecentActivity(list []Contact) []Contact {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Contact) int {
		return LastActivity(b).Compare(LastActivity(a))
	})
	return out
}

// StageChange builds the patch moving current to stage. Entering BEWITCHED
// stamps ConvertedAt with now unless the contact was already converted.
func StageChange(current models.Contact, stage models.Stage, now time.Time) models.ContactPatch {
	patch := models.ContactPatch{Stage: &stage}
	if stage == models.StageBewitched && current.Stage != models.StageBewitched && current.ConvertedAt == nil {
		converted := now.UTC()
		patch.ConvertedAt = &converted
	}
	return patch
}
