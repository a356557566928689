// ABOUTME: Pure filter, search, grouping and ordering helpers for fetched tasks
// ABOUTME: Never mutates its input; every function returns a fresh slice or map
package tasks

import (
	"slices"
	"strings"
	"time"

	"github.com/harperreed/grimoire/models"
)

type Task = models.TaskWithTags

func filter(list []Task, keep func(Task) bool) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func FilterByStatus(list []Task, status models.TaskStatus) []Task {
	return filter(list, func(t Task) bool { return t.Status == status })
}

func FilterByPriority(list []Task, priority models.Priority) []Task {
	return filter(list, func(t Task) bool { return t.Priority == priority })
}

// FilterByTag keeps tasks carrying tagID.
func FilterByTag(list []Task, tagID string) []Task {
	return filter(list, func(t Task) bool {
		return slices.ContainsFunc(t.Tags, func(g models.Tag) bool { return g.ID == tagID })
	})
}

// Search matches query against the title, ignoring case and surrounding
// whitespace. A blank query returns every task.
func Search(list []Task, query string) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(list)
	}
	return filter(list, func(t Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q)
	})
}

// CountsByStatus always has a key for every status.
func CountsByStatus(list []Task) map[models.TaskStatus]int {
	counts := make(map[models.TaskStatus]int, len(models.AllTaskStatuses()))
	for _, s := range models.AllTaskStatuses() {
		counts[s] = 0
	}
	for _, t := range list {
		if _, ok := counts[t.Status]; ok {
			counts[t.Status]++
		}
	}
	return counts
}

// CountsByPriority always has a key for every priority.
func CountsByPriority(list []Task) map[models.Priority]int {
	counts := make(map[models.Priority]int, len(models.AllPriorities()))
	for _, p := range models.AllPriorities() {
		counts[p] = 0
	}
	for _, t := range list {
		if _, ok := counts[t.Priority]; ok {
			counts[t.Priority]++
		}
	}
	return counts
}

// GroupByStatus splits list into board columns, one per status.
func GroupByStatus(list []Task) map[models.TaskStatus][]Task {
	columns := make(map[models.TaskStatus][]Task, len(models.AllTaskStatuses()))
	for _, s := range models.AllTaskStatuses() {
		columns[s] = FilterByStatus(list, s)
	}
	return columns
}

// SortByPriority orders tasks CRITICAL, HIGH, MEDIUM, LOW. Tasks of equal
// priority keep their input order.
func SortByPriority(list []Task) []Task {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b Task) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return out
}

// IsOverdue reports whether an unfinished task is past due at now. A task
// without a due date is never overdue.
func IsOverdue(t models.Task, due *time.Time, now time.Time) bool {
	if due == nil {
		return false
	}
	return now.After(*due) && t.Status != models.StatusBanished
}

// StatusChange builds the patch moving current to status. Entering BANISHED
// stamps CompletedAt; leaving it clears CompletedAt.
func StatusChange(current models.Task, status models.TaskStatus, now time.Time) models.TaskPatch {
	patch := models.TaskPatch{Status: &status}
	switch {
	case status == models.StatusBanished && current.Status != models.StatusBanished:
		completed := now.UTC()
		patch.CompletedAt = &completed
	case status != models.StatusBanished && current.CompletedAt != nil:
		patch.CompletedAt = &time.Time{}
	}
	return patch
}
