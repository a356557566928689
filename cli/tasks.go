// ABOUTME: Task and tag CLI commands
// ABOUTME: Human-friendly commands for managing the task board
package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/models"
	"github.com/harperreed/grimoire/tasks"
)

type TasksCmd struct {
	Add    TasksAddCmd    `cmd:"" help:"Add a task."`
	List   TasksListCmd   `cmd:"" help:"List tasks."`
	Show   TasksShowCmd   `cmd:"" help:"Show one task."`
	Update TasksUpdateCmd `cmd:"" help:"Update a task."`
	Delete TasksDeleteCmd `cmd:"" help:"Delete a task."`
	Tag    TasksTagCmd    `cmd:"" help:"Attach a tag to a task."`
	Untag  TasksUntagCmd  `cmd:"" help:"Remove a tag from a task."`
}

type TasksAddCmd struct {
	Title       string   `arg:"" help:"Task title."`
	Description string   `short:"d" help:"Longer description."`
	Status      string   `help:"Board column (default SUMMONED)."`
	Priority    string   `short:"p" help:"LOW, MEDIUM, HIGH or CRITICAL (default MEDIUM)."`
	Assignee    string   `help:"Assignee user ID."`
	Tag         []string `help:"Tag IDs to attach."`
}

func (c *TasksAddCmd) Run(ctx context.Context, app *App) error {
	input := models.CreateTaskInput{Title: c.Title, Description: c.Description}
	if c.Status != "" {
		status, err := models.ParseTaskStatus(c.Status)
		if err != nil {
			return err
		}
		input.Status = status
	}
	if c.Priority != "" {
		priority, err := models.ParsePriority(c.Priority)
		if err != nil {
			return err
		}
		input.Priority = priority
	}
	if c.Assignee != "" {
		input.AssigneeID = models.StringPtr(c.Assignee)
	}

	if input.Status == models.StatusBanished {
		now := app.Now()
		input.CompletedAt = &now
	}

	task, err := app.Tasks.CreateWithTags(ctx, input, c.Tag)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Task created: %s (ID: %s)\n", task.Title, task.ID)
	fmt.Fprintf(app.Out, "  %s / %s\n", task.Status, task.Priority)
	return nil
}

type TasksListCmd struct {
	Status    string `help:"Filter by status."`
	Priority  string `short:"p" help:"Filter by priority."`
	Query     string `short:"q" help:"Search titles."`
	Tag       string `help:"Filter by tag ID."`
	Sort      string `help:"Sort by createdAt, updatedAt or title." default:"createdAt"`
	Ascending bool   `help:"Reverse the default newest-first order."`
	Urgent    bool   `help:"Order by priority, most urgent first."`
}

func (c *TasksListCmd) Run(ctx context.Context, app *App) error {
	filter := db.TaskFilter{Search: c.Query, TagID: c.Tag}
	if c.Status != "" {
		status, err := models.ParseTaskStatus(c.Status)
		if err != nil {
			return err
		}
		filter.Status = status
	}
	if c.Priority != "" {
		priority, err := models.ParsePriority(c.Priority)
		if err != nil {
			return err
		}
		filter.Priority = priority
	}
	field, err := db.ParseOrderField(c.Sort)
	if err != nil {
		return err
	}
	filter.OrderBy = db.OrderBy{Field: field, Ascending: c.Ascending}

	list, err := app.Tasks.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if c.Urgent {
		list = tasks.SortByPriority(list)
	}
	if len(list) == 0 {
		fmt.Fprintln(app.Out, "No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tSTATUS\tPRIORITY\tTAGS\tID")
	_, _ = fmt.Fprintln(w, "-----\t------\t--------\t----\t--")
	for _, t := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Title, t.Status, t.Priority, tagNames(t.Tags), t.ID)
	}
	return w.Flush()
}

func tagNames(tags []models.Tag) string {
	if len(tags) == 0 {
		return "-"
	}
	names := make([]string, 0, len(tags))
	for _, g := range tags {
		names = append(names, g.Name)
	}
	return strings.Join(names, ",")
}

type TasksShowCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TasksShowCmd) Run(ctx context.Context, app *App) error {
	t, err := app.Tasks.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "%s (%s)\n", t.Title, t.ID)
	fmt.Fprintf(app.Out, "  Status: %s\n", t.Status)
	fmt.Fprintf(app.Out, "  Priority: %s\n", t.Priority)
	if t.AssigneeID != nil {
		fmt.Fprintf(app.Out, "  Assignee: %s\n", *t.AssigneeID)
	}
	if t.CompletedAt != nil {
		fmt.Fprintf(app.Out, "  Completed: %s\n", t.CompletedAt.Format(time.DateOnly))
	}
	fmt.Fprintf(app.Out, "  Tags: %s\n", tagNames(t.Tags))
	if t.Description != "" {
		fmt.Fprintf(app.Out, "\n%s\n", t.Description)
	}
	return nil
}

type TasksUpdateCmd struct {
	ID          string  `arg:"" help:"Task ID."`
	Title       *string `help:"New title."`
	Description *string `help:"New description."`
	Status      *string `help:"New board column."`
	Priority    *string `help:"New priority."`
	Assignee    *string `help:"New assignee; empty unassigns."`
}

func (c *TasksUpdateCmd) Run(ctx context.Context, app *App) error {
	current, err := app.Tasks.Get(ctx, c.ID)
	if err != nil {
		return err
	}

	var patch models.TaskPatch
	if c.Status != nil {
		status, err := models.ParseTaskStatus(*c.Status)
		if err != nil {
			return err
		}
		patch = tasks.StatusChange(current.Task, status, app.Now())
	}
	if c.Priority != nil {
		priority, err := models.ParsePriority(*c.Priority)
		if err != nil {
			return err
		}
		patch.Priority = &priority
	}
	patch.Title = c.Title
	patch.Description = c.Description
	patch.AssigneeID = c.Assignee

	updated, err := app.Tasks.Update(ctx, c.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Task updated: %s (%s / %s)\n", updated.Title, updated.Status, updated.Priority)
	return nil
}

type TasksDeleteCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TasksDeleteCmd) Run(ctx context.Context, app *App) error {
	deleted, err := app.Tasks.Delete(ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "✓ Task deleted: %s\n", deleted.Title)
	return nil
}

type TasksTagCmd struct {
	ID  string `arg:"" help:"Task ID."`
	Tag string `arg:"" help:"Tag ID."`
}

func (c *TasksTagCmd) Run(ctx context.Context, app *App) error {
	t, err := app.Tasks.TagTask(ctx, c.ID, c.Tag)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "✓ %s tags: %s\n", t.Title, tagNames(t.Tags))
	return nil
}

type TasksUntagCmd struct {
	ID  string `arg:"" help:"Task ID."`
	Tag string `arg:"" help:"Tag ID."`
}

func (c *TasksUntagCmd) Run(ctx context.Context, app *App) error {
	t, err := app.Tasks.UntagTask(ctx, c.ID, c.Tag)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "✓ %s tags: %s\n", t.Title, tagNames(t.Tags))
	return nil
}

type TagsCmd struct {
	Add  TagsAddCmd  `cmd:"" help:"Add a tag."`
	List TagsListCmd `cmd:"" help:"List tags."`
}

type TagsAddCmd struct {
	Name  string `arg:"" help:"Tag name."`
	Color string `help:"Hex color (default #9d5bd2)."`
}

func (c *TagsAddCmd) Run(ctx context.Context, app *App) error {
	tag, err := app.Tasks.CreateTag(ctx, models.CreateTagInput{Name: c.Name, Color: c.Color})
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Tag created: %s %s (ID: %s)\n", tag.Name, tag.Color, tag.ID)
	return nil
}

type TagsListCmd struct{}

func (c *TagsListCmd) Run(ctx context.Context, app *App) error {
	list, err := app.Tasks.ListTags(ctx, app.Tasks.OrganizationID())
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(app.Out, "No tags found")
		return nil
	}
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCOLOR\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t--")
	for _, g := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name, g.Color, g.ID)
	}
	return w.Flush()
}
