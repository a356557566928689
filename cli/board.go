// ABOUTME: Kanban-style board views for the pipeline and the task board
// ABOUTME: Renders one lipgloss column per stage or status
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/grimoire/contacts"
	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/models"
	"github.com/harperreed/grimoire/tasks"
)

var (
	boardColumnStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(0, 1).
				Width(36)

	boardHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))

	boardEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		models.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		models.PriorityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		models.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
	}
)

type BoardCmd struct {
	Contacts BoardContactsCmd `cmd:"" default:"1" help:"Pipeline columns by stage."`
	Tasks    BoardTasksCmd    `cmd:"" help:"Task columns by status."`
}

type BoardContactsCmd struct{}

func (c *BoardContactsCmd) Run(ctx context.Context, app *App) error {
	list, err := app.Contacts.List(ctx, db.ContactFilter{InteractionLimit: app.Config.InteractionLimit})
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}
	groups := contacts.GroupByStage(contacts.SortByRecentActivity(list))

	var columns []string
	for _, stage := range models.AllStages() {
		var items []string
		for _, contact := range groups[stage] {
			items = append(items, "• "+contact.Name)
		}
		columns = append(columns, renderColumn(string(stage), items))
	}
	_, err = fmt.Fprintln(app.Out, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	return err
}

type BoardTasksCmd struct{}

func (c *BoardTasksCmd) Run(ctx context.Context, app *App) error {
	list, err := app.Tasks.List(ctx, db.TaskFilter{})
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	groups := tasks.GroupByStatus(list)

	var columns []string
	for _, status := range models.AllTaskStatuses() {
		var items []string
		for _, t := range tasks.SortByPriority(groups[status]) {
			items = append(items, priorityBadge(t.Priority)+" "+t.Title)
		}
		columns = append(columns, renderColumn(string(status), items))
	}
	_, err = fmt.Fprintln(app.Out, lipgloss.JoinHorizontal(lipgloss.Top, columns...))
	return err
}

func priorityBadge(p models.Priority) string {
	style, ok := priorityStyles[p]
	if !ok {
		return "?"
	}
	return style.Render(string(p)[:1])
}

func renderColumn(title string, items []string) string {
	lines := []string{boardHeaderStyle.Render(fmt.Sprintf("%s (%d)", title, len(items)))}
	if len(items) == 0 {
		lines = append(lines, boardEmptyStyle.Render("empty"))
	}
	lines = append(lines, items...)
	return boardColumnStyle.Render(strings.Join(lines, "\n"))
}
