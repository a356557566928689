// ABOUTME: MCP prompt handlers for pipeline and board workflows
// ABOUTME: Builds contact summaries, follow-up lists, pipeline reviews and standups from live data
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/grimoire/contacts"
	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/models"
	"github.com/harperreed/grimoire/tasks"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	contacts *ContactHandlers
	tasks    *TaskHandlers
}

func NewPromptHandlers(contacts *ContactHandlers, tasks *TaskHandlers) *PromptHandlers {
	return &PromptHandlers{contacts: contacts, tasks: tasks}
}

// Prompts lists the prompt templates GetPrompt can render.
func (h *PromptHandlers) Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "contact-summary",
			Description: "Summarize a contact and suggest next steps",
			Arguments: []*mcp.PromptArgument{
				{Name: "contact_id", Description: "Contact ID", Required: true},
			},
		},
		{
			Name:        "follow-up-suggestions",
			Description: "Contacts with no activity for a while",
			Arguments: []*mcp.PromptArgument{
				{Name: "days_since_activity", Description: "Quiet period in days (default 7)"},
			},
		},
		{
			Name:        "pipeline-review",
			Description: "Review pipeline health stage by stage",
		},
		{
			Name:        "board-standup",
			Description: "Standup notes from the task board",
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	switch request.Params.Name {
	case "contact-summary":
		return h.contactSummary(ctx, args)
	case "follow-up-suggestions":
		return h.followUps(ctx, args)
	case "pipeline-review":
		return h.pipelineReview(ctx)
	case "board-standup":
		return h.boardStandup(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}

func (h *PromptHandlers) contactSummary(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id := args["contact_id"]
	if id == "" {
		return nil, fmt.Errorf("contact_id is required")
	}
	c, err := h.contacts.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}

	var b strings.Builder
	b.WriteString("Please provide a comprehensive summary of this contact:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	fmt.Fprintf(&b, "Email: %s\n", c.Email)
	if c.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
	}
	if c.Company != nil {
		fmt.Fprintf(&b, "Company: %s\n", c.Company.Name)
	}
	fmt.Fprintf(&b, "Stage: %s\n", c.Stage)
	if c.ConvertedAt != nil {
		fmt.Fprintf(&b, "Converted: %s\n", c.ConvertedAt.Format(time.DateOnly))
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s\n", c.Notes)
	}
	if len(c.Interactions) > 0 {
		b.WriteString("\nRecent interactions:\n")
		for _, i := range c.Interactions {
			fmt.Fprintf(&b, "  - %s %s: %s\n", i.CreatedAt.Format(time.DateOnly), i.Type, i.Description)
		}
	}

	b.WriteString("\nPlease analyze this contact and provide:")
	b.WriteString("\n1. A brief summary of where they are in the pipeline")
	b.WriteString("\n2. Recommendations for next steps or follow-up actions")
	b.WriteString("\n3. Any patterns or insights from their interaction history")

	return userPrompt(fmt.Sprintf("Summary for contact: %s", c.Name), b.String()), nil
}

func (h *PromptHandlers) followUps(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	days := 7
	if d, ok := args["days_since_activity"]; ok && d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid days_since_activity: %q", d)
		}
		days = n
	}

	list, err := h.contacts.repo.List(ctx, db.ContactFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	cutoff := h.contacts.cfg.Now().Add(-time.Duration(days) * 24 * time.Hour)

	var b strings.Builder
	fmt.Fprintf(&b, "Open contacts with no activity in %d+ days:\n\n", days)
	count := 0
	for _, c := range contacts.SortByRecentActivity(list) {
		if c.Stage == models.StageBewitched || c.Stage == models.StageVanished {
			continue
		}
		last := contacts.LastActivity(c)
		if last.After(cutoff) {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s, last activity %s)\n", c.Name, c.Stage, last.Format(time.DateOnly))
		count++
	}
	if count == 0 {
		b.WriteString("All open contacts have recent activity.\n")
	}

	b.WriteString("\nPlease:")
	b.WriteString("\n1. Prioritize which contacts to reach out to first")
	b.WriteString("\n2. Suggest personalized outreach for each")

	return userPrompt("Follow-up suggestions for contacts", b.String()), nil
}

func (h *PromptHandlers) pipelineReview(ctx context.Context) (*mcp.GetPromptResult, error) {
	summary, err := h.contacts.pipeline(ctx, 5)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("Please analyze the current contact pipeline:\n\n")
	fmt.Fprintf(&b, "Total contacts: %d\n\nBy stage:\n", summary.Total)
	for _, stage := range models.AllStages() {
		fmt.Fprintf(&b, "  - %s: %d\n", stage, summary.Stages[string(stage)])
	}
	if len(summary.Recent) > 0 {
		b.WriteString("\nMost recently active:\n")
		for _, c := range summary.Recent {
			fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.Stage)
		}
	}

	b.WriteString("\nPlease provide:")
	b.WriteString("\n1. Analysis of pipeline health and distribution")
	b.WriteString("\n2. Contacts that may need attention")

	return userPrompt("Pipeline review", b.String()), nil
}

func (h *PromptHandlers) boardStandup(ctx context.Context) (*mcp.GetPromptResult, error) {
	list, err := h.tasks.repo.List(ctx, db.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	groups := tasks.GroupByStatus(list)

	var b strings.Builder
	b.WriteString("Prepare a short standup from this task board:\n")
	for _, status := range models.AllTaskStatuses() {
		column := tasks.SortByPriority(groups[status])
		fmt.Fprintf(&b, "\n%s (%d):\n", status, len(column))
		for _, t := range column {
			fmt.Fprintf(&b, "  - [%s] %s\n", t.Priority, t.Title)
		}
	}

	b.WriteString("\nPlease list what is in progress, what should be picked up next and anything blocked.")

	return userPrompt("Board standup", b.String()), nil
}
