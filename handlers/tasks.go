// ABOUTME: Task and tag MCP tool handlers
// ABOUTME: Implements task CRUD, tagging and the board summary
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/models"
	"github.com/harperreed/grimoire/tasks"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type TaskHandlers struct {
	repo *db.ScopedTasks
	cfg  Config
}

func NewTaskHandlers(repo *db.ScopedTasks, cfg Config) *TaskHandlers {
	return &TaskHandlers{repo: repo, cfg: cfg.withDefaults()}
}

type ListTasksInput struct {
	Status    string `json:"status,omitempty" jsonschema:"Filter by status: SUMMONED, IN_RITUAL or BANISHED"`
	Priority  string `json:"priority,omitempty" jsonschema:"Filter by priority: LOW, MEDIUM, HIGH or CRITICAL"`
	Search    string `json:"search,omitempty" jsonschema:"Case-insensitive text matched against the title"`
	TagID     string `json:"tag_id,omitempty" jsonschema:"Only tasks carrying this tag"`
	OrderBy   string `json:"order_by,omitempty" jsonschema:"Sort field: createdAt (default), updatedAt or title"`
	Ascending bool   `json:"ascending,omitempty" jsonschema:"Sort oldest or alphabetically first"`
}

type ListTasksOutput struct {
	Tasks []TaskOutput `json:"tasks"`
	Count int          `json:"count"`
}

func (h *TaskHandlers) ListTasks(ctx context.Context, _ *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	filter := db.TaskFilter{Search: input.Search, TagID: input.TagID}
	if input.Status != "" {
		status, err := models.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, ListTasksOutput{}, err
		}
		filter.Status = status
	}
	if input.Priority != "" {
		priority, err := models.ParsePriority(input.Priority)
		if err != nil {
			return nil, ListTasksOutput{}, err
		}
		filter.Priority = priority
	}
	order, err := parseOrder(input.OrderBy, input.Ascending, db.OrderCreatedAt)
	if err != nil {
		return nil, ListTasksOutput{}, err
	}
	filter.OrderBy = order

	list, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, ListTasksOutput{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return nil, ListTasksOutput{Tasks: tasksToOutput(list), Count: len(list)}, nil
}

type TaskIDInput struct {
	ID string `json:"id" jsonschema:"Task ID"`
}

func (h *TaskHandlers) GetTask(ctx context.Context, _ *mcp.CallToolRequest, input TaskIDInput) (*mcp.CallToolResult, TaskOutput, error) {
	t, err := h.repo.Get(ctx, input.ID)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to get task: %w", err)
	}
	return nil, taskToOutput(*t), nil
}

type AddTaskInput struct {
	Title       string   `json:"title" jsonschema:"Task title"`
	Description string   `json:"description,omitempty" jsonschema:"Longer description"`
	Status      string   `json:"status,omitempty" jsonschema:"Board column (default SUMMONED)"`
	Priority    string   `json:"priority,omitempty" jsonschema:"Priority (default MEDIUM)"`
	AssigneeID  string   `json:"assignee_id,omitempty" jsonschema:"User the task is assigned to"`
	TagIDs      []string `json:"tag_ids,omitempty" jsonschema:"Tags to attach after creation"`
}

func (h *TaskHandlers) AddTask(ctx context.Context, _ *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	create := models.CreateTaskInput{Title: input.Title, Description: input.Description}
	if input.Status != "" {
		status, err := models.ParseTaskStatus(input.Status)
		if err != nil {
			return nil, TaskOutput{}, err
		}
		create.Status = status
	}
	if input.Priority != "" {
		priority, err := models.ParsePriority(input.Priority)
		if err != nil {
			return nil, TaskOutput{}, err
		}
		create.Priority = priority
	}
	if input.AssigneeID != "" {
		create.AssigneeID = models.StringPtr(input.AssigneeID)
	}

	// A task created straight into BANISHED counts as completed now.
	if create.Status == models.StatusBanished {
		completed := h.cfg.Now()
		create.CompletedAt = &completed
	}

	t, err := h.repo.CreateWithTags(ctx, create, input.TagIDs)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to create task: %w", err)
	}

	h.cfg.Log.Info().Str("task_id", t.ID).Str("status", string(t.Status)).Msg("task added")
	return nil, taskToOutput(*t), nil
}

type UpdateTaskInput struct {
	ID          string  `json:"id" jsonschema:"Task ID"`
	Title       *string `json:"title,omitempty" jsonschema:"New title"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	Status      *string `json:"status,omitempty" jsonschema:"New board column"`
	Priority    *string `json:"priority,omitempty" jsonschema:"New priority"`
	AssigneeID  *string `json:"assignee_id,omitempty" jsonschema:"New assignee, empty string unassigns"`
}

func (h *TaskHandlers) UpdateTask(ctx context.Context, _ *mcp.CallToolRequest, input UpdateTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	current, err := h.repo.Get(ctx, input.ID)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to get task: %w", err)
	}

	var patch models.TaskPatch
	if input.Status != nil {
		status, err := models.ParseTaskStatus(*input.Status)
		if err != nil {
			return nil, TaskOutput{}, err
		}
		patch = tasks.StatusChange(current.Task, status, h.cfg.Now())
	}
	if input.Priority != nil {
		priority, err := models.ParsePriority(*input.Priority)
		if err != nil {
			return nil, TaskOutput{}, err
		}
		patch.Priority = &priority
	}
	patch.Title = input.Title
	patch.Description = input.Description
	patch.AssigneeID = input.AssigneeID

	t, err := h.repo.Update(ctx, input.ID, patch)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to update task: %w", err)
	}
	h.cfg.Log.Info().Str("task_id", t.ID).Str("status", string(t.Status)).Msg("task updated")
	return nil, taskToOutput(*t), nil
}

func (h *TaskHandlers) DeleteTask(ctx context.Context, _ *mcp.CallToolRequest, input TaskIDInput) (*mcp.CallToolResult, TaskOutput, error) {
	t, err := h.repo.Delete(ctx, input.ID)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to delete task: %w", err)
	}
	h.cfg.Log.Info().Str("task_id", t.ID).Msg("task deleted")
	return nil, taskToOutput(models.TaskWithTags{Task: *t}), nil
}

type ListTagsInput struct{}

type ListTagsOutput struct {
	Tags []TagOutput `json:"tags"`
}

func (h *TaskHandlers) ListTags(ctx context.Context, _ *mcp.CallToolRequest, _ ListTagsInput) (*mcp.CallToolResult, ListTagsOutput, error) {
	list, err := h.repo.ListTags(ctx, h.repo.OrganizationID())
	if err != nil {
		return nil, ListTagsOutput{}, fmt.Errorf("failed to list tags: %w", err)
	}
	out := ListTagsOutput{Tags: make([]TagOutput, 0, len(list))}
	for _, g := range list {
		out.Tags = append(out.Tags, tagToOutput(g))
	}
	return nil, out, nil
}

type AddTagInput struct {
	Name  string `json:"name" jsonschema:"Tag name"`
	Color string `json:"color,omitempty" jsonschema:"Hex color such as #ef4444"`
}

func (h *TaskHandlers) AddTag(ctx context.Context, _ *mcp.CallToolRequest, input AddTagInput) (*mcp.CallToolResult, TagOutput, error) {
	g, err := h.repo.CreateTag(ctx, models.CreateTagInput{Name: input.Name, Color: input.Color})
	if err != nil {
		return nil, TagOutput{}, fmt.Errorf("failed to create tag: %w", err)
	}
	return nil, tagToOutput(*g), nil
}

type TagTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"Task ID"`
	TagID  string `json:"tag_id" jsonschema:"Tag ID"`
}

func (h *TaskHandlers) TagTask(ctx context.Context, _ *mcp.CallToolRequest, input TagTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	t, err := h.repo.TagTask(ctx, input.TaskID, input.TagID)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to tag task: %w", err)
	}
	return nil, taskToOutput(*t), nil
}

func (h *TaskHandlers) UntagTask(ctx context.Context, _ *mcp.CallToolRequest, input TagTaskInput) (*mcp.CallToolResult, TaskOutput, error) {
	t, err := h.repo.UntagTask(ctx, input.TaskID, input.TagID)
	if err != nil {
		return nil, TaskOutput{}, fmt.Errorf("failed to untag task: %w", err)
	}
	return nil, taskToOutput(*t), nil
}

type BoardSummaryInput struct{}

type BoardColumn struct {
	Status string       `json:"status"`
	Count  int          `json:"count"`
	Tasks  []TaskOutput `json:"tasks"`
}

type BoardSummaryOutput struct {
	Total      int            `json:"total"`
	Priorities map[string]int `json:"priorities"`
	Columns    []BoardColumn  `json:"columns"`
}

func (h *TaskHandlers) BoardSummary(ctx context.Context, _ *mcp.CallToolRequest, _ BoardSummaryInput) (*mcp.CallToolResult, BoardSummaryOutput, error) {
	out, err := h.board(ctx)
	if err != nil {
		return nil, BoardSummaryOutput{}, err
	}
	return nil, out, nil
}

// board groups tasks into columns in board order, most urgent first.
func (h *TaskHandlers) board(ctx context.Context) (BoardSummaryOutput, error) {
	list, err := h.repo.List(ctx, db.TaskFilter{})
	if err != nil {
		return BoardSummaryOutput{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := BoardSummaryOutput{Total: len(list), Priorities: map[string]int{}}
	for p, n := range tasks.CountsByPriority(list) {
		out.Priorities[string(p)] = n
	}
	groups := tasks.GroupByStatus(list)
	for _, status := range models.AllTaskStatuses() {
		column := tasks.SortByPriority(groups[status])
		out.Columns = append(out.Columns, BoardColumn{
			Status: string(status),
			Count:  len(column),
			Tasks:  tasksToOutput(column),
		})
	}
	return out, nil
}
