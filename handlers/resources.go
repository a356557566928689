// ABOUTME: MCP resource handlers exposing the pipeline and board as JSON
// ABOUTME: Serves grimoire://contacts, pipeline, tasks and board plus per-record URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/grimoire/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "grimoire://"

type ResourceHandlers struct {
	contacts *ContactHandlers
	tasks    *TaskHandlers
}

func NewResourceHandlers(contacts *ContactHandlers, tasks *TaskHandlers) *ResourceHandlers {
	return &ResourceHandlers{contacts: contacts, tasks: tasks}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	var data any
	var err error
	switch {
	case parts[0] == "contacts" && len(parts) == 1:
		var list []ContactOutput
		list, err = h.allContacts(ctx)
		data = list
	case parts[0] == "contacts" && len(parts) == 2:
		data, err = h.contact(ctx, parts[1])
	case parts[0] == "pipeline" && len(parts) == 1:
		data, err = h.contacts.pipeline(ctx, 0)
	case parts[0] == "tasks" && len(parts) == 1:
		var list []TaskOutput
		list, err = h.allTasks(ctx)
		data = list
	case parts[0] == "tasks" && len(parts) == 2:
		data, err = h.task(ctx, parts[1])
	case parts[0] == "board" && len(parts) == 1:
		data, err = h.tasks.board(ctx)
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
	if err != nil {
		return nil, err
	}

	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(text),
		},
	}}, nil
}

func (h *ResourceHandlers) allContacts(ctx context.Context) ([]ContactOutput, error) {
	list, err := h.contacts.repo.List(ctx, db.ContactFilter{InteractionLimit: h.contacts.cfg.InteractionLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return contactsToOutput(list), nil
}

func (h *ResourceHandlers) contact(ctx context.Context, id string) (ContactOutput, error) {
	c, err := h.contacts.repo.Get(ctx, id)
	if err != nil {
		return ContactOutput{}, fmt.Errorf("failed to fetch contact: %w", err)
	}
	return contactToOutput(*c), nil
}

func (h *ResourceHandlers) allTasks(ctx context.Context) ([]TaskOutput, error) {
	list, err := h.tasks.repo.List(ctx, db.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return tasksToOutput(list), nil
}

func (h *ResourceHandlers) task(ctx context.Context, id string) (TaskOutput, error) {
	t, err := h.tasks.repo.Get(ctx, id)
	if err != nil {
		return TaskOutput{}, fmt.Errorf("failed to fetch task: %w", err)
	}
	return taskToOutput(*t), nil
}
