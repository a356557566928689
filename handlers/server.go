// ABOUTME: MCP server assembly for the pipeline and board
// ABOUTME: Registers every tool, resource and prompt over organization-scoped repositories
package handlers

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/harperreed/grimoire/db"
)

// Config carries the per-session settings the handlers need.
type Config struct {
	// UserID is recorded as the author of logged interactions.
	UserID           string
	InteractionLimit int
	Now              func() time.Time
	// Log defaults to a disabled logger.
	Log *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.InteractionLimit <= 0 {
		c.InteractionLimit = db.DefaultInteractionLimit
	}
	if c.Log == nil {
		nop := zerolog.Nop()
		c.Log = &nop
	}
	if c.Now == nil {
		c.Now = func() time.Time { return time.Now().UTC() }
	}
	return c
}

// NewServer builds an MCP server exposing contacts and tasks. Both
// repositories must already be scoped to the caller's organization.
func NewServer(contactRepo *db.ScopedContacts, taskRepo *db.ScopedTasks, version string, cfg Config) *mcp.Server {
	contactHandlers := NewContactHandlers(contactRepo, cfg)
	taskHandlers := NewTaskHandlers(taskRepo, cfg)
	resourceHandlers := NewResourceHandlers(contactHandlers, taskHandlers)
	promptHandlers := NewPromptHandlers(contactHandlers, taskHandlers)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "grimoire",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List contacts with their company and recent interactions, newest first",
	}, contactHandlers.ListContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Get one contact with its company and recent interactions",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact to the pipeline, optionally creating its company by name",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update a contact; moving to BEWITCHED records the conversion time",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact and its interactions",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Log an email, call, meeting or note against a contact",
	}, contactHandlers.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_companies",
		Description: "List companies alphabetically",
	}, contactHandlers.ListCompanies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_company",
		Description: "Add a company",
	}, contactHandlers.AddCompany)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_summary",
		Description: "Contact counts per stage plus the most recently active contacts",
	}, contactHandlers.PipelineSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with their tags, newest first",
	}, taskHandlers.ListTasks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_task",
		Description: "Get one task with its tags",
	}, taskHandlers.GetTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_task",
		Description: "Add a task to the board",
	}, taskHandlers.AddTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_task",
		Description: "Update a task; moving to BANISHED records the completion time",
	}, taskHandlers.UpdateTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task",
	}, taskHandlers.DeleteTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tags",
		Description: "List tags alphabetically",
	}, taskHandlers.ListTags)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_tag",
		Description: "Add a tag",
	}, taskHandlers.AddTag)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tag_task",
		Description: "Attach a tag to a task",
	}, taskHandlers.TagTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "untag_task",
		Description: "Remove a tag from a task",
	}, taskHandlers.UntagTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "board_summary",
		Description: "Task board columns with counts per status and priority",
	}, taskHandlers.BoardSummary)

	for _, r := range []*mcp.Resource{
		{URI: resourceScheme + "contacts", Name: "contacts", Description: "All contacts", MIMEType: "application/json"},
		{URI: resourceScheme + "pipeline", Name: "pipeline", Description: "Pipeline summary", MIMEType: "application/json"},
		{URI: resourceScheme + "tasks", Name: "tasks", Description: "All tasks", MIMEType: "application/json"},
		{URI: resourceScheme + "board", Name: "board", Description: "Task board columns", MIMEType: "application/json"},
	} {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "contacts/{id}",
		Name:        "contact",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "tasks/{id}",
		Name:        "task",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}
