// ABOUTME: MCP server subcommand
// ABOUTME: Serves the pipeline and board tools over stdio for MCP clients
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/grimoire/handlers"
)

type MCPCmd struct{}

// Server builds the MCP server for app without starting it.
func (c *MCPCmd) Server(app *App) *mcp.Server {
	log := app.Log.Zerolog()
	return handlers.NewServer(app.Contacts, app.Tasks, app.Version, handlers.Config{
		UserID:           app.Config.UserID,
		InteractionLimit: app.Config.InteractionLimit,
		Now:              app.Now,
		Log:              &log,
	})
}

func (c *MCPCmd) Run(ctx context.Context, app *App) error {
	app.Log.Info().
		Str("org", app.Config.OrganizationID).
		Str("backend", string(app.Stores.Backend)).
		Msg("starting MCP server on stdio")
	return c.Server(app).Run(ctx, &mcp.StdioTransport{})
}
