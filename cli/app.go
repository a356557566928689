// ABOUTME: Root command line definition and shared application state
// ABOUTME: Merges flags over loaded config and opens scoped stores for every command
package cli

import (
	"context"
	"io"
	"time"

	"github.com/alecthomas/kong"

	"github.com/harperreed/grimoire/config"
	"github.com/harperreed/grimoire/db"
	"github.com/harperreed/grimoire/logger"
)

// CLI is the kong grammar. Global flags left empty fall back to config.
type CLI struct {
	Backend   string           `help:"Storage backend: memory, badger or sqlite."`
	DataDir   string           `help:"Directory holding persistent data." type:"path"`
	Org       string           `help:"Organization to operate on."`
	User      string           `help:"User recorded on logged interactions."`
	LogLevel  string           `help:"Log level: trace, debug, info, warn, error or disabled."`
	LogFormat string           `help:"Log format: auto, console or json."`
	Demo      bool             `help:"Load the demo fixtures into an empty store."`
	Version   kong.VersionFlag `help:"Print version and exit."`

	Contacts  ContactsCmd  `cmd:"" help:"Manage pipeline contacts."`
	Companies CompaniesCmd `cmd:"" help:"Manage companies."`
	Tasks     TasksCmd     `cmd:"" help:"Manage board tasks."`
	Tags      TagsCmd      `cmd:"" help:"Manage task tags."`
	Board     BoardCmd     `cmd:"" help:"Show pipeline or task board columns."`
	MCP       MCPCmd       `cmd:"" name:"mcp" help:"Run the MCP server on stdio."`
}

// Apply overrides cfg with any global flag that was set.
func (c *CLI) Apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Backend, c.Backend)
	set(&cfg.DataDir, c.DataDir)
	set(&cfg.OrganizationID, c.Org)
	set(&cfg.UserID, c.User)
	set(&cfg.LogLevel, c.LogLevel)
	set(&cfg.LogFormat, c.LogFormat)
	cfg.Demo = cfg.Demo || c.Demo
}

// App is bound into every command's Run method.
type App struct {
	Config   *config.Config
	Version  string
	Out      io.Writer
	Log      *logger.Logger
	Stores   *db.Stores
	Contacts *db.ScopedContacts
	Tasks    *db.ScopedTasks
	Now      func() time.Time
}

// Open connects the configured backend and scopes it to the configured
// organization.
func Open(ctx context.Context, cfg *config.Config, version string, out io.Writer, log *logger.Logger, opts ...db.Option) (*App, error) {
	backend, err := db.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	opts = append([]db.Option{db.WithLogger(log.Zerolog())}, opts...)
	stores, err := db.Open(ctx, backend, cfg.DataDir, cfg.Demo, opts...)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", string(backend)).Str("org", cfg.OrganizationID).Msg("application ready")

	return &App{
		Config:   cfg,
		Version:  version,
		Out:      out,
		Log:      log,
		Stores:   stores,
		Contacts: db.ScopeContacts(stores.Contacts, cfg.OrganizationID),
		Tasks:    db.ScopeTasks(stores.Tasks, cfg.OrganizationID),
		Now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (a *App) Close() error {
	return a.Stores.Close()
}
