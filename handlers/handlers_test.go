package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harperreed/grimoire/db"
)

var testNow = time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC)

type fixture struct {
	stores   *db.Stores
	contacts *ContactHandlers
	tasks    *TaskHandlers
}

// setup opens a demo-seeded memory backend pinned to testNow.
func setup(t *testing.T) fixture {
	t.Helper()
	clock := func() time.Time { return testNow }
	stores, err := db.Open(context.Background(), db.BackendMemory, "", true, db.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	cfg := Config{UserID: db.DemoUserID, Now: clock}
	return fixture{
		stores:   stores,
		contacts: NewContactHandlers(db.ScopeContacts(stores.Contacts, db.DemoOrganizationID), cfg),
		tasks:    NewTaskHandlers(db.ScopeTasks(stores.Tasks, db.DemoOrganizationID), cfg),
	}
}

func ids[T any](list []T, id func(T) string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, id(v))
	}
	return out
}

func contactIDs(list []ContactOutput) []string {
	return ids(list, func(c ContactOutput) string { return c.ID })
}

func taskIDs(list []TaskOutput) []string {
	return ids(list, func(t TaskOutput) string { return t.ID })
}
