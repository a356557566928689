// ABOUTME: Backend selection for the pipeline and board stores
// ABOUTME: Opens memory, badger or sqlite storage and optionally loads demo fixtures
package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendSQLite Backend = "sqlite"
)

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendMemory, BackendBadger, BackendSQLite:
		return b, nil
	}
	return "", fmt.Errorf("invalid backend: %q (valid: memory, badger, sqlite)", s)
}

// Stores bundles both repositories over one backend.
type Stores struct {
	Backend  Backend
	Contacts ContactRepository
	Tasks    TaskRepository
	closers  []func() error
}

func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SQLiteFile and BadgerDir are the storage locations inside the data dir.
const (
	SQLiteFile = "grimoire.db"
	BadgerDir  = "badger"
)

// Open builds the stores for backend. dataDir is ignored by the memory
// backend. With demo set, an empty store is filled with the demo fixtures.
func Open(ctx context.Context, backend Backend, dataDir string, demo bool, opts ...Option) (*Stores, error) {
	o := newOptions(opts)

	var contactSeed ContactSeed
	var taskSeed TaskSeed
	if demo {
		now := o.now()
		contactSeed = DemoContacts(now)
		taskSeed = DemoTasks(now)
	}

	stores := &Stores{Backend: backend}
	switch backend {
	case BackendMemory:
		stores.Contacts = NewContactStore(contactSeed, opts...)
		stores.Tasks = NewTaskStore(taskSeed, opts...)

	case BackendBadger:
		p, err := OpenBadger(filepath.Join(dataDir, BadgerDir))
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, p.Close)

		contacts := NewContactStore(contactSeed, opts...)
		tasks := NewTaskStore(taskSeed, opts...)
		if err := contacts.Persist(p); err != nil {
			_ = stores.Close()
			return nil, err
		}
		if err := tasks.Persist(p); err != nil {
			_ = stores.Close()
			return nil, err
		}
		stores.Contacts = contacts
		stores.Tasks = tasks

	case BackendSQLite:
		sqlDB, err := OpenDatabase(filepath.Join(dataDir, SQLiteFile))
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, sqlDB.Close)

		if demo {
			if err := SeedSQLite(ctx, sqlDB, contactSeed, taskSeed); err != nil {
				_ = stores.Close()
				return nil, err
			}
		}
		stores.Contacts = NewSQLiteContactStore(sqlDB, opts...)
		stores.Tasks = NewSQLiteTaskStore(sqlDB, opts...)

	default:
		return nil, fmt.Errorf("invalid backend: %q", backend)
	}

	o.log.Debug().Str("backend", string(backend)).Bool("demo", demo).Msg("stores opened")
	return stores, nil
}
