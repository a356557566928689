// ABOUTME: BadgerDB persister backing the in-memory stores
// ABOUTME: Stores JSON rows under "<table>/<id>" keys in a local badger directory
package db

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

var _ Persister = (*BadgerPersister)(nil)

// BadgerPersister writes table rows through to an embedded badger database.
type BadgerPersister struct {
	db *badger.DB
}

// OpenBadger opens (creating if needed) a badger database in dir.
func OpenBadger(dir string) (*BadgerPersister, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create badger dir: %w", err)
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerPersister{db: db}, nil
}

func rowKey(table, id string) []byte {
	return []byte(table + "/" + id)
}

// Load calls fn for every row of table in key order.
func (p *BadgerPersister) Load(table string, fn func(id string, value []byte) error) error {
	prefix := []byte(table + "/")
	return p.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(prefix):])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(id, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *BadgerPersister) Put(table, id string, value []byte) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rowKey(table, id), value)
	})
}

func (p *BadgerPersister) Delete(table, id string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(rowKey(table, id))
	})
}

func (p *BadgerPersister) Close() error {
	return p.db.Close()
}
