// ABOUTME: Generic in-memory relational table shared by the contact and task stores
// ABOUTME: Keeps rows in insertion order and optionally writes them through to a Persister
package db

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Persister stores table rows outside the process. Values are JSON encoded
// rows keyed by table name and row id.
type Persister interface {
	Load(table string, fn func(id string, value []byte) error) error
	Put(table, id string, value []byte) error
	Delete(table, id string) error
}

// Cloner is implemented by rows holding pointer fields. Table clones such
// rows on the way in and out so stored rows never share memory with callers.
type Cloner[T any] interface {
	Clone() T
}

func cloneRow[T any](row T) T {
	if c, ok := any(row).(Cloner[T]); ok {
		return c.Clone()
	}
	return row
}

// Table holds rows of one entity type. It is safe for concurrent use; every
// read returns copies so callers never observe later mutations.
type Table[T any] struct {
	name    string
	idOf    func(T) string
	mu      sync.RWMutex
	rows    []T
	index   map[string]int
	persist Persister
}

// NewTable builds a table seeded with rows. Rows with duplicate ids keep the
// last occurrence.
func NewTable[T any](name string, idOf func(T) string, seed []T) *Table[T] {
	t := &Table[T]{
		name:  name,
		idOf:  idOf,
		index: make(map[string]int, len(seed)),
	}
	for _, row := range seed {
		t.put(row)
	}
	return t
}

func (t *Table[T]) Name() string {
	return t.name
}

// Attach connects a persister. Rows already stored by the persister replace
// the seed; an empty persister receives the seed instead.
func (t *Table[T]) Attach(p Persister) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var loaded []T
	err := p.Load(t.name, func(id string, value []byte) error {
		var row T
		if err := json.Unmarshal(value, &row); err != nil {
			return fmt.Errorf("failed to decode %s/%s: %w", t.name, id, err)
		}
		loaded = append(loaded, row)
		return nil
	})
	if err != nil {
		return err
	}

	if len(loaded) > 0 {
		t.rows = nil
		t.index = make(map[string]int, len(loaded))
		for _, row := range loaded {
			t.put(row)
		}
	} else {
		for _, row := range t.rows {
			if err := t.write(p, row); err != nil {
				return err
			}
		}
	}

	t.persist = p
	return nil
}

// Insert appends a row. Inserting an existing id replaces it in place.
func (t *Table[T]) Insert(row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.persist != nil {
		if err := t.write(t.persist, row); err != nil {
			return err
		}
	}
	t.put(row)
	return nil
}

func (t *Table[T]) Get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.index[id]
	if !ok {
		var zero T
		return zero, false
	}
	return cloneRow(t.rows[i]), true
}

// Update applies fn to a copy of the row and stores the result. It reports
// false when the id is unknown, in which case fn is not called.
func (t *Table[T]) Update(id string, fn func(*T)) (T, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	i, ok := t.index[id]
	if !ok {
		return zero, false, nil
	}

	row := cloneRow(t.rows[i])
	fn(&row)
	row = cloneRow(row)
	if t.persist != nil {
		if err := t.write(t.persist, row); err != nil {
			return zero, true, err
		}
	}
	t.rows[i] = row
	return cloneRow(row), true, nil
}

// Delete removes a row and returns the removed snapshot.
func (t *Table[T]) Delete(id string) (T, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	i, ok := t.index[id]
	if !ok {
		return zero, false, nil
	}
	if t.persist != nil {
		if err := t.persist.Delete(t.name, id); err != nil {
			return zero, true, fmt.Errorf("failed to delete %s/%s: %w", t.name, id, err)
		}
	}

	removed := t.rows[i]
	t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
	t.reindex()
	return removed, true, nil
}

// DeleteWhere removes every row matching pred and returns them.
func (t *Table[T]) DeleteWhere(pred func(T) bool) ([]T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed []T
	kept := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if !pred(row) {
			kept = append(kept, row)
			continue
		}
		if t.persist != nil {
			if err := t.persist.Delete(t.name, t.idOf(row)); err != nil {
				return nil, fmt.Errorf("failed to delete %s/%s: %w", t.name, t.idOf(row), err)
			}
		}
		removed = append(removed, row)
	}
	t.rows = kept
	t.reindex()
	return removed, nil
}

// Select returns the rows matching pred in insertion order. A nil pred
// matches everything.
func (t *Table[T]) Select(pred func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if pred == nil || pred(row) {
			out = append(out, cloneRow(row))
		}
	}
	return out
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *Table[T]) put(row T) {
	row = cloneRow(row)
	id := t.idOf(row)
	if i, ok := t.index[id]; ok {
		t.rows[i] = row
		return
	}
	t.index[id] = len(t.rows)
	t.rows = append(t.rows, row)
}

func (t *Table[T]) reindex() {
	t.index = make(map[string]int, len(t.rows))
	for i, row := range t.rows {
		t.index[t.idOf(row)] = i
	}
}

func (t *Table[T]) write(p Persister, row T) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode %s row: %w", t.name, err)
	}
	id := t.idOf(row)
	if err := p.Put(t.name, id, data); err != nil {
		return fmt.Errorf("failed to persist %s/%s: %w", t.name, id, err)
	}
	return nil
}
