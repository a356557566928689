// ABOUTME: Tests for the generic in-memory table
// ABOUTME: Covers ordering, copy semantics and write-through persistence
package db

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/harperreed/grimoire/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func rowID(r testRow) string { return r.ID }

// mapPersister is an in-process Persister used to observe write-through.
type mapPersister struct {
	data    map[string]map[string][]byte
	failPut bool
}

func newMapPersister() *mapPersister {
	return &mapPersister{data: make(map[string]map[string][]byte)}
}

func (p *mapPersister) Load(table string, fn func(id string, value []byte) error) error {
	ids := make([]string, 0, len(p.data[table]))
	for id := range p.data[table] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := fn(id, p.data[table][id]); err != nil {
			return err
		}
	}
	return nil
}

func (p *mapPersister) Put(table, id string, value []byte) error {
	if p.failPut {
		return errors.New("disk full")
	}
	if p.data[table] == nil {
		p.data[table] = make(map[string][]byte)
	}
	p.data[table][id] = value
	return nil
}

func (p *mapPersister) Delete(table, id string) error {
	delete(p.data[table], id)
	return nil
}

func TestTableKeepsInsertionOrder(t *testing.T) {
	tbl := NewTable("rows", rowID, []testRow{{ID: "b", Name: "B"}, {ID: "a", Name: "A"}})
	require.NoError(t, tbl.Insert(testRow{ID: "c", Name: "C"}))
	require.NoError(t, tbl.Insert(testRow{ID: "b", Name: "B2"}))

	assert.Equal(t, []testRow{{"b", "B2"}, {"a", "A"}, {"c", "C"}}, tbl.Select(nil))
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "rows", tbl.Name())
}

func TestTableSelectReturnsCopies(t *testing.T) {
	tbl := NewTable("rows", rowID, []testRow{{ID: "a", Name: "A"}})

	rows := tbl.Select(nil)
	rows[0].Name = "mutated"

	got, ok := tbl.Get("a")
	require.True(t, ok)
	assert.Equal(t, "A", got.Name)
}

func TestTableDoesNotSharePointerFields(t *testing.T) {
	converted := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	seed := models.Contact{ID: "c1", Name: "Nimue", CompanyID: models.StringPtr("co1"), ConvertedAt: &converted}
	tbl := NewTable("contacts", func(c models.Contact) string { return c.ID }, []models.Contact{seed})

	*seed.CompanyID = "seed-mutated"

	got, ok := tbl.Get("c1")
	require.True(t, ok)
	require.NotNil(t, got.CompanyID)
	assert.Equal(t, "co1", *got.CompanyID)

	*got.CompanyID = "co2"
	*got.ConvertedAt = converted.AddDate(1, 0, 0)
	for _, row := range tbl.Select(nil) {
		*row.CompanyID = "co3"
	}

	again, ok := tbl.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "co1", *again.CompanyID)
	assert.True(t, again.ConvertedAt.Equal(converted))

	assignee := "user_1"
	tasks := NewTable[models.Task]("tasks", func(t models.Task) string { return t.ID }, nil)
	require.NoError(t, tasks.Insert(models.Task{ID: "t1", Title: "Scry", AssigneeID: &assignee}))
	assignee = "user_2"

	updated, ok, err := tasks.Update("t1", func(row *models.Task) { row.Title = "Scry harder" })
	require.NoError(t, err)
	require.True(t, ok)
	*updated.AssigneeID = "user_3"

	stored, ok := tasks.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "Scry harder", stored.Title)
	assert.Equal(t, "user_1", *stored.AssigneeID)
}

func TestTableUpdateAndDelete(t *testing.T) {
	tbl := NewTable("rows", rowID, []testRow{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}})

	updated, ok, err := tbl.Update("b", func(r *testRow) { r.Name = "Bee" })
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bee", updated.Name)

	called := false
	_, ok, err = tbl.Update("zzz", func(*testRow) { called = true })
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called)

	removed, ok, err := tbl.Delete("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", removed.Name)

	_, ok = tbl.Get("a")
	assert.False(t, ok)
	got, ok := tbl.Get("c")
	require.True(t, ok, "index is rebuilt after delete")
	assert.Equal(t, "C", got.Name)

	gone, err := tbl.DeleteWhere(func(r testRow) bool { return r.Name != "C" })
	require.NoError(t, err)
	assert.Equal(t, []testRow{{"b", "Bee"}}, gone)
	assert.Equal(t, []testRow{{"c", "C"}}, tbl.Select(nil))
}

func TestTableAttachWritesSeedToEmptyPersister(t *testing.T) {
	p := newMapPersister()
	tbl := NewTable("rows", rowID, []testRow{{ID: "a", Name: "A"}})
	require.NoError(t, tbl.Attach(p))
	assert.JSONEq(t, `{"id":"a","name":"A"}`, string(p.data["rows"]["a"]))

	require.NoError(t, tbl.Insert(testRow{ID: "b", Name: "B"}))
	_, _, err := tbl.Delete("a")
	require.NoError(t, err)
	assert.Len(t, p.data["rows"], 1)
	assert.Contains(t, p.data["rows"], "b")
}

func TestTableAttachLoadsStoredRows(t *testing.T) {
	p := newMapPersister()
	require.NoError(t, p.Put("rows", "x", []byte(`{"id":"x","name":"X"}`)))

	tbl := NewTable("rows", rowID, []testRow{{ID: "a", Name: "A"}})
	require.NoError(t, tbl.Attach(p))

	assert.Equal(t, []testRow{{"x", "X"}}, tbl.Select(nil))
	assert.NotContains(t, p.data["rows"], "a", "stored rows win over the seed")
}

func TestTableAttachRejectsCorruptRows(t *testing.T) {
	p := newMapPersister()
	require.NoError(t, p.Put("rows", "x", []byte(`{not json`)))

	err := NewTable[testRow]("rows", rowID, nil).Attach(p)
	assert.ErrorContains(t, err, "failed to decode rows/x")
}

func TestTableInsertFailureLeavesRowsUntouched(t *testing.T) {
	p := newMapPersister()
	tbl := NewTable[testRow]("rows", rowID, nil)
	require.NoError(t, tbl.Attach(p))

	p.failPut = true
	err := tbl.Insert(testRow{ID: "a"})
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, tbl.Len())
}
