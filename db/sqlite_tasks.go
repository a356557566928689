// ABOUTME: SQLite implementation of the task board repository
// ABOUTME: Mirrors TaskStore semantics with a task_tags link table
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/grimoire/models"
)

var _ TaskRepository = (*SQLiteTaskStore)(nil)

type SQLiteTaskStore struct {
	db   *sql.DB
	opts options
}

func NewSQLiteTaskStore(db *sql.DB, opts ...Option) *SQLiteTaskStore {
	return &SQLiteTaskStore{db: db, opts: newOptions(opts)}
}

const taskColumns = `id, title, description, status, priority, assignee_id, organization_id, completed_at, created_at, updated_at`

func scanTask(row scanner) (models.Task, error) {
	var t models.Task
	var assigneeID sql.NullString
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &assigneeID,
		&t.OrganizationID, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if assigneeID.Valid {
		id := assigneeID.String
		t.AssigneeID = &id
	}
	return t, nil
}

func (s *SQLiteTaskStore) List(ctx context.Context, filter TaskFilter) ([]models.TaskWithTags, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	where := []string{"organization_id = ?"}
	args := []any{filter.OrganizationID}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.TagID != "" {
		where = append(where, "id IN (SELECT task_id FROM task_tags WHERE tag_id = ?)")
		args = append(args, filter.TagID)
	}
	if term := searchTerm(filter.Search); term != "" {
		where = append(where, "instr(go_lower(title), ?) > 0")
		args = append(args, term)
	}

	query := "SELECT " + taskColumns + " FROM tasks WHERE " + strings.Join(where, " AND ") +
		" " + orderClause(filter.order(), "title")

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	out := make([]models.TaskWithTags, 0, len(tasks))
	for _, t := range tasks {
		joined, err := s.join(ctx, s.db, t)
		if err != nil {
			return nil, err
		}
		out = append(out, joined)
	}
	return out, nil
}

func (s *SQLiteTaskStore) Get(ctx context.Context, id string) (*models.TaskWithTags, error) {
	t, err := s.getTask(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	joined, err := s.join(ctx, s.db, t)
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

func (s *SQLiteTaskStore) Create(ctx context.Context, input models.CreateTaskInput) (*models.TaskWithTags, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	t := newTask(input, s.opts.now())
	if err := insertTask(ctx, s.db, t); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("task_id", t.ID).Str("org", t.OrganizationID).Msg("task created")
	return &models.TaskWithTags{Task: t, Tags: []models.Tag{}}, nil
}

func (s *SQLiteTaskStore) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.TaskWithTags, error) {
	if err := validateTaskPatch(patch); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	t, err := s.getTask(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(&t)
	t.UpdatedAt = s.opts.now()

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, assignee_id = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.CompletedAt, t.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	joined, err := s.join(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("task_id", id).Str("status", string(t.Status)).Msg("task updated")
	return &joined, nil
}

func (s *SQLiteTaskStore) Delete(ctx context.Context, id string) (*models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	t, err := s.getTask(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete task tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("task_id", id).Msg("task deleted")
	return &t, nil
}

func (s *SQLiteTaskStore) CreateTag(ctx context.Context, input models.CreateTagInput) (*models.Tag, error) {
	if err := validateTagInput(input); err != nil {
		return nil, err
	}
	tag := newTag(input, s.opts.now())
	if err := insertTag(ctx, s.db, tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *SQLiteTaskStore) ListTags(ctx context.Context, organizationID string) ([]models.Tag, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, required("organizationId")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color, organization_id, created_at, updated_at
		FROM tags WHERE organization_id = ?
		ORDER BY go_lower(name), rowid
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()
	return scanTags(rows)
}

func (s *SQLiteTaskStore) TagTask(ctx context.Context, taskID, tagID string) (*models.TaskWithTags, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	t, err := s.getTask(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}
	var tagOrg string
	err = tx.QueryRowContext(ctx, `SELECT organization_id FROM tags WHERE id = ?`, tagID).Scan(&tagOrg)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && tagOrg != t.OrganizationID) {
		return nil, notFound("tag", tagID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	if err := insertTaskTag(ctx, tx, TaskTag{TaskID: taskID, TagID: tagID}); err != nil {
		return nil, err
	}
	joined, err := s.join(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &joined, nil
}

func (s *SQLiteTaskStore) UntagTask(ctx context.Context, taskID, tagID string) (*models.TaskWithTags, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	t, err := s.getTask(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?`, taskID, tagID); err != nil {
		return nil, fmt.Errorf("failed to untag task: %w", err)
	}
	joined, err := s.join(ctx, tx, t)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &joined, nil
}

func (s *SQLiteTaskStore) getTask(ctx context.Context, q queryer, id string) (models.Task, error) {
	row := q.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, notFound("task", id)
	}
	if err != nil {
		return t, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (s *SQLiteTaskStore) join(ctx context.Context, q queryer, t models.Task) (models.TaskWithTags, error) {
	out := models.TaskWithTags{Task: t, Tags: []models.Tag{}}
	rows, err := q.QueryContext(ctx, `
		SELECT g.id, g.name, g.color, g.organization_id, g.created_at, g.updated_at
		FROM tags g JOIN task_tags tt ON tt.tag_id = g.id
		WHERE tt.task_id = ?
		ORDER BY go_lower(g.name), tt.rowid
	`, t.ID)
	if err != nil {
		return out, fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	tags, err := scanTags(rows)
	if err != nil {
		return out, err
	}
	out.Tags = tags
	return out, nil
}

func scanTags(rows *sql.Rows) ([]models.Tag, error) {
	tags := []models.Tag{}
	for rows.Next() {
		var g models.Tag
		if err := rows.Scan(&g.ID, &g.Name, &g.Color, &g.OrganizationID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, g)
	}
	return tags, rows.Err()
}

func insertTask(ctx context.Context, e execer, t models.Task) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, t.OrganizationID, t.CompletedAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func insertTag(ctx context.Context, e execer, g models.Tag) error {
	_, err := e.ExecContext(ctx, `
		INSERT INTO tags (id, name, color, organization_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.ID, g.Name, g.Color, g.OrganizationID, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

func insertTaskTag(ctx context.Context, e execer, l TaskTag) error {
	_, err := e.ExecContext(ctx, `INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)`, l.TaskID, l.TagID)
	if err != nil {
		return fmt.Errorf("failed to tag task: %w", err)
	}
	return nil
}
