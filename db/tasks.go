// ABOUTME: In-memory task board store built on the generic Table
// ABOUTME: Handles task CRUD plus tag creation and task/tag links
package db

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/grimoire/models"
)

var _ TaskRepository = (*TaskStore)(nil)

// TaskSeed is the initial state handed to a TaskStore.
type TaskSeed struct {
	Tasks []models.Task
	Tags  []models.Tag
	Links []TaskTag
}

// TaskTag links a task to a tag.
type TaskTag struct {
	TaskID string `json:"taskId"`
	TagID  string `json:"tagId"`
}

func (l TaskTag) key() string {
	return l.TaskID + "/" + l.TagID
}

type TaskStore struct {
	tasks *Table[models.Task]
	tags  *Table[models.Tag]
	links *Table[TaskTag]
	opts  options
}

func NewTaskStore(seed TaskSeed, opts ...Option) *TaskStore {
	return &TaskStore{
		tasks: NewTable("tasks", func(t models.Task) string { return t.ID }, seed.Tasks),
		tags:  NewTable("tags", func(t models.Tag) string { return t.ID }, seed.Tags),
		links: NewTable("task_tags", TaskTag.key, seed.Links),
		opts:  newOptions(opts),
	}
}

// Persist attaches p to every table of the store.
func (s *TaskStore) Persist(p Persister) error {
	if err := s.tasks.Attach(p); err != nil {
		return err
	}
	if err := s.tags.Attach(p); err != nil {
		return err
	}
	return s.links.Attach(p)
}

func (s *TaskStore) List(_ context.Context, filter TaskFilter) ([]models.TaskWithTags, error) {
	if err := filter.validate(); err != nil {
		return nil, err
	}

	var tagged map[string]bool
	if filter.TagID != "" {
		tagged = make(map[string]bool)
		for _, l := range s.links.Select(func(l TaskTag) bool { return l.TagID == filter.TagID }) {
			tagged[l.TaskID] = true
		}
	}

	term := searchTerm(filter.Search)
	rows := s.tasks.Select(func(t models.Task) bool {
		if t.OrganizationID != filter.OrganizationID {
			return false
		}
		if filter.Status != "" && t.Status != filter.Status {
			return false
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			return false
		}
		if tagged != nil && !tagged[t.ID] {
			return false
		}
		return matchesTask(t, term)
	})

	sortRows(rows, filter.order(),
		func(t models.Task) time.Time { return t.CreatedAt },
		func(t models.Task) time.Time { return t.UpdatedAt },
		func(t models.Task) string { return t.Title },
	)

	out := make([]models.TaskWithTags, len(rows))
	for i, t := range rows {
		out[i] = s.join(t)
	}
	return out, nil
}

func (s *TaskStore) Get(_ context.Context, id string) (*models.TaskWithTags, error) {
	t, ok := s.tasks.Get(id)
	if !ok {
		return nil, notFound("task", id)
	}
	joined := s.join(t)
	return &joined, nil
}

func (s *TaskStore) Create(_ context.Context, input models.CreateTaskInput) (*models.TaskWithTags, error) {
	if err := validateTaskInput(input); err != nil {
		return nil, err
	}

	t := newTask(input, s.opts.now())
	if err := s.tasks.Insert(t); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("task_id", t.ID).Str("org", t.OrganizationID).Msg("task created")
	return &models.TaskWithTags{Task: t, Tags: []models.Tag{}}, nil
}

func (s *TaskStore) Update(_ context.Context, id string, patch models.TaskPatch) (*models.TaskWithTags, error) {
	if err := validateTaskPatch(patch); err != nil {
		return nil, err
	}

	now := s.opts.now()
	t, ok, err := s.tasks.Update(id, func(t *models.Task) {
		patch.Apply(t)
		t.UpdatedAt = now
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("task", id)
	}
	s.opts.log.Debug().Str("task_id", id).Str("status", string(t.Status)).Msg("task updated")

	joined := s.join(t)
	return &joined, nil
}

// Delete removes the task and its tag links; tags themselves are kept.
func (s *TaskStore) Delete(_ context.Context, id string) (*models.Task, error) {
	t, ok, err := s.tasks.Delete(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("task", id)
	}
	if _, err := s.links.DeleteWhere(func(l TaskTag) bool { return l.TaskID == id }); err != nil {
		return nil, err
	}
	s.opts.log.Debug().Str("task_id", id).Msg("task deleted")
	return &t, nil
}

func (s *TaskStore) CreateTag(_ context.Context, input models.CreateTagInput) (*models.Tag, error) {
	if err := validateTagInput(input); err != nil {
		return nil, err
	}
	tag := newTag(input, s.opts.now())
	if err := s.tags.Insert(tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *TaskStore) ListTags(_ context.Context, organizationID string) ([]models.Tag, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, required("organizationId")
	}
	rows := s.tags.Select(func(t models.Tag) bool { return t.OrganizationID == organizationID })
	sortTags(rows)
	return rows, nil
}

// TagTask links a tag to a task of the same organization. Linking twice is
// a no-op.
func (s *TaskStore) TagTask(_ context.Context, taskID, tagID string) (*models.TaskWithTags, error) {
	t, ok := s.tasks.Get(taskID)
	if !ok {
		return nil, notFound("task", taskID)
	}
	tag, ok := s.tags.Get(tagID)
	if !ok || tag.OrganizationID != t.OrganizationID {
		return nil, notFound("tag", tagID)
	}

	if err := s.links.Insert(TaskTag{TaskID: taskID, TagID: tagID}); err != nil {
		return nil, err
	}
	joined := s.join(t)
	return &joined, nil
}

func (s *TaskStore) UntagTask(_ context.Context, taskID, tagID string) (*models.TaskWithTags, error) {
	t, ok := s.tasks.Get(taskID)
	if !ok {
		return nil, notFound("task", taskID)
	}
	if _, _, err := s.links.Delete(TaskTag{TaskID: taskID, TagID: tagID}.key()); err != nil {
		return nil, err
	}
	joined := s.join(t)
	return &joined, nil
}

func (s *TaskStore) join(t models.Task) models.TaskWithTags {
	out := models.TaskWithTags{Task: t, Tags: []models.Tag{}}
	for _, l := range s.links.Select(func(l TaskTag) bool { return l.TaskID == t.ID }) {
		if tag, ok := s.tags.Get(l.TagID); ok {
			out.Tags = append(out.Tags, tag)
		}
	}
	sortTags(out.Tags)
	return out
}

func sortTags(tags []models.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
}
