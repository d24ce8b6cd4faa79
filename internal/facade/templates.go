package facade

import (
	"context"
	"database/sql"

	"github.com/scrumhq/scrum/internal/store"
)

// CreateTaskTemplateInput is the validated request shape for
// CreateTaskTemplate.
type CreateTaskTemplateInput struct {
	Name              string
	TitlePattern      string
	DefaultLabels     []string
	DefaultPriority   store.Priority
	DefaultAcceptance string
}

// CreateTaskTemplate upserts a named, reusable task shape.
func (f *Facade) CreateTaskTemplate(ctx context.Context, in CreateTaskTemplateInput) (store.TaskTemplate, error) {
	if in.Name == "" {
		return store.TaskTemplate{}, validationError("name is required", nil)
	}
	if in.TitlePattern == "" {
		return store.TaskTemplate{}, validationError("titlePattern is required", nil)
	}
	priority := in.DefaultPriority
	if priority == "" {
		priority = store.PriorityMedium
	}
	if !validPriority(priority) {
		return store.TaskTemplate{}, validationError("invalid defaultPriority", map[string]any{"priority": priority})
	}

	now := f.now()
	existing, err := f.store.GetTaskTemplate(ctx, in.Name)
	createdAt := now
	if err == nil {
		createdAt = existing.CreatedAt
	} else if err != sql.ErrNoRows {
		return store.TaskTemplate{}, internalError("get task template", err)
	}

	t := store.TaskTemplate{
		Name:              in.Name,
		TitlePattern:      in.TitlePattern,
		DefaultLabels:     in.DefaultLabels,
		DefaultPriority:   priority,
		DefaultAcceptance: in.DefaultAcceptance,
		CreatedAt:         createdAt,
		UpdatedAt:         now,
	}
	if err := f.store.UpsertTaskTemplate(ctx, t); err != nil {
		return store.TaskTemplate{}, internalError("upsert task template", err)
	}
	return t, nil
}

// GetTaskTemplate fetches a template by name.
func (f *Facade) GetTaskTemplate(ctx context.Context, name string) (store.TaskTemplate, error) {
	t, err := f.store.GetTaskTemplate(ctx, name)
	if err == sql.ErrNoRows {
		return store.TaskTemplate{}, notFoundError("task template not found", map[string]any{"name": name})
	}
	if err != nil {
		return store.TaskTemplate{}, internalError("get task template", err)
	}
	return t, nil
}

// ListTaskTemplates returns every configured template.
func (f *Facade) ListTaskTemplates(ctx context.Context) ([]store.TaskTemplate, error) {
	templates, err := f.store.ListTaskTemplates(ctx)
	if err != nil {
		return nil, internalError("list task templates", err)
	}
	return templates, nil
}

// DeleteTaskTemplate removes a template by name.
func (f *Facade) DeleteTaskTemplate(ctx context.Context, name string) error {
	if err := f.store.DeleteTaskTemplate(ctx, name); err != nil {
		return internalError("delete task template", err)
	}
	return nil
}

// CreateTaskFromTemplateInput overrides the template's defaults on
// instantiation; an empty Title falls back to the template's
// TitlePattern, used verbatim.
type CreateTaskFromTemplateInput struct {
	Title       string
	Description string
	DueDate     *int64
	Labels      []string
	StoryPoints *int
}

// CreateTaskFromTemplate instantiates a new task from a named template,
// applying the template's defaults wherever the override is absent.
func (f *Facade) CreateTaskFromTemplate(ctx context.Context, name string, in CreateTaskFromTemplateInput) (store.Task, error) {
	tpl, err := f.GetTaskTemplate(ctx, name)
	if err != nil {
		return store.Task{}, err
	}

	title := in.Title
	if title == "" {
		title = tpl.TitlePattern
	}
	labels := in.Labels
	if labels == nil {
		labels = tpl.DefaultLabels
	}

	return f.CreateTask(ctx, CreateTaskInput{
		Title:       title,
		Description: in.Description,
		Priority:    tpl.DefaultPriority,
		DueDate:     in.DueDate,
		Labels:      labels,
		StoryPoints: in.StoryPoints,
	})
}
