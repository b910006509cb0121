package workflow

import (
	"context"
	"fmt"

	"github.com/dmorales/huq/internal/backend"
	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/state"
)

// ProjectBackend is the slice of the API client the project controller needs.
type ProjectBackend interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, in backend.ProjectInput) (models.Project, error)
	UpdateProject(ctx context.Context, id string, in backend.ProjectInput) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ActivateProject(ctx context.Context, id string) (models.Project, error)
	ProjectHUs(ctx context.Context, id string) ([]models.HU, error)
}

// ProjectNotEmptyError refuses a delete while HUs still reference the
// project. Items carries them so the caller can surface the list.
type ProjectNotEmptyError struct {
	ProjectID string
	Items     []models.HU
}

func (e *ProjectNotEmptyError) Error() string {
	return fmt.Sprintf("project has %d associated HUs; resolve them before deleting", len(e.Items))
}

// Projects drives project CRUD and activation.
type Projects struct {
	api   ProjectBackend
	store *state.Store
}

// NewProjects creates the project controller.
func NewProjects(api ProjectBackend, store *state.Store) *Projects {
	return &Projects{api: api, store: store}
}

// Load refreshes the project list from the backend. The active reference is
// always re-derived from the server's is_active flags.
func (p *Projects) Load(ctx context.Context) ([]models.Project, error) {
	projects, err := p.api.ListProjects(ctx)
	if err != nil {
		p.store.Dispatch(state.SetProjectError{Err: err.Error()})
		return nil, err
	}
	p.store.Dispatch(state.SetProjects{Projects: projects})
	return projects, nil
}

// Create registers a new project and prepends it locally.
func (p *Projects) Create(ctx context.Context, in backend.ProjectInput) (models.Project, error) {
	project, err := p.api.CreateProject(ctx, in)
	if err != nil {
		return models.Project{}, err
	}
	p.store.Dispatch(state.AddProject{Project: project})
	return project, nil
}

// Update replaces a project's fields.
func (p *Projects) Update(ctx context.Context, id string, in backend.ProjectInput) (models.Project, error) {
	project, err := p.api.UpdateProject(ctx, id, in)
	if err != nil {
		return models.Project{}, err
	}
	p.store.Dispatch(state.UpdateProjectItem{Project: project})
	return project, nil
}

// Activate makes the project the scope for HU operations, then reloads the
// list so every is_active flag is the server's word, not a local patch.
func (p *Projects) Activate(ctx context.Context, id string) (models.Project, error) {
	project, err := p.api.ActivateProject(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	if _, err := p.Load(ctx); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// Delete removes a project after a pre-flight check: a project that still
// has HUs is not deleted, the items are returned for inspection instead.
// Deleting the active project clears the local active reference.
func (p *Projects) Delete(ctx context.Context, id string) error {
	items, err := p.api.ProjectHUs(ctx, id)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return &ProjectNotEmptyError{ProjectID: id, Items: items}
	}
	if err := p.api.DeleteProject(ctx, id); err != nil {
		return err
	}
	p.store.Dispatch(state.RemoveProject{ID: id})
	return nil
}
