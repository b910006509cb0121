package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/huq/internal/backend"
	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/state"
)

type fakeProjectBackend struct {
	calls []string

	projects    []models.Project
	activated   models.Project
	projectHUs  []models.HU
	listErr     error
	deleteErr   error
	activateErr error
}

func (f *fakeProjectBackend) ListProjects(ctx context.Context) ([]models.Project, error) {
	f.calls = append(f.calls, "list")
	return f.projects, f.listErr
}

func (f *fakeProjectBackend) CreateProject(ctx context.Context, in backend.ProjectInput) (models.Project, error) {
	f.calls = append(f.calls, "create "+in.Name)
	return models.Project{ID: "new", Name: in.Name}, nil
}

func (f *fakeProjectBackend) UpdateProject(ctx context.Context, id string, in backend.ProjectInput) (models.Project, error) {
	f.calls = append(f.calls, "update "+id)
	return models.Project{ID: id, Name: in.Name}, nil
}

func (f *fakeProjectBackend) DeleteProject(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete "+id)
	return f.deleteErr
}

func (f *fakeProjectBackend) ActivateProject(ctx context.Context, id string) (models.Project, error) {
	f.calls = append(f.calls, "activate "+id)
	return f.activated, f.activateErr
}

func (f *fakeProjectBackend) ProjectHUs(ctx context.Context, id string) ([]models.HU, error) {
	f.calls = append(f.calls, "hus "+id)
	return f.projectHUs, nil
}

func TestActivateReloadsFromServer(t *testing.T) {
	s := state.New()
	api := &fakeProjectBackend{
		activated: models.Project{ID: "p2", Name: "Two", IsActive: true},
		projects: []models.Project{
			{ID: "p1", Name: "One"}, // server already flipped p1 off
			{ID: "p2", Name: "Two", IsActive: true},
		},
	}
	p := NewProjects(api, s)

	_, err := p.Activate(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"activate p2", "list"}, api.calls)

	// Exactly one active project, and it is p2.
	actives := 0
	for _, proj := range s.Projects().Projects {
		if proj.IsActive {
			actives++
		}
	}
	assert.Equal(t, 1, actives)
	active, ok := s.Projects().Active()
	require.True(t, ok)
	assert.Equal(t, "p2", active.ID)
}

func TestDeleteWithItemsRefused(t *testing.T) {
	s := state.New()
	api := &fakeProjectBackend{
		projectHUs: []models.HU{{ID: "1"}, {ID: "2"}},
	}
	p := NewProjects(api, s)

	err := p.Delete(context.Background(), "p3")
	require.Error(t, err)

	var notEmpty *ProjectNotEmptyError
	require.ErrorAs(t, err, &notEmpty)
	assert.Len(t, notEmpty.Items, 2)
	assert.NotContains(t, api.calls, "delete p3", "delete endpoint must not be called")
}

func TestDeleteEmptyProject(t *testing.T) {
	s := state.New()
	s.Dispatch(state.SetProjects{Projects: []models.Project{{ID: "p3", IsActive: true}}})
	api := &fakeProjectBackend{}
	p := NewProjects(api, s)

	require.NoError(t, p.Delete(context.Background(), "p3"))
	assert.Equal(t, []string{"hus p3", "delete p3"}, api.calls)

	// Deleting the active project clears the active reference.
	_, ok := s.Projects().Active()
	assert.False(t, ok)
}

func TestCreatePrependsLocally(t *testing.T) {
	s := state.New()
	api := &fakeProjectBackend{}
	p := NewProjects(api, s)

	_, err := p.Create(context.Background(), backend.ProjectInput{Name: "Fresh"})
	require.NoError(t, err)
	require.Len(t, s.Projects().Projects, 1)
	assert.Equal(t, "Fresh", s.Projects().Projects[0].Name)
}
