package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmorales/huq/internal/models"
)

// ProjectInput is the payload for creating or updating a project. Secret
// fields are only sent when non-empty, so an update without them leaves the
// stored secrets untouched.
type ProjectInput struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	AzureOrg     string `json:"azure_org"`
	AzureProject string `json:"azure_project"`
	AzurePAT     string `json:"azure_pat,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// ListProjects fetches all projects for the current user.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var payloads []projectPayload
	if err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &payloads); err != nil {
		return nil, err
	}
	projects := make([]models.Project, len(payloads))
	for i, p := range payloads {
		projects[i] = p.toModel()
	}
	return projects, nil
}

// CreateProject registers a new credential bundle.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (models.Project, error) {
	var payload projectPayload
	if err := c.do(ctx, http.MethodPost, "/projects", nil, in, &payload); err != nil {
		return models.Project{}, err
	}
	return payload.toModel(), nil
}

// UpdateProject replaces a project's fields. Empty secret fields keep the
// stored values.
func (c *Client) UpdateProject(ctx context.Context, id string, in ProjectInput) (models.Project, error) {
	var payload projectPayload
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), nil, in, &payload); err != nil {
		return models.Project{}, err
	}
	return payload.toModel(), nil
}

// DeleteProject removes a project. The caller is responsible for the
// pre-flight HU check; see workflow.Projects.Delete.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, nil)
}

// ActivateProject makes the project the active scope for HU operations.
// The backend deactivates any previously active project.
func (c *Client) ActivateProject(ctx context.Context, id string) (models.Project, error) {
	var payload projectPayload
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(id)+"/activate", nil, nil, &payload); err != nil {
		return models.Project{}, err
	}
	return payload.toModel(), nil
}

// ActiveProject returns the currently active project, or ok=false when none
// is active (backend answers 404).
func (c *Client) ActiveProject(ctx context.Context) (models.Project, bool, error) {
	var payload projectPayload
	err := c.do(ctx, http.MethodGet, "/projects/active", nil, nil, &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return models.Project{}, false, nil
		}
		return models.Project{}, false, err
	}
	return payload.toModel(), true, nil
}

// ProjectHUs lists the HUs associated with a project, used as the pre-flight
// check before deletion.
func (c *Client) ProjectHUs(ctx context.Context, id string) ([]models.HU, error) {
	var payloads []huPayload
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id)+"/hus", nil, nil, &payloads); err != nil {
		return nil, err
	}
	hus := make([]models.HU, len(payloads))
	for i, p := range payloads {
		hus[i] = p.toModel()
	}
	return hus, nil
}
