package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmorales/huq/internal/models"
)

// RefineHU submits an external tracker id for AI refinement and returns the
// created item. The call blocks until the backend finishes the initial
// refinement pass.
func (c *Client) RefineHU(ctx context.Context, azureID, language string) (models.HU, error) {
	body := map[string]string{"azure_id": azureID, "language": language}
	var payload huPayload
	if err := c.do(ctx, http.MethodPost, "/hus", nil, body, &payload); err != nil {
		return models.HU{}, err
	}
	return payload.toModel(), nil
}

// ListHUs fetches items, optionally filtered by status server-side.
func (c *Client) ListHUs(ctx context.Context, status models.HUStatus) ([]models.HU, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {string(status)}}
	}
	var payloads []huPayload
	if err := c.do(ctx, http.MethodGet, "/hus", query, nil, &payloads); err != nil {
		return nil, err
	}
	hus := make([]models.HU, len(payloads))
	for i, p := range payloads {
		hus[i] = p.toModel()
	}
	return hus, nil
}

// GetHU fetches a single item by its backend id.
func (c *Client) GetHU(ctx context.Context, id string) (models.HU, error) {
	var payload huPayload
	if err := c.do(ctx, http.MethodGet, "/hus/"+url.PathEscape(id), nil, nil, &payload); err != nil {
		return models.HU{}, err
	}
	return payload.toModel(), nil
}

// UpdateHUStatus transitions an item. Feedback is required by the backend
// when the target status is rejected; the workflow layer validates it before
// calling here.
func (c *Client) UpdateHUStatus(ctx context.Context, id string, status models.HUStatus, feedback string) error {
	body := map[string]string{"status": string(status)}
	if feedback != "" {
		body["feedback"] = feedback
	}
	return c.do(ctx, http.MethodPatch, "/hus/"+url.PathEscape(id)+"/status", nil, body, nil)
}

// DeleteHU removes an item from the backend.
func (c *Client) DeleteHU(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/hus/"+url.PathEscape(id), nil, nil, nil)
}

// GenerateTests asks the backend to generate test cases for an item and
// register them under the given Xray folder path.
func (c *Client) GenerateTests(ctx context.Context, azureID, xrayPath string) ([]models.TestCase, error) {
	body := map[string]string{"azure_id": azureID, "xray_path": xrayPath}
	var payloads []testCasePayload
	if err := c.do(ctx, http.MethodPost, "/generate-tests", nil, body, &payloads); err != nil {
		return nil, err
	}
	cases := make([]models.TestCase, len(payloads))
	for i, p := range payloads {
		cases[i] = p.toModel()
	}
	return cases, nil
}
