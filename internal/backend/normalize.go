package backend

import (
	"fmt"
	"time"

	"github.com/dmorales/huq/internal/models"
)

// huPayload is the backend's wire shape for an HU.
type huPayload struct {
	ID              string `json:"id"`
	AzureID         any    `json:"azure_id"` // backend has sent both string and number
	Name            string `json:"name"`
	Status          string `json:"status"`
	Module          string `json:"module"`
	Feature         string `json:"feature"`
	RefinedResponse string `json:"refined_response"`
	Feedback        string `json:"feedback"`
	QAReviewer      string `json:"qa_reviewer"`
	RefinementCount int    `json:"refinement_count"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

const (
	moduleUnassigned  = "Unassigned"
	featureUnassigned = "Unassigned"
	contentProcessing = "Refinement in progress..."
)

// toModel normalizes one backend HU into the client shape. This is the single
// mapping point between wire and model; every fetch path goes through it.
func (p huPayload) toModel() models.HU {
	content := p.RefinedResponse
	if content == "" {
		content = contentProcessing
	}
	module := p.Module
	if module == "" {
		module = moduleUnassigned
	}
	feature := p.Feature
	if feature == "" {
		feature = featureUnassigned
	}

	return models.HU{
		ID:          p.ID,
		OriginalID:  fmt.Sprintf("HU-%v", p.AzureID),
		Title:       p.Name,
		Status:      models.HUStatus(p.Status),
		Module:      module,
		Feature:     feature,
		Content:     content,
		Feedback:    p.Feedback,
		QAReviewer:  p.QAReviewer,
		Refinements: p.RefinementCount,
		CreatedAt:   parseTime(p.CreatedAt),
		UpdatedAt:   parseTime(p.UpdatedAt),
	}
}

// parseTime accepts the timestamp variants the backend has produced.
// An unparseable value becomes the zero time rather than an error; display
// code treats zero as "unknown".
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// userPayload is the backend's wire shape for an account.
type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func (p userPayload) toModel() models.User {
	return models.User{ID: p.ID, Username: p.Username, Email: p.Email, IsActive: p.IsActive}
}

// projectPayload is the backend's wire shape for a project. Secrets are
// write-only and never appear here.
type projectPayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	AzureOrg     string `json:"azure_org"`
	AzureProject string `json:"azure_project"`
	ClientID     string `json:"client_id"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func (p projectPayload) toModel() models.Project {
	return models.Project{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		AzureOrg:     p.AzureOrg,
		AzureProject: p.AzureProject,
		ClientID:     p.ClientID,
		IsActive:     p.IsActive,
		CreatedAt:    parseTime(p.CreatedAt),
		UpdatedAt:    parseTime(p.UpdatedAt),
	}
}

// testCasePayload is the backend's wire shape for a generated test case.
type testCasePayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XrayPath    string `json:"xray_path"`
	Steps       []struct {
		Action   string `json:"action"`
		Expected string `json:"expected_result"`
	} `json:"steps"`
}

func (p testCasePayload) toModel() models.TestCase {
	tc := models.TestCase{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		XrayPath:    p.XrayPath,
	}
	for _, s := range p.Steps {
		tc.Steps = append(tc.Steps, models.TestStep{Action: s.Action, Expected: s.Expected})
	}
	return tc
}
