package models

import "time"

// Project is a named bundle of external-system credentials that scopes
// which HUs the backend operates on. At most one project is active per user;
// the backend enforces this and the client mirrors what it returns.
type Project struct {
	ID           string
	Name         string
	Description  string
	AzureOrg     string
	AzureProject string
	ClientID     string // test-management (Xray) client id
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectCredentials carries the write-only secrets supplied when creating
// or updating a project. The backend never returns them, so they live only
// in outgoing requests.
type ProjectCredentials struct {
	AzurePAT     string
	ClientSecret string
}
