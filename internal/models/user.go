package models

// User is the account identity returned by the backend. The session token
// itself is opaque and kept out of the model.
type User struct {
	ID       string
	Username string
	Email    string
	IsActive bool
}
