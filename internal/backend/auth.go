package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmorales/huq/internal/models"
)

// Login exchanges credentials for a bearer token. The token is also set on
// the client for subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.doForm(ctx, "/auth/token", form, &out); err != nil {
		return "", err
	}
	c.token = out.AccessToken
	return out.AccessToken, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) (models.User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var payload userPayload
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &payload); err != nil {
		return models.User{}, err
	}
	return payload.toModel(), nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var payload userPayload
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &payload); err != nil {
		return models.User{}, err
	}
	return payload.toModel(), nil
}

// ValidatePassword checks the current user's password (used to confirm
// destructive operations). The backend answers 422 on a mismatch, which is
// reported as ok=false rather than an error.
func (c *Client) ValidatePassword(ctx context.Context, password string) (bool, error) {
	body := map[string]string{"password": password}
	var out struct {
		Message string `json:"message"`
		Valid   bool   `json:"valid"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/validate-password", nil, body, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
			return false, nil
		}
		return false, err
	}
	return out.Valid, nil
}
