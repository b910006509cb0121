package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors for the two failure classes callers branch on.
var (
	// ErrConnection marks transport-level failures (backend unreachable,
	// timeout) as distinct from application errors.
	ErrConnection = errors.New("cannot reach backend")

	// ErrUnauthorized marks a 401. Callers treat it as a forced logout.
	ErrUnauthorized = errors.New("session expired, please log in again")
)

// APIError is a structured 4xx/5xx response from the backend. Detail is the
// backend's own message and is shown to the user verbatim when present.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// decodeAPIError extracts the backend's detail message from an error
// response. FastAPI-style backends return {"detail": "..."} but detail may
// also be a structured validation list, so fall back to the raw text.
func decodeAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			detail = s
		} else {
			detail = string(payload.Detail)
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Detail: detail}
}
