package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/huq/internal/models"
)

func TestBearerAndRequestIDHeaders(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok123"))
	_, err := c.ListHUs(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Len(t, gotReqID, 26) // ULID
}

func TestUnauthorizedIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListHUs(context.Background(), models.HUStatusPending)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestBackendDetailSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "HU 999 not found in Azure DevOps"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetHU(context.Background(), "999")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "HU 999 not found in Azure DevOps", err.Error())
}

func TestBackendErrorWithoutDetailGetsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetHU(context.Background(), "1")
	require.Error(t, err)
	assert.Equal(t, "backend returned status 500", err.Error())
}

func TestConnectionErrorIsDistinct(t *testing.T) {
	// Port 1 is never listening.
	c := New("http://127.0.0.1:1")
	_, err := c.ListHUs(context.Background(), "")
	assert.ErrorIs(t, err, ErrConnection)
}

func TestListHUsStatusQuery(t *testing.T) {
	var gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStatus = r.URL.Query().Get("status")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListHUs(context.Background(), models.HUStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, "accepted", gotStatus)
}

func TestRefineHUNormalization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "109", body["azure_id"])
		assert.Equal(t, "es", body["language"])

		_, _ = w.Write([]byte(`{
			"id": "abc",
			"azure_id": 109,
			"name": "Login page",
			"status": "pending",
			"module": "Auth",
			"feature": "Login",
			"refined_response": "# Refined\ncontent",
			"created_at": "2025-06-01T10:00:00Z",
			"updated_at": "2025-06-01T10:05:00Z"
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	hu, err := c.RefineHU(context.Background(), "109", "es")
	require.NoError(t, err)
	assert.Equal(t, "abc", hu.ID)
	assert.Equal(t, "HU-109", hu.OriginalID)
	assert.Equal(t, "Login page", hu.Title)
	assert.Equal(t, models.HUStatusPending, hu.Status)
	assert.Equal(t, "# Refined\ncontent", hu.Content)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), hu.CreatedAt)
}

func TestLoginIsFormEncoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostFormValue("username"))
		assert.Equal(t, "s3cret", r.PostFormValue("password"))
		_, _ = w.Write([]byte(`{"access_token": "tok", "token_type": "bearer"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	tok, err := c.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
	assert.Equal(t, "tok", c.Token())
}

func TestValidatePasswordMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": "password does not match"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ok, err := c.ValidatePassword(context.Background(), "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestActiveProjectNone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "no active project"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, ok, err := c.ActiveProject(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateHUStatusOmitsEmptyFeedback(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.UpdateHUStatus(context.Background(), "1", models.HUStatusAccepted, ""))
	_, hasFeedback := body["feedback"]
	assert.False(t, hasFeedback)
	assert.Equal(t, "accepted", body["status"])
}
