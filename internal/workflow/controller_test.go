package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/state"
)

// fakeBackend records calls and serves canned responses.
type fakeBackend struct {
	calls []string

	refined   models.HU
	refineErr error
	listed    []models.HU
	listErr   error
	got       models.HU
	getErr    error
	updateErr error
	deleteErr error
}

func (f *fakeBackend) RefineHU(ctx context.Context, azureID, language string) (models.HU, error) {
	f.calls = append(f.calls, "refine "+azureID+" "+language)
	return f.refined, f.refineErr
}

func (f *fakeBackend) ListHUs(ctx context.Context, status models.HUStatus) ([]models.HU, error) {
	f.calls = append(f.calls, "list "+string(status))
	return f.listed, f.listErr
}

func (f *fakeBackend) GetHU(ctx context.Context, id string) (models.HU, error) {
	f.calls = append(f.calls, "get "+id)
	return f.got, f.getErr
}

func (f *fakeBackend) UpdateHUStatus(ctx context.Context, id string, status models.HUStatus, feedback string) error {
	f.calls = append(f.calls, "update "+id+" "+string(status))
	return f.updateErr
}

func (f *fakeBackend) DeleteHU(ctx context.Context, id string) error {
	f.calls = append(f.calls, "delete "+id)
	return f.deleteErr
}

func fastConfig() Config {
	return Config{Language: "es", PollDelay: time.Millisecond, PollAttempts: 3}
}

func seeded(items ...models.HU) (*state.Store, *fakeBackend, *Controller) {
	s := state.New()
	s.Dispatch(state.SetItems{Items: items})
	api := &fakeBackend{}
	return s, api, New(api, s, fastConfig())
}

func pendingHU(id string) models.HU {
	return models.HU{ID: id, OriginalID: "HU-" + id, Title: "Item " + id, Status: models.HUStatusPending}
}

func TestRejectShortFeedbackNoNetworkCall(t *testing.T) {
	s, api, c := seeded(pendingHU("1"))

	err := c.Reject(context.Background(), "1", "too vague", "Q") // 9 chars
	require.Error(t, err)
	assert.Empty(t, api.calls, "validation failures must not reach the network")

	hu, _ := s.Review().Item("1")
	assert.Equal(t, models.HUStatusPending, hu.Status)
}

func TestRejectTrimsBeforeMeasuring(t *testing.T) {
	_, api, c := seeded(pendingHU("1"))

	err := c.Reject(context.Background(), "1", "  too vague   ", "Q")
	require.Error(t, err)
	assert.Empty(t, api.calls)
}

func TestRejectSuccess(t *testing.T) {
	s, api, c := seeded(pendingHU("1"))

	err := c.Reject(context.Background(), "1", "needs more technical detail", "Q")
	require.NoError(t, err)
	assert.Equal(t, []string{"update 1 rejected"}, api.calls)

	hu, _ := s.Review().Item("1")
	assert.Equal(t, models.HUStatusRejected, hu.Status)
	assert.Equal(t, "needs more technical detail", hu.Feedback)
	assert.Equal(t, "Q", hu.QAReviewer)
}

func TestRejectBackendFailureLeavesStateUntouched(t *testing.T) {
	s, api, c := seeded(pendingHU("1"))
	api.updateErr = errors.New("boom")

	err := c.Reject(context.Background(), "1", "needs more technical detail", "Q")
	require.Error(t, err)

	hu, _ := s.Review().Item("1")
	assert.Equal(t, models.HUStatusPending, hu.Status)
	assert.Empty(t, hu.Feedback)
}

func TestApproveRecordsReviewer(t *testing.T) {
	s, api, c := seeded(pendingHU("1"))

	require.NoError(t, c.Approve(context.Background(), "1", "alice"))
	assert.Equal(t, []string{"update 1 accepted"}, api.calls)

	hu, _ := s.Review().Item("1")
	assert.Equal(t, models.HUStatusAccepted, hu.Status)
	assert.Equal(t, "alice", hu.QAReviewer)
}

func TestApproveNonPendingRefusedLocally(t *testing.T) {
	accepted := pendingHU("1")
	accepted.Status = models.HUStatusAccepted
	s, api, c := seeded(accepted)

	err := c.Approve(context.Background(), "1", "alice")
	require.Error(t, err)
	assert.Empty(t, api.calls)

	hu, _ := s.Review().Item("1")
	assert.Equal(t, models.HUStatusAccepted, hu.Status)
}

func TestRejectAcceptedItemRefused(t *testing.T) {
	accepted := pendingHU("1")
	accepted.Status = models.HUStatusAccepted
	_, api, c := seeded(accepted)

	err := c.Reject(context.Background(), "1", "needs more technical detail", "Q")
	require.Error(t, err)
	assert.Empty(t, api.calls)
}

func TestApproveBackendFailureLeavesStateUntouched(t *testing.T) {
	s, api, c := seeded(pendingHU("1"))
	api.updateErr = errors.New("503")

	require.Error(t, c.Approve(context.Background(), "1", "alice"))

	hu, _ := s.Review().Item("1")
	assert.Equal(t, models.HUStatusPending, hu.Status)
	assert.Empty(t, hu.QAReviewer)
}

func TestSubmitInvalidIDNoNetworkCall(t *testing.T) {
	_, api, c := seeded()

	_, err := c.Submit(context.Background(), "abc")
	require.Error(t, err)
	assert.Empty(t, api.calls)
}

func TestSubmitPrepends(t *testing.T) {
	s, api, c := seeded(pendingHU("1"))
	api.refined = pendingHU("9")

	hu, err := c.Submit(context.Background(), "HU-109")
	require.NoError(t, err)
	assert.Equal(t, "9", hu.ID)
	assert.Equal(t, []string{"refine 109 es"}, api.calls)

	items := s.Review().Items
	require.Len(t, items, 2)
	assert.Equal(t, "9", items[0].ID)
}

func TestSubmitFailureLeavesQueueUntouched(t *testing.T) {
	s, api, c := seeded(pendingHU("1"))
	api.refineErr = errors.New("HU not found")

	_, err := c.Submit(context.Background(), "999")
	require.Error(t, err)
	assert.Len(t, s.Review().Items, 1)
}

func TestAwaitReRefinementReplacesItem(t *testing.T) {
	rejected := pendingHU("1")
	rejected.Status = models.HUStatusRejected
	rejected.Feedback = "needs more technical detail"
	s, api, c := seeded(rejected)

	fresh := pendingHU("1")
	fresh.Content = "# Re-refined"
	fresh.UpdatedAt = time.Now()
	api.got = fresh

	hu, err := c.AwaitReRefinement(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "# Re-refined", hu.Content)

	got, _ := s.Review().Item("1")
	assert.Equal(t, models.HUStatusPending, got.Status)
	assert.Empty(t, got.Feedback)
	assert.Equal(t, 1, got.Refinements)
}

func TestAwaitReRefinementStillProcessing(t *testing.T) {
	rejected := pendingHU("1")
	rejected.Status = models.HUStatusRejected
	s, api, c := seeded(rejected)

	still := rejected // backend still reports rejected
	api.got = still

	_, err := c.AwaitReRefinement(context.Background(), "1")
	require.Error(t, err)

	// The queue keeps its post-rejection state.
	got, _ := s.Review().Item("1")
	assert.Equal(t, models.HUStatusRejected, got.Status)
}

func TestLoadReplacesQueue(t *testing.T) {
	s, api, c := seeded(pendingHU("old"))
	api.listed = []models.HU{pendingHU("a"), pendingHU("b")}

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []string{"list pending"}, api.calls)

	items := s.Review().Items
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
}

func TestHistorySortsNewestFirst(t *testing.T) {
	_, api, c := seeded()
	older := pendingHU("1")
	older.Status = models.HUStatusAccepted
	older.UpdatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	newer := pendingHU("2")
	newer.Status = models.HUStatusRejected
	newer.UpdatedAt = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	api.listed = []models.HU{older, newer} // served for both status queries

	all, err := c.History(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2", all[0].ID)
}

func TestDeleteRemovesFromQueue(t *testing.T) {
	s, api, c := seeded(pendingHU("1"), pendingHU("2"))

	require.NoError(t, c.Delete(context.Background(), "1"))
	assert.Equal(t, []string{"delete 1"}, api.calls)
	require.Len(t, s.Review().Items, 1)
	assert.Equal(t, "2", s.Review().Items[0].ID)
}
