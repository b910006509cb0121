// Package workflow orchestrates the review lifecycle: loading the queue,
// submitting HUs for refinement, and the approve/reject transitions with
// their local validation. State changes go through the store's reducers;
// network calls go through the backend client. A backend failure leaves
// local state untouched.
package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/state"
)

// MinFeedbackLen is the shortest feedback (after trimming) a rejection may
// carry. Enforced locally; no request is issued below it.
const MinFeedbackLen = 10

// Backend is the slice of the API client the controller needs.
type Backend interface {
	RefineHU(ctx context.Context, azureID, language string) (models.HU, error)
	ListHUs(ctx context.Context, status models.HUStatus) ([]models.HU, error)
	GetHU(ctx context.Context, id string) (models.HU, error)
	UpdateHUStatus(ctx context.Context, id string, status models.HUStatus, feedback string) error
	DeleteHU(ctx context.Context, id string) error
}

// Config tunes the controller.
type Config struct {
	// Language passed to the refine endpoint ("es" or "en").
	Language string
	// PollDelay is how long to wait before the first re-fetch after a
	// rejection; the backend's re-refinement takes a few seconds.
	PollDelay time.Duration
	// PollAttempts bounds the re-fetch poll.
	PollAttempts int
}

// DefaultConfig matches the backend's observed re-refinement latency.
func DefaultConfig() Config {
	return Config{Language: "es", PollDelay: 3 * time.Second, PollAttempts: 5}
}

// Controller drives the review workflow against one store and one backend.
type Controller struct {
	api   Backend
	store *state.Store
	cfg   Config
}

// New creates a controller. Zero config fields fall back to defaults.
func New(api Backend, store *state.Store, cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.PollDelay <= 0 {
		cfg.PollDelay = def.PollDelay
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = def.PollAttempts
	}
	return &Controller{api: api, store: store, cfg: cfg}
}

// Load fetches all pending items and replaces the queue wholesale.
func (c *Controller) Load(ctx context.Context) error {
	c.store.Dispatch(state.SetLoading{Loading: true})
	items, err := c.api.ListHUs(ctx, models.HUStatusPending)
	if err != nil {
		c.store.Dispatch(state.SetError{Err: err.Error()})
		return err
	}
	c.store.Dispatch(state.SetItems{Items: items})
	return nil
}

// History fetches accepted and rejected items, newest update first.
func (c *Controller) History(ctx context.Context) ([]models.HU, error) {
	accepted, err := c.api.ListHUs(ctx, models.HUStatusAccepted)
	if err != nil {
		return nil, err
	}
	rejected, err := c.api.ListHUs(ctx, models.HUStatusRejected)
	if err != nil {
		return nil, err
	}
	all := append(accepted, rejected...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})
	return all, nil
}

// Submit validates the identifier shape, asks the backend to refine it, and
// prepends the result to the queue. A failure leaves the queue untouched.
func (c *Controller) Submit(ctx context.Context, identifier string) (models.HU, error) {
	azureID, err := models.ParseHUID(identifier)
	if err != nil {
		return models.HU{}, err
	}
	hu, err := c.api.RefineHU(ctx, azureID, c.cfg.Language)
	if err != nil {
		return models.HU{}, err
	}
	c.store.Dispatch(state.PrependItem{Item: hu})
	return hu, nil
}

// Approve transitions a pending item to accepted and records the reviewer.
func (c *Controller) Approve(ctx context.Context, id, reviewer string) error {
	hu, ok := c.store.Review().Item(id)
	if !ok {
		return fmt.Errorf("no item %q in the queue", id)
	}
	if _, err := transition(hu.Status, hu.ID, eventApprove); err != nil {
		return err
	}
	if err := c.api.UpdateHUStatus(ctx, id, models.HUStatusAccepted, ""); err != nil {
		return err
	}
	c.store.Dispatch(state.ApproveItem{ID: id, Reviewer: reviewer})
	return nil
}

// Reject transitions a pending item to rejected. Feedback shorter than
// MinFeedbackLen is refused locally with no network call. The call returns
// as soon as the backend accepts the rejection; the asynchronous
// re-refinement result is picked up separately by AwaitReRefinement.
func (c *Controller) Reject(ctx context.Context, id, feedback, reviewer string) error {
	feedback = strings.TrimSpace(feedback)
	if len([]rune(feedback)) < MinFeedbackLen {
		return fmt.Errorf("feedback must be at least %d characters so the AI can improve the refinement", MinFeedbackLen)
	}
	hu, ok := c.store.Review().Item(id)
	if !ok {
		return fmt.Errorf("no item %q in the queue", id)
	}
	if _, err := transition(hu.Status, hu.ID, eventReject); err != nil {
		return err
	}
	if err := c.api.UpdateHUStatus(ctx, id, models.HUStatusRejected, feedback); err != nil {
		return err
	}
	c.store.Dispatch(state.RejectItem{ID: id, Feedback: feedback, Reviewer: reviewer})
	return nil
}

// AwaitReRefinement polls for the re-refined content after a rejection:
// an initial delay, then bounded backed-off attempts until the backend
// reports the item back in pending. On success the item is merged into the
// queue (stale merges are dropped by the reducer). Returns an error when the
// backend is still processing after the attempt budget; the rejection itself
// already succeeded, so callers downgrade that to a notice.
func (c *Controller) AwaitReRefinement(ctx context.Context, id string) (models.HU, error) {
	select {
	case <-time.After(c.cfg.PollDelay):
	case <-ctx.Done():
		return models.HU{}, ctx.Err()
	}

	r := retry.New[models.HU](retry.Config{
		MaxAttempts:   c.cfg.PollAttempts,
		InitialDelay:  c.cfg.PollDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	hu, err := r.Do(ctx, func(ctx context.Context) (models.HU, error) {
		fresh, err := c.api.GetHU(ctx, id)
		if err != nil {
			return models.HU{}, err
		}
		if fresh.Status != models.HUStatusPending {
			return models.HU{}, fmt.Errorf("still re-refining")
		}
		return fresh, nil
	})
	if err != nil {
		return models.HU{}, fmt.Errorf("re-refinement still in progress, refresh later: %w", err)
	}
	c.store.Dispatch(state.ReplaceItem{Item: hu})
	return hu, nil
}

// Refresh re-fetches one item and merges it into the queue.
func (c *Controller) Refresh(ctx context.Context, id string) (models.HU, error) {
	hu, err := c.api.GetHU(ctx, id)
	if err != nil {
		return models.HU{}, err
	}
	c.store.Dispatch(state.ReplaceItem{Item: hu})
	return hu, nil
}

// Delete removes an item from the backend and the queue.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteHU(ctx, id); err != nil {
		return err
	}
	review := c.store.Review()
	kept := make([]models.HU, 0, len(review.Items))
	for _, hu := range review.Items {
		if hu.ID != id {
			kept = append(kept, hu)
		}
	}
	c.store.Dispatch(state.SetItems{Items: kept})
	return nil
}
