package state

import "github.com/dmorales/huq/internal/models"

// ReviewState is the review-queue slice.
type ReviewState struct {
	Items     []models.HU
	CurrentID string
	Filters   models.FilterOptions
	Loading   bool
	Err       string
}

// ReviewAction mutates the review slice.
type ReviewAction interface {
	Action
	reviewAction()
}

type reviewMarker struct{}

func (reviewMarker) isAction()     {}
func (reviewMarker) reviewAction() {}

// SetItems replaces the queue wholesale (no merge) and clears loading/error.
type SetItems struct {
	reviewMarker
	Items []models.HU
}

// SetCurrent selects the item under review ("" deselects).
type SetCurrent struct {
	reviewMarker
	ID string
}

// SetFilters replaces the active filter options.
type SetFilters struct {
	reviewMarker
	Filters models.FilterOptions
}

// SetLoading toggles the in-flight marker.
type SetLoading struct {
	reviewMarker
	Loading bool
}

// SetError records a failure message and clears loading.
type SetError struct {
	reviewMarker
	Err string
}

// ApproveItem applies a successful accept transition locally.
type ApproveItem struct {
	reviewMarker
	ID       string
	Reviewer string
}

// RejectItem applies a successful reject transition locally.
type RejectItem struct {
	reviewMarker
	ID       string
	Feedback string
	Reviewer string
}

// PrependItem puts a freshly refined item at the head of the queue.
type PrependItem struct {
	reviewMarker
	Item models.HU
}

// ReplaceItem merges a re-fetched item into the queue in place. The merge is
// last-write-wins on UpdatedAt: a stale fetch (older than what the queue
// already holds, e.g. after the user transitioned the item again) is dropped.
// A rejected item coming back as pending starts a new refinement cycle, so
// feedback is cleared and the refinement counter advances.
type ReplaceItem struct {
	reviewMarker
	Item models.HU
}

func reduceReview(s ReviewState, action ReviewAction) ReviewState {
	switch a := action.(type) {
	case SetItems:
		s.Items = a.Items
		s.Loading = false
		s.Err = ""
	case SetCurrent:
		s.CurrentID = a.ID
	case SetFilters:
		s.Filters = a.Filters
	case SetLoading:
		s.Loading = a.Loading
	case SetError:
		s.Err = a.Err
		s.Loading = false
	case ApproveItem:
		s.Items = mapItems(s.Items, a.ID, func(hu models.HU) models.HU {
			hu.Status = models.HUStatusAccepted
			hu.QAReviewer = a.Reviewer
			return hu
		})
	case RejectItem:
		s.Items = mapItems(s.Items, a.ID, func(hu models.HU) models.HU {
			hu.Status = models.HUStatusRejected
			hu.Feedback = a.Feedback
			hu.QAReviewer = a.Reviewer
			return hu
		})
	case PrependItem:
		s.Items = append([]models.HU{a.Item}, s.Items...)
	case ReplaceItem:
		s.Items = mapItems(s.Items, a.Item.ID, func(old models.HU) models.HU {
			return mergeRefetched(old, a.Item)
		})
	}
	return s
}

// mapItems returns a new slice with the matching item rewritten.
func mapItems(items []models.HU, id string, fn func(models.HU) models.HU) []models.HU {
	out := make([]models.HU, len(items))
	for i, hu := range items {
		if hu.ID == id {
			hu = fn(hu)
		}
		out[i] = hu
	}
	return out
}

func mergeRefetched(old, fetched models.HU) models.HU {
	if fetched.UpdatedAt.Before(old.UpdatedAt) {
		return old
	}
	if old.Status == models.HUStatusRejected && fetched.Status == models.HUStatusPending {
		fetched.Feedback = ""
		if fetched.Refinements <= old.Refinements {
			fetched.Refinements = old.Refinements + 1
		}
	}
	return fetched
}

// Item looks up a queue entry by id.
func (s ReviewState) Item(id string) (models.HU, bool) {
	for _, hu := range s.Items {
		if hu.ID == id {
			return hu, true
		}
	}
	return models.HU{}, false
}

// Current returns the item selected for review, if any.
func (s ReviewState) Current() (models.HU, bool) {
	if s.CurrentID == "" {
		return models.HU{}, false
	}
	return s.Item(s.CurrentID)
}
