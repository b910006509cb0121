// Package filter derives a filtered view of the review queue. Apply is a
// pure function of (items, options): conjunctive matching, order-preserving,
// idempotent.
package filter

import (
	"strings"

	"github.com/dmorales/huq/internal/models"
)

// Apply returns the items matching every specified filter, in source order.
func Apply(items []models.HU, opts models.FilterOptions) []models.HU {
	out := make([]models.HU, 0, len(items))
	for _, hu := range items {
		if Matches(hu, opts) {
			out = append(out, hu)
		}
	}
	return out
}

// Matches reports whether a single item passes all filters.
func Matches(hu models.HU, opts models.FilterOptions) bool {
	if s := strings.ToLower(strings.TrimSpace(opts.Search)); s != "" {
		if !strings.Contains(strings.ToLower(hu.Title), s) &&
			!strings.Contains(strings.ToLower(hu.OriginalID), s) &&
			!strings.Contains(strings.ToLower(hu.Content), s) {
			return false
		}
	}
	if !matchExact(opts.Module, hu.Module) {
		return false
	}
	if !matchExact(opts.Feature, hu.Feature) {
		return false
	}
	if !matchExact(opts.Status, string(hu.Status)) {
		return false
	}
	return true
}

func matchExact(want, got string) bool {
	return want == "" || want == models.FilterAll || want == got
}

// Counts summarizes the queue by status plus the filtered size.
type Counts struct {
	Total    int
	Pending  int
	Accepted int
	Rejected int
	Filtered int
}

// Count tallies the full collection and how many survive the given filters.
func Count(items []models.HU, opts models.FilterOptions) Counts {
	c := Counts{Total: len(items)}
	for _, hu := range items {
		switch hu.Status {
		case models.HUStatusPending:
			c.Pending++
		case models.HUStatusAccepted:
			c.Accepted++
		case models.HUStatusRejected:
			c.Rejected++
		}
		if Matches(hu, opts) {
			c.Filtered++
		}
	}
	return c
}

// Modules returns the distinct module labels in first-seen order, for
// building filter choices.
func Modules(items []models.HU) []string {
	return distinct(items, func(hu models.HU) string { return hu.Module })
}

// Features returns the distinct feature labels in first-seen order.
func Features(items []models.HU) []string {
	return distinct(items, func(hu models.HU) string { return hu.Feature })
}

func distinct(items []models.HU, key func(models.HU) string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, hu := range items {
		k := key(hu)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
