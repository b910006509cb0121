package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/huq/internal/models"
)

func queue() []models.HU {
	return []models.HU{
		{ID: "1", Status: models.HUStatusPending, Title: "Login", OriginalID: "HU-10", Module: "Auth", Feature: "Login", Content: "User can log in"},
		{ID: "2", Status: models.HUStatusAccepted, Title: "Cart totals", OriginalID: "HU-11", Module: "Orders", Feature: "Checkout", Content: "Cart sums line items"},
		{ID: "3", Status: models.HUStatusRejected, Title: "Password reset", OriginalID: "HU-12", Module: "Auth", Feature: "Recovery", Content: "Reset flow via email"},
	}
}

func TestSearchMatchesTitleIDAndContent(t *testing.T) {
	items := queue()

	// Title match is case-insensitive.
	got := Apply(items, models.FilterOptions{Search: "log", Module: "all", Feature: "all", Status: "all"})
	require.NotEmpty(t, got)
	assert.Equal(t, "1", got[0].ID)

	// OriginalID match.
	got = Apply(items, models.FilterOptions{Search: "hu-11"})
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)

	// Content match.
	got = Apply(items, models.FilterOptions{Search: "via email"})
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestEmptySearchMatchesEverything(t *testing.T) {
	assert.Len(t, Apply(queue(), models.FilterOptions{}), 3)
}

func TestConjunctiveFilters(t *testing.T) {
	got := Apply(queue(), models.FilterOptions{Module: "Auth", Status: "rejected"})
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	got = Apply(queue(), models.FilterOptions{Module: "Auth", Feature: "Checkout"})
	assert.Empty(t, got)
}

func TestAllSentinelDisablesFilter(t *testing.T) {
	got := Apply(queue(), models.FilterOptions{Module: models.FilterAll, Feature: models.FilterAll, Status: models.FilterAll})
	assert.Len(t, got, 3)
}

func TestApplyIsIdempotent(t *testing.T) {
	opts := models.FilterOptions{Search: "a", Module: "Auth"}
	once := Apply(queue(), opts)
	twice := Apply(once, opts)
	assert.Equal(t, once, twice)
}

func TestApplyPreservesOrder(t *testing.T) {
	got := Apply(queue(), models.FilterOptions{Module: "Auth"})
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestCount(t *testing.T) {
	c := Count(queue(), models.FilterOptions{Status: "pending"})
	assert.Equal(t, Counts{Total: 3, Pending: 1, Accepted: 1, Rejected: 1, Filtered: 1}, c)
}

func TestDistinctLabels(t *testing.T) {
	assert.Equal(t, []string{"Auth", "Orders"}, Modules(queue()))
	assert.Equal(t, []string{"Login", "Checkout", "Recovery"}, Features(queue()))
}
