package models

import (
	"fmt"
	"strings"
	"time"
)

// HUStatus represents the review state of a refined HU.
type HUStatus string

const (
	HUStatusPending  HUStatus = "pending"
	HUStatusAccepted HUStatus = "accepted"
	HUStatusRejected HUStatus = "rejected"
)

// Valid reports whether s is one of the known review states.
func (s HUStatus) Valid() bool {
	switch s {
	case HUStatusPending, HUStatusAccepted, HUStatusRejected:
		return true
	}
	return false
}

// HU represents one externally-tracked work item ("historia de usuario")
// together with the backend's AI-refined specification for it.
type HU struct {
	ID          string
	OriginalID  string // external tracker reference, HU-<number>
	Title       string
	Status      HUStatus
	Module      string
	Feature     string
	Content     string // refined specification, markdown
	Feedback    string // set only while the item is rejected
	QAReviewer  string
	Refinements int    // re-refinement cycles observed
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ModuleColor returns the stable display color for the item's module label.
func (h *HU) ModuleColor() string { return LabelColor(h.Module) }

// FeatureColor returns the stable display color for the item's feature label.
func (h *HU) FeatureColor() string { return LabelColor(h.Feature) }

// ParseHUID extracts the numeric tracker id from user input. Accepts
// "HU-109", "hu109", or bare "109"; anything else is rejected.
func ParseHUID(input string) (string, error) {
	id := strings.TrimSpace(input)
	if len(id) >= 2 && strings.EqualFold(id[:2], "HU") {
		id = strings.TrimPrefix(id[2:], "-")
	}
	if id == "" {
		return "", fmt.Errorf("HU id is empty")
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("invalid HU id %q: expected a number like HU-109 or 109", input)
		}
	}
	return id, nil
}
