package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmorales/huq/internal/models"
)

var (
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	acceptedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	labelStyle    = lipgloss.NewStyle().Faint(true)
)

// huItem adapts an HU to the bubbles list.
type huItem struct {
	hu models.HU
}

func (i huItem) FilterValue() string {
	return i.hu.OriginalID + " " + i.hu.Title + " " + i.hu.Module + " " + i.hu.Feature
}

func (i huItem) Title() string {
	title := strings.TrimSpace(i.hu.Title)
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s  %s", i.hu.OriginalID, title)
}

func (i huItem) Description() string {
	parts := []string{labelStyle.Render(i.hu.Module)}
	if i.hu.Feature != "" && i.hu.Feature != i.hu.Module {
		parts = append(parts, labelStyle.Render(i.hu.Feature))
	}
	parts = append(parts, statusLabel(i.hu.Status))
	if i.hu.Refinements > 0 {
		parts = append(parts, labelStyle.Render(fmt.Sprintf("cycle %d", i.hu.Refinements)))
	}
	return strings.Join(parts, "  ")
}

func statusLabel(s models.HUStatus) string {
	switch s {
	case models.HUStatusAccepted:
		return acceptedStyle.Render(string(s))
	case models.HUStatusRejected:
		return rejectedStyle.Render(string(s))
	default:
		return pendingStyle.Render(string(s))
	}
}

func newQueueList() list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	// ESC means "back" here, never quit.
	l.KeyMap.Quit.SetKeys("q")
	return l
}
