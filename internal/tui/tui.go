// Package tui is the interactive review screen: a filterable pending queue,
// the rendered refined specification, and the approve/reject flow, all
// driven through the same workflow controller as the CLI commands.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmorales/huq/internal/state"
	"github.com/dmorales/huq/internal/workflow"
)

// Run starts the review TUI and blocks until the user quits.
func Run(ctrl *workflow.Controller, store *state.Store, reviewer string) error {
	m := newAppModel(ctrl, store, reviewer)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
