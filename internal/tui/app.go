package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmorales/huq/internal/models"
	"github.com/dmorales/huq/internal/output"
	"github.com/dmorales/huq/internal/state"
	"github.com/dmorales/huq/internal/workflow"
)

type view int

const (
	viewQueue view = iota
	viewDetail
	viewReject
)

// callTimeout bounds every backend call issued from the update loop.
const callTimeout = 90 * time.Second

type queueLoadedMsg struct{ err error }

type actionDoneMsg struct {
	id   string
	verb string
	err  error
}

type reRefinedMsg struct {
	hu  models.HU
	err error
}

type appModel struct {
	ctrl     *workflow.Controller
	store    *state.Store
	reviewer string

	width  int
	height int

	view view

	queue    list.Model
	content  viewport.Model
	feedback textarea.Model

	currentID string
	status    string
	rejectErr string
	loading   bool
}

func newAppModel(ctrl *workflow.Controller, store *state.Store, reviewer string) appModel {
	m := appModel{
		ctrl:     ctrl,
		store:    store,
		reviewer: reviewer,
		view:     viewQueue,
		loading:  true,
	}

	m.queue = newQueueList()
	m.content = viewport.New(0, 0)

	m.feedback = textarea.New()
	m.feedback.Placeholder = "What should the next refinement pass fix?"
	m.feedback.CharLimit = 0
	m.feedback.SetWidth(72)
	m.feedback.SetHeight(6)
	m.feedback.ShowLineNumbers = false

	return m
}

func (m appModel) Init() tea.Cmd { return m.loadQueue() }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case queueLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.refreshQueue()
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.verb, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("%s %s", msg.verb, m.originalID(msg.id))
		m.refreshQueue()
		if msg.verb == "rejected" {
			// Pick the re-refined content up in the background; the queue
			// stays usable meanwhile.
			m.view = viewQueue
			return m, m.awaitReRefinement(msg.id)
		}
		m.view = viewQueue
		return m, nil

	case reRefinedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%s is back in the queue (cycle %d)", msg.hu.OriginalID, msg.hu.Refinements)
		m.refreshQueue()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToActive(msg)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The feedback textarea owns almost every key while it is open.
	if m.view == viewReject {
		switch msg.String() {
		case "esc":
			m.view = viewDetail
			m.rejectErr = ""
			return m, nil
		case "ctrl+s":
			return m.submitRejection()
		}
		var cmd tea.Cmd
		m.feedback, cmd = m.feedback.Update(msg)
		return m, cmd
	}

	// Let the list's filter input swallow keys while filtering.
	if m.view == viewQueue && m.queue.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.queue, cmd = m.queue.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "r":
		m.loading = true
		m.status = ""
		return m, m.loadQueue()

	case "esc", "backspace":
		if m.view == viewDetail {
			m.view = viewQueue
			return m, nil
		}

	case "enter":
		if m.view == viewQueue {
			if it, ok := m.queue.SelectedItem().(huItem); ok {
				m.openDetail(it.hu)
			}
			return m, nil
		}

	case "a":
		if hu, ok := m.selected(); ok {
			return m, m.approve(hu.ID)
		}

	case "x":
		if hu, ok := m.selected(); ok {
			m.currentID = hu.ID
			m.store.Dispatch(state.SetCurrent{ID: hu.ID})
			m.feedback.Reset()
			m.rejectErr = ""
			m.view = viewReject
			return m, m.feedback.Focus()
		}
	}

	return m.routeToActive(msg)
}

func (m appModel) routeToActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewQueue:
		m.queue, cmd = m.queue.Update(msg)
	case viewDetail:
		m.content, cmd = m.content.Update(msg)
	case viewReject:
		m.feedback, cmd = m.feedback.Update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render(m.headerLine())

	var body string
	switch m.view {
	case viewQueue:
		if m.loading {
			body = "Loading the review queue..."
		} else {
			body = m.queue.View()
		}
	case viewDetail:
		body = m.content.View()
	case viewReject:
		body = m.rejectView()
	}

	footer := lipgloss.NewStyle().Faint(true).Render(m.footerLine())
	if m.status != "" {
		footer = m.status + "\n" + footer
	}
	return strings.Join([]string{header, body, footer}, "\n\n")
}

func (m appModel) headerLine() string {
	rs := m.store.Review()
	pending := 0
	for _, hu := range rs.Items {
		if hu.Status == models.HUStatusPending {
			pending++
		}
	}
	return fmt.Sprintf("huq review  Reviewer=%s  Pending=%d", m.reviewer, pending)
}

func (m appModel) footerLine() string {
	switch m.view {
	case viewDetail:
		return "a: approve  x: reject  esc: back  q: quit"
	case viewReject:
		return fmt.Sprintf("ctrl+s: submit (min %d chars)  esc: cancel", workflow.MinFeedbackLen)
	default:
		return "enter: open  a: approve  x: reject  /: filter  r: reload  q: quit"
	}
}

func (m appModel) rejectView() string {
	hu, _ := m.store.Review().Item(m.currentID)
	title := fmt.Sprintf("Reject %s — feedback for the next refinement pass", hu.OriginalID)
	parts := []string{lipgloss.NewStyle().Bold(true).Render(title), m.feedback.View()}
	if m.rejectErr != "" {
		parts = append(parts, rejectedStyle.Render(m.rejectErr))
	}
	return strings.Join(parts, "\n\n")
}

// selected returns the item the action keys operate on: the open detail item
// or the queue cursor.
func (m appModel) selected() (models.HU, bool) {
	if m.view == viewDetail {
		return m.store.Review().Item(m.currentID)
	}
	if it, ok := m.queue.SelectedItem().(huItem); ok {
		return it.hu, true
	}
	return models.HU{}, false
}

func (m *appModel) openDetail(hu models.HU) {
	m.currentID = hu.ID
	m.store.Dispatch(state.SetCurrent{ID: hu.ID})
	m.content.SetContent(output.Markdown(hu.Content, m.contentWidth()))
	m.content.GotoTop()
	m.view = viewDetail
}

func (m *appModel) refreshQueue() {
	curID := ""
	if it, ok := m.queue.SelectedItem().(huItem); ok {
		curID = it.hu.ID
	}
	var items []list.Item
	for _, hu := range m.store.Review().Items {
		if hu.Status == models.HUStatusPending {
			items = append(items, huItem{hu: hu})
		}
	}
	m.queue.SetItems(items)
	if curID != "" {
		for i, it := range items {
			if it.(huItem).hu.ID == curID {
				m.queue.Select(i)
				break
			}
		}
	}
}

func (m *appModel) resize() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.queue.SetSize(w, h)
	m.content.Width = w
	m.content.Height = h
	m.feedback.SetWidth(min(w-4, 100))
}

func (m appModel) contentWidth() int {
	if m.width > 0 && m.width < 100 {
		return m.width
	}
	return 100
}

func (m appModel) originalID(id string) string {
	if hu, ok := m.store.Review().Item(id); ok {
		return hu.OriginalID
	}
	return id
}

func (m appModel) submitRejection() (tea.Model, tea.Cmd) {
	feedback := strings.TrimSpace(m.feedback.Value())
	if len([]rune(feedback)) < workflow.MinFeedbackLen {
		m.rejectErr = fmt.Sprintf("feedback must be at least %d characters so the AI can improve the refinement", workflow.MinFeedbackLen)
		return m, nil
	}
	id := m.currentID
	return m, m.reject(id, feedback)
}

func (m appModel) loadQueue() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return queueLoadedMsg{err: ctrl.Load(ctx)}
	}
}

func (m appModel) approve(id string) tea.Cmd {
	ctrl, reviewer := m.ctrl, m.reviewer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return actionDoneMsg{id: id, verb: "approved", err: ctrl.Approve(ctx, id, reviewer)}
	}
}

func (m appModel) reject(id, feedback string) tea.Cmd {
	ctrl, reviewer := m.ctrl, m.reviewer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return actionDoneMsg{id: id, verb: "rejected", err: ctrl.Reject(ctx, id, feedback, reviewer)}
	}
}

func (m appModel) awaitReRefinement(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		hu, err := ctrl.AwaitReRefinement(ctx, id)
		return reRefinedMsg{hu: hu, err: err}
	}
}
