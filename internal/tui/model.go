// Package tui is the full-screen terminal front-end for the message core.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/service"
	"github.com/clippy-oss/homie/portal-messages/internal/view"
)

type focus int

const (
	focusList focus = iota
	focusSearch
	focusCompose
)

type eventMsg struct {
	evt domain.Event
}

type eventsClosedMsg struct{}

// Model is the TUI state following the Elm architecture. The store is the
// source of truth: View re-reads it, so bus events only trigger a redraw.
type Model struct {
	svc      *service.MessageService
	inbox    *view.Inbox
	composer *view.Composer
	events   <-chan domain.Event

	focus       focus
	cursor      int
	replyCursor int

	search  textinput.Model
	compose textinput.Model

	width  int
	height int

	flash string
	err   error
}

func New(svc *service.MessageService) Model {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "conversation name"
	search.CharLimit = 64

	compose := textinput.New()
	compose.Prompt = "> "
	compose.Placeholder = "Type a message..."
	compose.CharLimit = 1000

	return Model{
		svc:         svc,
		inbox:       view.NewInbox(svc),
		composer:    view.NewComposer(svc),
		events:      svc.GetEventBus().Subscribe(nil),
		replyCursor: -1,
		search:      search,
		compose:     compose,
	}
}

// Run drives the TUI on the given terminal streams until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, svc *service.MessageService, in io.Reader, out io.Writer) error {
	m := New(svc)
	defer svc.GetEventBus().Unsubscribe(m.events)

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run tui")
	}
	return nil
}

func waitForEvent(ch <-chan domain.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{evt: evt}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.compose.Width = max(10, msg.Width-listWidth-8)
		return m, nil
	case eventMsg:
		m.clampCursor()
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.flash = ""
		m.err = nil
		switch m.focus {
		case focusSearch:
			return m.handleSearchKey(msg)
		case focusCompose:
			return m.handleComposeKey(msg)
		default:
			return m.handleListKey(msg)
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	case focusCompose:
		m.compose, cmd = m.compose.Update(msg)
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "tab":
		m.shiftTab(1)
	case "shift+tab":
		m.shiftTab(-1)
	case "/":
		m.focus = focusSearch
		return m, m.search.Focus()
	case "a":
		if m.inbox.ToggleArchived() {
			m.flash = "Showing archived conversations"
		}
		m.cursor = 0
	case "enter":
		return m.openAtCursor()
	case "i":
		if _, ok := m.inbox.SelectedID(); ok {
			m.focus = focusCompose
			return m, m.compose.Focus()
		}
	case "esc":
		m.closeConversation()
	case "p":
		if c := m.conversationAtCursor(); c != nil {
			_, m.err = m.svc.SetPinned(c.ID, !c.IsPinned)
		}
	case "x":
		if c := m.conversationAtCursor(); c != nil {
			if _, m.err = m.svc.SetArchived(c.ID, !c.IsArchived); m.err == nil {
				if id, ok := m.inbox.SelectedID(); ok && id == c.ID {
					m.closeConversation()
				}
			}
		}
	case "[":
		m.replyCursor--
	case "]":
		m.replyCursor++
	case "e":
		return m.startEdit()
	}
	m.clampCursor()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Reset()
		m.inbox.SetSearch("")
		fallthrough
	case "enter":
		m.search.Blur()
		m.focus = focusList
		m.cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.inbox.SetSearch(m.search.Value())
	m.cursor = 0
	return m, cmd
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	_, editing := m.composer.ActiveEdit()

	switch msg.String() {
	case "esc":
		if editing {
			m.composer.CancelEdit()
			m.compose.Reset()
			m.compose.SetValue(m.composer.Draft())
			return m, nil
		}
		m.compose.Blur()
		m.focus = focusList
		return m, nil
	case "enter":
		if editing {
			return m.saveEdit()
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	if editing {
		m.composer.UpdateEdit(m.compose.Value())
	} else {
		m.composer.SetDraft(m.compose.Value())
	}
	return m, cmd
}

func (m Model) openAtCursor() (tea.Model, tea.Cmd) {
	c := m.conversationAtCursor()
	if c == nil {
		return m, nil
	}

	opened, err := m.inbox.Open(c.ID)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.composer.Attach(opened.ID)
	m.compose.Reset()
	m.compose.SetValue(m.composer.Draft())
	m.replyCursor = len(opened.Replies) - 1
	m.focus = focusCompose
	return m, m.compose.Focus()
}

func (m *Model) closeConversation() {
	m.inbox.Close()
	m.composer.Attach(0)
	m.compose.Reset()
	m.replyCursor = -1
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.compose.Value()
	m.composer.SetDraft(text)

	_, sent, err := m.composer.Submit(text)
	if err != nil {
		m.err = err
		return m, nil
	}
	if sent {
		m.compose.Reset()
		if c, ok := m.inbox.Selected(); ok {
			m.replyCursor = len(c.Replies) - 1
		}
	}
	return m, nil
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	c, ok := m.inbox.Selected()
	if !ok || m.replyCursor < 0 || m.replyCursor >= len(c.Replies) {
		return m, nil
	}

	slot, err := m.composer.StartEdit(c.Replies[m.replyCursor].ID)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.compose.SetValue(slot.Text)
	m.compose.CursorEnd()
	m.focus = focusCompose
	return m, m.compose.Focus()
}

func (m Model) saveEdit() (tea.Model, tea.Cmd) {
	_, saved, err := m.composer.SaveEdit(m.compose.Value())
	if err != nil {
		m.err = err
		return m, nil
	}
	if saved {
		m.flash = "Reply edited"
		m.compose.Reset()
		m.compose.SetValue(m.composer.Draft())
	}
	return m, nil
}

func (m *Model) shiftTab(step int) {
	current := m.inbox.Query().Tab
	idx := 0
	for i, t := range view.Tabs {
		if t == current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(view.Tabs)) % len(view.Tabs)
	m.inbox.SetTab(view.Tabs[idx])
	m.cursor = 0
}

func (m Model) conversationAtCursor() *domain.Conversation {
	visible := m.inbox.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return nil
	}
	return visible[m.cursor]
}

func (m *Model) clampCursor() {
	n := len(m.inbox.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	c, ok := m.inbox.Selected()
	if !ok {
		m.replyCursor = -1
		return
	}
	if m.replyCursor >= len(c.Replies) {
		m.replyCursor = len(c.Replies) - 1
	}
	if m.replyCursor < 0 && len(c.Replies) > 0 {
		m.replyCursor = 0
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Messages"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	if m.focus == focusSearch || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		listPaneStyle.Render(m.renderList()),
		threadPaneStyle.Render(m.renderThread()),
	)
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTabs() string {
	q := m.inbox.Query()
	tabs := make([]string, 0, len(view.Tabs)+1)
	for _, t := range view.Tabs {
		if t == q.Tab {
			tabs = append(tabs, activeTabStyle.Render(t.Title()))
		} else {
			tabs = append(tabs, tabStyle.Render(t.Title()))
		}
	}
	if q.ShowArchived {
		tabs = append(tabs, badgeStyle.Render("[Archived]"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderList() string {
	visible := m.inbox.Visible()
	if len(visible) == 0 {
		return mutedStyle.Render("No conversations")
	}

	now := m.svc.Now()
	openID, _ := m.inbox.SelectedID()
	var b strings.Builder
	for i, c := range visible {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}

		name := c.DisplayName
		if c.ID == openID {
			name = cursorStyle.Render(name)
		} else {
			name = nameStyle.Render(name)
		}

		line := marker + name
		if c.IsPinned {
			line += mutedStyle.Render(" (pinned)")
		}
		if c.UnreadCount > 0 {
			line += badgeStyle.Render(fmt.Sprintf(" (%d)", c.UnreadCount))
		}
		if label := domain.RelativeTime(c.ReceivedAt, now); label != "" {
			line += mutedStyle.Render("  " + label)
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString("  ")
		b.WriteString(mutedStyle.Render(domain.Truncate(c.Preview(), listWidth-4)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderThread() string {
	c, ok := m.inbox.Selected()
	if !ok {
		return mutedStyle.Render("Select a conversation to start messaging")
	}

	var b strings.Builder
	b.WriteString(nameStyle.Render(c.DisplayName))
	b.WriteString(mutedStyle.Render(" · " + string(c.Kind)))
	b.WriteString("\n")
	if len(c.Participants) > 0 {
		b.WriteString(mutedStyle.Render(strings.Join(c.Participants, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if c.OpeningMessage != "" {
		b.WriteString(incomingStyle.Render(c.OpeningMessage))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(c.ReceivedAt.Format("15:04")))
		b.WriteString("\n")
	}

	edit, editing := m.composer.ActiveEdit()
	for i, r := range c.Replies {
		style := outgoingStyle
		if i == m.replyCursor {
			style = focusedStyle
		}
		meta := r.CreatedAt.Format("15:04") + " " + renderTick(r.Status)
		if r.Edited() {
			meta += mutedStyle.Render(" edited")
		}
		if editing && edit.ReplyID == r.ID {
			meta += badgeStyle.Render(" editing")
		}
		b.WriteString(style.Render(r.Text))
		b.WriteString("\n")
		b.WriteString(meta)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if editing {
		b.WriteString(badgeStyle.Render("Edit message (enter to save, esc to cancel)"))
		b.WriteString("\n")
	}
	b.WriteString(m.compose.View())
	return b.String()
}

func (m Model) renderFooter() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.flash != "" {
		b.WriteString(mutedStyle.Render(m.flash))
		b.WriteString("\n")
	}

	var help string
	switch m.focus {
	case focusSearch:
		help = "type to filter · enter keep · esc clear"
	case focusCompose:
		help = "enter send · esc back"
	default:
		help = "↑/↓ move · enter open · tab switch tab · / search · a archived · p pin · x archive · [ ] pick reply · e edit · i compose · q quit"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func renderTick(status domain.ReplyStatus) string {
	if status == domain.ReplyStatusRead {
		return readTickStyle.Render(status.Glyph())
	}
	return sentTickStyle.Render(status.Glyph())
}
