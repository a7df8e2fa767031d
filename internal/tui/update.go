package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/models"
	"github.com/starford/lumina/internal/notes"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if m.ai.result != "" {
			m.ai.rendered = m.renderMarkdown(m.ai.result)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ai.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case transformDoneMsg:
		m.onTransformDone(msg)
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		if m.confirmID != "" {
			return m, m.updateConfirmDelete(msg)
		}
		if cmd, handled := m.updateGlobal(msg); handled {
			return m, cmd
		}
		switch m.focus {
		case focusList:
			return m, m.updateList(msg)
		case focusSearch:
			return m, m.updateSearch(msg)
		case focusTitle:
			return m, m.updateTitle(msg)
		case focusBody:
			return m, m.updateBody(msg)
		case focusAI:
			return m, m.updateAI(msg)
		}
	}
	return m, nil
}

// updateGlobal handles keys that work in every pane.
func (m *Model) updateGlobal(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.New):
		return m.newNote(), true
	case key.Matches(msg, m.keys.Delete):
		m.askDelete(m.store.ActiveID())
		return nil, true
	case key.Matches(msg, m.keys.AI):
		return m.toggleAI(), true
	case key.Matches(msg, m.keys.Next):
		return m.cycleFocus(1), true
	case key.Matches(msg, m.keys.Prev):
		return m.cycleFocus(-1), true
	}
	return nil, false
}

func (m *Model) cycleFocus(dir int) tea.Cmd {
	order := []focus{focusList, focusTitle, focusBody}
	if m.ai.open {
		order = append(order, focusAI)
	}
	if m.editorID == "" {
		order = []focus{focusList}
	}
	i := 0
	for j, f := range order {
		if f == m.focus {
			i = j
		}
	}
	next := order[(i+dir+len(order))%len(order)]
	return m.setFocus(next)
}

// ── List ──────────────────────────────────────────────────────────────────────

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ListQuit):
		return tea.Quit

	case key.Matches(msg, m.keys.Up):
		if len(m.list) > 0 {
			i := max(m.cursor-1, 0)
			m.selectNote(m.list[i].ID)
		}

	case key.Matches(msg, m.keys.Down):
		if len(m.list) > 0 {
			i := min(m.cursor+1, len(m.list)-1)
			m.selectNote(m.list[i].ID)
		}

	case key.Matches(msg, m.keys.Open):
		if m.cursor < 0 && len(m.list) > 0 {
			m.selectNote(m.list[0].ID)
		}
		return m.setFocus(focusBody)

	case key.Matches(msg, m.keys.Search):
		return m.setFocus(focusSearch)

	case key.Matches(msg, m.keys.ListDel):
		if m.cursor >= 0 {
			m.askDelete(m.list[m.cursor].ID)
		}
	}
	return nil
}

// ── Search ────────────────────────────────────────────────────────────────────

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.refresh()
		return m.setFocus(focusList)
	case "enter", "down":
		return m.setFocus(focusList)
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.refresh()
	}
	return cmd
}

// ── Editor ────────────────────────────────────────────────────────────────────

func (m *Model) updateTitle(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "down":
		return m.setFocus(focusBody)
	case "esc":
		return m.setFocus(focusList)
	}

	var cmd tea.Cmd
	before := m.title.Value()
	m.title, cmd = m.title.Update(msg)
	if v := m.title.Value(); v != before {
		m.edit(models.Patch{Title: &v})
	}
	return cmd
}

func (m *Model) updateBody(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		return m.setFocus(focusList)
	}

	var cmd tea.Cmd
	before := m.body.Value()
	m.body, cmd = m.body.Update(msg)
	if v := m.body.Value(); v != before {
		m.edit(models.Patch{Content: &v})
	}
	return cmd
}

// edit writes an editor change through to the store, stamped now.
func (m *Model) edit(p models.Patch) {
	if m.editorID == "" {
		return
	}
	p.UpdatedAt = m.stamp()
	if err := m.store.Update(m.editorID, p); err != nil {
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	m.refresh()
}

func (m *Model) newNote() tea.Cmd {
	prev := m.store.ActiveID()
	m.store.Create()
	m.search.SetValue("")
	m.settle(prev)
	return m.setFocus(focusTitle)
}

// ── Delete ────────────────────────────────────────────────────────────────────

func (m *Model) askDelete(id string) {
	if _, err := m.store.Get(id); err != nil {
		return
	}
	m.confirmID = id
}

func (m *Model) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Yes):
		id := m.confirmID
		m.confirmID = ""
		note, _ := m.store.Get(id)
		prev := m.store.ActiveID()
		deleted, err := m.store.Delete(id, notes.Always)
		if err != nil {
			m.setStatus("delete failed: "+err.Error(), true)
			return nil
		}
		if deleted {
			m.setStatus(fmt.Sprintf("Deleted %q", note.DisplayTitle()), false)
		}
		m.settle(prev)
	case key.Matches(msg, m.keys.No):
		m.confirmID = ""
	}
	return nil
}

// ── AI panel ──────────────────────────────────────────────────────────────────

func (m *Model) toggleAI() tea.Cmd {
	switch {
	case m.editorID == "":
		m.setStatus("Select or create a note first", true)
		return nil
	case !m.ai.open:
		m.ai.open = true
		m.resize()
		return m.setFocus(focusAI)
	case m.focus != focusAI:
		return m.setFocus(focusAI)
	default:
		m.ai.open = false
		m.resize()
		return m.setFocus(focusBody)
	}
}

func (m *Model) updateAI(msg tea.KeyMsg) tea.Cmd {
	actions := ai.Actions()
	holding := m.ai.result != "" && !m.ai.loading

	switch {
	case key.Matches(msg, m.keys.Back):
		return m.setFocus(focusBody)

	case holding && !ai.IsFallback(m.ai.result) && key.Matches(msg, m.keys.Accept):
		m.acceptResult()
		return m.setFocus(focusBody)

	case holding && key.Matches(msg, m.keys.Dismiss):
		m.ai.result = ""
		m.ai.rendered = ""
		m.ai.noteID = ""

	case key.Matches(msg, m.keys.Up):
		m.ai.cursor = (m.ai.cursor - 1 + len(actions)) % len(actions)

	case key.Matches(msg, m.keys.Down):
		m.ai.cursor = (m.ai.cursor + 1) % len(actions)

	case key.Matches(msg, m.keys.Run):
		if m.ai.loading {
			return nil
		}
		note, ok := m.store.Active()
		if !ok {
			return nil
		}
		m.ai.seq++
		m.ai.loading = true
		m.ai.noteID = note.ID
		m.ai.action = actions[m.ai.cursor]
		m.ai.result = ""
		m.ai.rendered = ""
		return tea.Batch(
			m.cmdTransform(m.ai.seq, note.ID, note.Content, m.ai.action),
			m.spinner.Tick,
		)
	}
	return nil
}

func (m *Model) onTransformDone(msg transformDoneMsg) {
	if msg.seq != m.ai.seq || msg.noteID != m.store.ActiveID() {
		m.logger.Debug("tui: dropping stale transform result",
			slog.String("note_id", msg.noteID),
			slog.String("action", string(msg.action)))
		return
	}
	m.ai.loading = false
	m.ai.result = msg.text
	m.ai.rendered = m.renderMarkdown(msg.text)
}

// acceptResult appends the held result to the note that requested it, if
// that note is still active.
func (m *Model) acceptResult() {
	id := m.ai.noteID
	result := m.ai.result
	m.ai.result = ""
	m.ai.rendered = ""
	m.ai.noteID = ""
	if ai.IsFallback(result) || id == "" || id != m.store.ActiveID() {
		return
	}
	if err := m.store.ApplyResult(id, result); err != nil {
		m.setStatus("apply failed: "+err.Error(), true)
		return
	}
	m.ai.open = false
	m.resize()
	m.refresh()
	m.reloadEditor()
	m.setStatus("Result added to note", false)
}

func (m *Model) renderMarkdown(text string) string {
	width := m.width - sidebarWidth - 10
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
