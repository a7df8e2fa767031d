package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/models"
	"github.com/starford/lumina/internal/notes"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	if m.confirmID != "" {
		return m.viewConfirmDelete()
	}

	header := styleBrand.Render("Lumina Notes") +
		styleDivider.Render("  ·  ") +
		styleSubtitle.Render(fmt.Sprintf("%d notes", m.store.Len()))

	main := lipgloss.JoinHorizontal(lipgloss.Top, m.viewSidebar(), m.viewEditor())

	return lipgloss.JoinVertical(lipgloss.Left, header, main, m.viewFooter())
}

func (m *Model) paneStyle(focused bool) lipgloss.Style {
	if focused {
		return stylePaneFocused
	}
	return stylePane
}

func (m *Model) viewSidebar() string {
	var b strings.Builder
	b.WriteString(m.search.View() + "\n")
	b.WriteString(styleDivider.Render(strings.Repeat("─", sidebarWidth-4)) + "\n")

	listH := (m.height - 8) / 2
	if listH < 1 {
		listH = 1
	}
	if len(m.list) == 0 {
		if m.search.Value() != "" {
			b.WriteString(styleSubtitle.Render("No matching notes"))
		} else {
			b.WriteString(styleSubtitle.Render("No notes yet.\nPress ctrl+n to create one."))
		}
	}

	start := 0
	if m.cursor >= listH {
		start = m.cursor - listH + 1
	}
	end := min(start+listH, len(m.list))
	for i := start; i < end; i++ {
		n := m.list[i]
		age := humanTime(m.now(), n.UpdatedAt)
		title := truncate(n.DisplayTitle(), sidebarWidth-len(age)-8)
		pad := strings.Repeat(" ", max(1, sidebarWidth-6-len([]rune(title))-len(age)))
		line := title + pad + styleItemDim.Render(age)
		if i == m.cursor {
			b.WriteString(styleItemSelected.Render("▸ "+title) + pad + styleItemDim.Render(age) + "\n")
		} else {
			b.WriteString("  " + styleItem.Render(line) + "\n")
		}
		b.WriteString("  " + styleItemDim.Render(preview(n.Content, sidebarWidth-8)) + "\n")
	}

	h := m.height - 5
	if h < 3 {
		h = 3
	}
	return m.paneStyle(m.focus == focusList || m.focus == focusSearch).
		Width(sidebarWidth - 2).
		Height(h).
		Render(b.String())
}

func (m *Model) viewEditor() string {
	w := m.width - sidebarWidth - 2
	if w < 22 {
		w = 22
	}
	h := m.height - 5
	if h < 3 {
		h = 3
	}

	if m.editorID == "" {
		empty := lipgloss.Place(w-2, h, lipgloss.Center, lipgloss.Center,
			styleSubtitle.Render("Select a note or create a new one"))
		return stylePane.Width(w - 2).Height(h).Render(empty)
	}

	var b strings.Builder
	title := m.title.View()
	if m.title.Value() == "" && m.focus != focusTitle {
		title = styleItemDim.Render(models.UntitledTitle)
	}
	b.WriteString(title + "\n")
	b.WriteString(styleDivider.Render(strings.Repeat("─", w-4)) + "\n")
	b.WriteString(m.body.View())

	editor := m.paneStyle(m.focus == focusTitle || m.focus == focusBody).
		Width(w - 2).
		Render(b.String())
	if !m.ai.open {
		return editor
	}
	return lipgloss.JoinVertical(lipgloss.Left, editor, m.viewAIPanel(w))
}

func (m *Model) viewAIPanel(w int) string {
	var b strings.Builder
	b.WriteString(styleAILabel.Render("✨ AI Tools") + "\n")

	switch {
	case m.ai.loading:
		b.WriteString(m.spinner.View() + styleSubtitle.Render(" Thinking ("+m.ai.action.Label()+")..."))

	case m.ai.result != "":
		body := m.ai.rendered
		if body == "" {
			body = m.ai.result
		}
		if ai.IsFallback(m.ai.result) {
			body = styleError.Render(m.ai.result)
		}
		lines := strings.Split(body, "\n")
		if limit := aiPanelLines - 4; len(lines) > limit {
			lines = append(lines[:limit], styleSubtitle.Render("…"))
		}
		b.WriteString(strings.Join(lines, "\n"))

	default:
		for i, a := range ai.Actions() {
			if i == m.ai.cursor {
				b.WriteString(styleActionOn.Render("▸ "+a.Label()) + "\n")
			} else {
				b.WriteString(styleAction.Render(a.Label()) + "\n")
			}
		}
	}

	return m.paneStyle(m.focus == focusAI).
		Width(w - 2).
		Height(aiPanelLines - 2).
		Render(b.String())
}

func (m *Model) viewConfirmDelete() string {
	note, _ := m.store.Get(m.confirmID)
	dialog := styleDialog.Render(
		styleBrand.Render(notes.DeletePrompt) + "\n\n" +
			styleItem.Render(note.DisplayTitle()) + "\n\n" +
			m.help.ShortHelpView([]key.Binding{m.keys.Yes, m.keys.No}),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
}

func (m *Model) viewFooter() string {
	if m.status != "" {
		sty := styleSuccess
		if m.statusErr {
			sty = styleError
		}
		return sty.Render(" " + m.status)
	}
	return " " + m.help.ShortHelpView(m.hints())
}

// humanTime renders the age of a millisecond timestamp relative to now.
func humanTime(now time.Time, ms int64) string {
	t := time.UnixMilli(ms)
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// preview returns the first non-empty line of a note body.
func preview(body string, maxW int) string {
	for _, line := range strings.Split(body, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			return truncate(l, maxW)
		}
	}
	return "No content"
}
