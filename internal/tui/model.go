// Package tui is the terminal front end: a note list with search, an editor
// and the AI tools panel.
package tui

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/models"
	"github.com/starford/lumina/internal/notes"
)

type focus int

const (
	focusList focus = iota
	focusSearch
	focusTitle
	focusBody
	focusAI
)

// aiPanel holds the state of the AI tools panel. seq identifies the latest
// request; replies carrying an older seq are dropped.
type aiPanel struct {
	open     bool
	cursor   int
	loading  bool
	seq      int
	noteID   string
	action   ai.Action
	result   string
	rendered string
}

// ── Messages ──────────────────────────────────────────────────────────────────

type transformDoneMsg struct {
	seq    int
	noteID string
	action ai.Action
	text   string
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The terminal belongs to the UI, so it should
// not write to stdout or stderr.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces time.Now for edit timestamps and relative ages.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// Model is the Bubble Tea model.
type Model struct {
	ctx         context.Context
	store       *notes.Store
	transformer ai.Transformer
	logger      *slog.Logger
	now         func() time.Time

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	search textinput.Model
	title  textinput.Model
	body   textarea.Model

	width  int
	height int
	focus  focus

	list     []models.Note
	cursor   int
	editorID string

	confirmID string
	ai        aiPanel

	status    string
	statusErr bool
}

// New builds a model over an initialized store.
func New(ctx context.Context, store *notes.Store, transformer ai.Transformer, opts ...Option) *Model {
	si := textinput.New()
	si.Placeholder = "Search notes..."
	si.Prompt = "/ "
	si.CharLimit = 200

	ti := textinput.New()
	ti.Placeholder = "Note title"
	ti.Prompt = ""
	ti.CharLimit = 300

	ta := textarea.New()
	ta.Placeholder = "Start writing..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Prompt = ""

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleAILabel))

	m := &Model{
		ctx:         ctx,
		store:       store,
		transformer: transformer,
		logger:      slog.Default(),
		now:         time.Now,
		keys:        defaultKeys(),
		help:        help.New(),
		spinner:     sp,
		search:      si,
		title:       ti,
		body:        ta,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refresh()
	m.syncEditor()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// ── Commands ──────────────────────────────────────────────────────────────────

func (m *Model) cmdTransform(seq int, noteID, content string, action ai.Action) tea.Cmd {
	ctx, t := m.ctx, m.transformer
	return func() tea.Msg {
		return transformDoneMsg{
			seq:    seq,
			noteID: noteID,
			action: action,
			text:   t.Transform(ctx, content, action),
		}
	}
}

// ── State helpers ─────────────────────────────────────────────────────────────

// refresh recomputes the visible list and the cursor from the store.
func (m *Model) refresh() {
	m.list = m.store.Filter(m.search.Value())
	active := m.store.ActiveID()
	m.cursor = slices.IndexFunc(m.list, func(n models.Note) bool { return n.ID == active })
}

// syncEditor loads the active note into the editor when it changed.
func (m *Model) syncEditor() {
	note, ok := m.store.Active()
	if !ok {
		m.editorID = ""
		m.title.SetValue("")
		m.body.SetValue("")
		if m.focus == focusTitle || m.focus == focusBody || m.focus == focusAI {
			m.setFocus(focusList)
		}
		return
	}
	if note.ID == m.editorID {
		return
	}
	m.editorID = note.ID
	m.title.SetValue(note.Title)
	m.body.SetValue(note.Content)
}

// reloadEditor forces the editor to re-read the active note.
func (m *Model) reloadEditor() {
	m.editorID = ""
	m.syncEditor()
}

// resetAI hides the panel and forgets any pending or held result.
func (m *Model) resetAI() {
	m.ai.seq++
	m.ai.open = false
	m.ai.loading = false
	m.ai.noteID = ""
	m.ai.result = ""
	m.ai.rendered = ""
	if m.focus == focusAI {
		m.setFocus(focusList)
	}
}

// settle is called after any store mutation or selection change.
func (m *Model) settle(prevActive string) {
	if m.store.ActiveID() != prevActive {
		m.resetAI()
	}
	m.refresh()
	m.syncEditor()
}

func (m *Model) selectNote(id string) {
	prev := m.store.ActiveID()
	if id == prev {
		return
	}
	m.store.Select(id)
	m.settle(prev)
}

func (m *Model) setFocus(f focus) tea.Cmd {
	if (f == focusTitle || f == focusBody || f == focusAI) && m.editorID == "" {
		f = focusList
	}
	if f == focusAI && !m.ai.open {
		f = focusBody
	}
	m.focus = f
	m.search.Blur()
	m.title.Blur()
	m.body.Blur()
	switch f {
	case focusSearch:
		return m.search.Focus()
	case focusTitle:
		return m.title.Focus()
	case focusBody:
		return m.body.Focus()
	}
	return nil
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *Model) stamp() *int64 {
	ts := m.now().UnixMilli()
	return &ts
}

func (m *Model) resize() {
	editorW := m.width - sidebarWidth - 4
	if editorW < 20 {
		editorW = 20
	}
	bodyH := m.height - 8
	if m.ai.open {
		bodyH -= aiPanelLines
	}
	if bodyH < 3 {
		bodyH = 3
	}
	m.title.Width = editorW - 2
	m.search.Width = sidebarWidth - 6
	m.body.SetWidth(editorW - 2)
	m.body.SetHeight(bodyH)
	m.help.Width = m.width
}
