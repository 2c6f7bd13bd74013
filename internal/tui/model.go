// Package tui provides an interactive browser for rehydrated builds.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/confcache/internal/usecase"
)

const (
	appPadding = 4
	pageSize   = 10
)

// EntryLoader rehydrates a stored entry. *usecase.LoadEntry satisfies it.
type EntryLoader interface {
	Execute(ctx context.Context, in usecase.LoadEntryInput) (*usecase.LoadEntryOutput, error)
}

// Model is the build browser model.
// Fields are ordered to minimize memory padding.
type Model struct {
	// Dependencies
	loader EntryLoader

	// State
	output *usecase.LoadEntryOutput
	err    error
	folded map[string]bool
	rows   []Row
	key    string

	// Components
	keys   KeyMap
	styles Styles
	help   help.Model

	// Numeric state
	cursor int
	width  int
	height int

	// Boolean state
	loading bool
}

// New creates a browser for the entry stored under entryKey.
func New(loader EntryLoader, entryKey string) *Model {
	return &Model{
		loader:  loader,
		key:     entryKey,
		folded:  make(map[string]bool),
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		help:    help.New(),
		loading: true,
	}
}

// Init starts loading the entry.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// load returns a command that rehydrates the entry.
func (m *Model) load() tea.Cmd {
	loader, entryKey := m.loader, m.key
	return func() tea.Msg {
		out, err := loader.Execute(context.Background(), usecase.LoadEntryInput{Key: entryKey})
		return MsgEntryLoaded{Output: out, Err: err}
	}
}

// Rows returns the visible rows.
func (m *Model) Rows() []Row {
	return m.rows
}

// Cursor returns the index of the selected row.
func (m *Model) Cursor() int {
	return m.cursor
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case MsgEntryLoaded:
		m.loading = false
		m.err = msg.Err
		m.output = msg.Output
		m.refreshRows()
		return m, nil
	}

	return m, nil
}

// handleKey handles key events.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.load()
	}

	if len(m.rows) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-pageSize)
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(pageSize)
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.rows) - 1
	case key.Matches(msg, m.keys.Toggle):
		m.setFolded(!m.rows[m.cursor].Folded)
	case key.Matches(msg, m.keys.Expand):
		m.setFolded(false)
	case key.Matches(msg, m.keys.Collapse):
		m.setFolded(true)
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// setFolded folds or unfolds the build owning the selected row and moves
// the cursor onto that build's row.
func (m *Model) setFolded(fold bool) {
	build := m.rows[m.cursor].Build
	if fold {
		m.folded[build] = true
	} else {
		delete(m.folded, build)
	}
	m.refreshRows()
	for i, r := range m.rows {
		if r.Kind == RowBuild && r.Build == build {
			m.cursor = i
			return
		}
	}
}

func (m *Model) refreshRows() {
	m.rows = nil
	if m.output != nil {
		m.rows = Flatten(m.output.Summary, m.folded)
	}
	m.moveCursor(0)
}
