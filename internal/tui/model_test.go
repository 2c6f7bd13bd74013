package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	out   *usecase.LoadEntryOutput
	err   error
	calls int
}

func (f *fakeLoader) Execute(_ context.Context, _ usecase.LoadEntryInput) (*usecase.LoadEntryOutput, error) {
	f.calls++
	return f.out, f.err
}

func sampleSummary() *domain.BuildSummary {
	return &domain.BuildSummary{
		IdentityPath:  ":",
		RootProject:   "app",
		ScopeAncestry: []string{"core", "core+plugins", "root-build"},
		Stage:         domain.StageScheduled,
		Projects: []domain.ProjectSummary{
			{Path: ":", IdentityPath: ":", Dir: "/src/app"},
			{Path: ":core", IdentityPath: ":core", Dir: "/src/app/core", Depth: 1, Repositories: []string{"https://repo.example/maven"}},
		},
		ScheduledWork: []string{":core:compile"},
		IncludedBuilds: []domain.BuildSummary{
			{
				IdentityPath: ":build-logic",
				RootProject:  "build-logic",
				Stage:        domain.StageConfigured,
				Projects: []domain.ProjectSummary{
					{Path: ":", IdentityPath: ":build-logic", Dir: "/src/app/build-logic"},
				},
			},
		},
	}
}

func loaded(t *testing.T, out *usecase.LoadEntryOutput) *Model {
	t.Helper()
	m := New(&fakeLoader{out: out}, "app")
	updated, _ := m.Update(MsgEntryLoaded{Output: out})
	model, ok := updated.(*Model)
	require.True(t, ok)
	return model
}

func press(t *testing.T, m *Model, msg tea.KeyMsg) *Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(*Model)
	require.True(t, ok)
	return model
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFlatten(t *testing.T) {
	rows := Flatten(sampleSummary(), nil)

	require.Len(t, rows, 6)
	assert.Equal(t, RowBuild, rows[0].Kind)
	assert.Equal(t, "app (root build)", rows[0].Label)
	assert.Equal(t, "core > core+plugins > root-build", rows[0].Detail)
	assert.Equal(t, RowProject, rows[1].Kind)
	assert.Equal(t, 1, rows[1].Depth)
	assert.Equal(t, 2, rows[2].Depth)
	assert.Contains(t, rows[2].Detail, "repos: https://repo.example/maven")
	assert.Equal(t, RowWork, rows[3].Kind)
	assert.Equal(t, RowBuild, rows[4].Kind)
	assert.Equal(t, ":build-logic (build-logic)", rows[4].Label)
	assert.Equal(t, ":build-logic", rows[5].Build)
}

func TestFlatten_Folded(t *testing.T) {
	rows := Flatten(sampleSummary(), map[string]bool{":build-logic": true})
	require.Len(t, rows, 5)
	assert.True(t, rows[4].Folded)

	rows = Flatten(sampleSummary(), map[string]bool{":": true})
	require.Len(t, rows, 1)

	assert.Nil(t, Flatten(nil, nil))
}

func TestModel_InitLoadsEntry(t *testing.T) {
	summary := sampleSummary()
	loader := &fakeLoader{out: &usecase.LoadEntryOutput{Key: "app", Summary: summary}}
	m := New(loader, "app")

	cmd := m.Init()
	require.NotNil(t, cmd)
	msg := cmd()

	loadedMsg, ok := msg.(MsgEntryLoaded)
	require.True(t, ok)
	assert.Equal(t, 1, loader.calls)
	assert.Same(t, summary, loadedMsg.Output.Summary)
}

func TestModel_Navigation(t *testing.T) {
	m := loaded(t, &usecase.LoadEntryOutput{Summary: sampleSummary()})
	assert.Equal(t, 0, m.Cursor())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, runes("j"))
	assert.Equal(t, 2, m.Cursor())

	m = press(t, m, runes("k"))
	assert.Equal(t, 1, m.Cursor())

	m = press(t, m, runes("G"))
	assert.Equal(t, len(m.Rows())-1, m.Cursor())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, len(m.Rows())-1, m.Cursor(), "cursor stays on the last row")

	m = press(t, m, runes("g"))
	assert.Equal(t, 0, m.Cursor())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_ToggleFoldsOwningBuild(t *testing.T) {
	m := loaded(t, &usecase.LoadEntryOutput{Summary: sampleSummary()})

	// Select the included build's project, then collapse.
	m = press(t, m, runes("G"))
	m = press(t, m, runes("h"))
	require.Len(t, m.Rows(), 5)
	assert.Equal(t, 4, m.Cursor())
	assert.True(t, m.Rows()[4].Folded)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, m.Rows(), 6)

	m = press(t, m, runes("g"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, m.Rows(), 1)
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_Reload(t *testing.T) {
	loader := &fakeLoader{out: &usecase.LoadEntryOutput{Summary: sampleSummary()}}
	m := New(loader, "app")
	updated, _ := m.Update(MsgEntryLoaded{Output: loader.out})
	m = updated.(*Model)

	updated, cmd := m.Update(runes("r"))
	m = updated.(*Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	_, cmd = m.Update(runes("r"))
	assert.Nil(t, cmd, "reload is ignored while loading")
}

func TestModel_Quit(t *testing.T) {
	m := loaded(t, &usecase.LoadEntryOutput{Summary: sampleSummary()})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_View(t *testing.T) {
	m := loaded(t, &usecase.LoadEntryOutput{Summary: sampleSummary()})
	m = press(t, m, runes("j"))
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(*Model)

	view := m.View()
	assert.Contains(t, view, "confcache: app")
	assert.Contains(t, view, "3 projects")
	assert.Contains(t, view, "app (root build)")
	assert.Contains(t, view, ":core:compile")
	assert.Contains(t, view, "> ")
}

func TestModel_ViewRejectedAndError(t *testing.T) {
	m := loaded(t, &usecase.LoadEntryOutput{
		Rejected:  true,
		Discarded: true,
		Reason:    errors.New("bad project path"),
	})
	view := m.View()
	assert.Contains(t, view, "Entry rejected")
	assert.Contains(t, view, "bad project path")
	assert.Contains(t, view, "discarded")
	assert.Empty(t, m.Rows())

	m = New(&fakeLoader{}, "missing")
	updated, _ := m.Update(MsgEntryLoaded{Err: domain.ErrEntryNotFound})
	m = updated.(*Model)
	assert.Contains(t, m.View(), "Error: ")

	m = press(t, m, runes("j"))
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_ViewLoading(t *testing.T) {
	m := New(&fakeLoader{}, "app")
	assert.Contains(t, m.View(), "Rehydrating...")
}
