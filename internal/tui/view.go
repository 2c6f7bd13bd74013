package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// contentWidth returns the available content width.
func (m *Model) contentWidth() int {
	w := m.width - appPadding
	if w < 0 {
		w = 0
	}
	return w
}

// View renders the browser.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("confcache: " + m.key))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render(m.subtitle()))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.styles.Loading.Render("Rehydrating..."))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
	case m.output != nil && m.output.Rejected:
		b.WriteString(m.viewRejected())
	default:
		b.WriteString(m.viewRows())
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))

	return lipgloss.NewStyle().Padding(0, appPadding/2).Render(b.String())
}

func (m *Model) subtitle() string {
	if m.output == nil || m.output.Summary == nil {
		return "build tree"
	}
	s := m.output.Summary
	parts := []string{
		fmt.Sprintf("%d projects", s.CountProjects()),
		fmt.Sprintf("%d included builds", len(s.IncludedBuilds)),
		fmt.Sprintf("%d scheduled", len(s.ScheduledWork)),
	}
	if s.PortalOverridden {
		parts = append(parts, "portal override")
	}
	return strings.Join(parts, " | ")
}

func (m *Model) viewRejected() string {
	var b strings.Builder
	b.WriteString(m.styles.Warning.Render("Entry rejected, a full configuration is required."))
	if m.output.Reason != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Detail.Render(m.output.Reason.Error()))
	}
	if m.output.Discarded {
		b.WriteString("\n")
		b.WriteString(m.styles.Detail.Render("The entry was discarded."))
	}
	return b.String()
}

func (m *Model) viewRows() string {
	if len(m.rows) == 0 {
		return m.styles.Detail.Render("No builds.")
	}

	start, end := m.visibleRange()
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

// visibleRange returns the window of rows that keeps the cursor on screen.
func (m *Model) visibleRange() (int, int) {
	// title, subtitle, margins and help
	height := m.height - 6
	if height <= 0 || height >= len(m.rows) {
		return 0, len(m.rows)
	}
	start := m.cursor - height/2
	if start < 0 {
		start = 0
	}
	end := start + height
	if end > len(m.rows) {
		end = len(m.rows)
		start = end - height
	}
	return start, end
}

func (m *Model) renderRow(i int) string {
	r := m.rows[i]
	indent := strings.Repeat("  ", r.Depth)

	var label string
	switch r.Kind {
	case RowBuild:
		marker := "▾"
		if r.Folded {
			marker = "▸"
		}
		label = fmt.Sprintf("%s %s %s", marker, m.styles.Build.Render(r.Label), StageStyle(r.Stage).Render(string(r.Stage)))
	case RowWork:
		label = m.styles.Work.Render("• " + r.Label)
	default:
		label = m.styles.Project.Render(r.Label)
	}

	line := indent + label
	if r.Detail != "" {
		line += "  " + m.styles.Detail.Render(r.Detail)
	}
	if w := m.contentWidth(); w > 0 {
		line = truncate.StringWithTail(line, uint(w), "…")
	}

	if i == m.cursor {
		return m.styles.Selected.Render("> ") + line
	}
	return "  " + line
}
