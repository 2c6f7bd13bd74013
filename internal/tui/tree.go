package tui

import (
	"fmt"
	"strings"

	"github.com/runoshun/confcache/internal/domain"
)

// RowKind is the kind of a browser row.
type RowKind int

const (
	RowBuild RowKind = iota
	RowProject
	RowWork
)

// Row is one line of the flattened build tree.
// Fields are ordered to minimize memory padding.
type Row struct {
	Label  string
	Detail string
	Build  string // Identity path of the build the row belongs to
	Stage  domain.BuildStage
	Depth  int
	Kind   RowKind
	Folded bool // Build rows only
}

// Flatten turns summary into rows, skipping the children of the builds
// named in folded.
func Flatten(summary *domain.BuildSummary, folded map[string]bool) []Row {
	if summary == nil {
		return nil
	}
	var rows []Row
	flattenBuild(&rows, summary, 0, folded)
	return rows
}

func flattenBuild(rows *[]Row, b *domain.BuildSummary, depth int, folded map[string]bool) {
	isFolded := folded[b.IdentityPath]
	*rows = append(*rows, Row{
		Kind:   RowBuild,
		Label:  buildLabel(b),
		Detail: strings.Join(b.ScopeAncestry, " > "),
		Build:  b.IdentityPath,
		Stage:  b.Stage,
		Depth:  depth,
		Folded: isFolded,
	})
	if isFolded {
		return
	}

	for _, p := range b.Projects {
		detail := p.Dir
		if len(p.Repositories) > 0 {
			detail = fmt.Sprintf("%s  repos: %s", p.Dir, strings.Join(p.Repositories, ", "))
		}
		*rows = append(*rows, Row{
			Kind:   RowProject,
			Label:  p.IdentityPath,
			Detail: detail,
			Build:  b.IdentityPath,
			Depth:  depth + 1 + p.Depth,
		})
	}
	for _, w := range b.ScheduledWork {
		*rows = append(*rows, Row{
			Kind:  RowWork,
			Label: w,
			Build: b.IdentityPath,
			Depth: depth + 1,
		})
	}
	for i := range b.IncludedBuilds {
		flattenBuild(rows, &b.IncludedBuilds[i], depth+1, folded)
	}
}

func buildLabel(b *domain.BuildSummary) string {
	if b.IdentityPath == domain.RootBuildName {
		return fmt.Sprintf("%s (root build)", b.RootProject)
	}
	return fmt.Sprintf("%s (%s)", b.IdentityPath, b.RootProject)
}
