package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/confcache/internal/app"
	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/usecase"
	"github.com/spf13/cobra"
)

// ErrEntryRejected is returned by load when the entry could not be rehydrated.
var ErrEntryRejected = errors.New("entry rejected, run a full configuration")

var (
	loadOKStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00B894"))
	loadRejectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D63031"))
	loadBuildStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A29BFE"))
	loadMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#636E72"))
)

// newLoadCommand creates the load command.
func newLoadCommand(c *app.Container) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "load <key>",
		Short: "Rehydrate a build tree from a stored entry",
		Long: `Rehydrate a build tree from a stored entry.

The root build and every included build are rebuilt from the entry: projects
are created and registered, repositories are resolved against the configured
mirrors and the scheduled work is restored.

If the entry cannot be rehydrated it is rejected and, unless
[cache] keep_invalid is set, deleted. The command then exits with an error so
that the caller falls back to a full configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.LoadEntryUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.LoadEntryInput{Key: args[0]})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Rejected {
				_, _ = fmt.Fprintf(w, "%s %s\n", loadRejectStyle.Render("rejected"), out.Key)
				if out.Reason != nil {
					_, _ = fmt.Fprintf(w, "  %s\n", loadMutedStyle.Render(out.Reason.Error()))
				}
				if out.Discarded {
					_, _ = fmt.Fprintln(w, "  entry discarded")
				}
				return ErrEntryRejected
			}

			_, _ = fmt.Fprintf(w, "%s %s\n", loadOKStyle.Render("rehydrated"), out.Key)
			if !quiet {
				printBuildSummary(w, out.Summary, "  ")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only report whether the entry was rehydrated")

	return cmd
}

// printBuildSummary prints a rehydrated build and its included builds.
func printBuildSummary(w io.Writer, s *domain.BuildSummary, indent string) {
	if s == nil {
		return
	}
	label := s.IdentityPath
	if s.IdentityPath == domain.RootBuildName {
		label = "root build"
	}
	_, _ = fmt.Fprintf(w, "%s%s %s\n", indent, loadBuildStyle.Render(label),
		loadMutedStyle.Render(fmt.Sprintf("(%s, %s)", s.RootProject, s.Stage)))
	if len(s.ScopeAncestry) > 0 {
		_, _ = fmt.Fprintf(w, "%s  scope: %s\n", indent, strings.Join(s.ScopeAncestry, " > "))
	}
	if s.PortalOverridden {
		_, _ = fmt.Fprintf(w, "%s  portal override active\n", indent)
	}
	for _, p := range s.Projects {
		_, _ = fmt.Fprintf(w, "%s  %s\n", indent, p.IdentityPath)
		for _, repo := range p.Repositories {
			_, _ = fmt.Fprintf(w, "%s    repo %s\n", indent, repo)
		}
	}
	if len(s.ScheduledWork) > 0 {
		_, _ = fmt.Fprintf(w, "%s  work: %s\n", indent, strings.Join(s.ScheduledWork, ", "))
	}
	for i := range s.IncludedBuilds {
		printBuildSummary(w, &s.IncludedBuilds[i], indent+"  ")
	}
}

// newBrowseCommand creates the browse command.
func newBrowseCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <key>",
		Short: "Rehydrate an entry and browse the build tree interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return launchBrowserFunc(c, args[0])
		},
	}
}
