package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/runoshun/confcache/internal/app"
	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/usecase"
	"github.com/spf13/cobra"
)

// newMirrorCommand creates the mirror command.
func newMirrorCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Inspect repository mirror resolution",
		Long: `Inspect how repository URLs are rewritten by the portal override and the
configured mirrors ([mirrors.urls]).`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(
		newMirrorResolveCommand(c),
		newMirrorListCommand(c),
	)

	return cmd
}

// newMirrorResolveCommand creates the mirror resolve subcommand.
func newMirrorResolveCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [name|url]...",
		Short: "Show the effective URL of repositories",
		Long: `Show the effective URL of repositories.

Arguments are well-known repository names (e.g. mavencentral) or URLs. Without
arguments every well-known repository is resolved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.ResolveRepositoryUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ResolveRepositoryInput{Repositories: args})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.PortalOverridden {
				_, _ = fmt.Fprintln(w, "Portal override active")
			}

			tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
			defer func() { _ = tw.Flush() }()

			_, _ = fmt.Fprintln(tw, "NAME\tURL\tEFFECTIVE")
			for _, r := range out.Repositories {
				name := r.Name
				if name == "" {
					name = "-"
				}
				effective := r.Effective
				if !r.Rewritten {
					effective = "(unchanged)"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", name, r.URL, effective)
			}
			return nil
		},
	}
}

// newMirrorListCommand creates the mirror list subcommand.
func newMirrorListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List well-known repositories and configured mirrors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(w, "[Repositories]")
			tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
			for _, name := range domain.KnownRepositoryNames() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", name, domain.KnownRepositories[name])
			}
			_ = tw.Flush()

			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, "[Mirrors]")
			mirrors := c.AppConfig.Mirrors
			if mirrors.Ignore || c.Env.IgnoreMirror {
				_, _ = fmt.Fprintln(w, "(plugin portal override disabled)")
			}
			if len(mirrors.URLs) == 0 {
				_, _ = fmt.Fprintln(w, "(none)")
				return nil
			}
			names := make([]string, 0, len(mirrors.URLs))
			for name := range mirrors.URLs {
				names = append(names, name)
			}
			sort.Strings(names)
			tw = tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
			for _, name := range names {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", name, mirrors.URLs[name])
			}
			return tw.Flush()
		},
	}
}
