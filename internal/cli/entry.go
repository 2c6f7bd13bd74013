package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/runoshun/confcache/internal/app"
	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/usecase"
	"github.com/spf13/cobra"
)

// newEntryCommand creates the entry command.
func newEntryCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Manage stored cache entries",
		Long:  `Import, inspect, delete and snapshot stored cache entries.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(
		newEntryImportCommand(c),
		newEntryListCommand(c),
		newEntryShowCommand(c),
		newEntryRmCommand(c),
		newEntrySnapshotCommand(c),
		newEntryRestoreCommand(c),
		newEntrySnapshotsCommand(c),
	)

	return cmd
}

// newEntryImportCommand creates the entry import subcommand.
func newEntryImportCommand(c *app.Container) *cobra.Command {
	var opts struct {
		key   string
		force bool
	}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store an entry from a YAML document",
		Long: `Store an entry from a YAML document.

Use "-" to read the document from stdin. The document is validated before
it is stored; an existing entry with the same key is only replaced with --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			uc := c.ImportEntryUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ImportEntryInput{
				Content: content,
				Key:     opts.key,
				Force:   opts.force,
			})
			if err != nil {
				return err
			}

			verb := "Imported"
			if out.Replaced {
				verb = "Replaced"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s entry %s (%d projects, %d included builds, %d work nodes)\n",
				verb, out.Summary.Key, out.Summary.Projects, out.Summary.IncludedBuilds, out.Summary.WorkNodes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "Store under this key instead of the document's key")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Replace an existing entry")

	return cmd
}

// readInput reads the file at path, or r when path is "-".
func readInput(r io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// newEntryListCommand creates the entry list subcommand.
func newEntryListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListEntriesUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListEntriesInput{})
			if err != nil {
				return err
			}

			if len(out.Entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No entries")
				return nil
			}
			printEntryList(cmd.OutOrStdout(), out.Entries)
			return nil
		},
	}
}

// printEntryList prints entries in a table.
func printEntryList(w io.Writer, entries []domain.EntrySummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	// Header
	_, _ = fmt.Fprintln(tw, "KEY\tROOT\tPROJECTS\tINCLUDED\tWORK\tCREATED")

	// Rows
	for _, e := range entries {
		created := "-"
		if !e.Created.IsZero() {
			created = e.Created.Local().Format(time.DateTime)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			e.Key, e.RootProjectName, e.Projects, e.IncludedBuilds, e.WorkNodes, created)
	}
}

// newEntryShowCommand creates the entry show subcommand.
func newEntryShowCommand(c *app.Container) *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show a stored entry",
		Long: `Show a stored entry.

By default a summary and the project tree are printed. Use --yaml to print
the stored document instead; it can be fed back to "entry import".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.ShowEntryUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowEntryInput{
				Key: args[0],
				Raw: asYAML,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asYAML {
				_, _ = w.Write(out.Document)
				return nil
			}
			printEntryDetail(w, out.Summary, out.Entry)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the stored YAML document")

	return cmd
}

// printEntryDetail prints the summary and project tree of an entry.
func printEntryDetail(w io.Writer, s domain.EntrySummary, e *domain.CacheEntry) {
	_, _ = fmt.Fprintf(w, "Key:      %s\n", s.Key)
	_, _ = fmt.Fprintf(w, "Root:     %s\n", s.RootProjectName)
	if !s.Created.IsZero() {
		_, _ = fmt.Fprintf(w, "Created:  %s\n", s.Created.Local().Format(time.DateTime))
	}
	_, _ = fmt.Fprintf(w, "Projects: %d\n", s.Projects)
	_, _ = fmt.Fprintf(w, "Included: %d\n", s.IncludedBuilds)
	_, _ = fmt.Fprintf(w, "Work:     %d\n", s.WorkNodes)

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Builds:")
	printEntryTree(w, e, "  ")
}

// printEntryTree prints the projects, work and included builds of e.
func printEntryTree(w io.Writer, e *domain.CacheEntry, indent string) {
	for _, p := range e.Projects {
		_, _ = fmt.Fprintf(w, "%s%s\n", indent, p.Path)
	}
	for _, n := range e.Work {
		_, _ = fmt.Fprintf(w, "%s* %s\n", indent, domain.Path(n.Project).Child(n.Task))
	}
	for _, inc := range e.IncludedBuilds {
		_, _ = fmt.Fprintf(w, "%s[%s]\n", indent, inc.Definition.Name)
		if inc.Entry != nil {
			printEntryTree(w, inc.Entry, indent+"  ")
		}
	}
}

// newEntryRmCommand creates the entry rm subcommand.
func newEntryRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key>...",
		Aliases: []string{"delete"},
		Short:   "Delete stored entries",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.DeleteEntryUseCase()
			for _, key := range args {
				if err := uc.Execute(cmd.Context(), usecase.DeleteEntryInput{Key: key}); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", key)
			}
			return nil
		},
	}
}
