package cli

import (
	"fmt"

	"github.com/runoshun/confcache/internal/app"
	"github.com/runoshun/confcache/internal/usecase"
	"github.com/spf13/cobra"
)

func newEntrySnapshotCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [name]",
		Short: "Record every stored entry under a snapshot name",
		Long: `Record every stored entry under a snapshot name.

The name defaults to the current UTC time (20060102-150405). Snapshots need
the git entry store ([cache] store = "git").`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}

			uc := c.SnapshotEntriesUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.SnapshotEntriesInput{Name: name})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s saved (%d entries)\n", out.Name, out.Entries)
			return nil
		},
	}
}

func newEntryRestoreCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <name>",
		Short: "Replace the stored entries with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.RestoreSnapshotUseCase()
			if err := uc.Execute(cmd.Context(), usecase.RestoreSnapshotInput{Name: args[0]}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %s\n", args[0])
			return nil
		},
	}
}

func newEntrySnapshotsCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListSnapshotsUseCase()
			out, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Names) == 0 {
				_, _ = fmt.Fprintln(w, "No snapshots")
				return nil
			}
			for _, name := range out.Names {
				_, _ = fmt.Fprintln(w, name)
			}
			return nil
		},
	}
}
