package cli

import (
	"errors"
	"fmt"

	"github.com/runoshun/confcache/internal/app"
	"github.com/runoshun/confcache/internal/domain"
	"github.com/runoshun/confcache/internal/usecase"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	var withConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the entry store",
		Long: `Initialize confcache for the current build root.

This command creates the .confcache/ directory with:
- the entry store (entries.json, or the git ref namespace when [cache] store = "git")
- logs/: directory for operational logs

With --config, a commented .confcache.toml template is also written to the
build root unless one already exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitStoreUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitStoreInput{
				CacheDir: c.Config.CacheDir,
				RepoRoot: c.Config.RepoRoot,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(w, "confcache already initialized in %s\n", out.CacheDir)
			} else {
				_, _ = fmt.Fprintf(w, "Initialized confcache in %s\n", out.CacheDir)
			}
			if out.GitignoreNeedsAdd {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Hint: add %s/ to .gitignore\n", domain.CacheDirName)
			}

			if !withConfig {
				return nil
			}
			cfgOut, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{})
			if errors.Is(err, domain.ErrConfigExists) {
				_, _ = fmt.Fprintln(w, "Config already exists, left unchanged")
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(w, "Created config: %s\n", cfgOut.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withConfig, "config", false, "Also write a .confcache.toml template")

	return cmd
}
