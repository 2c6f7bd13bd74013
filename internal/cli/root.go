// Package cli provides the command-line interface for confcache.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/confcache/internal/app"
	"github.com/runoshun/confcache/internal/tui"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupEntry = "entry"
	groupBuild = "build"
)

// launchBrowserFunc is a function variable for launching the build browser, allowing it to be mocked in tests.
var launchBrowserFunc = launchBrowser

// NewRootCommand creates the root command for confcache.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "confcache",
		Short: "Configuration cache for multi-project builds",
		Long: `confcache stores the configured state of a multi-project build and
rehydrates it on later invocations, so that the expensive configuration
phase can be skipped.

A stored entry describes the root build, its projects, the builds it
includes and the scheduled work. Loading an entry rebuilds the build tree
from it; an entry that cannot be rehydrated is rejected and a full
configuration is required.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip for commands that must work with a broken config
			if cmd.Name() == "init" || cmd.Name() == "template" {
				return nil
			}

			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}

			cfg, err := c.ConfigLoader.Load()
			if err != nil {
				// Reported by the command itself
				return nil
			}

			for _, w := range cfg.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
	}

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupEntry, Title: "Entry Management:"},
		&cobra.Group{ID: groupBuild, Title: "Build Commands:"},
	)

	// Setup commands
	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	// Entry management commands
	entryCmd := newEntryCommand(c)
	entryCmd.GroupID = groupEntry

	// Build commands
	loadCmd := newLoadCommand(c)
	loadCmd.GroupID = groupBuild

	browseCmd := newBrowseCommand(c)
	browseCmd.GroupID = groupBuild

	mirrorCmd := newMirrorCommand(c)
	mirrorCmd.GroupID = groupBuild

	// Add subcommands
	root.AddCommand(
		initCmd,
		configCmd,
		entryCmd,
		loadCmd,
		browseCmd,
		mirrorCmd,
	)

	return root
}

// launchBrowser rehydrates the entry stored under key and shows it in the build browser.
func launchBrowser(c *app.Container, key string) error {
	model := tui.New(c.LoadEntryUseCase(), key)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
