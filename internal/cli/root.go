// Package cli implements the studyspaces command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studyspaces/internal/config"
	"studyspaces/internal/lookup"
)

var (
	configPath string
	verbose    bool

	// version is set at build time with -ldflags "-X studyspaces/internal/cli.version=...".
	version = "dev"

	// now is the clock used for default day and time.
	now = time.Now

	app *App
)

var rootCmd = &cobra.Command{
	Use:   "studyspaces",
	Short: "Find open study rooms on campus",
	Long: `Looks up campus buildings by name, id or nickname and shows which of their
rooms are free at a given weekday and time.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if app == nil {
			return nil
		}
		err := app.Close(ctxOf(cmd))
		app = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $"+config.EnvConfigPath+" or configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupApp(cmd *cobra.Command, _ []string) error {
	if cmd == versionCmd {
		return nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	a, err := NewApp(cfg, cmd.ErrOrStderr(), verbose)
	if err != nil {
		return err
	}
	app = a
	return nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// explain adds a hint to errors caused by a missing data source.
func explain(err error) error {
	if errors.Is(err, lookup.ErrNoSource) {
		return fmt.Errorf("%w: set source.base_url in the config file", err)
	}
	return err
}
