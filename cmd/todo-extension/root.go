package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-extension/internal/app"
	"github.com/nhle/todo-extension/internal/model"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

// Global flag values.
var (
	flagConfig   string
	flagDB       string
	flagLogLevel string
)

// cfg is loaded by PersistentPreRunE for every subcommand.
var cfg *model.AppConfig

var rootCmd = &cobra.Command{
	Use:   "todo-extension",
	Short: "Todos, projects and reminders served as MCP tools",
	Long: `todo-extension manages todos, projects, subitems, comments and reminder
settings in a local SQLite database and serves them as tools over the
Model Context Protocol.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := model.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		if flagDB != "" {
			loaded.Database.Path = flagDB
		}
		if flagLogLevel != "" {
			loaded.Log.Level = flagLogLevel
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", model.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (overrides database.path)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(rescheduleCmd)
}

// openApp starts the runtime for one command. Callers must Close it.
func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, cfg, version)
}

// resolveUser returns the --user flag value or the configured default.
func resolveUser(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	return cfg.DefaultUserID
}
