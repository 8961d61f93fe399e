package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/disaster-pipeline/internal/common"
	"github.com/Veraticus/disaster-pipeline/internal/config"
	"github.com/Veraticus/disaster-pipeline/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const usageText = `Please provide the filepaths of the messages and categories datasets as the
first and second argument respectively, as well as the filepath of the
database to save the cleaned data to as the third argument.

Example: process-data disaster_messages.csv disaster_categories.csv DisasterResponse.db`

func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var (
		cfgFile    string
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "process-data MESSAGES CATEGORIES DATABASE",
		Short: "Merge disaster messages with their categories into a SQLite table",
		Long: `process-data loads the disaster messages and categories CSV files, merges
them on their id, expands the categories column into one integer column per
category, drops duplicate rows and writes the result to a SQLite database.

The target table is replaced on every run.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				printUsage(cmd.OutOrStdout())
				return nil
			}

			settings, err := initConfig(v, cfgFile)
			if err != nil {
				return err
			}

			_, err = pipeline.Run(cmd.Context(), pipeline.Options{
				Out:            cmd.OutOrStdout(),
				MessagesPath:   config.ExpandPath(args[0]),
				CategoriesPath: config.ExpandPath(args[1]),
				DatabasePath:   config.ExpandPath(args[2]),
				Table:          settings.Table,
				IfExists:       settings.IfExists,
				Cleaner:        settings.CleanerOptions(),
				ShowProgress:   !noProgress,
			})
			return err
		},
	}

	// Global flags
	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/process-data/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("table", "", "name of the table to write (default: DISASTER_DATA)")
	flags.String("if-exists", "", "what to do when the table exists: replace, append or fail (default: replace)")
	flags.BoolVar(&noProgress, "no-progress", false, "do not show a progress bar while writing rows")

	// Bind flags to viper
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = v.BindPFlag(config.KeyTable, flags.Lookup("table"))
	_ = v.BindPFlag(config.KeyIfExists, flags.Lookup("if-exists"))

	return cmd
}

func initConfig(v *viper.Viper, cfgFile string) (*config.Settings, error) {
	if err := config.ReadConfig(v, cfgFile); err != nil {
		return nil, err
	}

	settings, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Set up logging
	if err := common.SetupLogger(settings.LogLevel, settings.LogFormat); err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Debug("Configuration loaded", "config_file", v.ConfigFileUsed(), "table", settings.Table)

	return settings, nil
}

func printUsage(w io.Writer) {
	if _, err := fmt.Fprintln(w, usageText); err != nil {
		slog.Warn("Failed to write usage", "error", err)
	}
}
