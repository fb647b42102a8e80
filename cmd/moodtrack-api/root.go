package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/JonnyWalker81/moodtrack/backend/internal/config"
	"github.com/JonnyWalker81/moodtrack/backend/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	appLog logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "moodtrack-api",
	Short: "Moodtrack insights API server",
	Long:  `Serves weekly summaries, mood trigger analysis and recommendations built from mood check-ins.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal outside local development
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded

		appLog = logger.New(logger.Config{
			Level:   logger.ParseLevel(cfg.Log.Level),
			Format:  cfg.Log.Format,
			Backend: cfg.Log.Backend,
		})
		logger.SetDefault(appLog)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			_ = logger.Sync(appLog)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
}
