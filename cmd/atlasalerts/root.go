package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/atlasops/atlasalerts/internal/conf"
	"github.com/atlasops/atlasalerts/internal/logger"
)

var (
	cfgFile   string
	projectID string
	logDirOpt string

	settings *conf.Settings
	log      logger.Logger
	logFile  *os.File
)

var rootCmd = &cobra.Command{
	Use:   "atlasalerts",
	Short: "Manage automation-created MongoDB Atlas alerts",
	Long: `atlasalerts reads an alert definition table, renders canonical Atlas
alert configurations, and creates, tracks, and deletes them through the
Atlas CLI. Alerts created here are recorded in a tracking file so later
deletions never touch the project's default alerts.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ./atlasalerts.yaml)")
	rootCmd.PersistentFlags().StringVar(&projectID, "project-id", "", "Atlas project ID")
	rootCmd.PersistentFlags().StringVar(&logDirOpt, "log-dir", "", "directory for run logs")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(simulateCmd)
}

// setup loads settings and opens the run logger before any subcommand.
// Flags override file and environment values.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	settings, err = conf.Load(cfgFile)
	if err != nil {
		return err
	}
	if projectID != "" {
		settings.ProjectID = projectID
	}
	if logDirOpt != "" {
		settings.LogDir = logDirOpt
	}

	log, logFile, err = newRunLogger(settings.LogDir)
	if err != nil {
		return err
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if logFile != nil {
		_ = logFile.Close()
	}
}

// newRunLogger logs to the console and to a timestamped file under dir,
// so every run leaves an auditable record.
func newRunLogger(dir string) (logger.Logger, *os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("alert_run_%s.log", time.Now().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return logger.NewSlogLogger(io.MultiWriter(os.Stdout, f), logger.LogLevelInfo, nil), f, nil
}

// requireProjectID guards subcommands that talk to a project.
func requireProjectID() error {
	if settings.ProjectID == "" {
		return fmt.Errorf("an Atlas project ID is required (--project-id or settings file)")
	}
	return nil
}

// printSummary reports the outcome of a lifecycle pass on the run log.
func printSummary(operation string, total, succeeded, failed int) {
	log.Info("run summary",
		logger.String("operation", operation),
		logger.Int("total", total),
		logger.Int("succeeded", succeeded),
		logger.Int("failed", failed))
}
