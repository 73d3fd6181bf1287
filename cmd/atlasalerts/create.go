package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atlasops/atlasalerts/internal/alerting"
	"github.com/atlasops/atlasalerts/internal/atlas"
	"github.com/atlasops/atlasalerts/internal/logger"
	"github.com/atlasops/atlasalerts/internal/source"
	"github.com/atlasops/atlasalerts/internal/tracking"
)

var (
	createInput     string
	createOutputDir string
	createDryRun    bool
	createEmail     string
	createRoles     []string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create alerts from the definition table",
	Long: `create reads the alert definition table, builds one configuration per
alert and priority, collapses duplicates, writes the wire JSON artifacts,
and submits each configuration to Atlas. Created alert IDs are recorded
in the tracking file. With --dry-run, artifacts are written but no remote
call is made.`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createInput, "input", "", "definition table (.xlsx or .csv; default from settings)")
	createCmd.Flags().StringVar(&createOutputDir, "output-dir", "", "artifact directory (default from settings)")
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "generate artifacts without calling Atlas")
	createCmd.Flags().StringVar(&createEmail, "notification-email", "", "extra email address to notify")
	createCmd.Flags().StringSliceVar(&createRoles, "notification-roles", nil, "Atlas group roles to notify")
}

func runCreate(cmd *cobra.Command, _ []string) error {
	if err := requireProjectID(); err != nil {
		return err
	}
	ctx := cmd.Context()

	input := settings.InputFile
	if createInput != "" {
		input = createInput
	}
	outputDir := settings.OutputDir
	if createOutputDir != "" {
		outputDir = createOutputDir
	}
	roles := settings.NotificationRoles
	if len(createRoles) > 0 {
		roles = createRoles
	}
	email := settings.NotificationEmail
	if createEmail != "" {
		email = createEmail
	}

	log.Info("reading alert definitions", logger.String("file", input))
	rows, err := source.ReadFile(input)
	if err != nil {
		return err
	}
	log.Info("found alert definitions", logger.Int("count", len(rows)))

	builder := alerting.NewBuilder(roles, email)
	configs, skipped := builder.BuildAll(rows, log)
	if skipped > 0 {
		log.Warn("some definitions were skipped", logger.Int("skipped", skipped))
	}

	configs, dropped := alerting.Dedupe(configs)
	for i := range dropped {
		log.Warn("skipping duplicate alert, identical to an earlier definition",
			logger.String("alert", dropped[i].DisplayName()))
	}
	if len(configs) == 0 {
		return fmt.Errorf("no alert configurations were generated from %s", input)
	}

	if _, err := alerting.WriteArtifacts(outputDir, configs, log); err != nil {
		return err
	}
	log.Info("generated alert configurations",
		logger.Int("count", len(configs)),
		logger.String("dir", outputDir))

	if createDryRun {
		log.Info("dry run, no alerts will be created")
		printSummary("create (dry run)", len(configs), len(configs), 0)
		return nil
	}

	cli := atlas.NewCLI(settings.AtlasBinary, settings.CommandTimeout.Std(), log)
	if err := cli.Preflight(ctx); err != nil {
		return err
	}

	store, err := tracking.Load(settings.TrackingFile)
	if err != nil {
		return err
	}

	engine := alerting.NewEngine(cli, store, log)
	summary, err := engine.CreateAll(ctx, settings.ProjectID, configs)
	if err != nil {
		return err
	}
	printSummary("create", summary.Total, summary.Succeeded, summary.Failed)
	for _, failure := range summary.Failures {
		log.Error("failed alert", logger.String("alert", failure.Name), logger.Error(failure.Err))
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d alerts failed to create", summary.Failed, summary.Total)
	}
	return nil
}
