package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlasops/atlasalerts/internal/alerting"
	"github.com/atlasops/atlasalerts/internal/atlas"
	"github.com/atlasops/atlasalerts/internal/logger"
	"github.com/atlasops/atlasalerts/internal/tracking"
)

var deleteAll bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete automation-created alerts",
	Long: `delete removes the alerts this tool created in the project, using the
tracking file to leave the project's default alerts untouched. With
--all, EVERY alert configuration in the project is deleted, including
defaults; that run must be confirmed interactively by typing "` +
		alerting.ConfirmDeleteAllPhrase + `".`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete ALL alerts, including project defaults")
}

func runDelete(cmd *cobra.Command, _ []string) error {
	if err := requireProjectID(); err != nil {
		return err
	}
	ctx := cmd.Context()

	cli := atlas.NewCLI(settings.AtlasBinary, settings.CommandTimeout.Std(), log)
	if err := cli.Preflight(ctx); err != nil {
		return err
	}
	store, err := tracking.Load(settings.TrackingFile)
	if err != nil {
		return err
	}
	engine := alerting.NewEngine(cli, store, log)

	var summary alerting.Summary
	if deleteAll {
		fmt.Fprintf(cmd.OutOrStdout(),
			"WARNING: this deletes ALL alerts in project %s, including default Atlas alerts.\nType %q to confirm: ",
			settings.ProjectID, alerting.ConfirmDeleteAllPhrase)
		confirmation, err := readLine(cmd)
		if err != nil {
			return err
		}
		summary, err = engine.DeleteAll(ctx, settings.ProjectID, confirmation)
		if err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(),
			"Delete automation-created alerts? Default alerts will NOT be deleted. (yes/no): ")
		answer, err := readLine(cmd)
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(answer), "yes") {
			log.Info("cancelled")
			return nil
		}
		summary, err = engine.DeleteTracked(ctx, settings.ProjectID)
		if err != nil {
			return err
		}
	}

	printSummary("delete", summary.Total, summary.Succeeded, summary.Failed)
	for _, failure := range summary.Failures {
		log.Error("failed deletion", logger.String("alert_id", failure.Name), logger.Error(failure.Err))
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d alerts failed to delete", summary.Failed, summary.Total)
	}
	return nil
}

func readLine(cmd *cobra.Command) (string, error) {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.TrimSpace(line), nil
}
