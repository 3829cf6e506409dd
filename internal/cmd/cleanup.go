package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/firefly/internal/cleanup"
	"github.com/Iron-Ham/firefly/internal/config"
	"github.com/Iron-Ham/firefly/internal/logging"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove mailboxes left behind by crashed editor sessions",
	Long: `Remove shared-memory regions and doorbell files that no running
firefly process holds open. Files changed within --min-age are kept so a
session that is just starting is never touched.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().Bool("dry-run", false, "list stale files without removing them")
	cleanupCmd.Flags().Duration("min-age", cleanup.DefaultMinAge, "keep files changed more recently than this")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, logging.FrontendLogFile, "cleanup")
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Close()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	minAge, _ := cmd.Flags().GetDuration("min-age")

	c := cleanup.New(cfg.Mailbox.Dir, cleanup.WithLogger(logger), cleanup.WithMinAge(minAge))
	results, err := c.Run(dryRun)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	verb := "Removed"
	if dryRun {
		verb = "Would remove"
	}
	for _, s := range results.Removed {
		fmt.Fprintf(w, "%s %s %s\n", verb, s.Kind, s.Path)
	}
	for _, e := range results.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", e)
	}
	fmt.Fprintf(w, "%d stale, %d in use\n", len(results.Removed), results.InUse)

	if len(results.Errors) > 0 {
		return fmt.Errorf("%d files could not be removed", len(results.Errors))
	}
	return nil
}
