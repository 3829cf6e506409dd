package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/firefly/internal/config"
	"github.com/Iron-Ham/firefly/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show engine and front-end logs merged in time order",
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().String("level", "", "minimum level: debug, info, warn, error")
	logsCmd.Flags().String("process", "", "only entries from this process (engine, frontend)")
	logsCmd.Flags().String("grep", "", "only entries whose message contains this text")
	logsCmd.Flags().Int("tail", 0, "only the last N entries (0 = all)")
	logsCmd.Flags().Bool("json", false, "print entries as JSON lines")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	entries, err := logging.ReadEntries(cfg.Logging.Dir, logging.EngineLogFile, logging.FrontendLogFile)
	if err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("level")
	process, _ := cmd.Flags().GetString("process")
	grep, _ := cmd.Flags().GetString("grep")
	entries = logging.FilterEntries(entries, logging.Filter{
		Level:           level,
		Process:         process,
		MessageContains: grep,
	})

	if tail, _ := cmd.Flags().GetInt("tail"); tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}

	w := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	for _, e := range entries {
		if asJSON {
			line, err := json.Marshal(e)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(line))
			continue
		}
		fmt.Fprintln(w, e.Format())
	}
	return nil
}
