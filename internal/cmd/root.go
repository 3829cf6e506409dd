package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/firefly/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "firefly",
	Short: "Split-process terminal text editor",
	Long: `Firefly runs an editor front end and a document engine as two processes
that talk through a pair of shared-memory mailboxes.

Running firefly with no subcommand opens the editor. The front end creates
the mailboxes, starts the engine, and removes the mailboxes on exit.`,
	Args:          cobra.NoArgs,
	RunE:          runEdit,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/firefly/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("mailbox-dir", "", "directory for the shared-memory mailboxes")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("mailbox.dir", rootCmd.PersistentFlags().Lookup("mailbox-dir"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/firefly")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FIREFLY")
	// e.g., FIREFLY_MAILBOX_CAPACITY for mailbox.capacity
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
