package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Iron-Ham/firefly/internal/channel"
	"github.com/Iron-Ham/firefly/internal/config"
	"github.com/Iron-Ham/firefly/internal/frontend"
	"github.com/Iron-Ham/firefly/internal/launcher"
	"github.com/Iron-Ham/firefly/internal/logging"
	"github.com/Iron-Ham/firefly/internal/tui"
)

func runEdit(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("firefly needs an interactive terminal")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg, logging.FrontendLogFile, "frontend")
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Close()
	bus := newBus(logger)

	pair, err := channel.Create(cfg.Mailbox.Dir, channel.Options{
		Capacity: cfg.Mailbox.Capacity,
		Doorbell: cfg.Doorbell.Enabled,
		Bus:      bus,
	})
	if err != nil {
		logger.Error("create channel", "error", err.Error())
		return err
	}
	defer func() {
		_ = pair.Close()
		if err := pair.Remove(); err != nil {
			logger.Warn("remove channel", "error", err.Error())
		}
	}()
	names := pair.Names()
	logger.Info("channel created", "dir", cfg.Mailbox.Dir, "ui_to_engine", names.UIToEngine, "engine_to_ui", names.EngineToUI)

	l := launcher.New(
		launcher.WithLogger(logger),
		launcher.WithFlags(engineFlags()...),
		launcher.WithEnv(engineEnv(cfg)...),
	)
	if err := l.Start(names); err != nil {
		logger.Error("start engine", "error", err.Error())
		return err
	}
	defer func() { _ = l.Stop(launcher.DefaultGracePeriod) }()

	client := frontend.New(pair,
		frontend.WithLogger(logger),
		frontend.WithBus(bus),
		frontend.WithPollInterval(cfg.Frontend.PollInterval()),
	)

	app := tui.New(client, tui.Options{
		Theme:       cfg.TUI.Theme,
		LineNumbers: cfg.TUI.LineNumbers,
		EngineDone:  l.Done(),
		EngineErr:   l.Err,
	})
	return app.Run(cmd.Context())
}

// engineFlags forwards an explicit config file to the engine.
func engineFlags() []string {
	if used := viper.ConfigFileUsed(); used != "" {
		return []string{"--config", used}
	}
	return nil
}

// engineEnv pins the settings both processes must agree on, including
// ones that came from command-line flags.
func engineEnv(cfg *config.Config) []string {
	return []string{
		"FIREFLY_MAILBOX_DIR=" + cfg.Mailbox.Dir,
		"FIREFLY_DOORBELL_ENABLED=" + strconv.FormatBool(cfg.Doorbell.Enabled),
		"FIREFLY_LOGGING_ENABLED=" + strconv.FormatBool(cfg.Logging.Enabled),
		"FIREFLY_LOGGING_LEVEL=" + cfg.Logging.Level,
		"FIREFLY_LOGGING_DIR=" + cfg.Logging.Dir,
	}
}
