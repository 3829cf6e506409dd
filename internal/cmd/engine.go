package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/firefly/internal/channel"
	"github.com/Iron-Ham/firefly/internal/config"
	"github.com/Iron-Ham/firefly/internal/engine"
	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/logging"
)

var engineCmd = &cobra.Command{
	Use:    "engine <ui-to-engine> <engine-to-ui>",
	Short:  "Run the document engine (started by the editor)",
	Hidden: true,
	Args:   channelArgs,
	RunE:   runEngine,
}

// parentCheckInterval is how often the engine checks whether the front
// end that started it is still alive.
var parentCheckInterval = time.Second

var getppid = os.Getppid

func init() {
	rootCmd.AddCommand(engineCmd)
}

// channelArgs requires both mailbox names. Missing names mean the engine
// cannot reach the front end at all.
func channelArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return errors.NewChannelError(
			fmt.Sprintf("engine needs 2 channel names, got %d", len(args)), nil)
	}
	if len(args) > 2 {
		return fmt.Errorf("engine takes 2 channel names, got %d", len(args))
	}
	return nil
}

func runEngine(cmd *cobra.Command, args []string) error {
	// Taken first so a front end that dies during startup is still noticed.
	parent := getppid()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg, logging.EngineLogFile, "engine")
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Close()
	bus := newBus(logger)

	names := channel.Names{UIToEngine: args[0], EngineToUI: args[1]}
	pair, err := channel.Open(cfg.Mailbox.Dir, names, channel.Options{
		Doorbell: cfg.Doorbell.Enabled,
		Bus:      bus,
	})
	if err != nil {
		logger.Error("open channel", "error", err.Error())
		return err
	}
	defer pair.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go watchParent(ctx, cancel, logger, parent)

	logger.Info("engine started", "pid", os.Getpid(), "ui_to_engine", names.UIToEngine, "engine_to_ui", names.EngineToUI)
	eng := engine.New(pair,
		engine.WithLogger(logger),
		engine.WithBus(bus),
		engine.WithPollInterval(cfg.Engine.PollInterval()),
	)
	return eng.Run(ctx)
}

// watchParent cancels the engine once it has been reparented, which means
// the front end died without stopping it.
func watchParent(ctx context.Context, cancel context.CancelFunc, logger *logging.Logger, parent int) {
	ticker := time.NewTicker(parentCheckInterval)
	defer ticker.Stop()

	for {
		if current := getppid(); parentGone(parent, current) {
			logger.Warn("front end gone, stopping", "parent_pid", parent, "current_parent_pid", current)
			cancel()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// parentGone reports whether the process that started the engine has
// exited. Orphans are adopted by init (pid 1) or a subreaper.
func parentGone(parent, current int) bool {
	return current != parent || current == 1
}
