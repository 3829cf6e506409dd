package cmd

import (
	"github.com/Iron-Ham/firefly/internal/config"
	"github.com/Iron-Ham/firefly/internal/event"
	"github.com/Iron-Ham/firefly/internal/logging"
)

// newLogger opens the process log file named fileName, or returns a
// discarding logger when logging is disabled.
func newLogger(cfg *config.Config, fileName, process string) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(cfg.Logging.Dir, fileName, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, err
	}
	return logger.WithProcess(process), nil
}

// newBus returns an event bus that logs transport anomalies.
func newBus(logger *logging.Logger) *event.Bus {
	bus := event.NewBus()
	bus.Subscribe(event.TypeMessageOverwritten, func(e event.Event) {
		ev := e.(event.MessageOverwrittenEvent)
		logger.Warn("message lost", "mailbox", ev.Mailbox, "lost_bytes", ev.LostBytes)
	})
	bus.Subscribe(event.TypeMessageRejected, func(e event.Event) {
		ev := e.(event.MessageRejectedEvent)
		logger.Warn("payload rejected", "mailbox", ev.Mailbox, "size", ev.Size, "max", ev.Max)
	})
	return bus
}
