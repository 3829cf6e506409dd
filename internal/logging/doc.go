// Package logging provides structured logging for the front end and the
// engine.
//
// It wraps log/slog with a JSON handler. Each process writes its own file
// in the configured log directory (engine.log, frontend.log) through a
// size-rotating writer, so the terminal the TUI owns is never written to.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, logging.EngineLogFile, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("engine started", "ui_to_engine", names.UIToEngine)
//
// # Context Propagation
//
// Child loggers carry persistent attributes:
//
//	chLogger := logger.WithProcess("engine").WithChannel(names.UIToEngine)
//	chLogger.Warn("decode failed", "size", 12)
//
// Output:
//
//	{"time":"...","level":"WARN","msg":"decode failed","process":"engine","channel":"firefly-...-ui","size":12}
//
// # Reading Logs Back
//
// [ReadEntries] merges the files of both processes into one time-ordered
// stream and [FilterEntries] narrows it by level, process, or message.
// The `firefly logs` command is built on these.
//
// # Testing
//
// [NopLogger] discards everything and is what unit tests pass around.
package logging
