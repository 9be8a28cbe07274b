// Package logger provides a simple, thread-safe logging facility.
//
// The logger supports four levels: Debug, Info, Warn, and Error.
// Each log entry includes a timestamp, level, optional tag (typically a
// component or connection identifier), and message.
//
// # Basic Usage
//
// Using the default logger:
//
//	logger.Info("", "Benchmark started")
//	logger.Info("conn-3", "Connected to %s", addr)
//	logger.Error("conn-3", "Command failed: %v", err)
//
// Creating a custom logger:
//
//	l := logger.New(os.Stderr, logger.LevelDebug)
//	l.Debug("bench", "Debug message")
//
// # Log Levels
//
// Messages below the configured level are filtered:
//   - LevelDebug: all messages
//   - LevelInfo: Info, Warn, Error
//   - LevelWarn: Warn, Error
//   - LevelError: Error only
//
// ParseLevel converts a level name from a CLI flag or config file.
//
// # Thread Safety
//
// All logging operations are protected by a mutex and safe for concurrent use.
package logger
