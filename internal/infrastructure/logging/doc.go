// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Every long-lived component receives a named child logger, so terminal
// session logs read "forkspace.terminal" and carry a session_id field.
//
// Example Usage:
//
//	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	logger.Info("Server starting", zap.String("addr", addr))
//	term := terminal.NewManager(hub, logger.Component("terminal"))
package logging
