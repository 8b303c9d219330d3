// Package logging provides structured logging configuration for fishem.
//
// This package wraps log/slog to provide consistent logging across all fishem
// components. It supports configurable log levels, output formats, and an
// optional log file that receives a copy of every entry.
//
// # Usage
//
// Create a logger with desired configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("server started", "port", 5000)
//	logger.Error("mockup export failed", "error", err)
//
// With a log file:
//
//	logger, closeLog, err := logging.Open(logging.Config{File: "fishem.log"})
//	defer closeLog()
//
// # Log Levels
//
// Four log levels are supported:
//   - Debug: every store mutation and request detail
//   - Info: startup, imports, exports, and shutdown
//   - Warn: skipped entries and recoverable problems
//   - Error: failed requests and failed export steps
//
// # Output Formats
//
//   - Text: Human-readable format for development
//   - JSON: Structured format for log aggregation systems
//
// # Integration
//
// Components should accept a *slog.Logger in their constructor or via an
// option. If no logger is provided, use logging.Nop() for a no-op logger.
package logging
