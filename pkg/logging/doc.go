// Package logging provides structured logging setup for the bare-metal agent.
//
// # Overview
//
// The package wraps log/slog with the agent's defaults: JSON records on
// stderr, module and version attributes on every record, and source
// locations when running at debug level.
//
// # Log Levels
//
// Supported levels (case-insensitive): DEBUG, INFO (default), WARN/WARNING,
// ERROR. The LOG_LEVEL environment variable selects the level when no
// explicit value is given:
//
//	LOG_LEVEL=debug bmagent params
//
// The agent can also be switched to debug from the boot command line with
// ipa-debug=1, which the CLI honors once parameters are resolved.
//
// # Usage
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("bmagent", version)
//	    slog.Info("resolving boot parameters", "source", "/proc/cmdline")
//	}
//
// Explicit level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("bmagent", version, "warn")
//
// # Output Format
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "mounted virtual media",
//	    "module": "bmagent",
//	    "version": "v1.0.0",
//	    "device": "/dev/disk/by-label/ir-vfd-dev"
//	}
package logging
