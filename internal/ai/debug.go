package ai

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug logs of the pursuit core.
// Set via EnableDebugLogging() from main after parsing config.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables debug logging for AI subsystem.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
// Guard per-tick debug logs with it:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("state changed", "agentID", id, "to", next)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
