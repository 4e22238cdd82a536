package logging

import "log/slog"

// EnableTrace turns on per-ray logs. Init sets it for level TRACE.
var EnableTrace = false

// Trace logs at DEBUG level, but only if EnableTrace is true.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}
