package metadata

import "go.uber.org/zap"

// Logger is the interface the middleware uses for structured logging.
//
// It uses variadic key-value pairs for structured attributes, following the
// same convention as log/slog and zap's SugaredLogger:
//
//	logger.Debug("found path", "template", "/pets/{id}", "key", "^/pets/([^/]+?)/?$")
//
// Use [NewZapAdapter] to log through zap, or [NopLogger] to discard output.
type Logger interface {
	// Debug logs at debug level. Use for detailed diagnostic information.
	Debug(msg string, attrs ...any)

	// Info logs at info level. Use for general operational information.
	Info(msg string, attrs ...any)

	// Warn logs at warn level. Use for potentially harmful situations.
	Warn(msg string, attrs ...any)

	// Error logs at error level. Use for error conditions.
	Error(msg string, attrs ...any)

	// With returns a new Logger with the given attributes prepended to every log.
	With(attrs ...any) Logger
}

// NopLogger is a no-op logger that discards all output.
// It is the default logger used when no logger is configured.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

// Ensure NopLogger implements Logger at compile time.
var _ Logger = NopLogger{}

// ZapAdapter wraps a *zap.SugaredLogger to implement the Logger interface.
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter creates a new ZapAdapter from a *zap.Logger.
// If logger is nil, zap.L() is used.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	if logger == nil {
		logger = zap.L()
	}
	return &ZapAdapter{logger: logger.Sugar()}
}

// Debug implements Logger.
func (z *ZapAdapter) Debug(msg string, attrs ...any) {
	z.logger.Debugw(msg, attrs...)
}

// Info implements Logger.
func (z *ZapAdapter) Info(msg string, attrs ...any) {
	z.logger.Infow(msg, attrs...)
}

// Warn implements Logger.
func (z *ZapAdapter) Warn(msg string, attrs ...any) {
	z.logger.Warnw(msg, attrs...)
}

// Error implements Logger.
func (z *ZapAdapter) Error(msg string, attrs ...any) {
	z.logger.Errorw(msg, attrs...)
}

// With implements Logger.
func (z *ZapAdapter) With(attrs ...any) Logger {
	return &ZapAdapter{logger: z.logger.With(attrs...)}
}

// Ensure ZapAdapter implements Logger at compile time.
var _ Logger = (*ZapAdapter)(nil)
