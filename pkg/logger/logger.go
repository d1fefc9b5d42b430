package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Logger wraps slog.Logger with request and domain helpers
type Logger struct {
	*slog.Logger
}

// New builds a logger from LOG_LEVEL: colourised text in gin debug mode, JSON otherwise
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"), gin.Mode() == gin.DebugMode)
}

func NewWithWriter(w io.Writer, levelStr string, development bool) *Logger {
	level := getLogLevel(levelStr)

	var handler slog.Handler
	if development {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  level == slog.LevelDebug,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if err, ok := a.Value.Any().(error); ok && a.Key == "error" {
					return tint.Err(err)
				}
				return a
			},
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	level := slog.LevelInfo
	if c.Writer.Status() >= 500 {
		level = slog.LevelError
	}
	l.Logger.Log(c.Request.Context(), level,
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Queue logging methods

func (l *Logger) LogEntryJoined(ctx context.Context, queueID, entryID string, ticketNumber, position int) {
	l.Logger.InfoContext(ctx,
		"Entry Joined",
		slog.String("queue_id", queueID),
		slog.String("entry_id", entryID),
		slog.Int("ticket_number", ticketNumber),
		slog.Int("position", position),
	)
}

// LogEntryCalled logs a call-next result. entryID is empty when nobody was waiting.
func (l *Logger) LogEntryCalled(ctx context.Context, queueID, entryID string, noShows, waitingCount int) {
	l.Logger.InfoContext(ctx,
		"Call Next",
		slog.String("queue_id", queueID),
		slog.String("entry_id", entryID),
		slog.Int("no_shows", noShows),
		slog.Int("waiting_count", waitingCount),
	)
}

func (l *Logger) LogStatusOverride(ctx context.Context, entryID, from, to string) {
	l.Logger.WarnContext(ctx,
		"Entry Status Overridden",
		slog.String("entry_id", entryID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

func (l *Logger) LogNotificationFailed(ctx context.Context, kind, entryID string, err error) {
	l.Logger.WarnContext(ctx,
		"Notification Failed",
		slog.String("kind", kind),
		slog.String("entry_id", entryID),
		slog.String("error", err.Error()),
	)
}

func (l *Logger) LogPaymentEvent(ctx context.Context, event, reference, userID string) {
	l.Logger.InfoContext(ctx,
		"Payment Event",
		slog.String("event", event),
		slog.String("reference", reference),
		slog.String("user_id", userID),
	)
}

// Security logging methods

func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint, limitType string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
		slog.String("limit_type", limitType),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault replaces the package default and slog's default
func SetDefault(logger *Logger) {
	defaultLogger = logger
	slog.SetDefault(logger.Logger)
}
