package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey struct{}

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger writes the application's recurring events with a
// consistent field set.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, requestID, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithRequestID(requestID).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request at a level that follows
// the status code.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, requestID string, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
		WithHTTPResponse(statusCode, durationMs).
		WithRequestID(requestID).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).LogContext(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogLogin records a login attempt. Passwords are never logged.
func (sl *StructuredLogger) LogLogin(ctx context.Context, username string, userID int64, success bool) {
	fields := NewFields().WithOperation(OpLogin)
	fields[FieldUsername] = username
	fields[FieldSuccess] = success
	if success {
		fields[FieldUserID] = userID
		sl.logger.WithComponent(ComponentAuth).InfoContext(ctx, "Login successful", fields.ToSlice()...)
		return
	}
	sl.logger.WithComponent(ComponentAuth).WarnContext(ctx, "Login failed", fields.ToSlice()...)
}

// LogExpenseCreated logs successful expense creation
func (sl *StructuredLogger) LogExpenseCreated(ctx context.Context, userID, expenseID int64, category string, amountCents int64, date string) {
	fields := NewFields().
		WithUser(userID, "").
		WithExpense(expenseID, category, amountCents, date).
		WithOperation(OpCreate)

	sl.logger.WithComponent(ComponentExpense).InfoContext(ctx, "Expense created", fields.ToSlice()...)
}

// LogBudgetAlert logs an alert received from the queue.
func (sl *StructuredLogger) LogBudgetAlert(ctx context.Context, userID int64, username string, year, month int, budgetCents, totalCents int64) {
	fields := NewFields().
		WithUser(userID, username).
		WithPeriod(year, month)
	fields["budget_cents"] = budgetCents
	fields["total_cents"] = totalCents
	fields["overage_cents"] = totalCents - budgetCents

	sl.logger.WithComponent(ComponentWorker).WarnContext(ctx, "Monthly budget exceeded", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithError(err).WithOperation(operation)
	sl.logger.WithComponent(component).ErrorContext(ctx, msg, fields.ToSlice()...)
}
