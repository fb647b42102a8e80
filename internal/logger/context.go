package logger

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

// Context keys double as the log field names they are written under
const (
	requestIDKey        contextKey = "request_id"
	userIDKey           contextKey = "user_id"
	subscriptionTierKey contextKey = "subscription_tier"
	reportKindKey       contextKey = "report"
	loggerKey           contextKey = "logger"
)

// contextFields lists the keys copied onto every context-enriched log entry, in output order
var contextFields = []contextKey{requestIDKey, userIDKey, subscriptionTierKey, reportKindKey}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// WithRequestID tags ctx with requestID, generating one when it is empty
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return withString(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id, or ""
func RequestIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, requestIDKey)
}

// WithUserID tags ctx with the authenticated user
func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user, or ""
func UserIDFromContext(ctx context.Context) string {
	return stringFrom(ctx, userIDKey)
}

// WithReport tags ctx with the insight report being computed and the
// caller's resolved subscription tier. Either may be empty.
func WithReport(ctx context.Context, kind, tier string) context.Context {
	if kind != "" {
		ctx = withString(ctx, reportKindKey, kind)
	}
	if tier != "" {
		ctx = withString(ctx, subscriptionTierKey, tier)
	}
	return ctx
}

// ReportFromContext returns the report kind and subscription tier set by WithReport
func ReportFromContext(ctx context.Context) (kind, tier string) {
	return stringFrom(ctx, reportKindKey), stringFrom(ctx, subscriptionTierKey)
}

// WithLogger stores l in ctx
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or the default logger
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

func extractContextFields(ctx context.Context) []Field {
	var fields []Field
	for _, key := range contextFields {
		if v := stringFrom(ctx, key); v != "" {
			fields = append(fields, String(string(key), v))
		}
	}
	return fields
}

// Ctx returns the context's logger enriched with its request, user and report fields
func Ctx(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
