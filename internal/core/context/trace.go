package context

import (
	"context"

	"venuedesk/internal/core/id"
)

// TraceContext contains request tracing information.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetTraceID returns trace ID from context or empty string.
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	return ""
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext builds a TraceContext, keeping the ids supplied by the
// caller (X-Trace-ID / X-Request-ID) and generating the missing ones.
func NewTraceContext(traceID, requestID string) *TraceContext {
	if traceID == "" {
		traceID = id.New().String()
	}
	if requestID == "" {
		requestID = id.New().String()
	}
	return &TraceContext{
		TraceID:   traceID,
		SpanID:    id.New().String()[:16],
		RequestID: requestID,
	}
}
