package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	TraceID   string    // correlation id assigned at dispatch
	Method    string    // JSON-RPC method name (Workspace.create, Workspace.ls, ...)
	Workspace string    // workspace path the request targets, if any
	ClientIP  string    // client IP address (without port)
	User      string    // authenticated caller, empty if anonymous
	AdminMode bool      // whether admin elevation was granted for this request
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		Method:    lc.Method,
		Workspace: lc.Workspace,
		ClientIP:  lc.ClientIP,
		User:      lc.User,
		AdminMode: lc.AdminMode,
		StartTime: lc.StartTime,
	}
}

// WithMethod returns a copy with the JSON-RPC method set
func (lc *LogContext) WithMethod(method string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Method = method
	}
	return clone
}

// WithWorkspace returns a copy with the workspace path set
func (lc *LogContext) WithWorkspace(workspace string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Workspace = workspace
	}
	return clone
}

// WithAuth returns a copy with authentication info set
func (lc *LogContext) WithAuth(user string, adminMode bool) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.User = user
		clone.AdminMode = adminMode
	}
	return clone
}

// WithTrace returns a copy with the correlation id set
func (lc *LogContext) WithTrace(traceID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
