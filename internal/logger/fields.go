package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these keys consistently
// across all log statements so aggregation and querying stay uniform.
const (
	// Request correlation
	KeyTraceID   = "trace_id"
	KeyMethod    = "method"    // JSON-RPC method: Workspace.create, Workspace.ls, ...
	KeyWorkspace = "workspace" // workspace path a request targets
	KeyLane      = "lane"      // concurrency lane a unit of work ran on

	// Caller identification
	KeyClientIP  = "client_ip"
	KeyUser      = "user"
	KeyAdminMode = "admin_mode"

	// Object/path fields
	KeyPath     = "path"
	KeyOldPath  = "old_path"
	KeyNewPath  = "new_path"
	KeyObjectID = "object_id"
	KeyType     = "type"
	KeySize     = "size"

	// Blob store
	KeyShockURL = "shock_url"
	KeyNodeID   = "node_id"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyCount      = "count"
)

// TraceID returns a slog.Attr for the request correlation id.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// Method returns a slog.Attr for the JSON-RPC method name.
func Method(name string) slog.Attr {
	return slog.String(KeyMethod, name)
}

// Workspace returns a slog.Attr for a workspace path.
func Workspace(path string) slog.Attr {
	return slog.String(KeyWorkspace, path)
}

// Lane returns a slog.Attr naming the concurrency lane a job ran on.
func Lane(name string) slog.Attr {
	return slog.String(KeyLane, name)
}

// ClientIP returns a slog.Attr for the client's remote address.
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// User returns a slog.Attr for the authenticated caller.
func User(name string) slog.Attr {
	return slog.String(KeyUser, name)
}

// AdminMode returns a slog.Attr reporting whether admin elevation is active.
func AdminMode(v bool) slog.Attr {
	return slog.Bool(KeyAdminMode, v)
}

// Path returns a slog.Attr for a workspace object path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// OldPath returns a slog.Attr for the source path of a copy/move.
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for the destination path of a copy/move.
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// ObjectID returns a slog.Attr for an object or workspace uuid.
func ObjectID(id string) slog.Attr {
	return slog.String(KeyObjectID, id)
}

// Type returns a slog.Attr for an object type.
func Type(t string) slog.Attr {
	return slog.String(KeyType, t)
}

// Size returns a slog.Attr for an object size in bytes.
func Size(s int64) slog.Attr {
	return slog.Int64(KeySize, s)
}

// ShockURL returns a slog.Attr for a blob node URL.
func ShockURL(url string) slog.Attr {
	return slog.String(KeyShockURL, url)
}

// NodeID returns a slog.Attr for a blob store node id.
func NodeID(id string) slog.Attr {
	return slog.String(KeyNodeID, id)
}

// DurationMs returns a slog.Attr for an operation duration.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr wrapping an error, or a no-op attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Count returns a slog.Attr for an item count.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}
