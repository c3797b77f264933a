package service

import (
	"encoding/json"
	"time"

	"github.com/wsobjects/wsd/pkg/metadata"
)

// ObjectMeta is the wire representation of a workspace object or
// workspace-as-folder, named internally but serialized as the positional
// tuple the JSON-RPC wire format requires:
//
//	[name, type, path, creation_time, id, owner, size, user_metadata,
//	 auto_metadata, user_permission, global_permission, shockurl, error?]
//
// Translation to/from this shape happens only here, at the service/
// dispatcher boundary — every other package works with metadata.Object
// and metadata.Workspace directly.
type ObjectMeta struct {
	Name             string
	Type             string
	Path             string
	CreationTime     time.Time
	ID               string
	Owner            string
	Size             int64
	UserMetadata     map[string]string
	AutoMetadata     map[string]string
	UserPermission   string
	GlobalPermission string
	ShockURL         string
	Error            string

	Valid bool // false for the sentinel "not found"/error meta
}

// ErrorMeta builds the sentinel error ObjectMeta the wire format uses
// in place of a real result: authorization/not-found/wrong-kind failures
// are all surfaced this way so the enclosing RPC still succeeds.
func ErrorMeta(message string) ObjectMeta {
	return ObjectMeta{Error: message, Valid: false}
}

const timeLayout = "2006-01-02T15:04:05Z"

// MarshalJSON renders the positional tuple. An invalid meta renders as
// an empty JSON array, the wire format's way of saying "absent/error".
func (m ObjectMeta) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		if m.Error == "" {
			return []byte("[]"), nil
		}
		return json.Marshal([]any{m.Error})
	}

	autoMeta := copyMeta(m.AutoMetadata)
	if m.Type == string(metadata.TypeFolder) {
		autoMeta["is_folder"] = "1"
	} else {
		autoMeta["is_folder"] = "0"
	}

	tuple := []any{
		m.Name,
		m.Type,
		m.Path,
		m.CreationTime.UTC().Format(timeLayout),
		m.ID,
		m.Owner,
		m.Size,
		copyMeta(m.UserMetadata),
		autoMeta,
		m.UserPermission,
		m.GlobalPermission,
		m.ShockURL,
	}
	if m.Error != "" {
		tuple = append(tuple, m.Error)
	}
	return json.Marshal(tuple)
}

// marshalPair renders a 2-element wire array, used by GetResult.
func marshalPair(a, b any) ([]byte, error) {
	return json.Marshal([2]any{a, b})
}

func copyMeta(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FromObject builds the wire meta for a filesystem/blob-backed object.
func FromObject(o *metadata.Object, ws *metadata.Workspace, userPerm metadata.Permission) ObjectMeta {
	return ObjectMeta{
		Name:             o.Name,
		Type:             string(o.Type),
		Path:             o.Path,
		CreationTime:     o.CreatedAt,
		ID:               o.ID,
		Owner:            o.CreatedBy,
		Size:             o.Size,
		UserMetadata:     o.UserMeta,
		AutoMetadata:     o.AutoMeta,
		UserPermission:   userPerm.String(),
		GlobalPermission: ws.GlobalPerm.String(),
		ShockURL:         o.ShockURL,
		Valid:            true,
	}
}

// FromWorkspace builds the wire meta synthesized for a workspace path,
// which has no Object record of its own: type is always "folder".
func FromWorkspace(ws *metadata.Workspace, userPerm metadata.Permission) ObjectMeta {
	return ObjectMeta{
		Name:             ws.Name,
		Type:             string(metadata.TypeFolder),
		Path:             "",
		CreationTime:     ws.CreatedAt,
		ID:               ws.ID,
		Owner:            ws.Owner,
		Size:             0,
		UserMetadata:     map[string]string{},
		AutoMetadata:     map[string]string{},
		UserPermission:   userPerm.String(),
		GlobalPermission: ws.GlobalPerm.String(),
		Valid:            true,
	}
}
