// Package metadata defines the workspace data model and the repository
// interface that stores it: workspaces, objects, download tickets, and
// pending uploads, plus the permission algebra governing access to them.
package metadata

import "time"

// ObjectType distinguishes a folder from a file within a workspace.
type ObjectType string

const (
	TypeFolder ObjectType = "folder"
	TypeFile   ObjectType = "file"
)

// Permission is a rank on the totally-ordered scale none < read < write <
// admin < owner. A caller's effective permission on an object is the
// highest rank granted by any of: explicit ownership, global permission,
// a user-specific overlay entry, or (read-only) the public flag.
type Permission int

const (
	PermissionNone  Permission = 0
	PermissionRead  Permission = 1
	PermissionWrite Permission = 2
	PermissionAdmin Permission = 3
	PermissionOwner Permission = 4
)

// PublicPermission is the rank granted to any caller, including anonymous
// ones, when a workspace's global permission includes the public flag.
const PublicPermission = PermissionRead

// ParsePermission maps the wire-level permission letters ("n","r","w","a")
// to a Permission rank. It never returns PermissionOwner: ownership isn't
// grantable, only held by the creator.
func ParsePermission(s string) (Permission, bool) {
	switch s {
	case "n":
		return PermissionNone, true
	case "r":
		return PermissionRead, true
	case "w":
		return PermissionWrite, true
	case "a":
		return PermissionAdmin, true
	default:
		return PermissionNone, false
	}
}

// String renders the wire-level permission letter for p.
func (p Permission) String() string {
	switch p {
	case PermissionNone:
		return "n"
	case PermissionRead:
		return "r"
	case PermissionWrite:
		return "w"
	case PermissionAdmin:
		return "a"
	case PermissionOwner:
		return "o"
	default:
		return "n"
	}
}

// Workspace is a named container owned by a single user, holding a tree
// of Objects and its own permission overlay.
type Workspace struct {
	ID          string
	Owner       string
	Name        string
	GlobalPerm  Permission // permission granted to every caller, anonymous ones included
	Public      bool       // whether anonymous callers get PublicPermission
	UserPerms   map[string]Permission // per-user overlay, keyed by username
	Locked      bool                  // admin-imposed write lock, independent of permissions
	Deleted     bool
	CreatedAt   time.Time
	ModifiedAt  time.Time
	Description string
}

// EffectivePermission returns the highest rank user holds on ws, given
// adminMode (service-wide admin elevation, always PermissionOwner).
func (ws *Workspace) EffectivePermission(user string, adminMode bool) Permission {
	if adminMode {
		return PermissionOwner
	}
	if user != "" && user == ws.Owner {
		return PermissionOwner
	}
	best := PermissionNone
	if ws.Public {
		best = PublicPermission
	}
	if ws.GlobalPerm > best {
		best = ws.GlobalPerm
	}
	if user != "" {
		if p, ok := ws.UserPerms[user]; ok && p > best {
			best = p
		}
	}
	return best
}

// Object is a single node (file or folder) in a workspace's tree.
type Object struct {
	ID         string
	WorkspaceID string
	Type       ObjectType
	Path       string // folder path containing this object, "" at workspace root
	Name       string
	Size       int64
	Checksum   string // MD5 hex, empty until the backing body is known
	ShockNodeID string // non-empty iff the body lives in the blob store
	ShockURL    string
	AutoMeta   map[string]string // metadata derived from the body (e.g. content sniffing)
	UserMeta   map[string]string // caller-supplied metadata
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Pending    bool // true while awaiting set_object_size reconciliation
}

// FullPath returns the object's complete path within its workspace.
func (o *Object) FullPath() string {
	if o.Path == "" {
		return o.Name
	}
	return o.Path + "/" + o.Name
}

// DownloadTicket is a single-use, signed download authorization for one
// object, valid until ExpiresAt or until first redeemed (Used).
type DownloadTicket struct {
	ID        string
	ObjectID  string
	WorkspaceID string
	IssuedTo  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
}

// Expired reports whether the ticket is no longer redeemable at "at".
func (t *DownloadTicket) Expired(at time.Time) bool {
	return t.Used || at.After(t.ExpiresAt)
}

// PendingUpload tracks an object whose body was handed to the blob store
// before its final size was known, awaiting reconciliation by the
// pending-upload reconciler.
type PendingUpload struct {
	ObjectID    string
	ShockNodeID string
	RegisteredAt time.Time
}
