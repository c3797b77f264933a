package metadata

import "context"

// Store is the repository interface the service layer (and tests) code
// against. Implementations: memory.Store for tests and the end-to-end
// scenarios, mongostore.Store backed by go.mongodb.org/mongo-driver for
// production. Every method is safe for concurrent use; callers on the
// serialization lane rely on that lane, not the Store, for ordering.
//
// Permission checking is the caller's responsibility: Store methods trust
// the caller already resolved EffectivePermission and found it sufficient.
// Service methods own permission checks; store methods stay CRUD-only.
type Store interface {
	// ------------------------------------------------------------------
	// Workspaces
	// ------------------------------------------------------------------

	// CreateWorkspace creates a new workspace owned by owner. Returns
	// wsdomain.ErrAlreadyExists if owner already has a workspace named name.
	CreateWorkspace(ctx context.Context, owner, name string) (*Workspace, error)

	// GetWorkspace looks up a workspace by owner and name. Returns
	// wsdomain.ErrNotFound if it doesn't exist or is soft-deleted.
	GetWorkspace(ctx context.Context, owner, name string) (*Workspace, error)

	// GetWorkspaceByID looks up a workspace by its id.
	GetWorkspaceByID(ctx context.Context, id string) (*Workspace, error)

	// ListWorkspaces returns every non-deleted workspace owner holds at
	// least PermissionRead on (including via global/public permission).
	ListWorkspaces(ctx context.Context, owner string) ([]*Workspace, error)

	// DeleteWorkspace soft-deletes a workspace and permanently removes all
	// of its objects.
	DeleteWorkspace(ctx context.Context, id string) error

	// UpdateWorkspacePermissions applies a permission mutation: global
	// rank, public flag, and/or a per-user overlay entry. A zero
	// Permission value for a user entry removes that user's override.
	UpdateWorkspacePermissions(ctx context.Context, id string, global *Permission, public *bool, userPerms map[string]Permission) (*Workspace, error)

	// SetWorkspaceLocked sets or clears a workspace's admin write lock.
	SetWorkspaceLocked(ctx context.Context, id string, locked bool) error

	// ------------------------------------------------------------------
	// Objects
	// ------------------------------------------------------------------

	// CreateObject creates a new object (folder or file) at path/name
	// within workspaceID. Returns wsdomain.ErrAlreadyExists if an object
	// with that name already exists at that path.
	CreateObject(ctx context.Context, obj *Object) (*Object, error)

	// GetObject looks up a single object by workspace, path, and name.
	GetObject(ctx context.Context, workspaceID, path, name string) (*Object, error)

	// GetObjectByID looks up an object by its id.
	GetObjectByID(ctx context.Context, id string) (*Object, error)

	// ListObjects lists the immediate children at path within workspaceID.
	// recursive additionally includes all descendants.
	ListObjects(ctx context.Context, workspaceID, path string, recursive bool) ([]*Object, error)

	// UpdateObjectMeta replaces an object's user-supplied metadata.
	UpdateObjectMeta(ctx context.Context, id string, userMeta map[string]string) (*Object, error)

	// UpdateObjectAutoMeta replaces an object's body-derived metadata and
	// size/checksum.
	UpdateObjectAutoMeta(ctx context.Context, id string, size int64, checksum string, autoMeta map[string]string) (*Object, error)

	// RemoveObject deletes a single file object, or an empty folder
	// object. Returns wsdomain.ErrConflict if id names a non-empty folder.
	RemoveObject(ctx context.Context, id string) error

	// RemoveFolderAndContents recursively deletes a folder and everything
	// beneath it.
	RemoveFolderAndContents(ctx context.Context, id string) error

	// PerformCopy duplicates the object tree rooted at srcID to
	// destWorkspaceID/destPath/destName. Returns the newly created root
	// object. The blob body is shared by reference (ShockNodeID copied,
	// not the bytes), per the workspace's copy-on-write posture toward
	// the blob store.
	PerformCopy(ctx context.Context, srcID, destWorkspaceID, destPath, destName string) (*Object, error)

	// PerformMove relocates the object tree rooted at srcID to
	// destWorkspaceID/destPath/destName, updating Path/Name/WorkspaceID
	// on every descendant in place; object ids are preserved.
	PerformMove(ctx context.Context, srcID, destWorkspaceID, destPath, destName string) (*Object, error)

	// ------------------------------------------------------------------
	// Download tickets
	// ------------------------------------------------------------------

	// InsertDownloadTicket records a new single-use download authorization.
	InsertDownloadTicket(ctx context.Context, t *DownloadTicket) error

	// LookupDownloadTicket retrieves a ticket by id.
	LookupDownloadTicket(ctx context.Context, id string) (*DownloadTicket, error)

	// MarkDownloadTicketUsed marks a ticket redeemed so it can't be reused.
	MarkDownloadTicketUsed(ctx context.Context, id string) error

	// ------------------------------------------------------------------
	// Pending uploads
	// ------------------------------------------------------------------

	// InsertPendingUpload registers an object awaiting size reconciliation.
	InsertPendingUpload(ctx context.Context, p *PendingUpload) error

	// ListPendingUploads returns every outstanding pending upload, for the
	// reconciler's poll loop.
	ListPendingUploads(ctx context.Context) ([]*PendingUpload, error)

	// RemovePendingUpload clears a pending upload once reconciled.
	RemovePendingUpload(ctx context.Context, objectID string) error

	// SetObjectSize finalizes an object's size and checksum once the blob
	// store reports the committed body, and removes its pending-upload
	// entry. This is the operation the serialization lane exists for.
	SetObjectSize(ctx context.Context, objectID string, size int64, checksum string) (*Object, error)
}
