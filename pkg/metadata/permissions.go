package metadata

import "context"

// UserHasPermission reports whether user (adminMode elevating them to
// PermissionOwner regardless of overlay) holds at least required rank on
// ws. An empty user is treated as anonymous: it holds the workspace's
// public rank and its global permission, never an owner or per-user rank.
func UserHasPermission(ws *Workspace, user string, adminMode bool, required Permission) bool {
	return ws.EffectivePermission(user, adminMode) >= required
}

// EffectivePermission resolves the permission a user holds on a workspace
// looked up by owner/name, returning wsdomain.ErrNotFound if it doesn't
// exist. This is the entry point service methods use before touching any
// object beneath the workspace.
func EffectivePermission(ctx context.Context, store Store, owner, wsName, user string, adminMode bool) (Permission, *Workspace, error) {
	ws, err := store.GetWorkspace(ctx, owner, wsName)
	if err != nil {
		return PermissionNone, nil, err
	}
	return ws.EffectivePermission(user, adminMode), ws, nil
}

// RequirePermission resolves the workspace named by owner/wsName and
// returns it if user holds at least required rank, or a
// wsdomain.ErrPermissionDenied domain error otherwise.
func RequirePermission(ctx context.Context, store Store, owner, wsName, user string, adminMode bool, required Permission) (*Workspace, error) {
	perm, ws, err := EffectivePermission(ctx, store, owner, wsName, user, adminMode)
	if err != nil {
		return nil, err
	}
	if perm < required {
		return nil, permissionDenied(ownerWSPath(owner, wsName))
	}
	return ws, nil
}

func ownerWSPath(owner, wsName string) string {
	if wsName == "" {
		return "/" + owner
	}
	return "/" + owner + "/" + wsName
}
