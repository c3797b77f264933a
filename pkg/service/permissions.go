package service

import (
	"context"
	"sort"

	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wsdomain"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// parseWirePermission accepts the full wire alphabet n|r|w|a|p|o. "p"
// marks the workspace public (at read rank) rather than naming a rank of
// its own; "o" is rejected since ownership isn't grantable.
func parseWirePermission(s string) (perm metadata.Permission, public bool, err error) {
	if s == "p" {
		return metadata.PermissionRead, true, nil
	}
	p, ok := metadata.ParsePermission(s)
	if !ok {
		return 0, false, wsdomain.InvalidArgument("unrecognized permission code: " + s)
	}
	return p, false, nil
}

// ListPermissions implements the list_permissions method: for each path,
// the caller's own read access gates whether anything is returned at all.
func (s *Service) ListPermissions(ctx context.Context, caller Caller, params ListPermissionsParams) (map[string][][2]string, error) {
	return lane.Do(ctx, s.generalLane, func() (map[string][][2]string, error) {
		return s.listPermissions(ctx, caller, params)
	})
}

func (s *Service) listPermissions(ctx context.Context, caller Caller, params ListPermissionsParams) (map[string][][2]string, error) {
	out := make(map[string][][2]string, len(params.Objects))
	for _, raw := range params.Objects {
		p := wspath.Parse(raw)
		ws, err := s.store.GetWorkspace(ctx, p.Owner, p.Workspace)
		if err != nil || !metadata.UserHasPermission(ws, caller.User, caller.AdminMode, metadata.PermissionRead) {
			out[raw] = [][2]string{}
			continue
		}

		entries := [][2]string{{"*", ws.GlobalPerm.String()}}
		users := make([]string, 0, len(ws.UserPerms))
		for u := range ws.UserPerms {
			users = append(users, u)
		}
		sort.Strings(users)
		for _, u := range users {
			entries = append(entries, [2]string{u, ws.UserPerms[u].String()})
		}
		out[raw] = entries
	}
	return out, nil
}

// SetPermissions implements set_permissions: a single workspace path,
// dispatched through the serialization lane so it observes total order
// with respect to create/copy/move and the reconciler's writes.
//
// A public workspace is a special case: only its owner or an
// admin-elevated caller may touch its permissions at all, and the same
// owner-or-admin-mode bar gates publishing a workspace (setting the new
// global permission to "p") even when the workspace isn't public yet. A
// caller who merely holds admin rank through the permission overlay
// never clears either bar.
func (s *Service) SetPermissions(ctx context.Context, caller Caller, params SetPermissionsParams) (bool, error) {
	p := wspath.Parse(params.Path)

	return lane.Do(ctx, s.serialLane, func() (bool, error) {
		ws, err := s.store.GetWorkspace(ctx, p.Owner, p.Workspace)
		if err != nil {
			return false, err
		}

		isOwnerOrAdminMode := caller.AdminMode || (caller.User != "" && caller.User == ws.Owner)

		if ws.Public {
			if !isOwnerOrAdminMode {
				return false, wsdomain.PermissionDenied(ws.Owner + "/" + ws.Name)
			}
		} else if err := requirePerm(ws, caller, metadata.PermissionAdmin); err != nil {
			return false, err
		}

		userPerms := make(map[string]metadata.Permission, len(params.Permissions))
		for _, entry := range params.Permissions {
			if len(entry) != 2 {
				return false, wsdomain.InvalidArgument("set_permissions: malformed permission entry")
			}
			user, code := entry[0], entry[1]
			perm, isPublic, err := parseWirePermission(code)
			if err != nil {
				return false, err
			}
			if isPublic {
				return false, wsdomain.InvalidArgument("set_permissions: cannot set a user permission to public")
			}
			userPerms[user] = perm
		}

		var global *metadata.Permission
		var public *bool
		if params.NewGlobalPermission != "" {
			perm, isPublic, err := parseWirePermission(params.NewGlobalPermission)
			if err != nil {
				return false, err
			}
			if isPublic {
				if !isOwnerOrAdminMode {
					return false, wsdomain.PermissionDenied(ws.Owner + "/" + ws.Name)
				}
				v := true
				public = &v
			} else {
				global = &perm
			}
		}

		if _, err := s.store.UpdateWorkspacePermissions(ctx, ws.ID, global, public, userPerms); err != nil {
			return false, err
		}
		return true, nil
	})
}
