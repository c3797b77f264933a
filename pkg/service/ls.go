package service

import (
	"context"

	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// Ls implements ls on the general DB lane: a path that fails to parse
// down to anything (bare "/") lists every accessible workspace; an
// owner-only path lists that owner's workspaces; anything else lists the
// objects beneath it.
func (s *Service) Ls(ctx context.Context, caller Caller, params LsParams) (map[string][]ObjectMeta, error) {
	return lane.Do(ctx, s.generalLane, func() (map[string][]ObjectMeta, error) {
		out := make(map[string][]ObjectMeta, len(params.Paths))
		for _, raw := range params.Paths {
			metas, err := s.lsOne(ctx, caller, params, raw)
			if err != nil {
				out[raw] = []ObjectMeta{ErrorMeta(err.Error())}
				continue
			}
			out[raw] = metas
		}
		return out, nil
	})
}

func (s *Service) lsOne(ctx context.Context, caller Caller, params LsParams, raw string) ([]ObjectMeta, error) {
	p := wspath.Parse(raw)

	if p.IsRoot() {
		all, err := s.store.ListWorkspaces(ctx, caller.User)
		if err != nil {
			return nil, err
		}
		return s.workspaceMetas(all, caller), nil
	}

	if p.IsOwnerOnly() {
		all, err := s.store.ListWorkspaces(ctx, p.Owner)
		if err != nil {
			return nil, err
		}
		var visible []*metadata.Workspace
		for _, ws := range all {
			if ws.Owner == p.Owner && metadata.UserHasPermission(ws, caller.User, caller.AdminMode, metadata.PermissionRead) {
				visible = append(visible, ws)
			}
		}
		return s.workspaceMetas(visible, caller), nil
	}

	ws, err := s.store.GetWorkspace(ctx, p.Owner, p.Workspace)
	if err != nil {
		return nil, err
	}
	if err := requirePerm(ws, caller, metadata.PermissionRead); err != nil {
		return nil, err
	}

	listPath := p.FullPath()
	if p.Name != "" {
		obj, err := s.store.GetObject(ctx, ws.ID, p.Path, p.Name)
		if err != nil {
			return nil, err
		}
		if obj.Type != metadata.TypeFolder {
			perm := ws.EffectivePermission(caller.User, caller.AdminMode)
			return []ObjectMeta{FromObject(obj, ws, perm)}, nil
		}
	}

	children, err := s.store.ListObjects(ctx, ws.ID, listPath, params.Recursive)
	if err != nil {
		return nil, err
	}
	perm := ws.EffectivePermission(caller.User, caller.AdminMode)
	metas := make([]ObjectMeta, 0, len(children))
	for _, c := range children {
		if params.ExcludeDirectories && c.Type == metadata.TypeFolder {
			continue
		}
		if params.ExcludeObjects && c.Type != metadata.TypeFolder {
			continue
		}
		metas = append(metas, FromObject(c, ws, perm))
	}
	return metas, nil
}

func (s *Service) workspaceMetas(all []*metadata.Workspace, caller Caller) []ObjectMeta {
	metas := make([]ObjectMeta, 0, len(all))
	for _, ws := range all {
		metas = append(metas, FromWorkspace(ws, ws.EffectivePermission(caller.User, caller.AdminMode)))
	}
	return metas
}
