package service

import (
	"context"

	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wsdomain"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// resolved bundles a parsed path with its workspace and (if found) object.
type resolved struct {
	p   wspath.WSPath
	ws  *metadata.Workspace
	obj *metadata.Object // nil if the path names the workspace itself, or isn't found
}

// resolvePath looks up the workspace named by p and, if p addresses an
// object beneath it, that object too. A missing object is not an error
// here — callers decide whether that's expected (get/delete) or fine
// (create, ls of a not-yet-existing path).
func (s *Service) resolvePath(ctx context.Context, p wspath.WSPath) (*resolved, error) {
	ws, err := s.store.GetWorkspace(ctx, p.Owner, p.Workspace)
	if err != nil {
		return nil, err
	}
	r := &resolved{p: p, ws: ws}
	if p.Name == "" {
		return r, nil
	}
	obj, err := s.store.GetObject(ctx, ws.ID, p.Path, p.Name)
	if err != nil {
		if code, ok := wsdomain.CodeOf(err); ok && code == wsdomain.ErrNotFound {
			return r, nil
		}
		return nil, err
	}
	r.obj = obj
	return r, nil
}

// requirePerm checks caller's effective permission on ws against required,
// returning a permission-denied domain error if insufficient.
func requirePerm(ws *metadata.Workspace, caller Caller, required metadata.Permission) error {
	if !metadata.UserHasPermission(ws, caller.User, caller.AdminMode, required) {
		return wsdomain.PermissionDenied(ws.Owner + "/" + ws.Name)
	}
	return nil
}
