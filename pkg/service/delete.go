package service

import (
	"context"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wsdomain"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// Delete implements the delete method on the general DB lane: deletion
// doesn't need the serialization lane's total order, only per-object
// write access and the DB's own row-level atomicity. Each failure is
// local to its object; the RPC as a whole still succeeds.
func (s *Service) Delete(ctx context.Context, caller Caller, params DeleteParams) ([]ObjectMeta, error) {
	return lane.Do(ctx, s.generalLane, func() ([]ObjectMeta, error) {
		out := make([]ObjectMeta, 0, len(params.Objects))
		for _, raw := range params.Objects {
			meta, err := s.deleteOne(ctx, caller, params, raw)
			if err != nil {
				logger.WarnCtx(ctx, "delete: object failed", logger.Path(raw), logger.Err(err))
				out = append(out, ErrorMeta(err.Error()))
				continue
			}
			out = append(out, meta)
		}
		return out, nil
	})
}

func (s *Service) deleteOne(ctx context.Context, caller Caller, params DeleteParams, raw string) (ObjectMeta, error) {
	p := wspath.Parse(raw)
	ws, err := s.store.GetWorkspace(ctx, p.Owner, p.Workspace)
	if err != nil {
		return ObjectMeta{}, err
	}
	if err := requirePerm(ws, caller, metadata.PermissionWrite); err != nil {
		return ObjectMeta{}, err
	}

	obj, err := s.store.GetObject(ctx, ws.ID, p.Path, p.Name)
	if err != nil {
		return ObjectMeta{}, err
	}

	if obj.Type == metadata.TypeFolder {
		if !params.DeleteDirectories {
			return ObjectMeta{}, wsdomain.InvalidArgument("delete: " + raw + " is a folder; set deleteDirectories")
		}
		children, err := s.store.ListObjects(ctx, ws.ID, obj.FullPath(), true)
		if err != nil {
			return ObjectMeta{}, err
		}
		if len(children) > 0 && !params.Force {
			return ObjectMeta{}, wsdomain.Conflict(raw, "folder not empty")
		}
		for _, child := range children {
			s.scheduleBodyRemoval(ctx, ws, child)
		}
		if err := s.store.RemoveFolderAndContents(ctx, obj.ID); err != nil {
			return ObjectMeta{}, err
		}
		if err := s.bodies.Remove(ws.Owner, ws.Name, obj.Path, obj.Name); err != nil {
			logger.WarnCtx(ctx, "delete: folder body removal failed", logger.ObjectID(obj.ID), logger.Err(err))
		}
	} else {
		if err := s.store.RemoveObject(ctx, obj.ID); err != nil {
			return ObjectMeta{}, err
		}
		s.scheduleBodyRemoval(ctx, ws, obj)
	}

	return FromObject(obj, ws, ws.EffectivePermission(caller.User, caller.AdminMode)), nil
}
