package service

import (
	"context"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// UpdateMetadata implements update_metadata on the serialization lane,
// the same lane create and set_permissions use, since it mutates the
// same object rows they do.
func (s *Service) UpdateMetadata(ctx context.Context, caller Caller, whitelist *TypeWhitelist, params UpdateMetadataParams) ([]ObjectMeta, error) {
	return lane.Do(ctx, s.serialLane, func() ([]ObjectMeta, error) {
		out := make([]ObjectMeta, 0, len(params.Objects))
		for _, in := range params.Objects {
			meta, err := s.updateMetadataOne(ctx, caller, whitelist, params, in)
			if err != nil {
				logger.WarnCtx(ctx, "update_metadata: object failed", logger.Path(in.Path), logger.Err(err))
				out = append(out, ErrorMeta(err.Error()))
				continue
			}
			out = append(out, meta)
		}
		return out, nil
	})
}

func (s *Service) updateMetadataOne(ctx context.Context, caller Caller, whitelist *TypeWhitelist, params UpdateMetadataParams, in updateMetadataInput) (ObjectMeta, error) {
	p := wspath.Parse(in.Path)
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

	if in.Type != "" {
		if _, err := whitelist.Canonicalize(in.Type); err != nil {
			return ObjectMeta{}, err
		}
	}

	newMeta := in.UserMeta
	if params.Append {
		merged := make(map[string]string, len(obj.UserMeta)+len(in.UserMeta))
		for k, v := range obj.UserMeta {
			merged[k] = v
		}
		for k, v := range in.UserMeta {
			merged[k] = v
		}
		newMeta = merged
	}

	updated, err := s.store.UpdateObjectMeta(ctx, obj.ID, newMeta)
	if err != nil {
		return ObjectMeta{}, err
	}
	return FromObject(updated, ws, ws.EffectivePermission(caller.User, caller.AdminMode)), nil
}

// UpdateAutoMeta implements update_auto_meta: a caller-triggered,
// synchronous counterpart to the poll-driven reconciler, for a caller
// that already knows its upload finished and doesn't want to wait out
// the poll interval.
func (s *Service) UpdateAutoMeta(ctx context.Context, caller Caller, params UpdateAutoMetaParams) ([]ObjectMeta, error) {
	out := make([]ObjectMeta, 0, len(params.Objects))
	for _, raw := range params.Objects {
		meta, err := s.updateAutoMetaOne(ctx, caller, raw)
		if err != nil {
			logger.WarnCtx(ctx, "update_auto_meta: object failed", logger.Path(raw), logger.Err(err))
			out = append(out, ErrorMeta(err.Error()))
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

func (s *Service) updateAutoMetaOne(ctx context.Context, caller Caller, raw string) (ObjectMeta, error) {
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
	if obj.ShockNodeID == "" {
		return FromObject(obj, ws, ws.EffectivePermission(caller.User, caller.AdminMode)), nil
	}

	updated, err := s.reconciler.UpdateAutoMeta(ctx, obj.ID, obj.ShockNodeID)
	if err != nil {
		return ObjectMeta{}, err
	}
	return FromObject(updated, ws, ws.EffectivePermission(caller.User, caller.AdminMode)), nil
}
