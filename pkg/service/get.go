package service

import (
	"context"
	"encoding/base64"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// GetResult pairs one object's ObjectMeta with its inline body data,
// wire-encoded as [ObjectMeta, inlineData]. InlineData is nil when the
// caller asked for metadata_only, or when the body is blob-backed (the
// caller streams that separately after being granted ACL access).
type GetResult struct {
	Meta ObjectMeta
	Data []byte
}

// MarshalJSON renders the [ObjectMeta, inlineData] wire pair, base64
// encoding Data the way encoding/json already does for a []byte field.
func (g GetResult) MarshalJSON() ([]byte, error) {
	var data any
	if g.Data != nil {
		data = base64.StdEncoding.EncodeToString(g.Data)
	}
	return marshalPair(g.Meta, data)
}

// Get implements get: metadata lookup runs on the general DB lane; for a
// filesystem-backed body it additionally reads the file inline, and for
// a blob-backed body it grants the caller's ACL so they can stream it
// separately — both data-plane steps happen after the DB phase.
func (s *Service) Get(ctx context.Context, caller Caller, params GetParams) ([]GetResult, error) {
	metas, err := lane.Do(ctx, s.generalLane, func() ([]resolvedGet, error) {
		out := make([]resolvedGet, 0, len(params.Objects))
		for _, raw := range params.Objects {
			rg, err := s.getOne(ctx, caller, raw)
			if err != nil {
				logger.WarnCtx(ctx, "get: object failed", logger.Path(raw), logger.Err(err))
				out = append(out, resolvedGet{meta: ErrorMeta(err.Error())})
				continue
			}
			out = append(out, rg)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]GetResult, 0, len(metas))
	for _, rg := range metas {
		if !rg.meta.Valid || params.MetadataOnly || rg.obj == nil {
			results = append(results, GetResult{Meta: rg.meta})
			continue
		}
		if rg.obj.ShockNodeID != "" {
			if caller.User != "" {
				if err := s.blobStore.AddACLUser(ctx, rg.obj.ShockNodeID, caller.User); err != nil {
					logger.WarnCtx(ctx, "get: blob acl grant failed", logger.ObjectID(rg.obj.ID), logger.Err(err))
				}
			}
			results = append(results, GetResult{Meta: rg.meta})
			continue
		}
		data, err := s.bodies.ReadObject(rg.ws.Owner, rg.ws.Name, rg.obj.Path, rg.obj.Name)
		if err != nil {
			logger.WarnCtx(ctx, "get: inline read failed", logger.ObjectID(rg.obj.ID), logger.Err(err))
			results = append(results, GetResult{Meta: ErrorMeta(err.Error())})
			continue
		}
		results = append(results, GetResult{Meta: rg.meta, Data: data})
	}
	return results, nil
}

type resolvedGet struct {
	meta ObjectMeta
	ws   *metadata.Workspace
	obj  *metadata.Object
}

func (s *Service) getOne(ctx context.Context, caller Caller, raw string) (resolvedGet, error) {
	p := wspath.Parse(raw)
	ws, err := s.store.GetWorkspace(ctx, p.Owner, p.Workspace)
	if err != nil {
		return resolvedGet{}, err
	}
	if err := requirePerm(ws, caller, metadata.PermissionRead); err != nil {
		return resolvedGet{}, err
	}
	if p.Name == "" {
		return resolvedGet{meta: FromWorkspace(ws, ws.EffectivePermission(caller.User, caller.AdminMode))}, nil
	}
	obj, err := s.store.GetObject(ctx, ws.ID, p.Path, p.Name)
	if err != nil {
		return resolvedGet{}, err
	}
	perm := ws.EffectivePermission(caller.User, caller.AdminMode)
	return resolvedGet{meta: FromObject(obj, ws, perm), ws: ws, obj: obj}, nil
}
