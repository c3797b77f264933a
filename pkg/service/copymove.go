package service

import (
	"context"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wsdomain"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// Copy implements both copy and move (params.Move selects the latter):
// source tree duplication/relocation is handled by the metadata store's
// PerformCopy/PerformMove, which already walk the full descendant tree;
// this method resolves both sides, checks permissions, and for move,
// removes the source after a successful copy.
func (s *Service) Copy(ctx context.Context, caller Caller, params CopyParams) ([]ObjectMeta, error) {
	return lane.Do(ctx, s.serialLane, func() ([]ObjectMeta, error) {
		out := make([]ObjectMeta, 0, len(params.Objects))
		for _, in := range params.Objects {
			meta, err := s.copyOne(ctx, caller, params, in)
			if err != nil {
				logger.WarnCtx(ctx, "copy: object failed", logger.OldPath(in.From), logger.NewPath(in.To), logger.Err(err))
				out = append(out, ErrorMeta(err.Error()))
				continue
			}
			out = append(out, meta)
		}
		return out, nil
	})
}

func (s *Service) copyOne(ctx context.Context, caller Caller, params CopyParams, in copyInput) (ObjectMeta, error) {
	srcP := wspath.Parse(in.From)
	dstP := wspath.Parse(in.To)

	srcWS, err := s.store.GetWorkspace(ctx, srcP.Owner, srcP.Workspace)
	if err != nil {
		return ObjectMeta{}, err
	}
	if err := requirePerm(srcWS, caller, metadata.PermissionRead); err != nil {
		return ObjectMeta{}, err
	}
	srcObj, err := s.store.GetObject(ctx, srcWS.ID, srcP.Path, srcP.Name)
	if err != nil {
		return ObjectMeta{}, err
	}

	dstWS, err := s.store.GetWorkspace(ctx, dstP.Owner, dstP.Workspace)
	if err != nil {
		return ObjectMeta{}, err
	}
	if err := requirePerm(dstWS, caller, metadata.PermissionWrite); err != nil {
		return ObjectMeta{}, err
	}

	if srcObj.Type == metadata.TypeFolder && !params.Recursive {
		return ObjectMeta{}, wsdomain.InvalidArgument("copy: " + in.From + " is a folder; set recursive")
	}

	dstObj, err := s.store.GetObject(ctx, dstWS.ID, dstP.Path, dstP.Name)
	dstExists := true
	if err != nil {
		if code, ok := wsdomain.CodeOf(err); ok && code == wsdomain.ErrNotFound {
			dstExists = false
		} else {
			return ObjectMeta{}, err
		}
	}
	if dstExists {
		if srcObj.Type == metadata.TypeFolder && dstObj.Type != metadata.TypeFolder {
			return ObjectMeta{}, wsdomain.InvalidArgument("copy: destination " + in.To + " exists and is not a folder")
		}
		if srcObj.Type != metadata.TypeFolder && !params.Overwrite {
			return ObjectMeta{}, wsdomain.AlreadyExists(in.To)
		}
	} else if dstP.Path != "" {
		parentPath, parentName := splitParent(dstP.Path)
		if _, err := s.store.GetObject(ctx, dstWS.ID, parentPath, parentName); err != nil {
			return ObjectMeta{}, wsdomain.InvalidArgument("copy: destination parent folder does not exist for " + in.To)
		}
	}

	var result *metadata.Object
	if params.Move {
		result, err = s.store.PerformMove(ctx, srcObj.ID, dstWS.ID, dstP.Path, dstP.Name)
	} else {
		result, err = s.store.PerformCopy(ctx, srcObj.ID, dstWS.ID, dstP.Path, dstP.Name)
	}
	if err != nil {
		return ObjectMeta{}, err
	}

	if err := s.copyOrMoveBody(ctx, srcWS, srcObj, dstWS, result, params.Move); err != nil {
		return ObjectMeta{}, err
	}

	return FromObject(result, dstWS, dstWS.EffectivePermission(caller.User, caller.AdminMode)), nil
}

// copyOrMoveBody relocates a filesystem-backed body alongside the
// metadata move/copy. Blob-backed bodies need no filesystem action: the
// blob node is shared by reference and the ShockNodeID already travels
// with the copied/moved Object row. A folder's descendants are handled
// the same way, one child at a time.
func (s *Service) copyOrMoveBody(ctx context.Context, srcWS *metadata.Workspace, srcObj *metadata.Object, dstWS *metadata.Workspace, dst *metadata.Object, move bool) error {
	if srcObj.Type == metadata.TypeFolder {
		if err := s.bodies.EnsureFolder(dstWS.Owner, dstWS.Name, dst.Path, dst.Name); err != nil {
			return err
		}
		children, err := s.store.ListObjects(ctx, dstWS.ID, dst.FullPath(), false)
		if err != nil {
			return err
		}
		for _, child := range children {
			from := *child
			from.Path = srcObj.FullPath()
			if err := s.copyOrMoveBody(ctx, srcWS, &from, dstWS, child, move); err != nil {
				return err
			}
		}
		return nil
	}
	if srcObj.ShockNodeID != "" {
		return nil
	}
	if err := s.bodies.CopyObject(srcWS.Owner, srcWS.Name, srcObj.Path, srcObj.Name, dstWS.Owner, dstWS.Name, dst.Path, dst.Name); err != nil {
		return err
	}
	if move {
		return s.bodies.Remove(srcWS.Owner, srcWS.Name, srcObj.Path, srcObj.Name)
	}
	return nil
}
