package service

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wsdomain"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// Create implements the create method. The whole batch runs as one unit
// of work on the serialization lane, so objects within a single call (and
// across calls) are created in a total order with respect to every other
// serialization-lane operation.
func (s *Service) Create(ctx context.Context, caller Caller, whitelist *TypeWhitelist, params CreateParams) ([]ObjectMeta, error) {
	return lane.Do(ctx, s.serialLane, func() ([]ObjectMeta, error) {
		out := make([]ObjectMeta, 0, len(params.Objects))
		for _, in := range params.Objects {
			meta, err := s.createOne(ctx, caller, whitelist, params, in)
			if err != nil {
				logger.WarnCtx(ctx, "create: object failed", logger.Path(in.Path), logger.Err(err))
				out = append(out, ErrorMeta(err.Error()))
				continue
			}
			out = append(out, meta)
		}
		return out, nil
	})
}

func (s *Service) createOne(ctx context.Context, caller Caller, whitelist *TypeWhitelist, params CreateParams, in createInput) (ObjectMeta, error) {
	// Step 1: canonicalize type, default creation time, assign a uuid.
	objType, err := whitelist.Canonicalize(in.Type)
	if err != nil {
		return ObjectMeta{}, err
	}
	creationTime := in.CreationTime
	if creationTime.IsZero() {
		creationTime = time.Now().UTC()
	}
	objID := uuid.NewString()

	// Step 2: parse the path; auto-create the workspace if needed.
	p := wspath.Parse(in.Path)
	if !wspath.HasValidName(p.Owner) {
		return ObjectMeta{}, wsdomain.InvalidArgument("create: missing owner in path " + in.Path)
	}
	ws, err := s.store.GetWorkspace(ctx, p.Owner, p.Workspace)
	if err != nil {
		if code, ok := wsdomain.CodeOf(err); !ok || code != wsdomain.ErrNotFound {
			return ObjectMeta{}, err
		}
		if caller.User != p.Owner && !caller.AdminMode {
			return ObjectMeta{}, wsdomain.PermissionDenied(in.Path)
		}
		if !IsFolderKind(objType) {
			return ObjectMeta{}, wsdomain.InvalidArgument("create: first object under a new workspace must be folder-kind")
		}
		if !wspath.HasValidName(p.Workspace) {
			return ObjectMeta{}, wsdomain.InvalidArgument("create: invalid workspace name in path " + in.Path)
		}
		ws, err = s.store.CreateWorkspace(ctx, p.Owner, p.Workspace)
		if err != nil {
			return ObjectMeta{}, err
		}
		if err := s.bodies.EnsureWorkspaceRoot(p.Owner, p.Workspace); err != nil {
			return ObjectMeta{}, err
		}
		if p.Name == "" {
			return FromWorkspace(ws, metadata.PermissionOwner), nil
		}
	} else if p.Name == "" {
		// Workspace-only request against an existing workspace.
		perm := ws.EffectivePermission(caller.User, caller.AdminMode)
		return FromWorkspace(ws, perm), nil
	}

	// Step 3: require write access to the workspace.
	if err := requirePerm(ws, caller, metadata.PermissionWrite); err != nil {
		return ObjectMeta{}, err
	}

	// Step 4: inspect any existing object at this path.
	existing, err := s.store.GetObject(ctx, ws.ID, p.Path, p.Name)
	existed := true
	if err != nil {
		if code, ok := wsdomain.CodeOf(err); ok && code == wsdomain.ErrNotFound {
			existed = false
		} else {
			return ObjectMeta{}, err
		}
	}
	if existed {
		switch {
		case existing.Type == metadata.TypeFolder && IsFolderKind(objType):
			return FromObject(existing, ws, ws.EffectivePermission(caller.User, caller.AdminMode)), nil
		case existing.Type == metadata.TypeFolder || IsFolderKind(objType):
			return ObjectMeta{}, wsdomain.InvalidArgument("create: cannot change object kind at " + in.Path)
		case !params.Overwrite:
			return ObjectMeta{}, wsdomain.AlreadyExists(in.Path)
		}
	}

	// Step 5: synthesize any missing intermediate folders, shallowest first.
	if err := s.ensureIntermediateFolders(ctx, ws, p, caller); err != nil {
		return ObjectMeta{}, err
	}

	obj := &metadata.Object{
		ID:          objID,
		WorkspaceID: ws.ID,
		Type:        metadata.ObjectType(objType),
		Path:        p.Path,
		Name:        p.Name,
		UserMeta:    in.UserMeta,
		AutoMeta:    map[string]string{},
		CreatedBy:   caller.User,
		CreatedAt:   creationTime,
		ModifiedAt:  creationTime,
	}

	// Step 6: upload-node creation against the blob store.
	if params.CreateUploadNodes && !IsFolderKind(objType) {
		node, err := s.blobStore.CreateNode(ctx, objID, bytes.NewReader(nil))
		if err != nil {
			return ObjectMeta{}, wsdomain.NewError(wsdomain.ErrUpstream, "create upload node: "+err.Error())
		}
		if err := s.blobStore.AddACLUser(ctx, node.ID, caller.User); err != nil {
			return ObjectMeta{}, wsdomain.NewError(wsdomain.ErrUpstream, "grant upload acl: "+err.Error())
		}
		obj.ShockNodeID = node.ID
		obj.Pending = true
	} else if in.HasData && !IsFolderKind(objType) {
		if err := s.bodies.WriteObject(ws.Owner, ws.Name, p.Path, p.Name, in.Data); err != nil {
			return ObjectMeta{}, err
		}
		obj.Size = int64(len(in.Data))
	}

	// Step 7: an overwrite of an existing non-folder body schedules
	// removal of the old body; the database row is replaced outright.
	if existed && existing.Type != metadata.TypeFolder {
		// A new inline body has already been written over the old file.
		if obj.ShockNodeID != "" || !in.HasData {
			s.scheduleBodyRemoval(ctx, ws, existing)
		}
		if err := s.store.RemoveObject(ctx, existing.ID); err != nil {
			return ObjectMeta{}, err
		}
	}

	// Step 8: create the folder's backing directory (if any), then the object row.
	if IsFolderKind(objType) {
		if err := s.bodies.EnsureFolder(ws.Owner, ws.Name, p.Path, p.Name); err != nil {
			return ObjectMeta{}, err
		}
	}
	created, err := s.store.CreateObject(ctx, obj)
	if err != nil {
		return ObjectMeta{}, err
	}
	if params.CreateUploadNodes {
		if err := s.store.InsertPendingUpload(ctx, &metadata.PendingUpload{ObjectID: created.ID, ShockNodeID: created.ShockNodeID}); err != nil {
			return ObjectMeta{}, err
		}
	}

	return FromObject(created, ws, ws.EffectivePermission(caller.User, caller.AdminMode)), nil
}

// ensureIntermediateFolders walks p's ancestor chain from the workspace
// root downward, creating any folder that doesn't yet exist — shallowest
// first, so a deeper create never races ahead of its own parent.
func (s *Service) ensureIntermediateFolders(ctx context.Context, ws *metadata.Workspace, p wspath.WSPath, caller Caller) error {
	if p.Path == "" {
		return nil
	}
	segments := strings.Split(p.Path, "/")
	var built strings.Builder
	for i, seg := range segments {
		if i > 0 {
			built.WriteByte('/')
		}
		built.WriteString(seg)
		folderPath, folderName := splitParent(built.String())
		if _, err := s.store.GetObject(ctx, ws.ID, folderPath, folderName); err == nil {
			continue
		} else if code, ok := wsdomain.CodeOf(err); !ok || code != wsdomain.ErrNotFound {
			return err
		}
		if err := s.bodies.EnsureFolder(ws.Owner, ws.Name, folderPath, folderName); err != nil {
			return err
		}
		if _, err := s.store.CreateObject(ctx, &metadata.Object{
			WorkspaceID: ws.ID,
			Type:        metadata.TypeFolder,
			Path:        folderPath,
			Name:        folderName,
			AutoMeta:    map[string]string{},
			UserMeta:    map[string]string{},
			CreatedBy:   caller.User,
			CreatedAt:   time.Now().UTC(),
			ModifiedAt:  time.Now().UTC(),
		}); err != nil {
			if code, ok := wsdomain.CodeOf(err); !ok || code != wsdomain.ErrAlreadyExists {
				return err
			}
		}
	}
	return nil
}

func splitParent(full string) (path, name string) {
	idx := strings.LastIndexByte(full, '/')
	if idx < 0 {
		return "", full
	}
	return full[:idx], full[idx+1:]
}

// scheduleBodyRemoval removes an object's old filesystem body inline, on
// a best-effort basis: a failure is logged, not returned. The database
// row is the source of truth for deletion, so a failure leaves an
// orphaned body on disk, never an orphaned reference to one. Blob-backed
// bodies are left in place.
func (s *Service) scheduleBodyRemoval(ctx context.Context, ws *metadata.Workspace, obj *metadata.Object) {
	if obj.ShockNodeID != "" {
		return // blob bodies are reference-counted by nothing; left in place
	}
	if err := s.bodies.Remove(ws.Owner, ws.Name, obj.Path, obj.Name); err != nil {
		logger.WarnCtx(ctx, "create: stale body removal failed", logger.ObjectID(obj.ID), logger.Err(err))
	}
}
