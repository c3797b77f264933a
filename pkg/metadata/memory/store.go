// Package memory is an in-memory metadata.Store, used by unit and
// end-to-end tests so they don't need a running MongoDB.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wsobjects/wsd/pkg/metadata"
)

// Store is a metadata.Store backed by plain maps guarded by a single
// RWMutex. Good enough for tests; never used in production.
type Store struct {
	mu sync.RWMutex

	workspaces map[string]*metadata.Workspace // id -> workspace
	objects    map[string]*metadata.Object    // id -> object
	tickets    map[string]*metadata.DownloadTicket
	pending    map[string]*metadata.PendingUpload // objectID -> pending upload
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		workspaces: make(map[string]*metadata.Workspace),
		objects:    make(map[string]*metadata.Object),
		tickets:    make(map[string]*metadata.DownloadTicket),
		pending:    make(map[string]*metadata.PendingUpload),
	}
}

func (s *Store) findWorkspace(owner, name string) *metadata.Workspace {
	for _, ws := range s.workspaces {
		if ws.Owner == owner && ws.Name == name && !ws.Deleted {
			return ws
		}
	}
	return nil
}

func (s *Store) CreateWorkspace(ctx context.Context, owner, name string) (*metadata.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findWorkspace(owner, name) != nil {
		return nil, alreadyExists(owner, name)
	}

	now := time.Now()
	ws := &metadata.Workspace{
		ID:         uuid.NewString(),
		Owner:      owner,
		Name:       name,
		UserPerms:  make(map[string]metadata.Permission),
		CreatedAt:  now,
		ModifiedAt: now,
	}
	s.workspaces[ws.ID] = ws
	return cloneWorkspace(ws), nil
}

func (s *Store) GetWorkspace(ctx context.Context, owner, name string) (*metadata.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws := s.findWorkspace(owner, name)
	if ws == nil {
		return nil, notFound(owner, name)
	}
	return cloneWorkspace(ws), nil
}

func (s *Store) GetWorkspaceByID(ctx context.Context, id string) (*metadata.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[id]
	if !ok || ws.Deleted {
		return nil, notFoundID(id)
	}
	return cloneWorkspace(ws), nil
}

func (s *Store) ListWorkspaces(ctx context.Context, owner string) ([]*metadata.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*metadata.Workspace
	for _, ws := range s.workspaces {
		if ws.Deleted {
			continue
		}
		if ws.Owner == owner || ws.Public || ws.GlobalPerm > metadata.PermissionNone || ws.UserPerms[owner] > metadata.PermissionNone {
			out = append(out, cloneWorkspace(ws))
		}
	}
	return out, nil
}

func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[id]
	if !ok || ws.Deleted {
		return notFoundID(id)
	}
	ws.Deleted = true
	ws.ModifiedAt = time.Now()
	for _, obj := range s.objects {
		if obj.WorkspaceID == id {
			delete(s.objects, obj.ID)
		}
	}
	return nil
}

func (s *Store) UpdateWorkspacePermissions(ctx context.Context, id string, global *metadata.Permission, public *bool, userPerms map[string]metadata.Permission) (*metadata.Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[id]
	if !ok || ws.Deleted {
		return nil, notFoundID(id)
	}
	if global != nil {
		ws.GlobalPerm = *global
	}
	if public != nil {
		ws.Public = *public
	}
	for user, perm := range userPerms {
		if perm == metadata.PermissionNone {
			delete(ws.UserPerms, user)
		} else {
			ws.UserPerms[user] = perm
		}
	}
	ws.ModifiedAt = time.Now()
	return cloneWorkspace(ws), nil
}

func (s *Store) SetWorkspaceLocked(ctx context.Context, id string, locked bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.workspaces[id]
	if !ok || ws.Deleted {
		return notFoundID(id)
	}
	ws.Locked = locked
	ws.ModifiedAt = time.Now()
	return nil
}

func cloneWorkspace(ws *metadata.Workspace) *metadata.Workspace {
	cp := *ws
	cp.UserPerms = make(map[string]metadata.Permission, len(ws.UserPerms))
	for k, v := range ws.UserPerms {
		cp.UserPerms[k] = v
	}
	return &cp
}
