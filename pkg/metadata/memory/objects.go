package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wsobjects/wsd/pkg/metadata"
)

func (s *Store) findObject(workspaceID, path, name string) *metadata.Object {
	for _, o := range s.objects {
		if o.WorkspaceID == workspaceID && o.Path == path && o.Name == name {
			return o
		}
	}
	return nil
}

func (s *Store) CreateObject(ctx context.Context, obj *metadata.Object) (*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findObject(obj.WorkspaceID, obj.Path, obj.Name) != nil {
		return nil, alreadyExistsObj(obj.FullPath())
	}

	cp := *obj
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now()
	cp.CreatedAt = now
	cp.ModifiedAt = now
	if cp.AutoMeta == nil {
		cp.AutoMeta = map[string]string{}
	}
	if cp.UserMeta == nil {
		cp.UserMeta = map[string]string{}
	}
	s.objects[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *Store) GetObject(ctx context.Context, workspaceID, path, name string) (*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	o := s.findObject(workspaceID, path, name)
	if o == nil {
		return nil, notFoundObj(path + "/" + name)
	}
	out := *o
	return &out, nil
}

func (s *Store) GetObjectByID(ctx context.Context, id string) (*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[id]
	if !ok {
		return nil, notFoundID(id)
	}
	out := *o
	return &out, nil
}

func (s *Store) ListObjects(ctx context.Context, workspaceID, path string, recursive bool) ([]*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*metadata.Object
	for _, o := range s.objects {
		if o.WorkspaceID != workspaceID {
			continue
		}
		if recursive {
			if o.Path == path || strings.HasPrefix(o.Path, path+"/") || (path == "" && o.Path != "") {
				if path == "" || o.Path == path || strings.HasPrefix(o.Path, path+"/") {
					cp := *o
					out = append(out, &cp)
				}
			}
			continue
		}
		if o.Path == path {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) UpdateObjectMeta(ctx context.Context, id string, userMeta map[string]string) (*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.objects[id]
	if !ok {
		return nil, notFoundID(id)
	}
	o.UserMeta = make(map[string]string, len(userMeta))
	for k, v := range userMeta {
		o.UserMeta[k] = v
	}
	o.ModifiedAt = time.Now()
	out := *o
	return &out, nil
}

func (s *Store) UpdateObjectAutoMeta(ctx context.Context, id string, size int64, checksum string, autoMeta map[string]string) (*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.objects[id]
	if !ok {
		return nil, notFoundID(id)
	}
	o.Size = size
	o.Checksum = checksum
	o.AutoMeta = make(map[string]string, len(autoMeta))
	for k, v := range autoMeta {
		o.AutoMeta[k] = v
	}
	o.ModifiedAt = time.Now()
	out := *o
	return &out, nil
}

func (s *Store) RemoveObject(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.objects[id]
	if !ok {
		return notFoundID(id)
	}
	if o.Type == metadata.TypeFolder {
		childPrefix := o.FullPath()
		for _, c := range s.objects {
			if c.WorkspaceID == o.WorkspaceID && (c.Path == childPrefix || strings.HasPrefix(c.Path, childPrefix+"/")) {
				return conflictNotEmpty(childPrefix)
			}
		}
	}
	delete(s.objects, id)
	return nil
}

func (s *Store) RemoveFolderAndContents(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.objects[id]
	if !ok {
		return notFoundID(id)
	}
	prefix := o.FullPath()
	for oid, c := range s.objects {
		if c.WorkspaceID == o.WorkspaceID && (c.Path == prefix || strings.HasPrefix(c.Path, prefix+"/")) {
			delete(s.objects, oid)
		}
	}
	delete(s.objects, id)
	return nil
}

// PerformCopy and PerformMove are implemented in transfer.go.
