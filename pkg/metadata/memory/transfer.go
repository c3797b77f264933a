package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wspath"
)

// PerformCopy duplicates the object tree rooted at srcID, assigning fresh
// ids to every copy but sharing the original's blob body by reference
// (ShockNodeID carried over, not re-uploaded).
func (s *Store) PerformCopy(ctx context.Context, srcID, destWorkspaceID, destPath, destName string) (*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.objects[srcID]
	if !ok {
		return nil, notFoundID(srcID)
	}
	if s.findObject(destWorkspaceID, destPath, destName) != nil {
		return nil, alreadyExistsObj(destPath + "/" + destName)
	}

	srcPrefix := src.FullPath()
	idMap := map[string]string{src.ID: ""} // placeholder, filled below

	root := cloneObjectAs(src, destWorkspaceID, destPath, destName)
	root.ID = uuid.NewString()
	s.objects[root.ID] = root
	idMap[src.ID] = root.ID

	if src.Type == metadata.TypeFolder {
		for _, c := range s.objects {
			if c.WorkspaceID != src.WorkspaceID || c.ID == root.ID {
				continue
			}
			if c.Path != srcPrefix && !hasPathPrefix(c.Path, srcPrefix) {
				continue
			}
			newPath := wspath.ReplacePathPrefix(c.Path, srcPrefix, root.FullPath())
			cp := cloneObjectAs(c, destWorkspaceID, newPath, c.Name)
			cp.ID = uuid.NewString()
			s.objects[cp.ID] = cp
		}
	}

	out := *root
	return &out, nil
}

// PerformMove relocates the object tree rooted at srcID in place,
// preserving every descendant's id while rewriting WorkspaceID/Path/Name.
func (s *Store) PerformMove(ctx context.Context, srcID, destWorkspaceID, destPath, destName string) (*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.objects[srcID]
	if !ok {
		return nil, notFoundID(srcID)
	}
	if s.findObject(destWorkspaceID, destPath, destName) != nil {
		return nil, alreadyExistsObj(destPath + "/" + destName)
	}

	srcPrefix := src.FullPath()
	destPrefix := destName
	if destPath != "" {
		destPrefix = destPath + "/" + destName
	}

	if src.Type == metadata.TypeFolder {
		for _, c := range s.objects {
			if c.WorkspaceID != src.WorkspaceID || c.ID == src.ID {
				continue
			}
			if !hasPathPrefix(c.Path, srcPrefix) {
				continue
			}
			c.Path = wspath.ReplacePathPrefix(c.Path, srcPrefix, destPrefix)
			c.WorkspaceID = destWorkspaceID
			c.ModifiedAt = time.Now()
		}
	}

	src.WorkspaceID = destWorkspaceID
	src.Path = destPath
	src.Name = destName
	src.ModifiedAt = time.Now()

	out := *src
	return &out, nil
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || len(path) > len(prefix) && path[:len(prefix)+1] == prefix+"/"
}

func cloneObjectAs(src *metadata.Object, workspaceID, path, name string) *metadata.Object {
	cp := *src
	cp.WorkspaceID = workspaceID
	cp.Path = path
	cp.Name = name
	now := time.Now()
	cp.CreatedAt = now
	cp.ModifiedAt = now
	cp.AutoMeta = copyStringMap(src.AutoMeta)
	cp.UserMeta = copyStringMap(src.UserMeta)
	return &cp
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
