package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wsdomain"
	"github.com/wsobjects/wsd/pkg/wspath"
)

func (s *Store) PerformCopy(ctx context.Context, srcID, destWorkspaceID, destPath, destName string) (*metadata.Object, error) {
	src, err := s.GetObjectByID(ctx, srcID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetObject(ctx, destWorkspaceID, destPath, destName); err == nil {
		return nil, wsdomain.AlreadyExists(destPath + "/" + destName)
	}

	now := time.Now()
	root := *src
	root.ID = uuid.NewString()
	root.WorkspaceID = destWorkspaceID
	root.Path = destPath
	root.Name = destName
	root.CreatedAt, root.ModifiedAt = now, now
	root.UserMeta = copyMap(src.UserMeta)
	root.AutoMeta = copyMap(src.AutoMeta)

	if _, err := s.objects.InsertOne(ctx, toObjectDoc(&root)); err != nil {
		return nil, translate("copy object", root.FullPath(), err)
	}

	if src.Type != metadata.TypeFolder {
		return &root, nil
	}

	descendants, err := s.ListObjects(ctx, src.WorkspaceID, src.FullPath(), true)
	if err != nil {
		return nil, err
	}
	srcPrefix := src.FullPath()
	for _, d := range descendants {
		cp := *d
		cp.ID = uuid.NewString()
		cp.WorkspaceID = destWorkspaceID
		cp.Path = wspath.ReplacePathPrefix(d.Path, srcPrefix, root.FullPath())
		cp.CreatedAt, cp.ModifiedAt = now, now
		cp.UserMeta = copyMap(d.UserMeta)
		cp.AutoMeta = copyMap(d.AutoMeta)
		if _, err := s.objects.InsertOne(ctx, toObjectDoc(&cp)); err != nil {
			return nil, translate("copy object", cp.FullPath(), err)
		}
	}
	return &root, nil
}

func (s *Store) PerformMove(ctx context.Context, srcID, destWorkspaceID, destPath, destName string) (*metadata.Object, error) {
	src, err := s.GetObjectByID(ctx, srcID)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetObject(ctx, destWorkspaceID, destPath, destName); err == nil {
		return nil, wsdomain.AlreadyExists(destPath + "/" + destName)
	}

	if src.Type == metadata.TypeFolder {
		descendants, err := s.ListObjects(ctx, src.WorkspaceID, src.FullPath(), true)
		if err != nil {
			return nil, err
		}
		srcPrefix := src.FullPath()
		destPrefix := destPath
		if destPrefix != "" {
			destPrefix += "/"
		}
		destPrefix += destName
		for _, d := range descendants {
			newPath := wspath.ReplacePathPrefix(d.Path, srcPrefix, destPrefix)
			_, err := s.objects.UpdateOne(ctx, bson.M{"_id": d.ID}, bson.M{"$set": bson.M{
				"workspace_id": destWorkspaceID, "path": newPath, "modified_at": time.Now(),
			}})
			if err != nil {
				return nil, translate("move object", d.ID, err)
			}
		}
	}

	_, err = s.objects.UpdateOne(ctx, bson.M{"_id": srcID}, bson.M{"$set": bson.M{
		"workspace_id": destWorkspaceID, "path": destPath, "name": destName, "modified_at": time.Now(),
	}})
	if err != nil {
		return nil, translate("move object", srcID, err)
	}
	return s.GetObjectByID(ctx, srcID)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
