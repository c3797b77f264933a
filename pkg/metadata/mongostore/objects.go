package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wsdomain"
)

func (s *Store) CreateObject(ctx context.Context, obj *metadata.Object) (*metadata.Object, error) {
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
	_, err := s.objects.InsertOne(ctx, toObjectDoc(&cp))
	if err != nil {
		return nil, translate("insert object", cp.FullPath(), err)
	}
	return &cp, nil
}

func (s *Store) GetObject(ctx context.Context, workspaceID, path, name string) (*metadata.Object, error) {
	var doc objectDoc
	err := s.objects.FindOne(ctx, bson.M{"workspace_id": workspaceID, "path": path, "name": name}).Decode(&doc)
	if err != nil {
		return nil, translate("get object", path+"/"+name, err)
	}
	return doc.toObject(), nil
}

func (s *Store) GetObjectByID(ctx context.Context, id string) (*metadata.Object, error) {
	var doc objectDoc
	err := s.objects.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, translate("get object", id, err)
	}
	return doc.toObject(), nil
}

func (s *Store) ListObjects(ctx context.Context, workspaceID, path string, recursive bool) ([]*metadata.Object, error) {
	var filter bson.M
	if recursive {
		filter = bson.M{
			"workspace_id": workspaceID,
			"$or": []bson.M{
				{"path": path},
				{"path": bson.M{"$regex": "^" + regexEscape(path) + "/"}},
			},
		}
		if path == "" {
			filter = bson.M{"workspace_id": workspaceID}
		}
	} else {
		filter = bson.M{"workspace_id": workspaceID, "path": path}
	}

	cur, err := s.objects.Find(ctx, filter)
	if err != nil {
		return nil, translate("list objects", path, err)
	}
	defer cur.Close(ctx)

	var out []*metadata.Object
	for cur.Next(ctx) {
		var doc objectDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, upstream("decode object", err)
		}
		out = append(out, doc.toObject())
	}
	return out, cur.Err()
}

func (s *Store) UpdateObjectMeta(ctx context.Context, id string, userMeta map[string]string) (*metadata.Object, error) {
	_, err := s.objects.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"user_meta": userMeta, "modified_at": time.Now()}})
	if err != nil {
		return nil, translate("update object meta", id, err)
	}
	return s.GetObjectByID(ctx, id)
}

func (s *Store) UpdateObjectAutoMeta(ctx context.Context, id string, size int64, checksum string, autoMeta map[string]string) (*metadata.Object, error) {
	_, err := s.objects.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"size": size, "checksum": checksum, "auto_meta": autoMeta, "modified_at": time.Now(),
		}})
	if err != nil {
		return nil, translate("update object auto meta", id, err)
	}
	return s.GetObjectByID(ctx, id)
}

func (s *Store) RemoveObject(ctx context.Context, id string) error {
	obj, err := s.GetObjectByID(ctx, id)
	if err != nil {
		return err
	}
	if obj.Type == metadata.TypeFolder {
		count, err := s.objects.CountDocuments(ctx, bson.M{
			"workspace_id": obj.WorkspaceID,
			"$or": []bson.M{
				{"path": obj.FullPath()},
				{"path": bson.M{"$regex": "^" + regexEscape(obj.FullPath()) + "/"}},
			},
		})
		if err != nil {
			return upstream("count folder contents", err)
		}
		if count > 0 {
			return wsdomain.Conflict(obj.FullPath(), "folder not empty")
		}
	}
	res, err := s.objects.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate("remove object", id, err)
	}
	if res.DeletedCount == 0 {
		return translate("remove object", id, mongo.ErrNoDocuments)
	}
	return nil
}

func (s *Store) RemoveFolderAndContents(ctx context.Context, id string) error {
	obj, err := s.GetObjectByID(ctx, id)
	if err != nil {
		return err
	}
	prefix := obj.FullPath()
	filter := bson.M{
		"workspace_id": obj.WorkspaceID,
		"$or": []bson.M{
			{"_id": id},
			{"path": prefix},
			{"path": bson.M{"$regex": "^" + regexEscape(prefix) + "/"}},
		},
	}
	if _, err := s.objects.DeleteMany(ctx, filter); err != nil {
		return upstream("remove folder contents", err)
	}
	return nil
}

func regexEscape(s string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		for _, sp := range []byte(special) {
			if c == sp {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, c)
	}
	return string(out)
}
