package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wsobjects/wsd/pkg/metadata"
)

func (s *Store) CreateWorkspace(ctx context.Context, owner, name string) (*metadata.Workspace, error) {
	now := time.Now()
	ws := &metadata.Workspace{
		ID:         uuid.NewString(),
		Owner:      owner,
		Name:       name,
		UserPerms:  map[string]metadata.Permission{},
		CreatedAt:  now,
		ModifiedAt: now,
	}
	_, err := s.workspaces.InsertOne(ctx, toWorkspaceDoc(ws))
	if err != nil {
		return nil, translate("insert workspace", "/"+owner+"/"+name, err)
	}
	return ws, nil
}

func (s *Store) GetWorkspace(ctx context.Context, owner, name string) (*metadata.Workspace, error) {
	var doc workspaceDoc
	err := s.workspaces.FindOne(ctx, bson.M{"owner": owner, "name": name, "deleted": false}).Decode(&doc)
	if err != nil {
		return nil, translate("get workspace", "/"+owner+"/"+name, err)
	}
	return doc.toWorkspace(), nil
}

func (s *Store) GetWorkspaceByID(ctx context.Context, id string) (*metadata.Workspace, error) {
	var doc workspaceDoc
	err := s.workspaces.FindOne(ctx, bson.M{"_id": id, "deleted": false}).Decode(&doc)
	if err != nil {
		return nil, translate("get workspace", id, err)
	}
	return doc.toWorkspace(), nil
}

func (s *Store) ListWorkspaces(ctx context.Context, owner string) ([]*metadata.Workspace, error) {
	or := []bson.M{
		{"owner": owner},
		{"public": true},
		{"global_perm": bson.M{"$gt": metadata.PermissionNone}},
	}
	if owner != "" {
		for key := range encodeUserPerms(map[string]metadata.Permission{owner: metadata.PermissionNone}) {
			or = append(or, bson.M{"user_perms." + key: bson.M{"$gt": metadata.PermissionNone}})
		}
	}
	filter := bson.M{
		"deleted": false,
		"$or":     or,
	}
	cur, err := s.workspaces.Find(ctx, filter)
	if err != nil {
		return nil, translate("list workspaces", owner, err)
	}
	defer cur.Close(ctx)

	var out []*metadata.Workspace
	for cur.Next(ctx) {
		var doc workspaceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, upstream("decode workspace", err)
		}
		out = append(out, doc.toWorkspace())
	}
	return out, cur.Err()
}

func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := s.workspaces.UpdateOne(ctx,
		bson.M{"_id": id, "deleted": false},
		bson.M{"$set": bson.M{"deleted": true, "modified_at": time.Now()}},
	)
	if err != nil {
		return translate("delete workspace", id, err)
	}
	if res.MatchedCount == 0 {
		return translate("delete workspace", id, mongo.ErrNoDocuments)
	}
	if _, err := s.objects.DeleteMany(ctx, bson.M{"workspace_id": id}); err != nil {
		return upstream("delete workspace objects", err)
	}
	return nil
}

func (s *Store) UpdateWorkspacePermissions(ctx context.Context, id string, global *metadata.Permission, public *bool, userPerms map[string]metadata.Permission) (*metadata.Workspace, error) {
	set := bson.M{"modified_at": time.Now()}
	if global != nil {
		set["global_perm"] = *global
	}
	if public != nil {
		set["public"] = *public
	}
	update := bson.M{"$set": set}
	if _, err := s.workspaces.UpdateOne(ctx, bson.M{"_id": id, "deleted": false}, update); err != nil {
		return nil, translate("update workspace", id, err)
	}
	if len(userPerms) > 0 {
		if err := s.applyUserPerms(ctx, id, userPerms); err != nil {
			return nil, err
		}
	}
	return s.GetWorkspaceByID(ctx, id)
}

func (s *Store) applyUserPerms(ctx context.Context, id string, userPerms map[string]metadata.Permission) error {
	enc := encodeUserPerms(userPerms)
	set := bson.M{}
	unset := bson.M{}
	for user, perm := range enc {
		field := "user_perms." + user
		if perm == metadata.PermissionNone {
			unset[field] = ""
		} else {
			set[field] = perm
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return nil
	}
	_, err := s.workspaces.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update())
	if err != nil {
		return translate("update workspace permissions", id, err)
	}
	return nil
}

func (s *Store) SetWorkspaceLocked(ctx context.Context, id string, locked bool) error {
	res, err := s.workspaces.UpdateOne(ctx,
		bson.M{"_id": id, "deleted": false},
		bson.M{"$set": bson.M{"locked": locked, "modified_at": time.Now()}},
	)
	if err != nil {
		return translate("set workspace locked", id, err)
	}
	if res.MatchedCount == 0 {
		return translate("set workspace locked", id, mongo.ErrNoDocuments)
	}
	return nil
}
