// Package mongostore is the production metadata.Store, backed by
// go.mongodb.org/mongo-driver against three collections: workspaces,
// objects, and downloads. Pending uploads live in a fourth collection so
// the reconciler's poll loop can scan them independent of object state.
package mongostore

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wsobjects/wsd/pkg/metadata"
)

// Config names the MongoDB connection target. ClientThreads is the
// driver's max pool size, matching the configuration option of the same
// name.
type Config struct {
	Host          string
	Database      string
	ClientThreads uint64
}

// Store is a metadata.Store backed by MongoDB collections.
type Store struct {
	client     *mongo.Client
	workspaces *mongo.Collection
	objects    *mongo.Collection
	tickets    *mongo.Collection
	pending    *mongo.Collection
}

// Connect dials MongoDB and returns a ready Store. Callers should call
// Close when done, typically on service shutdown.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	opts := options.Client().ApplyURI("mongodb://" + cfg.Host)
	if cfg.ClientThreads > 0 {
		opts = opts.SetMaxPoolSize(cfg.ClientThreads)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, upstream("mongo connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, upstream("mongo ping", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:     client,
		workspaces: db.Collection("workspaces"),
		objects:    db.Collection("objects"),
		tickets:    db.Collection("downloads"),
		pending:    db.Collection("pending_uploads"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.workspaces.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"deleted": false}),
	})
	if err != nil {
		return upstream("create workspace index", err)
	}
	_, err = s.objects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "workspace_id", Value: 1}, {Key: "path", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return upstream("create object index", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// workspaceDoc and objectDoc mirror their metadata.* counterparts for
// BSON marshaling. Permission map keys are percent-encoded because
// MongoDB field names can't contain "." or "$": a username containing
// either would otherwise corrupt the document.
type workspaceDoc struct {
	ID          string            `bson:"_id"`
	Owner       string            `bson:"owner"`
	Name        string            `bson:"name"`
	GlobalPerm  metadata.Permission `bson:"global_perm"`
	Public      bool              `bson:"public"`
	UserPerms   map[string]metadata.Permission `bson:"user_perms"`
	Locked      bool              `bson:"locked"`
	Deleted     bool              `bson:"deleted"`
	CreatedAt   time.Time         `bson:"created_at"`
	ModifiedAt  time.Time         `bson:"modified_at"`
	Description string            `bson:"description"`
}

func encodeUserPerms(m map[string]metadata.Permission) map[string]metadata.Permission {
	out := make(map[string]metadata.Permission, len(m))
	for k, v := range m {
		out[strings.ReplaceAll(url.QueryEscape(k), ".", "%2E")] = v
	}
	return out
}

func decodeUserPerms(m map[string]metadata.Permission) map[string]metadata.Permission {
	out := make(map[string]metadata.Permission, len(m))
	for k, v := range m {
		name, err := url.QueryUnescape(k)
		if err != nil {
			name = k
		}
		out[name] = v
	}
	return out
}

func toWorkspaceDoc(ws *metadata.Workspace) workspaceDoc {
	return workspaceDoc{
		ID:          ws.ID,
		Owner:       ws.Owner,
		Name:        ws.Name,
		GlobalPerm:  ws.GlobalPerm,
		Public:      ws.Public,
		UserPerms:   encodeUserPerms(ws.UserPerms),
		Locked:      ws.Locked,
		Deleted:     ws.Deleted,
		CreatedAt:   ws.CreatedAt,
		ModifiedAt:  ws.ModifiedAt,
		Description: ws.Description,
	}
}

func (d workspaceDoc) toWorkspace() *metadata.Workspace {
	return &metadata.Workspace{
		ID:          d.ID,
		Owner:       d.Owner,
		Name:        d.Name,
		GlobalPerm:  d.GlobalPerm,
		Public:      d.Public,
		UserPerms:   decodeUserPerms(d.UserPerms),
		Locked:      d.Locked,
		Deleted:     d.Deleted,
		CreatedAt:   d.CreatedAt,
		ModifiedAt:  d.ModifiedAt,
		Description: d.Description,
	}
}

type objectDoc struct {
	ID          string            `bson:"_id"`
	WorkspaceID string            `bson:"workspace_id"`
	Type        metadata.ObjectType `bson:"type"`
	Path        string            `bson:"path"`
	Name        string            `bson:"name"`
	Size        int64             `bson:"size"`
	Checksum    string            `bson:"checksum"`
	ShockNodeID string            `bson:"shock_node_id"`
	ShockURL    string            `bson:"shock_url"`
	AutoMeta    map[string]string `bson:"auto_meta"`
	UserMeta    map[string]string `bson:"user_meta"`
	CreatedBy   string            `bson:"created_by"`
	CreatedAt   time.Time         `bson:"created_at"`
	ModifiedAt  time.Time         `bson:"modified_at"`
	Pending     bool              `bson:"pending"`
}

func toObjectDoc(o *metadata.Object) objectDoc {
	return objectDoc{
		ID: o.ID, WorkspaceID: o.WorkspaceID, Type: o.Type, Path: o.Path, Name: o.Name,
		Size: o.Size, Checksum: o.Checksum, ShockNodeID: o.ShockNodeID, ShockURL: o.ShockURL,
		AutoMeta: o.AutoMeta, UserMeta: o.UserMeta, CreatedBy: o.CreatedBy,
		CreatedAt: o.CreatedAt, ModifiedAt: o.ModifiedAt, Pending: o.Pending,
	}
}

func (d objectDoc) toObject() *metadata.Object {
	return &metadata.Object{
		ID: d.ID, WorkspaceID: d.WorkspaceID, Type: d.Type, Path: d.Path, Name: d.Name,
		Size: d.Size, Checksum: d.Checksum, ShockNodeID: d.ShockNodeID, ShockURL: d.ShockURL,
		AutoMeta: d.AutoMeta, UserMeta: d.UserMeta, CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt, ModifiedAt: d.ModifiedAt, Pending: d.Pending,
	}
}
