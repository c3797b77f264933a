package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/wsobjects/wsd/pkg/metadata"
)

type pendingDoc struct {
	ObjectID     string    `bson:"_id"`
	ShockNodeID  string    `bson:"shock_node_id"`
	RegisteredAt time.Time `bson:"registered_at"`
}

func (s *Store) InsertPendingUpload(ctx context.Context, p *metadata.PendingUpload) error {
	doc := pendingDoc{ObjectID: p.ObjectID, ShockNodeID: p.ShockNodeID, RegisteredAt: p.RegisteredAt}
	_, err := s.pending.InsertOne(ctx, doc)
	if err != nil {
		return translate("insert pending upload", p.ObjectID, err)
	}
	return nil
}

func (s *Store) ListPendingUploads(ctx context.Context) ([]*metadata.PendingUpload, error) {
	cur, err := s.pending.Find(ctx, bson.M{})
	if err != nil {
		return nil, upstream("list pending uploads", err)
	}
	defer cur.Close(ctx)

	var out []*metadata.PendingUpload
	for cur.Next(ctx) {
		var doc pendingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, upstream("decode pending upload", err)
		}
		out = append(out, &metadata.PendingUpload{
			ObjectID: doc.ObjectID, ShockNodeID: doc.ShockNodeID, RegisteredAt: doc.RegisteredAt,
		})
	}
	return out, cur.Err()
}

func (s *Store) RemovePendingUpload(ctx context.Context, objectID string) error {
	if _, err := s.pending.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return upstream("remove pending upload", err)
	}
	return nil
}

func (s *Store) SetObjectSize(ctx context.Context, objectID string, size int64, checksum string) (*metadata.Object, error) {
	_, err := s.objects.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{
		"size": size, "checksum": checksum, "pending": false, "modified_at": time.Now(),
	}})
	if err != nil {
		return nil, translate("set object size", objectID, err)
	}
	if _, err := s.pending.DeleteOne(ctx, bson.M{"_id": objectID}); err != nil {
		return nil, upstream("remove pending upload", err)
	}
	return s.GetObjectByID(ctx, objectID)
}
