package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wsobjects/wsd/pkg/metadata"
)

type ticketDoc struct {
	ID          string    `bson:"_id"`
	ObjectID    string    `bson:"object_id"`
	WorkspaceID string    `bson:"workspace_id"`
	IssuedTo    string    `bson:"issued_to"`
	IssuedAt    time.Time `bson:"issued_at"`
	ExpiresAt   time.Time `bson:"expires_at"`
	Used        bool      `bson:"used"`
}

func (s *Store) InsertDownloadTicket(ctx context.Context, t *metadata.DownloadTicket) error {
	doc := ticketDoc{
		ID: t.ID, ObjectID: t.ObjectID, WorkspaceID: t.WorkspaceID,
		IssuedTo: t.IssuedTo, IssuedAt: t.IssuedAt, ExpiresAt: t.ExpiresAt, Used: t.Used,
	}
	_, err := s.tickets.InsertOne(ctx, doc)
	if err != nil {
		return translate("insert download ticket", t.ID, err)
	}
	return nil
}

func (s *Store) LookupDownloadTicket(ctx context.Context, id string) (*metadata.DownloadTicket, error) {
	var doc ticketDoc
	err := s.tickets.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, translate("lookup download ticket", id, err)
	}
	return &metadata.DownloadTicket{
		ID: doc.ID, ObjectID: doc.ObjectID, WorkspaceID: doc.WorkspaceID,
		IssuedTo: doc.IssuedTo, IssuedAt: doc.IssuedAt, ExpiresAt: doc.ExpiresAt, Used: doc.Used,
	}, nil
}

func (s *Store) MarkDownloadTicketUsed(ctx context.Context, id string) error {
	res, err := s.tickets.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"used": true}})
	if err != nil {
		return translate("mark download ticket used", id, err)
	}
	if res.MatchedCount == 0 {
		return translate("mark download ticket used", id, mongo.ErrNoDocuments)
	}
	return nil
}
