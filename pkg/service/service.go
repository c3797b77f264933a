package service

import (
	"github.com/wsobjects/wsd/pkg/blob"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/payload/fs"
	"github.com/wsobjects/wsd/pkg/reconciler"
)

// Service implements every Workspace.* JSON-RPC method against a
// metadata.Store, a blob.Store, and a local filesystem body store,
// dispatching metadata mutations through the appropriate lane.Lane.
type Service struct {
	store      metadata.Store
	blobStore  blob.Store
	bodies     *fs.Store
	reconciler *reconciler.Reconciler

	serialLane  *lane.Lane // create, copy, move, set_permissions, update_metadata, set_object_size
	generalLane *lane.Lane // delete, ls, get, list_permissions, get_download_url

	cfg Config
}

// New builds a Service. serialLane and generalLane must already be
// started; callers own their lifecycle.
func New(store metadata.Store, blobStore blob.Store, bodies *fs.Store, rec *reconciler.Reconciler, serialLane, generalLane *lane.Lane, cfg Config) *Service {
	return &Service{
		store:       store,
		blobStore:   blobStore,
		bodies:      bodies,
		reconciler:  rec,
		serialLane:  serialLane,
		generalLane: generalLane,
		cfg:         cfg,
	}
}
