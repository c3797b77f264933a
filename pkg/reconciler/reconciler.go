// Package reconciler closes the gap between an object whose body was
// handed to the blob store before its final size was known, and the
// metadata record that needs that size: it polls outstanding pending
// uploads on a timer and asks the blob store whether each one has
// finished, finalizing metadata through the serialization lane once it
// has.
package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/blob"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
)

// PollInterval is how often the reconciler scans for outstanding pending
// uploads.
const PollInterval = 5 * time.Second

// Reconciler drives the pending-upload poll loop.
type Reconciler struct {
	store       metadata.Store
	blobStore   blob.Store
	serialLane  *lane.Lane
	interval    time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds a Reconciler. serialLane must be the same lane the service
// layer uses for metadata writes, so finalization is never interleaved
// with a concurrent mutation of the same object.
func New(store metadata.Store, blobStore blob.Store, serialLane *lane.Lane) *Reconciler {
	return &Reconciler{
		store:      store,
		blobStore:  blobStore,
		serialLane: serialLane,
		interval:   PollInterval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the poll loop in a goroutine. Call Stop to shut it down.
func (r *Reconciler) Start(ctx context.Context) {
	go func() {
		defer close(r.doneCh)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.tick(ctx)
			}
		}
	}()
}

// Stop signals the poll loop to exit and waits for it to do so.
func (r *Reconciler) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
	<-r.doneCh
}

func (r *Reconciler) tick(ctx context.Context) {
	pending, err := r.store.ListPendingUploads(ctx)
	if err != nil {
		logger.ErrorCtx(ctx, "reconciler: list pending uploads failed", logger.Err(err))
		return
	}
	if len(pending) == 0 {
		return
	}
	logger.InfoCtx(ctx, "reconciler: scanning pending uploads", logger.Count(len(pending)))

	for _, p := range pending {
		if err := r.reconcileOne(ctx, p); err != nil {
			logger.WarnCtx(ctx, "reconciler: reconcile failed",
				logger.ObjectID(p.ObjectID), logger.NodeID(p.ShockNodeID), logger.Err(err))
		}
	}
}

// reconcileOne checks one pending upload's blob node and, if the body has
// finished uploading, finalizes the object's size/checksum through the
// serialization lane. A node not yet finished (still being written) is
// left pending for the next tick.
func (r *Reconciler) reconcileOne(ctx context.Context, p *metadata.PendingUpload) error {
	node, err := r.blobStore.GetNode(ctx, p.ShockNodeID)
	if err != nil {
		return err
	}
	if node.Checksum == "" {
		return nil // still uploading
	}

	_, err = lane.Do(ctx, r.serialLane, func() (*metadata.Object, error) {
		return r.store.SetObjectSize(ctx, p.ObjectID, node.Size, node.Checksum)
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "reconciler: finalized object",
		logger.ObjectID(p.ObjectID), logger.Size(node.Size))
	return nil
}

// UpdateAutoMeta synchronously reconciles a single object, bypassing the
// poll loop — used by the update_auto_meta service method, which a
// caller invokes explicitly once it knows a body is ready rather than
// waiting up to PollInterval for the next tick.
func (r *Reconciler) UpdateAutoMeta(ctx context.Context, objectID, shockNodeID string) (*metadata.Object, error) {
	node, err := r.blobStore.GetNode(ctx, shockNodeID)
	if err != nil {
		return nil, err
	}
	return lane.Do(ctx, r.serialLane, func() (*metadata.Object, error) {
		return r.store.SetObjectSize(ctx, objectID, node.Size, node.Checksum)
	})
}
