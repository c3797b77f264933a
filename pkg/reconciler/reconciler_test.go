package reconciler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wsobjects/wsd/pkg/blob/fake"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/metadata/memory"
)

func newTestLane(t *testing.T) *lane.Lane {
	t.Helper()
	l := lane.New("serial", 1, 16)
	l.Start()
	t.Cleanup(l.Stop)
	return l
}

func TestReconcileOneFinalizesObject(t *testing.T) {
	store := memory.New()
	blobStore := fake.New()
	ctx := context.Background()

	ws, err := store.CreateWorkspace(ctx, "alice", "docs")
	require.NoError(t, err)
	obj, err := store.CreateObject(ctx, &metadata.Object{
		WorkspaceID: ws.ID, Type: metadata.TypeFile, Name: "upload.bin", Pending: true,
	})
	require.NoError(t, err)

	node, err := blobStore.CreateNode(ctx, "upload.bin", strings.NewReader("hello world"))
	require.NoError(t, err)
	require.NoError(t, store.InsertPendingUpload(ctx, &metadata.PendingUpload{
		ObjectID: obj.ID, ShockNodeID: node.ID,
	}))

	r := New(store, blobStore, newTestLane(t))
	require.NoError(t, r.reconcileOne(ctx, &metadata.PendingUpload{ObjectID: obj.ID, ShockNodeID: node.ID}))

	got, err := store.GetObjectByID(ctx, obj.ID)
	require.NoError(t, err)
	require.Equal(t, int64(11), got.Size)
	require.False(t, got.Pending)

	remaining, err := store.ListPendingUploads(ctx)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestTickReconcilesAllPendingUploads(t *testing.T) {
	store := memory.New()
	blobStore := fake.New()
	ctx := context.Background()

	ws, err := store.CreateWorkspace(ctx, "alice", "docs")
	require.NoError(t, err)

	var objIDs []string
	for i := 0; i < 3; i++ {
		obj, err := store.CreateObject(ctx, &metadata.Object{
			WorkspaceID: ws.ID, Type: metadata.TypeFile, Name: "f" + string(rune('a'+i)), Pending: true,
		})
		require.NoError(t, err)
		node, err := blobStore.CreateNode(ctx, obj.Name, strings.NewReader("data"))
		require.NoError(t, err)
		require.NoError(t, store.InsertPendingUpload(ctx, &metadata.PendingUpload{
			ObjectID: obj.ID, ShockNodeID: node.ID,
		}))
		objIDs = append(objIDs, obj.ID)
	}

	r := New(store, blobStore, newTestLane(t))
	r.tick(ctx)

	for _, id := range objIDs {
		got, err := store.GetObjectByID(ctx, id)
		require.NoError(t, err)
		require.False(t, got.Pending)
	}
}

func TestUpdateAutoMetaSynchronous(t *testing.T) {
	store := memory.New()
	blobStore := fake.New()
	ctx := context.Background()

	ws, _ := store.CreateWorkspace(ctx, "alice", "docs")
	obj, err := store.CreateObject(ctx, &metadata.Object{
		WorkspaceID: ws.ID, Type: metadata.TypeFile, Name: "f.bin", Pending: true,
	})
	require.NoError(t, err)
	node, err := blobStore.CreateNode(ctx, "f.bin", strings.NewReader("0123456789"))
	require.NoError(t, err)

	r := New(store, blobStore, newTestLane(t))
	got, err := r.UpdateAutoMeta(ctx, obj.ID, node.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), got.Size)
}

func TestStartStopLifecycle(t *testing.T) {
	store := memory.New()
	blobStore := fake.New()
	r := New(store, blobStore, newTestLane(t))
	r.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	r.Stop()
}
