package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wsobjects/wsd/pkg/authtoken"
	"github.com/wsobjects/wsd/pkg/blob/fake"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/metadata/memory"
	"github.com/wsobjects/wsd/pkg/payload/fs"
	"github.com/wsobjects/wsd/pkg/reconciler"
	"github.com/wsobjects/wsd/pkg/rpc"
	"github.com/wsobjects/wsd/pkg/service"
)

func newTestRouter(t *testing.T) (http.Handler, metadata.Store, *fs.Store) {
	t.Helper()

	store := memory.New()
	blobStore := fake.New()
	bodies, err := fs.New(fs.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	serialLane := lane.New("serialization", 1, 16)
	generalLane := lane.New("general", 4, 16)
	serialLane.Start()
	generalLane.Start()
	t.Cleanup(func() {
		serialLane.Stop()
		generalLane.Stop()
	})

	rec := reconciler.New(store, blobStore, serialLane)

	cfg := service.Config{DownloadLifetime: time.Hour, DownloadURLBase: "https://wsd.example.org/dl"}
	svc := service.New(store, blobStore, bodies, rec, serialLane, generalLane, cfg)
	verifier := authtoken.NewVerifier(http.DefaultClient, time.Hour)
	dispatcher := rpc.New(svc, verifier, nil, cfg)

	router := NewRouter(dispatcher, store, bodies, blobStore, nil, Config{APIRoot: "/api", MetricsPath: "/metrics"})
	return router, store, bodies
}

func TestHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api", nil)
	req.Header.Set("Origin", "https://client.example.org")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://client.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestRPCDispatchUnknownMethod(t *testing.T) {
	router, _, _ := newTestRouter(t)
	body := `{"jsonrpc":"2.0","id":1,"method":"Workspace.bogus","params":[{}]}`
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, 500, rec.Code)
	var resp rpc.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}

func TestRPCDispatchAnonymousLsRoot(t *testing.T) {
	router, _, _ := newTestRouter(t)
	body := `{"jsonrpc":"2.0","id":1,"method":"Workspace.ls","params":[{"paths":["/"]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp rpc.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
}

func TestDownloadHandlerMissingTicketIs404(t *testing.T) {
	router, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/dl/does-not-exist/file.txt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadHandlerServesFilesystemBody(t *testing.T) {
	router, store, bodies := newTestRouter(t)
	ctx := context.Background()

	ws, err := store.CreateWorkspace(ctx, "alice", "ws1")
	require.NoError(t, err)
	require.NoError(t, bodies.EnsureWorkspaceRoot(ws.Owner, ws.Name))
	require.NoError(t, bodies.WriteObject(ws.Owner, ws.Name, "", "report.txt", []byte("hello world")))

	obj, err := store.CreateObject(ctx, &metadata.Object{
		WorkspaceID: ws.ID,
		Type:        metadata.TypeFile,
		Path:        "",
		Name:        "report.txt",
		Size:        11,
		CreatedBy:   "alice",
	})
	require.NoError(t, err)

	ticket := &metadata.DownloadTicket{
		ID:          "tkt-1",
		ObjectID:    obj.ID,
		WorkspaceID: ws.ID,
		IssuedTo:    "alice",
		IssuedAt:    time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, store.InsertDownloadTicket(ctx, ticket))

	req := httptest.NewRequest(http.MethodGet, "/dl/tkt-1/report.txt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello world", rec.Body.String())
	require.Contains(t, rec.Header().Get("Content-Disposition"), "report.txt")

	// Second redemption must fail: the ticket is single-use.
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusNotFound, rec2.Code)
}
