package rpc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wsobjects/wsd/pkg/authtoken"
	"github.com/wsobjects/wsd/pkg/blob/fake"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata/memory"
	"github.com/wsobjects/wsd/pkg/payload/fs"
	"github.com/wsobjects/wsd/pkg/reconciler"
	"github.com/wsobjects/wsd/pkg/service"
)

func newTestDispatcher(t *testing.T, cfg service.Config) *Dispatcher {
	t.Helper()

	store := memory.New()
	blobStore := fake.New()
	bodies, err := fs.New(fs.Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	serialLane := lane.New("serialization", 1, 16)
	generalLane := lane.New("general", 2, 16)
	serialLane.Start()
	generalLane.Start()
	t.Cleanup(func() {
		serialLane.Stop()
		generalLane.Stop()
	})

	rec := reconciler.New(store, blobStore, serialLane)
	if cfg.DownloadLifetime == 0 {
		cfg.DownloadLifetime = time.Hour
	}
	if cfg.DownloadURLBase == "" {
		cfg.DownloadURLBase = "https://wsd.example.org/dl"
	}
	svc := service.New(store, blobStore, bodies, rec, serialLane, generalLane, cfg)
	verifier := authtoken.NewVerifier(http.DefaultClient, time.Hour)
	return New(svc, verifier, nil, cfg)
}

func decodeResponse(t *testing.T, result Result) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(result.Body, &resp))
	return resp
}

func TestDispatchMalformedJSONIsParseError(t *testing.T) {
	d := newTestDispatcher(t, service.Config{})
	result := d.Dispatch(context.Background(), "", []byte("{not json"))
	require.Equal(t, 500, result.HTTPStatus)
	resp := decodeResponse(t, result)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32700, resp.Error.Code)
}

func TestDispatchUnknownMethodIsMethodNotFound(t *testing.T) {
	d := newTestDispatcher(t, service.Config{})
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"Workspace.frobnicate","params":[{}]}`)
	result := d.Dispatch(context.Background(), "", body)
	require.Equal(t, 500, result.HTTPStatus)
	resp := decodeResponse(t, result)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestDispatchWrongServicePrefixIsMethodNotFound(t *testing.T) {
	d := newTestDispatcher(t, service.Config{})
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"ls","params":[{}]}`)
	result := d.Dispatch(context.Background(), "", body)
	require.Equal(t, 500, result.HTTPStatus)
	resp := decodeResponse(t, result)
	require.Equal(t, -32601, resp.Error.Code)
}

func TestDispatchMissingParamsIsInvalidParams(t *testing.T) {
	d := newTestDispatcher(t, service.Config{})
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"Workspace.ls","params":[]}`)
	result := d.Dispatch(context.Background(), "", body)
	require.Equal(t, 500, result.HTTPStatus)
	resp := decodeResponse(t, result)
	require.Equal(t, -32602, resp.Error.Code)
}

func TestDispatchRequiredPolicyRejectsMissingToken(t *testing.T) {
	d := newTestDispatcher(t, service.Config{})
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"Workspace.create","params":[{"objects":[["/alice/ws1","folder"]]}]}`)
	result := d.Dispatch(context.Background(), "", body)
	require.Equal(t, 403, result.HTTPStatus)
	resp := decodeResponse(t, result)
	require.NotNil(t, resp.Error)
	require.Equal(t, 503, resp.Error.Code)
}

func TestDispatchOptionalPolicyToleratesMissingToken(t *testing.T) {
	d := newTestDispatcher(t, service.Config{})
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"Workspace.ls","params":[{"paths":["/"]}]}`)
	result := d.Dispatch(context.Background(), "", body)
	require.Equal(t, 200, result.HTTPStatus)
	resp := decodeResponse(t, result)
	require.Nil(t, resp.Error)
}

func TestDispatchOptionalPolicyToleratesInvalidToken(t *testing.T) {
	d := newTestDispatcher(t, service.Config{})
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"Workspace.ls","params":[{"paths":["/"]}]}`)
	result := d.Dispatch(context.Background(), "garbage-not-a-token", body)
	require.Equal(t, 200, result.HTTPStatus)
	resp := decodeResponse(t, result)
	require.Nil(t, resp.Error)
}

func TestDispatchCreateThenLsRoundTrip(t *testing.T) {
	priv, subjectURL, cleanup := startSigningServer(t)
	defer cleanup()

	d := newTestDispatcher(t, service.Config{})
	token := signedToken(t, priv, "alice", subjectURL, time.Now().Add(time.Hour))

	createBody := []byte(`{"jsonrpc":"2.0","id":1,"method":"Workspace.create","params":[{"objects":[["/alice/ws1","folder"]]}]}`)
	result := d.Dispatch(context.Background(), token, createBody)
	require.Equal(t, 200, result.HTTPStatus, string(result.Body))
	resp := decodeResponse(t, result)
	require.Nil(t, resp.Error)

	lsBody := []byte(`{"jsonrpc":"2.0","id":2,"method":"Workspace.ls","params":[{"paths":["/alice"]}]}`)
	result = d.Dispatch(context.Background(), token, lsBody)
	require.Equal(t, 200, result.HTTPStatus)
	resp = decodeResponse(t, result)
	require.Nil(t, resp.Error)

	var lsResult map[string][]json.RawMessage
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &lsResult))
	require.Len(t, lsResult["/alice"], 1)
}

func TestDispatchGetDownloadURLAnonymous(t *testing.T) {
	priv, subjectURL, cleanup := startSigningServer(t)
	defer cleanup()

	d := newTestDispatcher(t, service.Config{})
	token := signedToken(t, priv, "alice", subjectURL, time.Now().Add(time.Hour))

	createBody := []byte(`{"jsonrpc":"2.0","id":1,"method":"Workspace.create","params":[{"objects":[["/alice/ws1/f.txt","text"]],"overwrite":true}]}`)
	result := d.Dispatch(context.Background(), token, createBody)
	require.Equal(t, 200, result.HTTPStatus, string(result.Body))

	dlBody := []byte(`{"jsonrpc":"2.0","id":2,"method":"Workspace.get_download_url","params":[{"objects":["/alice/ws1/f.txt"]}]}`)
	result = d.Dispatch(context.Background(), "", dlBody)
	require.Equal(t, 200, result.HTTPStatus, string(result.Body))
	resp := decodeResponse(t, result)
	require.Nil(t, resp.Error)
}

func TestDispatchAdminModeRequiresBothFlagAndAllowList(t *testing.T) {
	priv, subjectURL, cleanup := startSigningServer(t)
	defer cleanup()

	cfg := service.Config{AdminUsers: []string{"root"}}
	d := newTestDispatcher(t, cfg)

	// alice isn't an admin: requesting adminmode doesn't elevate her, but
	// she still owns the path she's creating under, so the call succeeds
	// on ordinary owner permissions.
	aliceToken := signedToken(t, priv, "alice", subjectURL, time.Now().Add(time.Hour))
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"Workspace.create","params":[{"objects":[["/alice/ws1","folder"]],"adminmode":true}]}`)
	result := d.Dispatch(context.Background(), aliceToken, body)
	require.Equal(t, 200, result.HTTPStatus, string(result.Body))

	// root asking for adminmode can create under someone else's namespace.
	rootToken := signedToken(t, priv, "root", subjectURL, time.Now().Add(time.Hour))
	body = []byte(`{"jsonrpc":"2.0","id":2,"method":"Workspace.create","params":[{"objects":[["/alice/ws2","folder"]],"adminmode":true}]}`)
	result = d.Dispatch(context.Background(), rootToken, body)
	require.Equal(t, 200, result.HTTPStatus, string(result.Body))

	// bob isn't in the admin list; asking for adminmode doesn't help him
	// create in alice's namespace.
	bobToken := signedToken(t, priv, "bob", subjectURL, time.Now().Add(time.Hour))
	body = []byte(`{"jsonrpc":"2.0","id":3,"method":"Workspace.create","params":[{"objects":[["/alice/ws3","folder"]],"adminmode":true}]}`)
	result = d.Dispatch(context.Background(), bobToken, body)
	require.Equal(t, 200, result.HTTPStatus)
	resp := decodeResponse(t, result)
	require.Nil(t, resp.Error) // create's per-object failures don't surface as an envelope error
}

func startSigningServer(t *testing.T) (*rsa.PrivateKey, string, func()) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pubPEM)
	}))
	return priv, srv.URL, srv.Close
}

func signedToken(t *testing.T, priv *rsa.PrivateKey, user, subjectURL string, expiry time.Time) string {
	t.Helper()
	canonical := fmt.Sprintf("un=%s|SigningSubject=%s|expiry=%d", user, subjectURL, expiry.Unix())
	sig, err := authtoken.Sign(priv, canonical)
	require.NoError(t, err)
	return canonical + "|sig=" + hex.EncodeToString(sig)
}
