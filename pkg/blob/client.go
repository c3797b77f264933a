// Package blob is a client for the Shock blob store: node-oriented
// upload/download over plain HTTP, not an S3-compatible API.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wsobjects/wsd/pkg/wsdomain"
)

// Node describes a Shock node: the stored body plus server-computed
// attributes.
type Node struct {
	ID       string
	Size     int64
	Checksum string // MD5 hex
}

// nodeData is the wire shape of a Shock node's "data" object: size and
// checksum live nested under "file", not at the top level.
type nodeData struct {
	ID   string `json:"id"`
	File struct {
		Size     int64 `json:"size"`
		Checksum struct {
			MD5 string `json:"md5"`
		} `json:"checksum"`
	} `json:"file"`
}

func (d nodeData) toNode() *Node {
	return &Node{ID: d.ID, Size: d.File.Size, Checksum: d.File.Checksum.MD5}
}

// Client talks to a single Shock server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string // this service's own Shock credential
}

// NewClient builds a Client against baseURL (e.g. "https://shock.example.org").
func NewClient(baseURL string, httpClient *http.Client, authToken string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		authToken:  authToken,
	}
}

type nodeResponse struct {
	Data  nodeData `json:"data"`
	Error []string `json:"error"`
}

type createNodeRequest struct {
	WSID []string `json:"ws_id"`
}

// CreateNode registers a new node tagged with tag (the workspace object
// id the node will back) and returns its id. The node is created empty;
// its body is uploaded to Shock out of band by the caller, and its
// size/checksum only become available once that upload completes (see
// pkg/reconciler). body is accepted to satisfy Store for callers like
// the fake in-memory implementation that populate a node's content
// immediately; the real Shock create_node call carries no body at all.
func (c *Client) CreateNode(ctx context.Context, tag string, body io.Reader) (*Node, error) {
	reqBody, err := json.Marshal(createNodeRequest{WSID: []string{tag}})
	if err != nil {
		return nil, c.wrapErr("encode create-node request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/node", bytes.NewReader(reqBody))
	if err != nil {
		return nil, c.wrapErr("build create-node request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	var out nodeResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Data.toNode(), nil
}

// GetNode retrieves a node's attributes without its body.
func (c *Client) GetNode(ctx context.Context, nodeID string) (*Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/node/"+nodeID, nil)
	if err != nil {
		return nil, c.wrapErr("build get-node request", err)
	}
	c.authorize(req)

	var out nodeResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Data.toNode(), nil
}

// AddACLUser grants user access to a node via its "all" ACL, covering
// read, write, and delete.
func (c *Client) AddACLUser(ctx context.Context, nodeID, user string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/node/"+nodeID+"/acl/all?users="+user, nil)
	if err != nil {
		return c.wrapErr("build acl request", err)
	}
	c.authorize(req)

	return c.do(req, &nodeResponse{})
}

// StreamDownload opens the body of nodeID for streaming. Callers must
// Close the returned ReadCloser.
func (c *Client) StreamDownload(ctx context.Context, nodeID string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/node/"+nodeID+"?download", nil)
	if err != nil {
		return nil, c.wrapErr("build download request", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wrapErr("download node", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, wsdomain.NewError(wsdomain.ErrUpstream, fmt.Sprintf("download node %s returned %d", nodeID, resp.StatusCode))
	}
	return resp.Body, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.authToken != "" {
		req.Header.Set("Authorization", "OAuth "+c.authToken)
	}
}

func (c *Client) do(req *http.Request, out *nodeResponse) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.wrapErr("shock request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return wsdomain.NewError(wsdomain.ErrUpstream, fmt.Sprintf("shock request to %s returned %d", req.URL.Path, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.wrapErr("decode shock response", err)
	}
	if len(out.Error) > 0 {
		return wsdomain.NewError(wsdomain.ErrUpstream, strings.Join(out.Error, "; "))
	}
	return nil
}

func (c *Client) wrapErr(op string, err error) error {
	return wsdomain.NewError(wsdomain.ErrUpstream, op+": "+err.Error())
}
