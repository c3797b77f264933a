package blob

import (
	"context"
	"io"
)

// Store is the subset of Client's behavior the service layer depends on,
// letting tests substitute a fake in-memory blob store.
type Store interface {
	CreateNode(ctx context.Context, filename string, body io.Reader) (*Node, error)
	GetNode(ctx context.Context, nodeID string) (*Node, error)
	AddACLUser(ctx context.Context, nodeID, user string) error
	StreamDownload(ctx context.Context, nodeID string) (io.ReadCloser, error)
}

var _ Store = (*Client)(nil)
