// Package fake is an in-memory blob.Store used by service and reconciler
// tests so they don't need a running Shock server.
package fake

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/wsobjects/wsd/pkg/blob"
	"github.com/wsobjects/wsd/pkg/wsdomain"
)

// Store is a blob.Store backed by an in-memory map of node id to bytes.
type Store struct {
	mu    sync.Mutex
	nodes map[string][]byte
	acls  map[string]map[string]bool
}

// New returns an empty fake Store.
func New() *Store {
	return &Store{
		nodes: make(map[string][]byte),
		acls:  make(map[string]map[string]bool),
	}
}

func (s *Store) CreateNode(ctx context.Context, filename string, body io.Reader) (*blob.Node, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrIO, "read upload body: "+err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.nodes[id] = data
	sum := md5.Sum(data)
	return &blob.Node{ID: id, Size: int64(len(data)), Checksum: hex.EncodeToString(sum[:])}, nil
}

func (s *Store) GetNode(ctx context.Context, nodeID string) (*blob.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.nodes[nodeID]
	if !ok {
		return nil, wsdomain.NotFound(nodeID)
	}
	sum := md5.Sum(data)
	return &blob.Node{ID: nodeID, Size: int64(len(data)), Checksum: hex.EncodeToString(sum[:])}, nil
}

func (s *Store) AddACLUser(ctx context.Context, nodeID, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[nodeID]; !ok {
		return wsdomain.NotFound(nodeID)
	}
	if s.acls[nodeID] == nil {
		s.acls[nodeID] = make(map[string]bool)
	}
	s.acls[nodeID][user] = true
	return nil
}

func (s *Store) StreamDownload(ctx context.Context, nodeID string) (io.ReadCloser, error) {
	s.mu.Lock()
	data, ok := s.nodes[nodeID]
	s.mu.Unlock()
	if !ok {
		return nil, wsdomain.NotFound(nodeID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// HasACL reports whether user was granted access to nodeID, for tests.
func (s *Store) HasACL(nodeID, user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acls[nodeID][user]
}

var _ blob.Store = (*Store)(nil)
