package memory

import (
	"context"
	"time"

	"github.com/wsobjects/wsd/pkg/metadata"
)

func (s *Store) InsertPendingUpload(ctx context.Context, p *metadata.PendingUpload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	s.pending[p.ObjectID] = &cp
	return nil
}

func (s *Store) ListPendingUploads(ctx context.Context) ([]*metadata.PendingUpload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*metadata.PendingUpload, 0, len(s.pending))
	for _, p := range s.pending {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) RemovePendingUpload(ctx context.Context, objectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, objectID)
	return nil
}

func (s *Store) SetObjectSize(ctx context.Context, objectID string, size int64, checksum string) (*metadata.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.objects[objectID]
	if !ok {
		return nil, notFoundID(objectID)
	}
	o.Size = size
	o.Checksum = checksum
	o.Pending = false
	o.ModifiedAt = time.Now()
	delete(s.pending, objectID)

	out := *o
	return &out, nil
}
