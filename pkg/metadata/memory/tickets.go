package memory

import (
	"context"

	"github.com/wsobjects/wsd/pkg/metadata"
)

func (s *Store) InsertDownloadTicket(ctx context.Context, t *metadata.DownloadTicket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

func (s *Store) LookupDownloadTicket(ctx context.Context, id string) (*metadata.DownloadTicket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, notFoundID(id)
	}
	out := *t
	return &out, nil
}

func (s *Store) MarkDownloadTicketUsed(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return notFoundID(id)
	}
	t.Used = true
	return nil
}
