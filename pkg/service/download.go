package service

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/lane"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wspath"
)

type ticketAllocation struct {
	url         string
	shockNodeID string
}

// GetDownloadURL implements get_download_url: a ticket is allocated per
// path on the general DB lane, and afterward, for every blob-backed
// object collected, the service grants the caller's ACL on the blob
// store using its own service credential.
func (s *Service) GetDownloadURL(ctx context.Context, caller Caller, params GetDownloadURLParams) ([]string, error) {
	allocs, err := lane.Do(ctx, s.generalLane, func() ([]ticketAllocation, error) {
		out := make([]ticketAllocation, 0, len(params.Objects))
		for _, raw := range params.Objects {
			a, err := s.allocateTicket(ctx, caller, raw)
			if err != nil {
				logger.WarnCtx(ctx, "get_download_url: allocation failed", logger.Path(raw), logger.Err(err))
				out = append(out, ticketAllocation{})
				continue
			}
			out = append(out, a)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	urls := make([]string, len(allocs))
	for i, a := range allocs {
		urls[i] = a.url
		if a.shockNodeID != "" && caller.User != "" {
			if err := s.blobStore.AddACLUser(ctx, a.shockNodeID, caller.User); err != nil {
				logger.WarnCtx(ctx, "get_download_url: blob acl grant failed", logger.NodeID(a.shockNodeID), logger.Err(err))
			}
		}
	}
	return urls, nil
}

func (s *Service) allocateTicket(ctx context.Context, caller Caller, raw string) (ticketAllocation, error) {
	p := wspath.Parse(raw)
	ws, err := s.store.GetWorkspace(ctx, p.Owner, p.Workspace)
	if err != nil {
		return ticketAllocation{}, err
	}
	if err := requirePerm(ws, caller, metadata.PermissionRead); err != nil {
		return ticketAllocation{}, err
	}
	obj, err := s.store.GetObject(ctx, ws.ID, p.Path, p.Name)
	if err != nil {
		return ticketAllocation{}, err
	}

	ticket := &metadata.DownloadTicket{
		ID:          uuid.NewString(),
		ObjectID:    obj.ID,
		WorkspaceID: ws.ID,
		IssuedTo:    caller.User,
		IssuedAt:    time.Now().UTC(),
		ExpiresAt:   time.Now().UTC().Add(s.cfg.DownloadLifetime),
	}
	if err := s.store.InsertDownloadTicket(ctx, ticket); err != nil {
		return ticketAllocation{}, err
	}

	downloadURL := s.cfg.DownloadURLBase + "/" + ticket.ID + "/" + url.PathEscape(obj.Name)
	return ticketAllocation{url: downloadURL, shockNodeID: obj.ShockNodeID}, nil
}
