package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/blob"
	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/payload/fs"
)

// newDownloadHandler serves the body addressed by a single-use download
// ticket. A ticket is good for exactly one successful redemption: it is
// marked used before the body is streamed, so a client that disconnects
// mid-transfer must request a fresh ticket rather than retry.
func newDownloadHandler(store metadata.Store, bodies *fs.Store, blobStore blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID := chi.URLParam(r, "ticket")
		name := chi.URLParam(r, "name")

		ticket, err := store.LookupDownloadTicket(r.Context(), ticketID)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if ticket.Expired(time.Now()) {
			http.Error(w, "download ticket expired or already used", http.StatusNotFound)
			return
		}

		obj, err := store.GetObjectByID(r.Context(), ticket.ObjectID)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if obj.Name != name {
			http.NotFound(w, r)
			return
		}
		ws, err := store.GetWorkspaceByID(r.Context(), ticket.WorkspaceID)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		if err := store.MarkDownloadTicketUsed(r.Context(), ticket.ID); err != nil {
			logger.ErrorCtx(r.Context(), "download: failed to mark ticket used", logger.Err(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", obj.Name))

		if obj.ShockNodeID != "" {
			rc, err := blobStore.StreamDownload(r.Context(), obj.ShockNodeID)
			if err != nil {
				logger.ErrorCtx(r.Context(), "download: blob stream failed", logger.NodeID(obj.ShockNodeID), logger.Err(err))
				http.Error(w, "failed to read object body", http.StatusBadGateway)
				return
			}
			defer rc.Close()
			w.Header().Set("Content-Type", "application/octet-stream")
			if _, err := io.Copy(w, rc); err != nil {
				logger.WarnCtx(r.Context(), "download: streaming interrupted", logger.Err(err))
			}
			return
		}

		rc, err := bodies.Open(ws.Owner, ws.Name, obj.Path, obj.Name)
		if err != nil {
			logger.ErrorCtx(r.Context(), "download: failed to open body", logger.Path(obj.FullPath()), logger.Err(err))
			http.Error(w, "failed to read object body", http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := io.Copy(w, rc); err != nil {
			logger.WarnCtx(r.Context(), "download: streaming interrupted", logger.Err(err))
		}
	}
}
