package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"stayfit/internal/adapters/http/middleware"
	"stayfit/internal/adapters/storage"
	"stayfit/internal/domain/outbox"
)

// handleAdminOutbox handles admin endpoints for managing outbox entries.
// Routes: GET /api/admin/outbox (list entries), POST /api/admin/outbox/{id}/retry (manual retry),
// POST /api/admin/outbox/{id}/abandon
func (s *Server) handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.CallerFromContext(ctx)
	if !caller.Authenticated() {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !caller.IsAdmin() {
		writeJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit, err := queryInt(r, "limit", 50)
		if err != nil || limit <= 0 || limit > 100 {
			limit = 50
		}

		var entries []outbox.Entry
		if r.URL.Query().Get("status") == "pending" {
			entries, err = s.stores.OutboxStore.ListPending(ctx, limit)
		} else {
			entries, err = s.stores.OutboxStore.ListFailed(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, storage.NonNil(entries))

	case http.MethodPost:
		// Extract entry ID from path: /api/admin/outbox/{id}/{action}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 5 || parts[0] != "api" || parts[1] != "admin" || parts[2] != "outbox" {
			badRequest(w, "invalid path")
			return
		}
		entryID, action := parts[3], parts[4]
		if s.outbox == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "outbox worker is not configured")
			return
		}

		var status string
		switch action {
		case "retry":
			entry, err := s.outbox.ProcessSingle(ctx, entryID)
			switch {
			case errors.Is(err, outbox.ErrMaxRetries):
				writeJSONError(w, http.StatusConflict, outbox.ErrMaxRetries.Error())
				return
			case errors.Is(err, storage.ErrNotFound):
				writeError(w, r, err)
				return
			case err != nil:
				slog.Warn("outbox_event", "event", "admin_retry_failed", "entry_id", entryID, "error", err)
				status = outbox.StatusRetrying
				if reloaded, gerr := s.stores.OutboxStore.GetByID(ctx, entryID); gerr == nil {
					status = reloaded.Status
				}
			default:
				status = entry.Status
			}
		case "abandon":
			if err := s.outbox.AbandonEntry(ctx, entryID); err != nil {
				writeError(w, r, err)
				return
			}
			status = outbox.StatusAbandoned
		default:
			badRequest(w, "unknown action")
			return
		}
		slog.Info("outbox_event", "event", "admin_"+action, "entry_id", entryID, "status", status, "user_id", caller.UserID)

		if !isJSONRequest(r) {
			http.Redirect(w, r, "/dashboard/admin", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": entryID, "status": status})

	default:
		methodNotAllowed(w)
	}
}
