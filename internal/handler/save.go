package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/service"
)

// SaveHandler exposes the save toggle and its derived reads.
type SaveHandler struct {
	saves  *service.SaveService
	logger *slog.Logger
}

func NewSaveHandler(saves *service.SaveService, logger *slog.Logger) *SaveHandler {
	return &SaveHandler{saves: saves, logger: logger}
}

// HandleToggle flips the caller's saved state for a snippet.
//
// HTTP: POST /api/snippets/{id}/save
// Response: {"success": true, "saved": true, "record": {...}}
//
// One endpoint for both directions — no request body, no "already saved"
// error. success:false (with 200) means the toggle was absorbed: the caller
// owns the snippet, or a concurrent toggle got there first. Clients refetch
// the count and membership afterwards either way.
func (h *SaveHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	result, err := h.saves.Toggle(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleCount returns how many users have saved the snippet.
//
// HTTP: GET /api/snippets/{id}/saves
// Response: {"count": 3}
func (h *SaveHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.saves.Count(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// HandleIsSaved reports whether the caller has the snippet saved.
//
// HTTP: GET /api/snippets/{id}/saved
// Response: {"saved": true}
func (h *SaveHandler) HandleIsSaved(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	saved, err := h.saves.IsSaved(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}
