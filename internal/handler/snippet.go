package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/service"
)

// SnippetHandler exposes the snippet CRUD operations over HTTP.
//
// The handler only parses requests and writes responses; every rule —
// validation, ownership, visibility — lives in the service. In particular it
// never decides who may do what: it passes the (possibly empty) caller id
// down and lets the guard answer.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

// HandleCreate creates a snippet owned by the authenticated caller.
//
// HTTP: POST /api/snippets
// Body: {"name": "...", "code": "...", "language": "python",
//        "visibility": "public", "description": "..."}
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var in service.CreateSnippetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	snippet, err := h.snippets.Create(r.Context(), callerID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleGetByID returns a single snippet. Anonymous callers only resolve
// public snippets; a private one is a 404 for everyone but its owner.
//
// HTTP: GET /api/snippets/{id}
func (h *SnippetHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.snippets.GetByID(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleUpdate modifies a snippet the caller owns. Language is immutable and
// absent from the update input.
//
// HTTP: PUT /api/snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	var in service.UpdateSnippetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "validation_error", Message: "invalid JSON body",
		})
		return
	}

	snippet, err := h.snippets.Update(r.Context(), callerID, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet the caller owns and echoes the deleted
// record back.
//
// HTTP: DELETE /api/snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.snippets.Delete(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}
