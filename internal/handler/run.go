package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/runner"
	"github.com/sakif/snippetshare/internal/service"
)

// RunHandler executes a snippet's code in its language's sandbox.
type RunHandler struct {
	snippets *service.SnippetService
	runner   runner.Runner
	logger   *slog.Logger
}

func NewRunHandler(snippets *service.SnippetService, run runner.Runner, logger *slog.Logger) *RunHandler {
	return &RunHandler{snippets: snippets, runner: run, logger: logger}
}

// HandleRun runs the snippet identified in the path.
//
// HTTP: POST /api/snippets/{id}/run
//
// Running a snippet means reading it, so the same visibility rule applies:
// a private snippet can only be run by its owner (404 for everyone else).
// Markup and non-evaluable languages return a validation error. The runner
// is optional at startup — without Docker the route answers 503.
func (h *RunHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "code execution is not available on this server",
		})
		return
	}

	callerID, _ := auth.UserIDFromContext(r.Context())

	snippet, err := h.snippets.GetByID(r.Context(), callerID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if !h.runner.Supports(snippet.Language) {
		writeError(w, apperror.ValidationFailed("language",
			"snippets in "+string(snippet.Language)+" cannot be executed"))
		return
	}

	h.logger.Info("running snippet",
		slog.String("id", snippet.ID),
		slog.String("language", string(snippet.Language)),
	)

	result, err := h.runner.Run(r.Context(), runner.Request{
		Language: snippet.Language,
		Code:     snippet.Code,
	})
	if err != nil {
		h.logger.Error("snippet execution failed",
			slog.String("id", snippet.ID),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "execution failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
