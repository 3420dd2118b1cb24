package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/feed"
)

// FeedHandler serves the paginated feed views.
type FeedHandler struct {
	feeds  *feed.Service
	logger *slog.Logger
}

func NewFeedHandler(feeds *feed.Service, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feeds: feeds, logger: logger}
}

// HandlePage returns one page of the named feed.
//
// HTTP: GET /api/feed/{name}?limit=9&cursor=<id>&language=python
//
// The route runs behind OptionalAuth: trending works anonymously, the other
// feeds come back 401 without a valid token. Clients paginate by echoing
// nextCursor from the previous response; switching the language filter means
// dropping the cursor and starting over.
func (h *FeedHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	name, err := feed.ParseName(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, apperror.ValidationFailed("limit", "limit must be an integer"))
			return
		}
	}

	callerID, _ := auth.UserIDFromContext(r.Context())

	page, err := h.feeds.Page(r.Context(), name, feed.Request{
		CallerID: callerID,
		Limit:    limit,
		Cursor:   r.URL.Query().Get("cursor"),
		Language: r.URL.Query().Get("language"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
