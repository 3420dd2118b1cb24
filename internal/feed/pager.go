package feed

import (
	"fmt"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
)

// Pagination limits. DefaultLimit is what an infinite-scroll client gets when
// it doesn't ask for a specific page size.
const (
	DefaultLimit = 9
	MaxLimit     = 100
)

// normalizeLimit validates a requested page size.
// Zero means "unset" and falls back to the default; anything else outside
// [1, MaxLimit] is the caller's mistake and comes back as a validation error
// rather than being silently clamped.
func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit < 1 || limit > MaxLimit {
		return 0, apperror.ValidationFailed("limit",
			fmt.Sprintf("limit must be between 1 and %d", MaxLimit))
	}
	return limit, nil
}

// cut applies the over-fetch trick shared by every paginated feed.
//
// THE limit+1 TRICK:
// Each feed query asks the store for limit+1 rows. If all limit+1 arrive, we
// know there is at least one more page: the extra row is discarded and the id
// of the last row the client actually sees becomes the cursor (queries resume
// strictly after it). If fewer arrive, this is the last page and the cursor
// is empty.
//
// Keeping this in one helper (instead of copy-pasting it per feed) is what
// guarantees all four feeds agree on the edge cases: exact-multiple page
// sizes, empty results, end-of-feed detection.
func cut(items []model.Snippet, limit int) ([]model.Snippet, string) {
	if len(items) <= limit {
		return items, ""
	}
	items = items[:limit]
	return items, items[limit-1].ID
}
