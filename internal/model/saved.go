package model

import "time"

// SavedSnippet is the many-to-many link created when a user bookmarks
// ("saves") someone else's snippet.
//
// Invariants enforced by the store and the toggle logic:
//   - at most one row per (UserID, SnippetID) — saving is a toggle, not a counter
//   - UserID never equals the owner of the referenced snippet (no self-saving)
//
// Rows are created on a "save" transition and deleted on "unsave"; they are
// never updated in place. A snippet's save count is always COUNT(*) over this
// table — it is never stored redundantly on the snippet.
type SavedSnippet struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	SnippetID string    `json:"snippetId"`
	CreatedAt time.Time `json:"createdAt"`
}
