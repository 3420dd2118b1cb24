package repository

import (
	"context"

	"github.com/sakif/snippetshare/internal/model"
)

// SnippetQuery describes one page-worth of a filtered snippet listing.
//
// The zero value means "everything, newest first, from the top". Feeds set
// exactly one of OwnerID / NotOwnerID plus an optional Language filter.
//
// AfterID is the keyset cursor: results resume strictly after that snippet in
// (created_at DESC, id DESC) order. An AfterID that no longer matches a row
// yields an empty result, not an error — the cursor points past the end of
// what this caller can still see.
//
// Limit is the number of rows to fetch. The feed layer passes limit+1 and
// pops the sentinel row itself; the repository does not know about cursors
// beyond the anchor lookup.
type SnippetQuery struct {
	OwnerID    string         // only snippets owned by this user
	NotOwnerID string         // exclude snippets owned by this user
	Language   model.Language // optional equality filter, "" = all languages
	AfterID    string         // resume after this snippet id
	Limit      int
}

// SavedQuery is the saved-feed variant of SnippetQuery: snippets a user has
// bookmarked, ordered by when they saved them (not when the snippet was
// created). AfterSnippetID is still a snippet id — the UNIQUE(user, snippet)
// constraint guarantees it identifies one save link for this user.
type SavedQuery struct {
	UserID         string
	Language       model.Language
	AfterSnippetID string
	Limit          int
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q SnippetQuery) ([]model.Snippet, error)
	// ListTrending returns the most-saved public snippets, ties broken by
	// recency. It is a bounded snapshot, not a paginated listing.
	ListTrending(ctx context.Context, limit int) ([]model.Snippet, error)
}

type SavedSnippetRepository interface {
	// CreateSaved inserts a save link. A concurrent duplicate of the same
	// (user, snippet) pair surfaces as apperror.ErrConflict — the UNIQUE
	// constraint in the store is what makes the toggle race-safe.
	CreateSaved(ctx context.Context, saved *model.SavedSnippet) error
	DeleteSaved(ctx context.Context, id string) error
	GetByUserAndSnippet(ctx context.Context, userID, snippetID string) (*model.SavedSnippet, error)
	CountBySnippet(ctx context.Context, snippetID string) (int, error)
	ListSnippets(ctx context.Context, q SavedQuery) ([]model.Snippet, error)
}

type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
