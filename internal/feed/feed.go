// Package feed assembles the four snippet feed views on top of cursor-based
// pagination.
//
// THE FOUR FEEDS:
//
//	owned    — the caller's own snippets, any visibility     (paginated)
//	saved    — snippets the caller has bookmarked            (paginated, by save time)
//	public   — everyone else's public snippets               (paginated)
//	trending — most-saved public snippets, top 4             (snapshot, no cursor)
//
// The paginated feeds share one cursor convention: the cursor is the id of
// the last snippet on the previous page, resolved by the repository to a
// keyset anchor. That gives stable, duplicate-free pages — a snippet created
// after you started scrolling shows up on a fresh first page, never spliced
// into pages you already have.
package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// Name identifies a feed view.
type Name string

const (
	Owned    Name = "owned"
	Saved    Name = "saved"
	Public   Name = "public"
	Trending Name = "trending"
)

// TrendingLimit is the fixed size of the trending snapshot. Trending is not
// a browsable list, so there is no cursor and no client-chosen limit.
const TrendingLimit = 4

// ParseName validates a feed name from the request path.
func ParseName(s string) (Name, error) {
	switch Name(s) {
	case Owned, Saved, Public, Trending:
		return Name(s), nil
	}
	return "", apperror.ValidationFailed("feed",
		fmt.Sprintf("unknown feed %q (want owned, saved, public or trending)", s))
}

// Page is one page of a feed. An empty NextCursor means end-of-feed.
type Page struct {
	Items      []model.Snippet `json:"items"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

// Request carries everything a caller can say about the page they want.
//
// Changing Language between requests resets pagination: a cursor obtained
// under one filter is meaningless under another, and we make no attempt to
// translate it — clients drop the cursor when they switch filters.
type Request struct {
	CallerID string
	Limit    int    // 0 = default
	Cursor   string // id of the last snippet seen, "" = start of feed
	Language string // optional language filter, "" = all
}

// Service is the feed assembler. It owns no state beyond its repositories;
// every call is an independent read against the shared store.
type Service struct {
	snippets repository.SnippetRepository
	saved    repository.SavedSnippetRepository
	logger   *slog.Logger
}

func NewService(
	snippets repository.SnippetRepository,
	saved repository.SavedSnippetRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		snippets: snippets,
		saved:    saved,
		logger:   logger,
	}
}

// Page returns one page of the named feed.
//
// Trending ignores limit, cursor and language — it's a fixed-size snapshot
// and the only feed that works without authentication. The other three
// require a caller.
func (s *Service) Page(ctx context.Context, name Name, req Request) (*Page, error) {
	if name == Trending {
		items, err := s.snippets.ListTrending(ctx, TrendingLimit)
		if err != nil {
			s.logger.Error("trending feed query failed", slog.String("error", err.Error()))
			return nil, fmt.Errorf("trending feed: %w", err)
		}
		return &Page{Items: items}, nil
	}

	if req.CallerID == "" {
		return nil, apperror.Unauthorized("authentication required for this feed")
	}

	limit, err := normalizeLimit(req.Limit)
	if err != nil {
		return nil, err
	}

	language := model.Language(req.Language)
	if req.Language != "" && !language.Valid() {
		return nil, apperror.ValidationFailed("language",
			fmt.Sprintf("unsupported language %q", req.Language))
	}

	// Over-fetch by one row; cut() pops the sentinel and derives the cursor.
	var items []model.Snippet
	switch name {
	case Owned:
		items, err = s.snippets.List(ctx, repository.SnippetQuery{
			OwnerID:  req.CallerID,
			Language: language,
			AfterID:  req.Cursor,
			Limit:    limit + 1,
		})
	case Saved:
		items, err = s.saved.ListSnippets(ctx, repository.SavedQuery{
			UserID:         req.CallerID,
			Language:       language,
			AfterSnippetID: req.Cursor,
			Limit:          limit + 1,
		})
	case Public:
		items, err = s.snippets.List(ctx, repository.SnippetQuery{
			NotOwnerID: req.CallerID,
			Language:   language,
			AfterID:    req.Cursor,
			Limit:      limit + 1,
		})
	default:
		return nil, apperror.ValidationFailed("feed", fmt.Sprintf("unknown feed %q", name))
	}
	if err != nil {
		s.logger.Error("feed query failed",
			slog.String("feed", string(name)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s feed: %w", name, err)
	}

	pageItems, nextCursor := cut(items, limit)
	return &Page{Items: pageItems, NextCursor: nextCursor}, nil
}
