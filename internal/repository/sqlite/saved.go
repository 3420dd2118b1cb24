package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

var _ repository.SavedSnippetRepository = (*DB)(nil)

// CreateSaved inserts a save link.
//
// This is the losing end of the toggle race: two toggles can both observe
// "not saved" and both try to insert. The UNIQUE(user_id, snippet_id)
// constraint rejects the second insert, which we translate to
// apperror.ErrConflict so the toggle can reconcile instead of erroring out.
func (db *DB) CreateSaved(ctx context.Context, saved *model.SavedSnippet) error {
	saved.ID = xid.New().String()
	saved.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO saved_snippets (id, user_id, snippet_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		saved.ID, saved.UserID, saved.SnippetID, fmtTime(saved.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("saved snippet", saved.SnippetID)
		}
		return fmt.Errorf("sqlite: creating save link: %w", err)
	}

	return nil
}

// DeleteSaved removes a save link by its own id (not the snippet id — the
// toggle fetches the row first and deletes exactly what it saw).
func (db *DB) DeleteSaved(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM saved_snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting save link %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("saved snippet", id)
	}

	return nil
}

// GetByUserAndSnippet looks up the save link for one (user, snippet) pair.
// At most one row can exist — that's the table's UNIQUE constraint.
func (db *DB) GetByUserAndSnippet(ctx context.Context, userID, snippetID string) (*model.SavedSnippet, error) {
	var s model.SavedSnippet

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, snippet_id, created_at
		 FROM saved_snippets
		 WHERE user_id = ? AND snippet_id = ?`,
		userID, snippetID,
	).Scan(&s.ID, &s.UserID, &s.SnippetID, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("saved snippet", snippetID)
		}
		return nil, fmt.Errorf("sqlite: getting save link: %w", err)
	}

	return &s, nil
}

// CountBySnippet derives a snippet's save count. Always computed, never
// cached — the count is stale the moment a toggle lands anyway, and callers
// refetch after toggling.
func (db *DB) CountBySnippet(ctx context.Context, snippetID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM saved_snippets WHERE snippet_id = ?`, snippetID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting saves for snippet %s: %w", snippetID, err)
	}
	return count, nil
}

// ListSnippets returns one page of the snippets a user has saved, ordered by
// when they saved them (saved_snippets.created_at), newest save first.
//
// Same keyset scheme as the main snippet listing, but anchored on the save
// link: the cursor is a snippet id, resolved to the caller's save row for it.
// A cursor whose save link is gone (unsaved mid-scroll) yields an empty page.
//
// Only public snippets survive the join — a snippet whose owner flipped it to
// private disappears from other people's saved feeds until it's public again.
func (db *DB) ListSnippets(ctx context.Context, q repository.SavedQuery) ([]model.Snippet, error) {
	where := []string{"sv.user_id = ?", "s.visibility = ?"}
	args := []any{q.UserID, string(model.VisibilityPublic)}

	if q.Language != "" {
		where = append(where, "s.language = ?")
		args = append(args, string(q.Language))
	}

	if q.AfterSnippetID != "" {
		var anchorAt time.Time
		var anchorID string
		err := db.conn.QueryRowContext(ctx,
			`SELECT created_at, id FROM saved_snippets
			 WHERE user_id = ? AND snippet_id = ?`,
			q.UserID, q.AfterSnippetID,
		).Scan(&anchorAt, &anchorID)
		if err == sql.ErrNoRows {
			return []model.Snippet{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("sqlite: resolving saved cursor %s: %w", q.AfterSnippetID, err)
		}
		where = append(where, "(sv.created_at < ? OR (sv.created_at = ? AND sv.id < ?))")
		args = append(args, fmtTime(anchorAt), fmtTime(anchorAt), anchorID)
	}

	query := `SELECT s.id, s.name, s.code, s.language, s.visibility, s.description,
	                 s.owner_id, s.created_at, s.updated_at
	          FROM saved_snippets sv
	          JOIN snippets s ON s.id = sv.snippet_id
	          WHERE ` + strings.Join(where, " AND ") + `
	          ORDER BY sv.created_at DESC, sv.id DESC
	          LIMIT ?`
	args = append(args, q.Limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing saved snippets: %w", err)
	}
	defer rows.Close()

	return collectSnippets(rows, q.Limit)
}
