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

// Compile-time check that *DB implements repository.SnippetRepository.
// `var _ X = (*Y)(nil)` fails the build immediately if a method is missing,
// instead of at the call site much later.
var _ repository.SnippetRepository = (*DB)(nil)

const snippetColumns = `id, name, code, language, visibility, description, owner_id, created_at, updated_at`

// Create inserts a new snippet, assigning its id and timestamps.
//
// IDs come from xid: 20 chars, URL-safe, and time-prefixed. The prefix matters
// here — feeds order by (created_at DESC, id DESC), and a time-ordered id
// keeps the tiebreak consistent with insertion order even when two snippets
// land on the same timestamp.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now().UTC()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (`+snippetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Name,
		snippet.Code,
		string(snippet.Language),
		string(snippet.Visibility),
		snippet.Description,
		snippet.OwnerID,
		fmtTime(snippet.CreatedAt),
		fmtTime(snippet.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	return nil
}

// GetByID retrieves a single snippet by its ID.
// sql.ErrNoRows is translated to the domain NotFound error here, so callers
// never see database sentinels.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id)

	snippet, err := scanSnippet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	return snippet, nil
}

// List returns one page-worth of snippets matching q, newest first.
//
// KEYSET (CURSOR) PAGINATION:
// Instead of OFFSET — which re-counts skipped rows on every page and shifts
// under concurrent inserts — we resume from a (created_at, id) anchor:
//
//	WHERE (created_at, id) < (anchor.created_at, anchor.id)
//	ORDER BY created_at DESC, id DESC
//
// written out longhand because SQLite has no row-value index support worth
// relying on. The anchor is resolved from q.AfterID; if that id no longer
// exists (deleted mid-scroll, or garbage) the page is empty by policy — the
// cursor points past anything this caller can still see.
func (db *DB) List(ctx context.Context, q repository.SnippetQuery) ([]model.Snippet, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 8)

	if q.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, q.OwnerID)
	}
	if q.NotOwnerID != "" {
		// The global feed shows other people's snippets — and only public
		// ones. Private snippets are readable by their owner alone, and that
		// rule holds for listings too, not just direct reads.
		where = append(where, "owner_id != ?", "visibility = ?")
		args = append(args, q.NotOwnerID, string(model.VisibilityPublic))
	}
	if q.Language != "" {
		where = append(where, "language = ?")
		args = append(args, string(q.Language))
	}

	if q.AfterID != "" {
		var anchorAt time.Time
		err := db.conn.QueryRowContext(ctx,
			`SELECT created_at FROM snippets WHERE id = ?`, q.AfterID,
		).Scan(&anchorAt)
		if err == sql.ErrNoRows {
			return []model.Snippet{}, nil // stale cursor → nothing after it
		}
		if err != nil {
			return nil, fmt.Errorf("sqlite: resolving cursor %s: %w", q.AfterID, err)
		}
		where = append(where, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, fmtTime(anchorAt), fmtTime(anchorAt), q.AfterID)
	}

	query := `SELECT ` + snippetColumns + ` FROM snippets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, q.Limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	return collectSnippets(rows, q.Limit)
}

// ListTrending returns the most-saved public snippets, ties broken by recency.
//
// This is deliberately NOT paginated: trending answers "what's hot right now",
// a snapshot, so it's a single bounded aggregate query. The save count is
// computed by the LEFT JOIN + COUNT — it is never stored on the snippet row.
func (db *DB) ListTrending(ctx context.Context, limit int) ([]model.Snippet, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT s.id, s.name, s.code, s.language, s.visibility, s.description,
		        s.owner_id, s.created_at, s.updated_at
		 FROM snippets s
		 LEFT JOIN saved_snippets sv ON sv.snippet_id = s.id
		 WHERE s.visibility = ?
		 GROUP BY s.id
		 ORDER BY COUNT(sv.id) DESC, s.created_at DESC, s.id DESC
		 LIMIT ?`,
		string(model.VisibilityPublic), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing trending snippets: %w", err)
	}
	defer rows.Close()

	return collectSnippets(rows, limit)
}

// Update writes the mutable fields of a snippet. The id, language, owner and
// created_at never change after creation. RowsAffected == 0 means the WHERE
// clause matched nothing → not found.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	snippet.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET name = ?, code = ?, description = ?, visibility = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Name,
		snippet.Code,
		snippet.Description,
		string(snippet.Visibility),
		fmtTime(snippet.UpdatedAt),
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	return nil
}

// Delete removes a snippet by its ID. The ON DELETE CASCADE on saved_snippets
// cleans up any save links pointing at it in the same statement.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}

// rowScanner is the bit of sql.Row and sql.Rows both have.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row rowScanner) (*model.Snippet, error) {
	var s model.Snippet
	var language, visibility string

	err := row.Scan(
		&s.ID, &s.Name, &s.Code, &language, &visibility,
		&s.Description, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Language = model.Language(language)
	s.Visibility = model.Visibility(visibility)
	return &s, nil
}

func collectSnippets(rows *sql.Rows, capacity int) ([]model.Snippet, error) {
	if capacity < 0 {
		capacity = 0
	}
	snippets := make([]model.Snippet, 0, capacity)

	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}

	// rows.Err catches failures that happened during Next(), e.g. the
	// connection dropping mid-iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}
