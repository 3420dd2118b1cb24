package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
	"github.com/sakif/snippetshare/internal/repository/sqlite"
)

// mockSnippetRepo captures the query it was asked and returns canned rows.
// Only the methods the feed service calls are meaningful; the rest exist to
// satisfy the interface.
type mockSnippetRepo struct {
	listQuery     repository.SnippetQuery
	listResult    []model.Snippet
	trendingLimit int
	trendingItems []model.Snippet
}

func (m *mockSnippetRepo) Create(context.Context, *model.Snippet) error { return nil }
func (m *mockSnippetRepo) GetByID(context.Context, string) (*model.Snippet, error) {
	return nil, apperror.NotFound("snippet", "")
}
func (m *mockSnippetRepo) Update(context.Context, *model.Snippet) error { return nil }
func (m *mockSnippetRepo) Delete(context.Context, string) error         { return nil }

func (m *mockSnippetRepo) List(_ context.Context, q repository.SnippetQuery) ([]model.Snippet, error) {
	m.listQuery = q
	return m.listResult, nil
}

func (m *mockSnippetRepo) ListTrending(_ context.Context, limit int) ([]model.Snippet, error) {
	m.trendingLimit = limit
	return m.trendingItems, nil
}

type mockSavedRepo struct {
	listQuery  repository.SavedQuery
	listResult []model.Snippet
}

func (m *mockSavedRepo) CreateSaved(context.Context, *model.SavedSnippet) error { return nil }
func (m *mockSavedRepo) DeleteSaved(context.Context, string) error              { return nil }
func (m *mockSavedRepo) GetByUserAndSnippet(context.Context, string, string) (*model.SavedSnippet, error) {
	return nil, apperror.NotFound("saved snippet", "")
}
func (m *mockSavedRepo) CountBySnippet(context.Context, string) (int, error) { return 0, nil }

func (m *mockSavedRepo) ListSnippets(_ context.Context, q repository.SavedQuery) ([]model.Snippet, error) {
	m.listQuery = q
	return m.listResult, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService() (*Service, *mockSnippetRepo, *mockSavedRepo) {
	snippets := &mockSnippetRepo{}
	saved := &mockSavedRepo{}
	return NewService(snippets, saved, testLogger()), snippets, saved
}

func TestParseName(t *testing.T) {
	for _, valid := range []string{"owned", "saved", "public", "trending"} {
		if _, err := ParseName(valid); err != nil {
			t.Errorf("ParseName(%q) error = %v", valid, err)
		}
	}

	_, err := ParseName("newest")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("ParseName(\"newest\") error = %v, want ErrValidation", err)
	}
}

func TestPage_TrendingIgnoresPaging(t *testing.T) {
	svc, snippets, _ := newTestService()
	snippets.trendingItems = []model.Snippet{{ID: "a"}, {ID: "b"}}

	// No caller, a cursor, a limit — trending shrugs all of it off.
	page, err := svc.Page(context.Background(), Trending, Request{Limit: 50, Cursor: "junk"})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	if snippets.trendingLimit != TrendingLimit {
		t.Errorf("trending queried with limit %d, want %d", snippets.trendingLimit, TrendingLimit)
	}
	if len(page.Items) != 2 {
		t.Errorf("len(Items) = %d, want 2", len(page.Items))
	}
	if page.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty (trending never paginates)", page.NextCursor)
	}
}

func TestPage_RequiresCaller(t *testing.T) {
	svc, _, _ := newTestService()

	for _, name := range []Name{Owned, Saved, Public} {
		_, err := svc.Page(context.Background(), name, Request{})
		if !errors.Is(err, apperror.ErrUnauthorized) {
			t.Errorf("Page(%s) without caller error = %v, want ErrUnauthorized", name, err)
		}
	}
}

func TestPage_RejectsBadLimitAndLanguage(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Page(context.Background(), Public, Request{CallerID: "u1", Limit: -3})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("negative limit error = %v, want ErrValidation", err)
	}

	_, err = svc.Page(context.Background(), Public, Request{CallerID: "u1", Language: "cobol"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("unknown language error = %v, want ErrValidation", err)
	}
}

func TestPage_OwnedQueryShape(t *testing.T) {
	svc, snippets, _ := newTestService()

	_, err := svc.Page(context.Background(), Owned, Request{
		CallerID: "u1",
		Limit:    5,
		Cursor:   "cur",
		Language: "python",
	})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	q := snippets.listQuery
	if q.OwnerID != "u1" || q.NotOwnerID != "" {
		t.Errorf("owned feed query = %+v, want OwnerID only", q)
	}
	if q.AfterID != "cur" {
		t.Errorf("AfterID = %q, want %q", q.AfterID, "cur")
	}
	if q.Language != model.LangPython {
		t.Errorf("Language = %q, want python", q.Language)
	}
	if q.Limit != 6 {
		t.Errorf("Limit = %d, want limit+1 = 6", q.Limit)
	}
}

func TestPage_PublicExcludesCaller(t *testing.T) {
	svc, snippets, _ := newTestService()

	_, err := svc.Page(context.Background(), Public, Request{CallerID: "u1"})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	q := snippets.listQuery
	if q.NotOwnerID != "u1" || q.OwnerID != "" {
		t.Errorf("public feed query = %+v, want NotOwnerID only", q)
	}
	if q.Limit != DefaultLimit+1 {
		t.Errorf("Limit = %d, want default+1 = %d", q.Limit, DefaultLimit+1)
	}
}

func TestPage_SavedQueryShape(t *testing.T) {
	svc, _, saved := newTestService()

	_, err := svc.Page(context.Background(), Saved, Request{
		CallerID: "u1",
		Limit:    3,
		Cursor:   "snip9",
	})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}

	q := saved.listQuery
	if q.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", q.UserID)
	}
	if q.AfterSnippetID != "snip9" {
		t.Errorf("AfterSnippetID = %q, want snip9", q.AfterSnippetID)
	}
	if q.Limit != 4 {
		t.Errorf("Limit = %d, want 4", q.Limit)
	}
}

func TestPage_CursorOnlyWhenMoreExists(t *testing.T) {
	svc, snippets, _ := newTestService()

	// The store hands back limit+1 rows → there is a next page.
	snippets.listResult = makeSnippets(4)
	page, err := svc.Page(context.Background(), Owned, Request{CallerID: "u1", Limit: 3})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if len(page.Items) != 3 {
		t.Errorf("len(Items) = %d, want 3", len(page.Items))
	}
	if page.NextCursor != page.Items[2].ID {
		t.Errorf("NextCursor = %q, want the last visible item %q", page.NextCursor, page.Items[2].ID)
	}

	// Exactly limit rows → last page, no cursor.
	snippets.listResult = makeSnippets(3)
	page, err = svc.Page(context.Background(), Owned, Request{CallerID: "u1", Limit: 3})
	if err != nil {
		t.Fatalf("Page() error = %v", err)
	}
	if page.NextCursor != "" {
		t.Errorf("NextCursor = %q, want empty on the last page", page.NextCursor)
	}
}

// End-to-end against the real store: ten snippets at page size four must come
// back as pages of 4, 4 and 2, in strict newest-first order, with no gaps or
// duplicates.
func TestPage_WalkAgainstStore(t *testing.T) {
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()

	owner := &model.User{GitHubID: 1, Login: "alice"}
	if err := db.Upsert(ctx, owner); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	var created []string
	for i := 0; i < 10; i++ {
		s := &model.Snippet{
			Name:       fmt.Sprintf("snippet %d", i),
			Code:       "x",
			Language:   model.LangPython,
			Visibility: model.VisibilityPublic,
			OwnerID:    owner.ID,
		}
		if err := db.Create(ctx, s); err != nil {
			t.Fatalf("creating snippet %d: %v", i, err)
		}
		created = append(created, s.ID)
	}

	svc := NewService(db, db, testLogger())

	var got []string
	cursor := ""
	wantPageLens := []int{4, 4, 2}

	for pageNo := 0; ; pageNo++ {
		page, err := svc.Page(ctx, Owned, Request{CallerID: owner.ID, Limit: 4, Cursor: cursor})
		if err != nil {
			t.Fatalf("page %d: %v", pageNo, err)
		}

		if pageNo >= len(wantPageLens) {
			t.Fatalf("too many pages: got a page %d", pageNo)
		}
		if len(page.Items) != wantPageLens[pageNo] {
			t.Errorf("page %d len = %d, want %d", pageNo, len(page.Items), wantPageLens[pageNo])
		}
		for _, item := range page.Items {
			got = append(got, item.ID)
		}

		if page.NextCursor == "" {
			if pageNo != 2 {
				t.Errorf("feed ended after page %d, want 3 pages", pageNo+1)
			}
			break
		}
		cursor = page.NextCursor
	}

	if len(got) != 10 {
		t.Fatalf("walk returned %d snippets, want 10", len(got))
	}
	for i, id := range got {
		want := created[len(created)-1-i] // newest first
		if id != want {
			t.Errorf("position %d = %s, want %s", i, id, want)
		}
	}
}
