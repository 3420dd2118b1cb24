package feed

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
)

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		in      int
		want    int
		wantErr bool
	}{
		{"unset falls back to default", 0, DefaultLimit, false},
		{"minimum", 1, 1, false},
		{"maximum", MaxLimit, MaxLimit, false},
		{"negative rejected", -1, 0, true},
		{"over maximum rejected", MaxLimit + 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeLimit(tt.in)
			if tt.wantErr {
				if !errors.Is(err, apperror.ErrValidation) {
					t.Errorf("normalizeLimit(%d) error = %v, want ErrValidation", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeLimit(%d) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("normalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func makeSnippets(n int) []model.Snippet {
	out := make([]model.Snippet, n)
	for i := range out {
		out[i] = model.Snippet{ID: fmt.Sprintf("id-%02d", i)}
	}
	return out
}

func TestCut(t *testing.T) {
	t.Run("full page plus sentinel", func(t *testing.T) {
		items, cursor := cut(makeSnippets(5), 4)
		if len(items) != 4 {
			t.Errorf("len = %d, want 4", len(items))
		}
		// The cursor is the last visible item: the next query resumes
		// strictly after it, so the sentinel row reappears at the top of the
		// next page and nothing is shown twice.
		if cursor != "id-03" {
			t.Errorf("cursor = %q, want %q", cursor, "id-03")
		}
	})

	t.Run("exactly limit means last page", func(t *testing.T) {
		items, cursor := cut(makeSnippets(4), 4)
		if len(items) != 4 {
			t.Errorf("len = %d, want 4", len(items))
		}
		if cursor != "" {
			t.Errorf("cursor = %q, want empty (no more pages)", cursor)
		}
	})

	t.Run("short page", func(t *testing.T) {
		items, cursor := cut(makeSnippets(2), 4)
		if len(items) != 2 {
			t.Errorf("len = %d, want 2", len(items))
		}
		if cursor != "" {
			t.Errorf("cursor = %q, want empty", cursor)
		}
	})

	t.Run("empty", func(t *testing.T) {
		items, cursor := cut(nil, 4)
		if len(items) != 0 || cursor != "" {
			t.Errorf("cut(nil) = (%d items, %q), want empty", len(items), cursor)
		}
	})
}
