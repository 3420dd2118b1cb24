package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// SaveService implements the save/unsave toggle and its two derived reads
// (save count, membership).
type SaveService struct {
	snippets repository.SnippetRepository
	saved    repository.SavedSnippetRepository
	logger   *slog.Logger
}

func NewSaveService(
	snippets repository.SnippetRepository,
	saved repository.SavedSnippetRepository,
	logger *slog.Logger,
) *SaveService {
	return &SaveService{
		snippets: snippets,
		saved:    saved,
		logger:   logger,
	}
}

// ToggleResult is what a toggle call returns.
//
// Success=false is NOT an error: it's the soft outcome for the two cases the
// toggle absorbs deliberately — an owner trying to save their own snippet,
// and a toggle that lost a race against a concurrent toggle of the same pair.
// In both cases the store is in a consistent state and the caller should just
// refetch membership.
type ToggleResult struct {
	Success bool                `json:"success"`
	Saved   bool                `json:"saved"`            // membership after the call, when Success
	Record  *model.SavedSnippet `json:"record,omitempty"` // the created or deleted link
}

// Toggle flips the saved state of (callerID, snippetID).
//
// One endpoint, two transitions: if the link exists it is deleted, otherwise
// it is created. There is no "already saved" error class — the caller always
// ends in the opposite state from before the call.
//
// CONCURRENCY:
// The read-then-write here is two store operations, not one atomic one. Two
// concurrent toggles can both observe "absent" and both insert; the UNIQUE
// (user_id, snippet_id) constraint makes the loser fail cleanly with a
// conflict, which we resolve below with a single reconciliation read. No
// mutex — the store is shared across processes, the constraint is not.
func (s *SaveService) Toggle(ctx context.Context, callerID, snippetID string) (*ToggleResult, error) {
	if callerID == "" {
		return nil, apperror.Unauthorized("authentication required to save snippets")
	}

	snippet, err := s.snippets.GetByID(ctx, snippetID)
	if err != nil {
		return nil, err
	}

	// Saving implies reading: a private snippet you can't see is a snippet
	// you can't save, and it stays invisible (NotFound).
	if err := canView(callerID, snippet); err != nil {
		return nil, err
	}

	// Owners can't save their own snippets. Soft outcome, not an error.
	if snippet.OwnerID == callerID {
		return &ToggleResult{Success: false}, nil
	}

	existing, err := s.saved.GetByUserAndSnippet(ctx, callerID, snippetID)
	switch {
	case err == nil:
		// saved → not-saved
		if derr := s.saved.DeleteSaved(ctx, existing.ID); derr != nil {
			if errors.Is(derr, apperror.ErrNotFound) {
				// A concurrent toggle already removed it. The pair is in the
				// "not saved" state either way; report the race softly.
				s.logger.Info("save toggle lost a delete race",
					slog.String("user", callerID),
					slog.String("snippet", snippetID),
				)
				return &ToggleResult{Success: false}, nil
			}
			return nil, fmt.Errorf("unsaving snippet: %w", derr)
		}
		s.logger.Info("snippet unsaved",
			slog.String("user", callerID),
			slog.String("snippet", snippetID),
		)
		return &ToggleResult{Success: true, Saved: false, Record: existing}, nil

	case errors.Is(err, apperror.ErrNotFound):
		// not-saved → saved
		record := &model.SavedSnippet{
			UserID:    callerID,
			SnippetID: snippetID,
		}
		cerr := s.saved.CreateSaved(ctx, record)
		if cerr == nil {
			s.logger.Info("snippet saved",
				slog.String("user", callerID),
				slog.String("snippet", snippetID),
			)
			return &ToggleResult{Success: true, Saved: true, Record: record}, nil
		}
		if errors.Is(cerr, apperror.ErrConflict) {
			// Someone else just saved it between our read and our insert.
			// Reconcile with one read: if the row is there, the pair is in
			// the "saved" state and this call becomes a benign no-op.
			if _, rerr := s.saved.GetByUserAndSnippet(ctx, callerID, snippetID); rerr == nil {
				s.logger.Info("save toggle lost an insert race",
					slog.String("user", callerID),
					slog.String("snippet", snippetID),
				)
				return &ToggleResult{Success: false}, nil
			}
			return nil, cerr
		}
		return nil, fmt.Errorf("saving snippet: %w", cerr)

	default:
		return nil, fmt.Errorf("looking up save link: %w", err)
	}
}

// Count returns how many users have saved the snippet. Always derived from
// the link table, never cached.
func (s *SaveService) Count(ctx context.Context, snippetID string) (int, error) {
	if snippetID == "" {
		return 0, apperror.ValidationFailed("snippetId", "snippet ID is required")
	}
	return s.saved.CountBySnippet(ctx, snippetID)
}

// IsSaved reports whether the caller currently has the snippet saved.
func (s *SaveService) IsSaved(ctx context.Context, callerID, snippetID string) (bool, error) {
	if callerID == "" {
		return false, apperror.Unauthorized("authentication required")
	}
	if snippetID == "" {
		return false, apperror.ValidationFailed("snippetId", "snippet ID is required")
	}

	_, err := s.saved.GetByUserAndSnippet(ctx, callerID, snippetID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking save link: %w", err)
	}
	return true, nil
}
