// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-layer shape:
//
//	Handler (HTTP)      → parses requests, writes responses
//	Service (this)      → validates, enforces ownership/visibility rules
//	Repository (data)   → reads/writes the database
//
// Services take repository interfaces, not concrete types, so the tests can
// inject in-memory fakes and the HTTP layer never touches SQL.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// Field limits, matching what the clients enforce in their forms.
const (
	MinSnippetNameLength = 3
	MaxSnippetNameLength = 25
	MaxDescriptionLength = 150
)

// SnippetService handles creation, reading, updating and deletion of
// snippets, including the ownership and visibility checks.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger
}

func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// CreateSnippetInput is everything a caller supplies when creating a snippet.
// Language and visibility arrive as strings from the wire and are validated
// against the enums here.
type CreateSnippetInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Language    string `json:"language"`
	Visibility  string `json:"visibility"`
	Description string `json:"description"`
}

// UpdateSnippetInput is the mutable subset: language is immutable after
// creation and is deliberately absent.
type UpdateSnippetInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Visibility  string `json:"visibility"`
	Description string `json:"description"`
}

// Create validates and stores a new snippet owned by ownerID.
//
// Validation collects every failing field instead of stopping at the first,
// so a form can light up all its problems in one round trip.
func (s *SnippetService) Create(ctx context.Context, ownerID string, in CreateSnippetInput) (*model.Snippet, error) {
	if ownerID == "" {
		return nil, apperror.Unauthorized("authentication required to create snippets")
	}

	var verr apperror.ValidationErrors

	name := strings.TrimSpace(in.Name)
	validateName(&verr, name)
	validateCode(&verr, in.Code)
	validateDescription(&verr, in.Description)

	language := model.Language(in.Language)
	if !language.Valid() {
		verr.Add("language", fmt.Sprintf("unsupported language %q", in.Language))
	}
	visibility := model.Visibility(in.Visibility)
	if !visibility.Valid() {
		verr.Add("visibility", `visibility must be "public" or "private"`)
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Name:        name,
		Code:        in.Code,
		Language:    language,
		Visibility:  visibility,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     ownerID,
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("owner", ownerID),
		slog.String("language", string(language)),
	)

	return snippet, nil
}

// GetByID retrieves a snippet, applying the visibility rule: a private
// snippet read by anyone but its owner is NotFound.
func (s *SnippetService) GetByID(ctx context.Context, callerID, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := canView(callerID, snippet); err != nil {
		return nil, err
	}

	return snippet, nil
}

// Update modifies an existing snippet. Requires ownership; the language can
// never change after creation.
//
// Fetch-then-update rather than a blind UPDATE: we need the stored row anyway
// to check ownership, and it gives the caller back the full updated record.
func (s *SnippetService) Update(ctx context.Context, callerID, id string, in UpdateSnippetInput) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(callerID, snippet); err != nil {
		return nil, err
	}

	var verr apperror.ValidationErrors

	name := strings.TrimSpace(in.Name)
	validateName(&verr, name)
	validateCode(&verr, in.Code)
	validateDescription(&verr, in.Description)

	visibility := model.Visibility(in.Visibility)
	if !visibility.Valid() {
		verr.Add("visibility", `visibility must be "public" or "private"`)
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}

	snippet.Name = name
	snippet.Code = in.Code
	snippet.Visibility = visibility
	snippet.Description = strings.TrimSpace(in.Description)

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))

	return snippet, nil
}

// Delete removes a snippet. Requires ownership. The deleted record is
// returned so the caller can show what was removed (or offer an undo).
func (s *SnippetService) Delete(ctx context.Context, callerID, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(callerID, snippet); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("snippet deleted",
		slog.String("id", id),
		slog.String("owner", callerID),
	)

	return snippet, nil
}

func validateName(verr *apperror.ValidationErrors, name string) {
	n := utf8.RuneCountInString(name)
	if n < MinSnippetNameLength || n > MaxSnippetNameLength {
		verr.Add("name", fmt.Sprintf("name must be %d-%d characters",
			MinSnippetNameLength, MaxSnippetNameLength))
	}
}

func validateCode(verr *apperror.ValidationErrors, code string) {
	if code == "" {
		verr.Add("code", "code is required")
	}
}

func validateDescription(verr *apperror.ValidationErrors, description string) {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		verr.Add("description", fmt.Sprintf("description must be %d characters or less",
			MaxDescriptionLength))
	}
}
