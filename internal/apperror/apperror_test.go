package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNotFound(t *testing.T) {
	err := NotFound("snippet", "abc123")

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFound() should match ErrNotFound via errors.Is")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("NotFound() should not match ErrValidation")
	}
	if !strings.Contains(err.Error(), "abc123") {
		t.Errorf("Error() = %q, want the id in the message", err.Error())
	}
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("name", "name is too short")

	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationFailed() should match ErrValidation via errors.Is")
	}
	if err.Field != "name" {
		t.Errorf("Field = %q, want %q", err.Field, "name")
	}
}

func TestConflict(t *testing.T) {
	err := Conflict("saved snippet", "xyz")

	if !errors.Is(err, ErrConflict) {
		t.Error("Conflict() should match ErrConflict via errors.Is")
	}
}

func TestForbiddenAndUnauthorized(t *testing.T) {
	if !errors.Is(Forbidden("no"), ErrForbidden) {
		t.Error("Forbidden() should match ErrForbidden")
	}
	if !errors.Is(Unauthorized("who"), ErrUnauthorized) {
		t.Error("Unauthorized() should match ErrUnauthorized")
	}
}

// Wrapped errors should still match their sentinel through the chain.
func TestErrorsIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading snippet: %w", NotFound("snippet", "id1"))

	if !errors.Is(err, ErrNotFound) {
		t.Error("wrapped AppError should still match ErrNotFound")
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As should find the AppError in the chain")
	}
	if appErr.Message == "" {
		t.Error("AppError.Message should survive wrapping")
	}
}

func TestValidationErrors_Empty(t *testing.T) {
	var verr ValidationErrors
	if err := verr.Err(); err != nil {
		t.Errorf("Err() on empty ValidationErrors = %v, want nil", err)
	}
}

func TestValidationErrors_CollectsAllFields(t *testing.T) {
	var verr ValidationErrors
	verr.Add("name", "name must be 3-25 characters")
	verr.Add("language", "unsupported language")

	err := verr.Err()
	if err == nil {
		t.Fatal("Err() should be non-nil after Add")
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationErrors should match ErrValidation via errors.Is")
	}

	var got *ValidationErrors
	if !errors.As(err, &got) {
		t.Fatal("errors.As should recover *ValidationErrors")
	}
	if len(got.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(got.Fields))
	}

	msg := err.Error()
	if !strings.Contains(msg, "name") || !strings.Contains(msg, "language") {
		t.Errorf("Error() = %q, want both field names mentioned", msg)
	}
}
