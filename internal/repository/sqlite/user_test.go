package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
)

func TestUpsert_FirstLoginCreates(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		GitHubID:  12345,
		Login:     "octocat",
		Email:     "octo@example.com",
		Name:      "The Octocat",
		AvatarURL: "https://example.com/avatar.png",
	}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Upsert() did not assign an internal id")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Upsert() did not set CreatedAt")
	}

	found, err := db.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Login != "octocat" || found.GitHubID != 12345 {
		t.Errorf("round-trip mismatch: %+v", found)
	}
}

func TestUpsert_SecondLoginKeepsID(t *testing.T) {
	db := newTestDB(t)

	first := &model.User{GitHubID: 777, Login: "old-handle"}
	if err := db.Upsert(context.Background(), first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Same GitHub account, renamed on GitHub's side.
	second := &model.User{GitHubID: 777, Login: "new-handle", Email: "new@example.com"}
	if err := db.Upsert(context.Background(), second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	// The internal id is what snippets reference — it must never change.
	if second.ID != first.ID {
		t.Errorf("id changed across logins: %s → %s", first.ID, second.ID)
	}

	found, err := db.GetUserByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Login != "new-handle" {
		t.Errorf("Login = %q, want the refreshed %q", found.Login, "new-handle")
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}
