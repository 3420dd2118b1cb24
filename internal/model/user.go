// Package model defines the data structures shared across the application.
package model

import "time"

// User represents a registered account.
//
// We use GitHub OAuth as the identity provider, so the primary external
// identifier is the GitHub user ID (an integer). We still generate our own
// internal string ID (xid) for consistency with Snippet and to avoid tying
// our primary keys to a third-party's numbering scheme.
//
// A row is created on the first authenticated callback and updated on later
// logins (login/email/avatar can change on GitHub's side). Users are never
// deleted by this service.
//
// WHY Email string (not *string)?
// GitHub returns the primary public email, which can be empty if the user has
// hidden it. We use an empty string as the zero value rather than a nullable
// pointer — simpler to work with and safe to display.
type User struct {
	ID        string    `json:"id"        db:"id"`
	GitHubID  int64     `json:"githubId"  db:"github_id"` // GitHub's numeric user ID
	Login     string    `json:"login"     db:"login"`     // GitHub username
	Email     string    `json:"email"     db:"email"`     // Primary public email (may be empty)
	Name      string    `json:"name"      db:"name"`      // Display name (may be empty)
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
