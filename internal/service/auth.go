// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities. It orchestrates the GitHub OAuth callback (upsert the user,
// issue a token) and keeps the auth rules out of the HTTP layer.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// AuthService handles the authentication business logic.
//
// The PasswordService is wired in for local email/password accounts; the
// primary identity provider is GitHub OAuth, where users never set a password.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback.
//
// First login creates the user row (this is the only place users come into
// existence); subsequent logins refresh the profile fields. Either way a JWT
// access token is issued for the internal user id.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	user := &model.User{
		GitHubID:  ghUser.ID,
		Login:     ghUser.Login,
		Email:     ghUser.Email,
		Name:      ghUser.Name,
		AvatarURL: ghUser.AvatarURL,
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		s.logger.Error("user upsert failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user authenticated",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID fetches a user profile for /api/me.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// ValidateToken verifies a JWT and returns the user id it was issued for.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	return s.tokens.Validate(tokenStr)
}
