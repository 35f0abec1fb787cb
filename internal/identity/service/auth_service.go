package service

import (
	"context"
	"errors"
	"time"

	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/security"
	userdomain "org-membership-service/internal/user/domain"
)

// TokenPair is the result of IssueToken. RefreshToken is empty when only an access token was minted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
}

// AuthService authenticates credentials and issues and validates bearer tokens.
type AuthService struct {
	store  *IdentityStore
	tokens *security.TokenProvider
}

// NewAuthService returns an AuthService that resolves users through store and signs with tokens.
func NewAuthService(store *IdentityStore, tokens *security.TokenProvider) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// Authenticate returns the user for email when password matches. Unknown email and wrong
// password both return apperr.ErrInvalidCredentials and cost the same bcrypt work.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*userdomain.User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			s.store.BurnCredentialCheck(password)
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	ok, err := s.store.VerifyCredential(ctx, u, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

// IssueToken mints an access token and a refresh token whose subject is the user's id.
func (s *AuthService) IssueToken(u *userdomain.User) (*TokenPair, error) {
	if u == nil || u.ID == "" {
		return nil, apperr.ErrInvalidToken
	}
	access, exp, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp, UserID: u.ID}, nil
}

// ValidateToken verifies an access token and resolves its subject to a user.
// Any verification failure, including a subject that no longer exists, rejects the token.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*userdomain.User, error) {
	userID, err := s.tokens.ValidateAccess(token)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return s.resolveSubject(ctx, userID)
}

// Refresh exchanges a valid refresh token for a new access token for the same user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.ErrInvalidToken
	}
	userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	u, err := s.resolveSubject(ctx, userID)
	if err != nil {
		return nil, err
	}
	access, exp, err := s.tokens.IssueAccess(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, ExpiresAt: exp, UserID: u.ID}, nil
}

func (s *AuthService) resolveSubject(ctx context.Context, userID string) (*userdomain.User, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

func mapTokenError(err error) error {
	if errors.Is(err, security.ErrExpiredToken) {
		return apperr.ErrExpiredToken
	}
	return apperr.ErrInvalidToken
}
