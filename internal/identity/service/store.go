package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	identitydomain "org-membership-service/internal/identity/domain"
	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/security"
	userdomain "org-membership-service/internal/user/domain"
)

// UserRepo is the minimal user repository needed by the identity store.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// IdentityRepo is the minimal identity repository needed by the identity store.
type IdentityRepo interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error)
	Create(ctx context.Context, i *identitydomain.Identity) error
}

// IdentityStore is the durable record of accounts. It owns email uniqueness and credential hashing;
// the password hash lives on a local Identity and never on the User.
type IdentityStore struct {
	users      UserRepo
	identities IdentityRepo
	hasher     *security.Hasher
	now        func() time.Time
}

// NewIdentityStore returns an IdentityStore over the given repositories.
// Pass repositories bound to a transaction to make CreateUser part of a larger unit of work.
func NewIdentityStore(users UserRepo, identities IdentityRepo, hasher *security.Hasher) *IdentityStore {
	return &IdentityStore{users: users, identities: identities, hasher: hasher, now: time.Now}
}

// CreateUser validates and normalizes reg, then persists the user and its local credential.
// Returns *apperr.ValidationError listing every invalid field, or apperr.ErrDuplicateEmail.
func (s *IdentityStore) CreateUser(ctx context.Context, reg userdomain.Registration) (*userdomain.User, error) {
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.users.GetByEmail(ctx, reg.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.ErrDuplicateEmail
	}
	hash, err := s.hasher.Hash([]byte(reg.Password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u := &userdomain.User{
		ID:        uuid.New().String(),
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Phone:     reg.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// A concurrent registration that wins the race surfaces here as ErrDuplicateEmail from the unique index.
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	ident := &identitydomain.Identity{
		ID:           uuid.New().String(),
		UserID:       u.ID,
		Provider:     identitydomain.IdentityProviderLocal,
		ProviderID:   u.Email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if err := s.identities.Create(ctx, ident); err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail returns the user with the given email, compared case-insensitively.
// Returns apperr.ErrUserNotFound when there is none.
func (s *IdentityStore) FindByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	email = userdomain.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.ErrUserNotFound
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound
	}
	return u, nil
}

// FindByID returns the user for id or apperr.ErrUserNotFound.
func (s *IdentityStore) FindByID(ctx context.Context, id string) (*userdomain.User, error) {
	if id == "" {
		return nil, apperr.ErrUserNotFound
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrUserNotFound
	}
	return u, nil
}

// VerifyCredential reports whether password matches the user's stored local credential.
// A user without a local credential never verifies.
func (s *IdentityStore) VerifyCredential(ctx context.Context, u *userdomain.User, password string) (bool, error) {
	if u == nil {
		return false, nil
	}
	ident, err := s.identities.GetByUserAndProvider(ctx, u.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return false, err
	}
	if ident == nil || ident.PasswordHash == "" {
		s.hasher.CompareDummy([]byte(password))
		return false, nil
	}
	if err := s.hasher.Compare(ident.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("compare password: %w", err)
	}
	return true, nil
}

// BurnCredentialCheck spends the cost of one credential comparison without a user.
func (s *IdentityStore) BurnCredentialCheck(password string) {
	s.hasher.CompareDummy([]byte(password))
}
