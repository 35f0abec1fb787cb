package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"org-membership-service/internal/platform/apperr"
	"org-membership-service/internal/security"
	userdomain "org-membership-service/internal/user/domain"
)

func newTestStore() (*IdentityStore, *memUserRepo, *memIdentityRepo) {
	users, idents := newMemUserRepo(), newMemIdentityRepo()
	return NewIdentityStore(users, idents, security.NewHasher(bcrypt.MinCost)), users, idents
}

func TestIdentityStore_CreateUser(t *testing.T) {
	store, _, idents := newTestStore()
	ctx := context.Background()

	u, err := store.CreateUser(ctx, userdomain.Registration{
		Email: " Jane@Example.com ", FirstName: "Jane", LastName: "Doe", Password: "s3cret", Phone: "555",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" || u.Email != "jane@example.com" || u.Phone != "555" {
		t.Fatalf("CreateUser = %+v", u)
	}
	if len(idents.m) != 1 {
		t.Fatalf("identities = %d, want 1", len(idents.m))
	}
	for _, i := range idents.m {
		if i.PasswordHash == "" || i.PasswordHash == "s3cret" {
			t.Errorf("password must be stored hashed, got %q", i.PasswordHash)
		}
	}
}

func TestIdentityStore_CreateUserDuplicateEmail(t *testing.T) {
	store, users, _ := newTestStore()
	ctx := context.Background()
	reg := userdomain.Registration{Email: "a@x.com", FirstName: "A", LastName: "B", Password: "pw"}
	if _, err := store.CreateUser(ctx, reg); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	reg.Email = "A@X.COM"
	if _, err := store.CreateUser(ctx, reg); !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Fatalf("second CreateUser: want ErrDuplicateEmail, got %v", err)
	}
	if len(users.byID) != 1 {
		t.Errorf("users = %d, want 1", len(users.byID))
	}
}

func TestIdentityStore_CreateUserValidation(t *testing.T) {
	store, users, _ := newTestStore()
	_, err := store.CreateUser(context.Background(), userdomain.Registration{Email: "a@x.com", Password: "pw"})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if !ve.Has("firstName") || !ve.Has("lastName") {
		t.Errorf("fields = %+v", ve.Fields)
	}
	if len(users.byID) != 0 {
		t.Error("no user should be persisted on validation failure")
	}
}

func TestIdentityStore_Find(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()
	u := registerUser(t, store, "a@x.com", "pw")

	if got, err := store.FindByEmail(ctx, "  A@x.COM"); err != nil || got.ID != u.ID {
		t.Errorf("FindByEmail = %v, %v", got, err)
	}
	if got, err := store.FindByID(ctx, u.ID); err != nil || got.Email != "a@x.com" {
		t.Errorf("FindByID = %v, %v", got, err)
	}
	if _, err := store.FindByEmail(ctx, "b@x.com"); !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("FindByEmail missing: got %v", err)
	}
	if _, err := store.FindByID(ctx, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("FindByID empty: got %v", err)
	}
}

func TestIdentityStore_VerifyCredential(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()
	u := registerUser(t, store, "a@x.com", "pw")

	if ok, err := store.VerifyCredential(ctx, u, "pw"); err != nil || !ok {
		t.Errorf("VerifyCredential(correct) = %v, %v", ok, err)
	}
	if ok, err := store.VerifyCredential(ctx, u, "PW"); err != nil || ok {
		t.Errorf("VerifyCredential(wrong) = %v, %v", ok, err)
	}
	if ok, _ := store.VerifyCredential(ctx, &userdomain.User{ID: "no-identity"}, "pw"); ok {
		t.Error("user without credential must not verify")
	}
	if ok, _ := store.VerifyCredential(ctx, nil, "pw"); ok {
		t.Error("nil user must not verify")
	}
}
