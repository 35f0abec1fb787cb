package security

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	password := []byte("secret123")
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == string(password) {
		t.Fatalf("Hash returned %q", hash)
	}
	if err := h.Compare(hash, password); err != nil {
		t.Fatalf("Compare: %v", err)
	}
	other, _ := h.Hash(password)
	if other == hash {
		t.Error("hashes of the same password should be salted differently")
	}
}

func TestHasher_CompareWrongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, _ := h.Hash([]byte("secret123"))
	if err := h.Compare(hash, []byte("wrong")); !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.Fatalf("Compare with wrong password: got %v", err)
	}
	if err := h.Compare("not-a-hash", []byte("secret123")); err == nil {
		t.Fatal("Compare with malformed hash should fail")
	}
}

func TestHasher_Cost(t *testing.T) {
	testCases := []struct {
		in, want int
	}{
		{12, 12},
		{0, bcrypt.DefaultCost},
		{2, bcrypt.MinCost},
		{99, bcrypt.MaxCost},
	}
	for _, tc := range testCases {
		if got := NewHasher(tc.in).Cost; got != tc.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHasher_CompareDummy(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	h.CompareDummy([]byte("x"))
	h.CompareDummy([]byte("y"))
	if len(h.dummyHash) == 0 {
		t.Error("dummy hash should be initialized once")
	}
}

func TestHasher_CompareDummyWithoutReferenceHash(t *testing.T) {
	// An out-of-range cost makes the reference hash unavailable.
	h := &Hasher{Cost: bcrypt.MaxCost + 1}
	h.CompareDummy([]byte("x"))
	h.CompareDummy([]byte("y"))
	if h.dummyErr == nil {
		t.Fatal("want the reference hash error to be kept")
	}
	if len(h.dummyHash) != 0 {
		t.Errorf("dummy hash = %q, want empty", h.dummyHash)
	}
}
