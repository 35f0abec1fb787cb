package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Cost int

	dummyOnce sync.Once
	dummyHash []byte
	dummyErr  error
}

var dummyPassword = []byte("dummy-password-for-timing")

// NewHasher returns a Hasher with the given bcrypt cost, clamped to 4–31.
// Zero or negative selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a salted bcrypt hash of password suitable for storage.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies password against the stored hash. Returns nil if they match;
// returns an error (including bcrypt.ErrMismatchedHashAndPassword) if they do not or on invalid hash.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}

// CompareDummy spends the same work as Compare against a fixed hash and always fails.
// Login calls it for unknown emails so response time does not reveal which emails exist.
func (h *Hasher) CompareDummy(password []byte) {
	h.dummyOnce.Do(func() {
		h.dummyHash, h.dummyErr = bcrypt.GenerateFromPassword(dummyPassword, h.Cost)
	})
	if h.dummyErr != nil {
		// No reference hash: spend the work by hashing instead.
		_, _ = bcrypt.GenerateFromPassword(dummyPassword, h.Cost)
		return
	}
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, password)
}
