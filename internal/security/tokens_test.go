package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	access, exp, err := p.IssueAccess("u1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" || !exp.After(time.Now()) {
		t.Fatalf("IssueAccess: token=%q exp=%v", access, exp)
	}
	uid, err := p.ValidateAccess(access)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if uid != "u1" {
		t.Errorf("ValidateAccess subject = %q, want u1", uid)
	}

	refresh, refreshExp, err := p.IssueRefresh("u1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if !refreshExp.After(exp) {
		t.Error("refresh token should outlive access token")
	}
	uid, err = p.ValidateRefresh(refresh)
	if err != nil || uid != "u1" {
		t.Errorf("ValidateRefresh = %q, %v", uid, err)
	}
}

func TestTokenProvider_TokenUseIsEnforced(t *testing.T) {
	p, _ := NewTestTokenProvider()
	access, _, _ := p.IssueAccess("u1")
	refresh, _, _ := p.IssueRefresh("u1")

	if _, err := p.ValidateRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token as refresh: want ErrInvalidToken, got %v", err)
	}
	if _, err := p.ValidateAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh token as access: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_Invalid(t *testing.T) {
	p, _ := NewTestTokenProvider()
	access, _, _ := p.IssueAccess("u1")
	parts := strings.Split(access, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	other, _ := NewTestTokenProvider()
	other.issuer = "someone-else"
	foreign, _, _ := other.IssueAccess("u1")

	testCases := []struct {
		name  string
		token string
	}{
		{"garbage", "invalid-token"},
		{"empty", ""},
		{"tampered signature", tampered},
		{"wrong issuer", foreign},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := p.ValidateAccess(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	p, _ := NewTestTokenProvider()
	past := time.Now().Add(-time.Hour)
	p.WithClock(func() time.Time { return past })
	access, _, err := p.IssueAccess("u1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p.WithClock(time.Now)

	if _, err := p.ValidateAccess(access); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("want ErrExpiredToken, got %v", err)
	}
	// An expired token of the wrong kind is still just invalid.
	if _, err := p.ValidateRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_ECDSA(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	p := NewTokenProvider(key, &key.PublicKey, "iss", "aud", time.Minute, time.Hour)
	tok, _, err := p.IssueAccess("u1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if uid, err := p.ValidateAccess(tok); err != nil || uid != "u1" {
		t.Errorf("ValidateAccess = %q, %v", uid, err)
	}

	rsaProvider, _ := NewTestTokenProvider()
	if _, err := rsaProvider.ValidateAccess(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ES256 token against RSA key: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_EmptySubject(t *testing.T) {
	p, _ := NewTestTokenProvider()
	if _, _, err := p.IssueAccess(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("IssueAccess(\"\"): want ErrInvalidToken, got %v", err)
	}
}
