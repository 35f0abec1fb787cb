package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, has a bad signature, or has the wrong claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token was valid but its exp has passed.
	ErrExpiredToken = errors.New("token expired")
)

// Token uses distinguish access tokens from refresh tokens signed with the same key.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims are the JWT claims of both access and refresh tokens. Subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
	TokenUse string `json:"token_use"`
}

// TokenProvider issues and validates JWT access and refresh tokens using RS256 or ES256 (private/public key).
type TokenProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenProvider returns a TokenProvider that signs with privateKey and verifies with publicKey.
// issuer and audience are set on every token and required on validation.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	p.now = now
	return p
}

// IssueAccess issues a short-lived access JWT for userID and returns it with its expiration time.
func (p *TokenProvider) IssueAccess(userID string) (token string, expiresAt time.Time, err error) {
	return p.issue(userID, TokenUseAccess, p.accessTTL)
}

// IssueRefresh issues a long-lived refresh JWT for userID and returns it with its expiration time.
func (p *TokenProvider) IssueRefresh(userID string) (token string, expiresAt time.Time, err error) {
	return p.issue(userID, TokenUseRefresh, p.refreshTTL)
}

// ValidateAccess verifies an access token and returns its subject.
func (p *TokenProvider) ValidateAccess(tokenString string) (userID string, err error) {
	return p.validate(tokenString, TokenUseAccess)
}

// ValidateRefresh verifies a refresh token and returns its subject.
func (p *TokenProvider) ValidateRefresh(tokenString string) (userID string, err error) {
	return p.validate(tokenString, TokenUseRefresh)
}

func (p *TokenProvider) issue(userID, use string, ttl time.Duration) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, ErrInvalidToken
	}
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := p.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TokenUse: use,
	}
	token, err := p.sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (p *TokenProvider) sign(claims jwt.Claims) (string, error) {
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidToken
	}
	return jwt.NewWithClaims(method, claims).SignedString(p.privateKey)
}

// validate checks signature, exp, iss, aud, and token_use. Expiry is reported as ErrExpiredToken
// only when everything else about the token checks out; any other failure is ErrInvalidToken.
func (p *TokenProvider) validate(tokenString, use string) (string, error) {
	alg := KeyAlg(p.publicKey)
	if alg == "" {
		return "", ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{alg}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return p.publicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && isOnlyExpired(err) && claims.TokenUse == use {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid || claims.TokenUse != use || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// isOnlyExpired reports whether expiry is the sole validation failure joined into err.
func isOnlyExpired(err error) bool {
	for _, other := range []error{
		jwt.ErrTokenMalformed,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenUnverifiable,
		jwt.ErrTokenInvalidIssuer,
		jwt.ErrTokenInvalidAudience,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenUsedBeforeIssued,
		jwt.ErrTokenRequiredClaimMissing,
	} {
		if errors.Is(err, other) {
			return false
		}
	}
	return true
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
