package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"time"
)

// testKeys is an RSA pair generated once per process so every test provider verifies the
// tokens of every other. For unit tests only.
var testKeys struct {
	once    sync.Once
	err     error
	privPEM string
	pubPEM  string
}

func loadTestKeys() error {
	testKeys.once.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			testKeys.err = err
			return
		}
		privDER, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			testKeys.err = err
			return
		}
		pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			testKeys.err = err
			return
		}
		testKeys.privPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}))
		testKeys.pubPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
	})
	return testKeys.err
}

func testPrivateKeyPEM() string {
	_ = loadTestKeys()
	return testKeys.privPEM
}

func testPublicKeyPEM() string {
	_ = loadTestKeys()
	return testKeys.pubPEM
}

// NewTestTokenProvider returns an RS256 TokenProvider over the shared test key pair with
// issuer "test-issuer", audience "test-audience", 15m access and 24h refresh TTL.
// For unit tests only.
func NewTestTokenProvider() (*TokenProvider, error) {
	if err := loadTestKeys(); err != nil {
		return nil, err
	}
	signer, err := ParsePrivateKey(testKeys.privPEM)
	if err != nil {
		return nil, err
	}
	pub, err := ParsePublicKey(testKeys.pubPEM)
	if err != nil {
		return nil, err
	}
	return NewTokenProvider(signer, pub, "test-issuer", "test-audience", 15*time.Minute, 24*time.Hour), nil
}
