// Package authtest issues Clerk-like session tokens for handler tests.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/zllovesuki/unaique/auth"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Issuer signs tokens accepted by the Auth it was created with
type Issuer struct {
	Auth *auth.Auth
	key  *rsa.PrivateKey
}

// New generates a key pair and returns an Issuer with its Auth
func New(t testing.TB) *Issuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	a, err := auth.New(auth.Options{
		Logger:    zap.NewNop(),
		PublicKey: &key.PublicKey,
	})
	require.NoError(t, err)

	return &Issuer{
		Auth: a,
		key:  key,
	}
}

// Token returns a session token for userID valid for one minute
func (i *Issuer) Token(t testing.TB, userID string) string {
	t.Helper()
	return i.Sign(t, auth.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(time.Minute).Unix(),
		},
		SessionID: "sess_test",
	})
}

// Sign signs arbitrary claims with RS256
func (i *Issuer) Sign(t testing.TB, claims auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.key)
	require.NoError(t, err)
	return token
}

// Bearer returns the Authorization header value for userID
func (i *Issuer) Bearer(t testing.TB, userID string) string {
	return "Bearer " + i.Token(t, userID)
}
