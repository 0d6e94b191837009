package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zllovesuki/unaique/auth"
	"github.com/zllovesuki/unaique/auth/authtest"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func protected(a *auth.Auth) http.Handler {
	return a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(auth.UserID(r.Context())))
	}))
}

func TestMiddlewareAcceptsBearer(t *testing.T) {
	issuer := authtest.New(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", issuer.Bearer(t, "user_123"))
	rec := httptest.NewRecorder()
	protected(issuer.Auth).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_123", rec.Body.String())
}

func TestMiddlewareAcceptsSessionCookie(t *testing.T) {
	issuer := authtest.New(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: issuer.Token(t, "user_cookie")})
	rec := httptest.NewRecorder()
	protected(issuer.Auth).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_cookie", rec.Body.String())
}

func TestMiddlewareRejects(t *testing.T) {
	issuer := authtest.New(t)
	other := authtest.New(t)

	cases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not.a.jwt"},
		{"other key", other.Bearer(t, "user_123")},
		{"expired", "Bearer " + issuer.Sign(t, auth.Claims{
			StandardClaims: jwt.StandardClaims{
				Subject:   "user_123",
				ExpiresAt: time.Now().Add(-time.Minute).Unix(),
			},
		})},
		{"no subject", "Bearer " + issuer.Sign(t, auth.Claims{
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().Add(time.Minute).Unix(),
			},
		})},
		{"hs256", "Bearer " + func() string {
			s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				Subject:   "user_123",
				ExpiresAt: time.Now().Add(time.Minute).Unix(),
			}).SignedString([]byte("0123456789abcdef"))
			require.NoError(t, err)
			return s
		}()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected(issuer.Auth).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestMiddlewareToleratesSkew(t *testing.T) {
	issuer := authtest.New(t)
	token := issuer.Sign(t, auth.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "user_123",
			ExpiresAt: time.Now().Add(-2 * time.Second).Unix(),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected(issuer.Auth).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewParsesEscapedPEM(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	oneLine := strings.ReplaceAll(string(block), "\n", `\n`)

	_, err = auth.New(auth.Options{
		Logger:       zap.NewNop(),
		PublicKeyPEM: oneLine,
	})
	assert.NoError(t, err)
}

func TestNewValidates(t *testing.T) {
	_, err := auth.New(auth.Options{Logger: zap.NewNop()})
	assert.Error(t, err)

	_, err = auth.New(auth.Options{Logger: zap.NewNop(), PublicKeyPEM: "not a key"})
	assert.Error(t, err)
}

func TestUserIDWithoutClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", auth.UserID(req.Context()))
}
