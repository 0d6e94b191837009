package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zllovesuki/unaique/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func TestRouterMountsEveryAPI(t *testing.T) {
	a := &app{
		logger: zap.NewNop(),
		cfg: &config.Config{
			StoreBackend: config.BackendMemory,
			ClerkJWTKey:  testPEM(t),
			CORSOrigins:  []string{"http://localhost:3000"},
		},
	}
	defer a.close()

	handler, err := a.router()
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/health/store", http.StatusOK},
		{http.MethodGet, "/api/templates", http.StatusOK},
		{http.MethodGet, "/api/templates/check-table", http.StatusOK},
		{http.MethodPost, "/api/templates/like", http.StatusUnauthorized},
		{http.MethodPost, "/api/webhooks/clerk", http.StatusBadRequest},
		{http.MethodPost, "/api/auth/save-session", http.StatusUnauthorized},
		{http.MethodPost, "/api/n8n/trigger-pipeline", http.StatusUnauthorized},
		{http.MethodPost, "/api/content-ideas", http.StatusUnauthorized},
		{http.MethodPost, "/api/orders", http.StatusUnauthorized},
		{http.MethodGet, "/api/projects?businessId=biz", http.StatusUnauthorized},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(`{}`))
			require.NoError(t, err)
			res, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, tt.want, res.StatusCode)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	a := &app{
		logger: zap.NewNop(),
		cfg: &config.Config{
			StoreBackend: config.BackendMemory,
			ClerkJWTKey:  testPEM(t),
			CORSOrigins:  []string{"http://localhost:3000"},
		},
	}
	defer a.close()

	handler, err := a.router()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/templates", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
