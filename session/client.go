package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrNotFound is returned by a Fetcher when no customer carries the email
var ErrNotFound = errors.New("customer not found")

// Fetcher resolves the customer record for an email
type Fetcher interface {
	Fetch(ctx context.Context, email string) (*Record, error)
}

// HTTPFetcher calls POST /api/auth/save-session on a running server
type HTTPFetcher struct {
	BaseURL string
	// Token returns the session token sent as the bearer credential
	Token   func(ctx context.Context) (string, error)
	Client  *http.Client
}

type saveResponse struct {
	Success  bool    `json:"success"`
	Error    string  `json:"error"`
	Customer *Record `json:"customer"`
}

func (h *HTTPFetcher) Fetch(ctx context.Context, email string) (*Record, error) {
	token, err := h.Token(ctx)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot get session token")
	}
	body, err := json.Marshal(SaveRequest{Email: email})
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(h.BaseURL, "/") + "/api/auth/save-session"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot build save-session request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot call save-session")
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	var out saveResponse
	if res.StatusCode != http.StatusOK {
		// error bodies from proxies are not always JSON
		_ = json.NewDecoder(res.Body).Decode(&out)
		return nil, fmt.Errorf("save-session failed with HTTP %d: %s", res.StatusCode, out.Error)
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, extErrors.Wrap(err, "Cannot decode save-session response")
	}
	if !out.Success || out.Customer == nil {
		return nil, fmt.Errorf("save-session failed with HTTP %d: %s", res.StatusCode, out.Error)
	}
	return out.Customer, nil
}

// MaterializerOptions contains the configuration for Materializer
type MaterializerOptions struct {
	Fetcher Fetcher
	Cache   *Cache
	Logger  *zap.Logger
}

// Materializer keeps the signed in customer, served from Cache while it is fresh
type Materializer struct {
	MaterializerOptions

	mu      sync.Mutex
	current *Record
}

// NewMaterializer returns a Materializer with no signed in customer
func NewMaterializer(option MaterializerOptions) (*Materializer, error) {
	if option.Fetcher == nil {
		return nil, fmt.Errorf("nil Fetcher is invalid")
	}
	if option.Cache == nil {
		return nil, fmt.Errorf("nil Cache is invalid")
	}
	if option.Logger == nil {
		return nil, fmt.Errorf("nil Logger is invalid")
	}
	return &Materializer{
		MaterializerOptions: option,
	}, nil
}

// SignIn uses a fresh cached record for email if there is one, otherwise fetches it.
// On failure no customer is set.
func (m *Materializer) SignIn(ctx context.Context, email string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	cached, err := m.Cache.Load()
	if err != nil {
		m.Logger.Warn("Unable to read cached session",
			zap.Error(err),
		)
	}
	if cached != nil && strings.EqualFold(cached.Email, email) {
		m.current = cached
		return cached, nil
	}
	return m.refresh(ctx, email)
}

// Refresh fetches the customer for email and overwrites the cache
func (m *Materializer) Refresh(ctx context.Context, email string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh(ctx, email)
}

func (m *Materializer) refresh(ctx context.Context, email string) (*Record, error) {
	logger := m.Logger.With(zap.String("Email", email))

	rec, err := m.Fetcher.Fetch(ctx, email)
	if err != nil {
		logger.Error("Unable to fetch customer for session",
			zap.Error(err),
		)
		return nil, err
	}
	rec.LastUpdated = m.Cache.Now().UTC()
	if err := m.Cache.Save(*rec); err != nil {
		logger.Warn("Unable to cache session",
			zap.Error(err),
		)
	}
	m.current = rec
	return rec, nil
}

// SignOut forgets the customer and clears the cache
func (m *Materializer) SignOut() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return m.Cache.Clear()
}

// Customer returns the signed in customer, or nil
func (m *Materializer) Customer() *Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}
