package template_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zllovesuki/unaique/auth/authtest"
	"github.com/zllovesuki/unaique/lock"
	"github.com/zllovesuki/unaique/memstore"
	"github.com/zllovesuki/unaique/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// batchRecorder fails the nth Add call and records batch sizes
type batchRecorder struct {
	template.Repository
	sizes  []int
	failAt int
}

func (b *batchRecorder) Add(ctx context.Context, templates []template.Template) ([]template.Template, error) {
	b.sizes = append(b.sizes, len(templates))
	if b.failAt > 0 && len(b.sizes) == b.failAt {
		return nil, errors.New("store unavailable")
	}
	return b.Repository.Add(ctx, templates)
}

func newManager(t *testing.T, repo template.Repository) *template.Manager {
	t.Helper()
	m, err := template.NewManager(template.ManagerOptions{
		Repository: repo,
		Locker:     lock.NewLocal(),
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)
	return m
}

func TestDefaults(t *testing.T) {
	defaults, err := template.Defaults()
	require.NoError(t, err)
	require.Len(t, defaults, 12)

	categories := map[string]int{}
	for _, d := range defaults {
		categories[d.Category]++
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Idea)
		assert.Zero(t, d.Likes)
	}
	assert.Equal(t, map[string]int{"교육": 3, "마케팅": 3, "엔터테인먼트": 3, "비즈니스": 3}, categories)
}

func TestSeedBatches(t *testing.T) {
	repo := &batchRecorder{Repository: memstore.NewTemplates()}
	m := newManager(t, repo)

	added, err := m.Seed(context.Background())
	require.NoError(t, err)
	assert.Len(t, added, 12)
	assert.Equal(t, []int{10, 2}, repo.sizes)
}

func TestSeedStopsOnFailedBatch(t *testing.T) {
	repo := &batchRecorder{Repository: memstore.NewTemplates(), failAt: 2}
	m := newManager(t, repo)

	added, err := m.Seed(context.Background())
	assert.Error(t, err)
	assert.Len(t, added, 10)
}

func TestLike(t *testing.T) {
	store := memstore.NewTemplates()
	m := newManager(t, store)
	ctx := context.Background()

	added, err := store.Add(ctx, []template.Template{{Name: "one"}})
	require.NoError(t, err)

	likes, err := m.Like(ctx, added[0].RecordID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	likes, err = m.Like(ctx, added[0].RecordID)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)

	_, err = m.Like(ctx, "missing")
	assert.ErrorIs(t, err, template.ErrNotFound)
}

func newServer(t *testing.T) (*httptest.Server, *authtest.Issuer, *memstore.Templates) {
	t.Helper()
	issuer := authtest.New(t)
	store := memstore.NewTemplates()
	svc, err := template.NewService(template.Options{
		Auth:            issuer.Auth,
		TemplateManager: newManager(t, store),
		Logger:          zap.NewNop(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(svc.Router())
	t.Cleanup(srv.Close)
	return srv, issuer, store
}

func do(t *testing.T, method, url, bearer, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res, out
}

func TestServiceSeedAndList(t *testing.T) {
	srv, issuer, _ := newServer(t)

	res, _ := do(t, http.MethodPost, srv.URL+"/", "", "")
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body := do(t, http.MethodPost, srv.URL+"/", issuer.Bearer(t, "user_1"), "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(12), body["count"])

	res, body = do(t, http.MethodGet, srv.URL+"/", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["templates"], 12)

	res, body = do(t, http.MethodGet, srv.URL+"/check-table", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["tableExists"])
	assert.Equal(t, float64(12), body["count"])
}

func TestServiceLike(t *testing.T) {
	srv, issuer, store := newServer(t)
	added, err := store.Add(context.Background(), []template.Template{{Name: "one", Likes: 4}})
	require.NoError(t, err)
	bearer := issuer.Bearer(t, "user_1")

	res, _ := do(t, http.MethodPost, srv.URL+"/like", bearer, `{}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = do(t, http.MethodPost, srv.URL+"/like", bearer, `{"templateId":"nope"}`)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body := do(t, http.MethodPost, srv.URL+"/like", bearer, `{"templateId":"`+added[0].RecordID+`"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, float64(5), body["newLike"])
}
