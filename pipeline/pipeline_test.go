package pipeline_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zllovesuki/unaique/auth/authtest"
	"github.com/zllovesuki/unaique/broker"
	"github.com/zllovesuki/unaique/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// fakeN8N records the last request and answers with status and body
type fakeN8N struct {
	mu      sync.Mutex
	status  int
	body    string
	auth    string
	payload map[string]interface{}
}

func (f *fakeN8N) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = r.Header.Get("Authorization")
	raw, _ := io.ReadAll(r.Body)
	f.payload = nil
	json.Unmarshal(raw, &f.payload)
	w.WriteHeader(f.status)
	io.WriteString(w, f.body)
}

func (f *fakeN8N) last() (string, map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth, f.payload
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []broker.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, e broker.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() {}

func (r *recordingPublisher) recorded() []broker.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]broker.Event(nil), r.events...)
}

func newTrigger(url string) *pipeline.Trigger {
	return pipeline.NewTrigger(pipeline.TriggerOptions{
		URL:    url,
		APIKey: "n8n-key",
		Now:    func() time.Time { return fixedNow },
	})
}

func TestPayloadReservedKeys(t *testing.T) {
	payload := pipeline.Payload(pipeline.Run{
		Pipeline: "Custom",
		UserID:   "user_1",
		AdditionalData: map[string]interface{}{
			"userId":   "spoofed",
			"source":   "elsewhere",
			"ideaId":   "rec42",
			"priority": 2,
		},
	}, fixedNow)

	assert.Equal(t, "Custom", payload["pipeline"])
	assert.Equal(t, "user_1", payload["userId"])
	assert.Equal(t, pipeline.Source, payload["source"])
	assert.Equal(t, "2024-03-01T09:30:00.000Z", payload["timestamp"])
	assert.Equal(t, "rec42", payload["ideaId"])
	assert.Equal(t, 2, payload["priority"])
}

func TestFire(t *testing.T) {
	n8n := &fakeN8N{status: http.StatusOK, body: `{"executionId":"9"}`}
	srv := httptest.NewServer(n8n)
	defer srv.Close()

	res, err := newTrigger(srv.URL).Fire(context.Background(), pipeline.Run{UserID: "user_1"})
	require.NoError(t, err)
	assert.Equal(t, pipeline.DefaultPipeline, res.Pipeline)
	assert.Equal(t, map[string]interface{}{"executionId": "9"}, res.Response)
	auth, payload := n8n.last()
	assert.Equal(t, "Bearer n8n-key", auth)
	assert.Equal(t, pipeline.DefaultPipeline, payload["pipeline"])
	assert.Equal(t, "user_1", payload["userId"])
}

func TestFireTextResponse(t *testing.T) {
	srv := httptest.NewServer(&fakeN8N{status: http.StatusOK, body: "Workflow was started"})
	defer srv.Close()

	res, err := newTrigger(srv.URL).Fire(context.Background(), pipeline.Run{UserID: "user_1"})
	require.NoError(t, err)
	assert.Equal(t, "Workflow was started", res.Response)
}

func TestFireUpstreamError(t *testing.T) {
	srv := httptest.NewServer(&fakeN8N{status: http.StatusNotFound, body: "webhook not registered"})
	defer srv.Close()

	_, err := newTrigger(srv.URL).Fire(context.Background(), pipeline.Run{UserID: "user_1"})
	var upstream *pipeline.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
	assert.Equal(t, "HTTP 404: webhook not registered", upstream.Error())
}

func TestFireNotConfigured(t *testing.T) {
	_, err := newTrigger("").Fire(context.Background(), pipeline.Run{UserID: "user_1"})
	assert.ErrorIs(t, err, pipeline.ErrNotConfigured)
}

func newServer(t *testing.T, url string, pub broker.Publisher) (*httptest.Server, *authtest.Issuer) {
	t.Helper()
	issuer := authtest.New(t)
	svc, err := pipeline.NewService(pipeline.Options{
		Auth:      issuer.Auth,
		Trigger:   newTrigger(url),
		Publisher: pub,
		Logger:    zap.NewNop(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(svc.Router())
	t.Cleanup(srv.Close)
	return srv, issuer
}

func post(t *testing.T, url, bearer, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/trigger-pipeline", strings.NewReader(body))
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

func TestServiceTrigger(t *testing.T) {
	n8n := &fakeN8N{status: http.StatusOK, body: `{"ok":true}`}
	upstream := httptest.NewServer(n8n)
	defer upstream.Close()
	pub := &recordingPublisher{}
	srv, issuer := newServer(t, upstream.URL, pub)

	res, _ := post(t, srv.URL, "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, out := post(t, srv.URL, issuer.Bearer(t, "user_1"), `{"pipelineName":"Shorts","additionalData":{"pipeline":"x","ideaId":"rec9"}}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Shorts", out["pipeline"])
	assert.Equal(t, "user_1", out["userId"])
	assert.Equal(t, map[string]interface{}{"ok": true}, out["n8nResponse"])
	_, payload := n8n.last()
	assert.Equal(t, "Shorts", payload["pipeline"])
	assert.Equal(t, "rec9", payload["ideaId"])

	events := pub.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, broker.EventPipelineTriggered, events[0].Name)
}

func TestServiceEmptyBodyUsesDefault(t *testing.T) {
	n8n := &fakeN8N{status: http.StatusOK, body: `{}`}
	upstream := httptest.NewServer(n8n)
	defer upstream.Close()
	srv, issuer := newServer(t, upstream.URL, nil)

	res, out := post(t, srv.URL, issuer.Bearer(t, "user_1"), ``)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, pipeline.DefaultPipeline, out["pipeline"])
}

func TestServiceUpstreamStatusEchoed(t *testing.T) {
	upstream := httptest.NewServer(&fakeN8N{status: http.StatusServiceUnavailable, body: "busy"})
	defer upstream.Close()
	srv, issuer := newServer(t, upstream.URL, nil)

	res, out := post(t, srv.URL, issuer.Bearer(t, "user_1"), `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "HTTP 503: busy", out["error"])
	assert.Equal(t, "busy", out["n8nResponse"])
}

func TestServiceNotConfigured(t *testing.T) {
	srv, issuer := newServer(t, "", nil)

	res, out := post(t, srv.URL, issuer.Bearer(t, "user_1"), `{}`)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "Configuration missing", out["error"])
}

func TestServiceInvalidJSON(t *testing.T) {
	srv, issuer := newServer(t, "http://127.0.0.1:1", nil)

	res, _ := post(t, srv.URL, issuer.Bearer(t, "user_1"), `{`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
