package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	extErrors "github.com/pkg/errors"
)

// DefaultPipeline is triggered when the caller names none
const DefaultPipeline = "Unaique-VG-Pipeline"

// Source identifies this service in the trigger payload
const Source = "unaique-dashboard"

// ErrNotConfigured is returned when no webhook URL is set
var ErrNotConfigured = errors.New("n8n webhook url is not configured")

// UpstreamError is a non-2xx answer from n8n
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// TriggerOptions contains the configuration for Trigger
type TriggerOptions struct {
	URL    string
	APIKey string
	Client *http.Client
	Now    func() time.Time
}

// Trigger posts pipeline runs to an n8n webhook
type Trigger struct {
	TriggerOptions
}

// NewTrigger returns a Trigger. An empty URL is accepted; Fire then fails with
// ErrNotConfigured.
func NewTrigger(option TriggerOptions) *Trigger {
	if option.Client == nil {
		option.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if option.Now == nil {
		option.Now = time.Now
	}
	return &Trigger{
		TriggerOptions: option,
	}
}

// Configured reports whether a webhook URL is set
func (t *Trigger) Configured() bool {
	return strings.TrimSpace(t.URL) != ""
}

// Run names a pipeline and the user it runs for
type Run struct {
	Pipeline       string
	UserID         string
	AdditionalData map[string]interface{}
}

// Result is a run accepted by n8n
type Result struct {
	Pipeline  string
	UserID    string
	Timestamp time.Time
	// Response is the decoded JSON answer, or the raw text when it is not JSON
	Response interface{}
}

// Payload merges run.AdditionalData under the reserved keys. Reserved keys always
// carry the run's own values.
func Payload(run Run, at time.Time) map[string]interface{} {
	payload := make(map[string]interface{}, len(run.AdditionalData)+4)
	for k, v := range run.AdditionalData {
		payload[k] = v
	}
	payload["pipeline"] = run.Pipeline
	payload["userId"] = run.UserID
	payload["timestamp"] = at.UTC().Format("2006-01-02T15:04:05.000Z")
	payload["source"] = Source
	return payload
}

// Fire posts run to the webhook. A non-2xx answer returns *UpstreamError.
func (t *Trigger) Fire(ctx context.Context, run Run) (*Result, error) {
	if !t.Configured() {
		return nil, ErrNotConfigured
	}
	if run.Pipeline == "" {
		run.Pipeline = DefaultPipeline
	}
	now := t.Now()

	body, err := json.Marshal(Payload(run, now))
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot encode pipeline payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot build pipeline request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	res, err := t.Client.Do(req)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot reach n8n")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot read n8n response")
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: string(raw)}
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		decoded = string(raw)
	}
	return &Result{
		Pipeline:  run.Pipeline,
		UserID:    run.UserID,
		Timestamp: now.UTC(),
		Response:  decoded,
	}, nil
}
