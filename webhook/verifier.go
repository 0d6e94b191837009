package webhook

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	extErrors "github.com/pkg/errors"
	svix "github.com/svix/svix-webhooks/go"
)

// PlaceholderSecret is the value shipped in example env files
const PlaceholderSecret = "whsec_your_webhook_secret_here"

// define header names
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

var (
	// ErrMissingHeaders means one of the svix headers is absent
	ErrMissingHeaders = errors.New("missing svix headers")
	// ErrNotConfigured means the signing secret is unset or still the placeholder
	ErrNotConfigured = errors.New("webhook secret not configured")
	// ErrInvalidSignature means the signature or timestamp did not verify
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

type signatureChecker interface {
	Verify(payload []byte, headers http.Header) error
}

// Verifier authenticates Clerk webhook deliveries
type Verifier struct {
	checker signatureChecker
}

// NewVerifier returns a Verifier for secret. An unset or malformed secret is not an
// error here: every Verify call then fails with ErrNotConfigured.
func NewVerifier(secret string) *Verifier {
	v := &Verifier{}
	if secret == "" || secret == PlaceholderSecret {
		return v
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return v
	}
	v.checker = wh
	return v
}

// Configured reports whether deliveries can be verified
func (v *Verifier) Configured() bool {
	return v.checker != nil
}

// Verify checks the svix headers are present, then the signature over the raw body
func (v *Verifier) Verify(payload []byte, headers http.Header) error {
	if headers.Get(HeaderID) == "" || headers.Get(HeaderTimestamp) == "" || headers.Get(HeaderSignature) == "" {
		return ErrMissingHeaders
	}
	if v.checker == nil {
		return ErrNotConfigured
	}
	if err := v.checker.Verify(payload, headers); err != nil {
		return extErrors.Wrap(ErrInvalidSignature, err.Error())
	}
	return nil
}

// Sign returns the headers a Clerk delivery of payload would carry
func Sign(secret, msgID string, ts time.Time, payload []byte) (http.Header, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot use webhook secret")
	}
	signature, err := wh.Sign(msgID, ts, payload)
	if err != nil {
		return nil, extErrors.Wrap(err, "Cannot sign payload")
	}
	h := http.Header{}
	h.Set(HeaderID, msgID)
	h.Set(HeaderTimestamp, strconv.FormatInt(ts.Unix(), 10))
	h.Set(HeaderSignature, signature)
	return h, nil
}
